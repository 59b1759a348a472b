// internal/app/system/ratelimit/ratelimit.go

// Package ratelimit throttles repeated requests per key using fixed
// time windows. Limits are in-process only.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter counts requests per key within a fixed window. Safe for
// concurrent use.
type Limiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	counts map[string]*bucket
	calls  int
}

type bucket struct {
	start time.Time
	n     int
}

// pruneEvery bounds how often expired buckets are swept. Sweeping happens
// inline on Allow, so an idle limiter holds no goroutine.
const pruneEvery = 256

// New returns a limiter allowing at most limit requests per key per window.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:  limit,
		window: window,
		counts: make(map[string]*bucket),
	}
}

// Allow records an attempt for key and reports whether it is within the
// limit for the current window.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()

	l.calls++
	if l.calls%pruneEvery == 0 {
		l.prune(now)
	}

	b, ok := l.counts[key]
	if !ok || now.Sub(b.start) >= l.window {
		l.counts[key] = &bucket{start: now, n: 1}
		return true
	}
	if b.n >= l.limit {
		return false
	}
	b.n++
	return true
}

// Remaining reports how many attempts key has left in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.counts[key]
	if !ok || time.Since(b.start) >= l.window {
		return l.limit
	}
	if b.n >= l.limit {
		return 0
	}
	return l.limit - b.n
}

// Reset forgets all attempts recorded for key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.counts, key)
}

// prune drops buckets whose window has passed. Caller holds the lock.
func (l *Limiter) prune(now time.Time) {
	for key, b := range l.counts {
		if now.Sub(b.start) >= l.window {
			delete(l.counts, key)
		}
	}
}

// ClientIP returns the originating client address for a request, honoring
// X-Forwarded-For and X-Real-IP set by the reverse proxy.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// LoginLimiter throttles sign-in attempts on two axes: by client IP and by
// target email, so neither a single host nor a single account can be
// hammered.
type LoginLimiter struct {
	byIP    *Limiter
	byEmail *Limiter
}

// NewLoginLimiter returns a login limiter with the production limits:
// 10 attempts per IP per minute and 5 attempts per email per 5 minutes.
func NewLoginLimiter() *LoginLimiter {
	return NewLoginLimiterWithConfig(10, time.Minute, 5, 5*time.Minute)
}

// NewLoginLimiterWithConfig returns a login limiter with explicit limits.
func NewLoginLimiterWithConfig(ipLimit int, ipWindow time.Duration, emailLimit int, emailWindow time.Duration) *LoginLimiter {
	return &LoginLimiter{
		byIP:    New(ipLimit, ipWindow),
		byEmail: New(emailLimit, emailWindow),
	}
}

// Check records a login attempt and reports whether it may proceed. When
// blocked, the second return value is a message suitable for the client.
func (ll *LoginLimiter) Check(r *http.Request, email string) (bool, string) {
	if !ll.byIP.Allow(ClientIP(r)) {
		return false, "too many login attempts, wait a minute before trying again"
	}
	if key := emailKey(email); key != "" {
		if !ll.byEmail.Allow(key) {
			return false, "too many login attempts for this account, wait a few minutes"
		}
	}
	return true, ""
}

// ResetEmail clears the per-email counter after a successful sign-in.
func (ll *LoginLimiter) ResetEmail(email string) {
	if key := emailKey(email); key != "" {
		ll.byEmail.Reset(key)
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
