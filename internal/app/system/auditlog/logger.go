// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ourthirdplace/thirdplace/internal/app/store/audit"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (login, logout).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Billing controls logging for the signup/payment workflow (signup,
	// checkout, activation, cancellation).
	Billing string
	// Admin controls logging for host/admin actions (event creation) and
	// member-facing mutations (registrations, profile edits).
	Admin string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	// Check X-Forwarded-For header first (for reverse proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}

	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryBilling:
		setting = l.config.Billing
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all" // Default to logging everything for unknown categories
	}

	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Authentication events ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID, authMethod, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    userID,
		IP:        getClientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details: map[string]string{
			"auth_method": authMethod,
			"email":       email,
		},
	})
}

// LoginFailed logs a failed login attempt.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, eventType, attemptedEmail, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     eventType,
		IP:            getClientIP(r),
		UserAgent:     userAgent(r),
		Success:       false,
		FailureReason: reason,
		Details: map[string]string{
			"attempted_email": attemptedEmail,
		},
	})
}

// Logout logs a user logout.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		UserID:    userID,
		IP:        getClientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
	})
}

// --- Billing events ---

// SignupCompleted logs a successful account provisioning.
func (l *Logger) SignupCompleted(ctx context.Context, r *http.Request, userID, tier string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryBilling,
		EventType: audit.EventSignupCompleted,
		UserID:    userID,
		IP:        getClientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details:   map[string]string{"tier": tier},
	})
}

// SignupRolledBack logs a signup that failed part-way and was unwound.
func (l *Logger) SignupRolledBack(ctx context.Context, r *http.Request, email, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryBilling,
		EventType:     audit.EventSignupRolledBack,
		IP:            getClientIP(r),
		UserAgent:     userAgent(r),
		Success:       false,
		FailureReason: reason,
		Details:       map[string]string{"email": email},
	})
}

// CheckoutCreated logs a created checkout session.
func (l *Logger) CheckoutCreated(ctx context.Context, r *http.Request, userID, sessionID string, amount int64) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryBilling,
		EventType: audit.EventCheckoutCreated,
		UserID:    userID,
		IP:        getClientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details: map[string]string{
			"session_id": sessionID,
			"amount":     strconv.FormatInt(amount, 10),
		},
	})
}

// MembershipActivated logs an activation. The webhook path has no user
// request, so r may be nil.
func (l *Logger) MembershipActivated(ctx context.Context, r *http.Request, userID, sessionID, source string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryBilling,
		EventType: audit.EventMembershipActivated,
		UserID:    userID,
		IP:        getClientIP(r),
		Success:   true,
		Details: map[string]string{
			"session_id": sessionID,
			"source":     source, // "webhook" or "client_confirmation"
		},
	})
}

// MembershipCancelled logs a subscription cancellation.
func (l *Logger) MembershipCancelled(ctx context.Context, userID, subscriptionID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryBilling,
		EventType: audit.EventMembershipCancelled,
		UserID:    userID,
		Success:   true,
		Details:   map[string]string{"subscription_id": subscriptionID},
	})
}

// --- Admin / member action events ---

// EventCreated logs a host creating an event.
func (l *Logger) EventCreated(ctx context.Context, r *http.Request, actorID, eventID, title string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventEventCreated,
		ActorID:   actorID,
		IP:        getClientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details: map[string]string{
			"event_id": eventID,
			"title":    title,
		},
	})
}

// RegistrationAdded logs a member registering for an event.
func (l *Logger) RegistrationAdded(ctx context.Context, r *http.Request, userID, eventID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventRegistrationAdded,
		UserID:    userID,
		IP:        getClientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details:   map[string]string{"event_id": eventID},
	})
}

// RegistrationCancelled logs a member deregistering from an event.
func (l *Logger) RegistrationCancelled(ctx context.Context, r *http.Request, userID, eventID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventRegistrationCancelled,
		UserID:    userID,
		IP:        getClientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
		Details:   map[string]string{"event_id": eventID},
	})
}

// ProfileUpdated logs a member editing their profile.
func (l *Logger) ProfileUpdated(ctx context.Context, r *http.Request, userID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventProfileUpdated,
		UserID:    userID,
		IP:        getClientIP(r),
		UserAgent: userAgent(r),
		Success:   true,
	})
}

func userAgent(r *http.Request) string {
	if r == nil {
		return ""
	}
	return r.UserAgent()
}
