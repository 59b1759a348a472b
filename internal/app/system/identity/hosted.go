// internal/app/system/identity/hosted.go
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// HostedStore reaches the managed identity provider over its admin REST
// surface, authenticated with a service-role key. Only the operations the
// application consumes are implemented.
type HostedStore struct {
	baseURL    string
	serviceKey string
	client     *http.Client
	log        *zap.Logger
}

// NewHostedStore builds a client for the provider at baseURL.
func NewHostedStore(baseURL, serviceKey string, logger *zap.Logger) *HostedStore {
	return &HostedStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: 15 * time.Second},
		log:        logger,
	}
}

// CreateUser registers a new identity with the email pre-confirmed; the
// signup funnel owns its own activation state, so provider-side confirmation
// emails are not used.
func (s *HostedStore) CreateUser(ctx context.Context, email, password string) (*User, error) {
	body := map[string]any{
		"email":         email,
		"password":      password,
		"email_confirm": true,
	}
	var u User
	status, err := s.do(ctx, http.MethodPost, "/admin/users", body, &u)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusUnprocessableEntity || status == http.StatusConflict:
		return nil, ErrEmailTaken
	case status >= 400:
		return nil, fmt.Errorf("identity: create user: provider returned %d", status)
	}
	return &u, nil
}

// DeleteUser removes the identity record. Deleting an already-removed user is
// treated as success so the saga rollback stays idempotent.
func (s *HostedStore) DeleteUser(ctx context.Context, id string) error {
	status, err := s.do(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return nil
	}
	if status >= 400 {
		return fmt.Errorf("identity: delete user: provider returned %d", status)
	}
	return nil
}

// VerifyPassword exchanges credentials for the identity via the password
// grant.
func (s *HostedStore) VerifyPassword(ctx context.Context, email, password string) (*User, error) {
	body := map[string]any{"email": email, "password": password}
	var resp struct {
		User User `json:"user"`
	}
	status, err := s.do(ctx, http.MethodPost, "/token?grant_type=password", body, &resp)
	if err != nil {
		return nil, err
	}
	if status == http.StatusBadRequest || status == http.StatusUnauthorized {
		return nil, ErrBadCredentials
	}
	if status >= 400 {
		return nil, fmt.Errorf("identity: verify password: provider returned %d", status)
	}
	return &resp.User, nil
}

// do sends one request and decodes the response into out when non-nil.
// Transport errors come back as errors; HTTP error statuses come back as the
// status code for the caller to interpret.
func (s *HostedStore) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, rdr)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("apikey", s.serviceKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("identity: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 400 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("identity: decode response: %w", err)
		}
	} else {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	return resp.StatusCode, nil
}
