// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ourthirdplace/thirdplace/internal/app/store/audit"
	"github.com/ourthirdplace/thirdplace/internal/app/store/oauthstate"
	profilestore "github.com/ourthirdplace/thirdplace/internal/app/store/profiles"
	"github.com/ourthirdplace/thirdplace/internal/app/system/auditlog"
	"github.com/ourthirdplace/thirdplace/internal/app/system/auth"
	"github.com/ourthirdplace/thirdplace/internal/app/system/normalize"
	"github.com/ourthirdplace/thirdplace/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Handler runs the Google OAuth sign-in flow. Google only authenticates;
// membership still comes from the profile, so an unknown Google account is
// sent to signup rather than silently provisioned.
type Handler struct {
	Profiles   *profilestore.Store
	StateStore *oauthstate.Store
	Audit      *auditlog.Logger
	Log        *zap.Logger

	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g. "https://ourthirdplace.com/auth/google/callback"
}

func NewHandler(profiles *profilestore.Store, states *oauthstate.Store, audit *auditlog.Logger, clientID, clientSecret, baseURL string, log *zap.Logger) *Handler {
	return &Handler{
		Profiles:     profiles,
		StateStore:   states,
		Audit:        audit,
		Log:          log,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
	}
}

func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured reports whether Google sign-in is available.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

// ServeLogin starts the flow: mint a single-use state token and send the
// browser to Google's consent screen.
//
// GET /auth/google
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("google oauth not configured")
		http.Redirect(w, r, "/login?error=google_not_configured", http.StatusSeeOther)
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("oauth state generation failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	returnURL := r.URL.Query().Get("return")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	expiresAt := time.Now().UTC().Add(10 * time.Minute)
	if err := h.StateStore.Save(ctx, state, returnURL, expiresAt); err != nil {
		h.Log.Error("oauth state save failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, h.oauth2Config().AuthCodeURL(state, oauth2.AccessTypeOffline), http.StatusTemporaryRedirect)
}

// ServeCallback finishes the flow: validate state, exchange the code, fetch
// the Google account, match it to a profile by email, and sign in.
//
// GET /auth/google/callback
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("google oauth denied",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		http.Redirect(w, r, "/login?error=google_denied", http.StatusSeeOther)
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	ctxShort, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	returnURL, valid, err := h.StateStore.Validate(ctxShort, state)
	if err != nil {
		h.Log.Error("oauth state validation failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired oauth state")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/login?error=invalid_code", http.StatusSeeOther)
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("oauth code exchange failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=token_exchange", http.StatusSeeOther)
		return
	}

	googleUser, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("google userinfo fetch failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=user_info", http.StatusSeeOther)
		return
	}

	email := normalize.Email(googleUser.Email)
	p, err := h.Profiles.GetByEmail(ctxShort, email)
	if err != nil {
		if err == profilestore.ErrNotFound {
			h.Log.Info("google account has no profile", zap.String("email", email))
			h.Audit.LoginFailed(ctx, r, audit.EventLoginFailedUserNotFound, email, "no profile for google account")
			http.Redirect(w, r, "/signup?error=no_account", http.StatusSeeOther)
			return
		}
		h.Log.Error("profile lookup failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	u := auth.SessionUser{ID: p.UserID, Name: p.FullName, Email: p.Email, Role: p.Role}
	if err := auth.SignIn(w, r, u); err != nil {
		h.Log.Error("session save failed", zap.String("user_id", p.UserID), zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	h.Audit.LoginSuccess(ctx, r, p.UserID, "google", email)

	if returnURL == "" || returnURL[0] != '/' {
		returnURL = "/events"
	}
	http.Redirect(w, r, returnURL, http.StatusSeeOther)
}

// googleUserInfo is the subset of Google's userinfo response we use.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// userInfoURL is a var so tests can point it at a local server.
var userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get(userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return &info, nil
}

// generateState returns a URL-safe random token for the OAuth state parameter.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
