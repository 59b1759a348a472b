package authgoogle_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/ourthirdplace/thirdplace/internal/app/features/authgoogle"
	"github.com/ourthirdplace/thirdplace/internal/app/store/oauthstate"
	profilestore "github.com/ourthirdplace/thirdplace/internal/app/store/profiles"
	"github.com/ourthirdplace/thirdplace/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*authgoogle.Handler, *oauthstate.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	states := oauthstate.New(db)
	h := authgoogle.NewHandler(
		profilestore.New(db),
		states,
		nil,
		"test-client-id",
		"test-client-secret",
		"http://localhost:8080",
		zap.NewNop(),
	)
	return h, states
}

func TestIsConfigured(t *testing.T) {
	h, _ := newTestHandler(t)
	if !h.IsConfigured() {
		t.Error("IsConfigured() should be true with client id and secret")
	}

	h.ClientID = ""
	if h.IsConfigured() {
		t.Error("IsConfigured() should be false without a client id")
	}
}

func TestServeLogin_RedirectsToGoogle(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/google?return=/events", nil)
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "https://accounts.google.com/") {
		t.Fatalf("redirect = %q, want Google consent screen", loc)
	}

	u, err := url.Parse(loc)
	if err != nil {
		t.Fatalf("parse redirect: %v", err)
	}
	state := u.Query().Get("state")
	if state == "" {
		t.Fatal("redirect is missing the state parameter")
	}
	if got := u.Query().Get("redirect_uri"); got != "http://localhost:8080/auth/google/callback" {
		t.Errorf("redirect_uri = %q", got)
	}
}

func TestServeLogin_SavesState(t *testing.T) {
	h, states := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/google?return=/profile", nil)
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, req)

	u, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse redirect: %v", err)
	}
	state := u.Query().Get("state")

	returnURL, valid, err := states.Validate(context.Background(), state)
	if err != nil {
		t.Fatalf("validate state: %v", err)
	}
	if !valid {
		t.Fatal("state was not saved")
	}
	if returnURL != "/profile" {
		t.Errorf("return url = %q, want /profile", returnURL)
	}
}

func TestServeLogin_NotConfigured(t *testing.T) {
	h, _ := newTestHandler(t)
	h.ClientID = ""
	h.ClientSecret = ""

	req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "google_not_configured") {
		t.Errorf("redirect = %q", loc)
	}
}

func TestServeCallback_MissingState(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=abc", nil)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "invalid_state") {
		t.Errorf("redirect = %q", loc)
	}
}

func TestServeCallback_UnknownState(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=bogus&code=abc", nil)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "invalid_state") {
		t.Errorf("redirect = %q", loc)
	}
}

func TestServeCallback_StateIsSingleUse(t *testing.T) {
	h, states := newTestHandler(t)

	// Start a flow so a real state exists.
	startReq := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
	startRec := httptest.NewRecorder()
	h.ServeLogin(startRec, startReq)

	u, _ := url.Parse(startRec.Header().Get("Location"))
	state := u.Query().Get("state")

	if _, valid, err := states.Validate(context.Background(), state); err != nil || !valid {
		t.Fatalf("first validate: valid=%v err=%v", valid, err)
	}
	if _, valid, err := states.Validate(context.Background(), state); err != nil || valid {
		t.Fatalf("second validate should fail: valid=%v err=%v", valid, err)
	}
}

func TestServeCallback_ProviderError(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?error=access_denied", nil)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "google_denied") {
		t.Errorf("redirect = %q", loc)
	}
}
