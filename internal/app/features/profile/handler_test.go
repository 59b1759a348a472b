// internal/app/features/profile/handler_test.go
package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	profilestore "github.com/ourthirdplace/thirdplace/internal/app/store/profiles"
	"github.com/ourthirdplace/thirdplace/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := NewHandler(profilestore.New(db), nil, zap.NewNop())
	return h, testutil.NewFixtures(t, db)
}

func getProfile(h *Handler, user testutil.TestUser) *httptest.ResponseRecorder {
	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/profile", user)
	rec := httptest.NewRecorder()
	h.ServeProfile(rec, req)
	return rec
}

func postUpdate(h *Handler, user testutil.TestUser, body map[string]any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/profile", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req = testutil.WithUser(req, user)
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)
	return rec
}

func TestServeProfile(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx := context.Background()

	p := fx.CreateActiveProfile(ctx, "Dana Reyes", "dana@example.com")
	user := testutil.TestUser{ID: p.UserID, Name: p.FullName, Email: p.Email, Role: "member"}

	rec := getProfile(h, user)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got profileView
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.FullName != "Dana Reyes" || got.Email != "dana@example.com" {
		t.Errorf("unexpected view: %+v", got)
	}
	if got.Status != "active" {
		t.Errorf("status = %q, want active", got.Status)
	}
}

func TestServeProfile_NotFound(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := getProfile(h, testutil.MemberUser())
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleUpdate(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx := context.Background()

	p := fx.CreateActiveProfile(ctx, "Dana Reyes", "dana@example.com")
	user := testutil.TestUser{ID: p.UserID, Name: p.FullName, Email: p.Email, Role: "member"}

	rec := postUpdate(h, user, map[string]any{
		"full_name":   "Dana M. Reyes",
		"company":     "Reyes Consulting",
		"network_url": "https://linkedin.com/in/danareyes",
		"city":        "Austin",
		"industries":  []string{"Design", "Education"},
		"bio":         "Community builder and <b>designer</b>.",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	updated, err := h.Profiles.GetByUserID(ctx, p.UserID)
	if err != nil {
		t.Fatalf("reload profile: %v", err)
	}
	if updated.FullName != "Dana M. Reyes" {
		t.Errorf("full name = %q", updated.FullName)
	}
	if updated.City != "Austin" {
		t.Errorf("city = %q", updated.City)
	}
	if len(updated.Industries) != 2 {
		t.Errorf("industries = %v", updated.Industries)
	}
	// Basic formatting in the bio survives.
	if !strings.Contains(updated.Bio, "<b>designer</b>") {
		t.Errorf("bio lost safe markup: %q", updated.Bio)
	}
}

func TestHandleUpdate_StripsScripts(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx := context.Background()

	p := fx.CreateActiveProfile(ctx, "Dana Reyes", "dana@example.com")
	user := testutil.TestUser{ID: p.UserID, Name: p.FullName, Email: p.Email, Role: "member"}

	rec := postUpdate(h, user, map[string]any{
		"full_name": "Dana <script>alert(1)</script>Reyes",
		"company":   "<img src=x onerror=alert(1)>Acme",
		"bio":       "hello <script>alert(1)</script>world",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	updated, err := h.Profiles.GetByUserID(ctx, p.UserID)
	if err != nil {
		t.Fatalf("reload profile: %v", err)
	}
	if strings.Contains(updated.FullName, "<") || strings.Contains(updated.FullName, "script") {
		t.Errorf("full name kept markup: %q", updated.FullName)
	}
	if strings.Contains(updated.Company, "<") {
		t.Errorf("company kept markup: %q", updated.Company)
	}
	if strings.Contains(updated.Bio, "script") {
		t.Errorf("bio kept script: %q", updated.Bio)
	}
}

func TestHandleUpdate_DoesNotTouchStatus(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx := context.Background()

	p := fx.CreateProfile(ctx, "Pat Lin", "pat@example.com", "pending")
	user := testutil.TestUser{ID: p.UserID, Name: p.FullName, Email: p.Email, Role: "member"}

	rec := postUpdate(h, user, map[string]any{
		"full_name": "Pat Lin",
		"city":      "Denver",
		"status":    "active",
	})
	// Unknown fields are rejected outright.
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	updated, err := h.Profiles.GetByUserID(ctx, p.UserID)
	if err != nil {
		t.Fatalf("reload profile: %v", err)
	}
	if updated.Status != "pending" {
		t.Errorf("status = %q, want pending", updated.Status)
	}
}

func TestHandleUpdate_MissingName(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx := context.Background()

	p := fx.CreateActiveProfile(ctx, "Dana Reyes", "dana@example.com")
	user := testutil.TestUser{ID: p.UserID, Name: p.FullName, Email: p.Email, Role: "member"}

	rec := postUpdate(h, user, map[string]any{"full_name": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "full_name") {
		t.Errorf("expected field error, got %s", rec.Body.String())
	}
}
