package identity_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ourthirdplace/thirdplace/internal/app/system/identity"
	"go.uber.org/zap"
)

func TestHostedStore_CreateUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/admin/users" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer service-key" {
			t.Errorf("Authorization: got %q", got)
		}
		var body struct {
			Email        string `json:"email"`
			Password     string `json:"password"`
			EmailConfirm bool   `json:"email_confirm"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Email != "new@example.com" || !body.EmailConfirm {
			t.Errorf("unexpected body: %+v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": "uid-123", "email": body.Email})
	}))
	defer srv.Close()

	store := identity.NewHostedStore(srv.URL, "service-key", zap.NewNop())
	u, err := store.CreateUser(context.Background(), "new@example.com", "hunter22")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if u.ID != "uid-123" || u.Email != "new@example.com" {
		t.Errorf("unexpected user: %+v", u)
	}
}

func TestHostedStore_CreateUser_EmailTaken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	store := identity.NewHostedStore(srv.URL, "service-key", zap.NewNop())
	_, err := store.CreateUser(context.Background(), "dup@example.com", "hunter22")
	if !errors.Is(err, identity.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestHostedStore_DeleteUser_NotFoundIsNoOp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	store := identity.NewHostedStore(srv.URL, "service-key", zap.NewNop())
	if err := store.DeleteUser(context.Background(), "gone"); err != nil {
		t.Fatalf("expected nil for missing user, got %v", err)
	}
}

func TestHostedStore_VerifyPassword_BadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	store := identity.NewHostedStore(srv.URL, "service-key", zap.NewNop())
	_, err := store.VerifyPassword(context.Background(), "a@example.com", "wrong")
	if !errors.Is(err, identity.ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
}

func TestHostedStore_VerifyPassword_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token" || r.URL.Query().Get("grant_type") != "password" {
			t.Errorf("unexpected request: %s %s", r.URL.Path, r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "jwt",
			"user":         map[string]string{"id": "uid-9", "email": "a@example.com"},
		})
	}))
	defer srv.Close()

	store := identity.NewHostedStore(srv.URL, "service-key", zap.NewNop())
	u, err := store.VerifyPassword(context.Background(), "a@example.com", "right")
	if err != nil {
		t.Fatalf("VerifyPassword failed: %v", err)
	}
	if u.ID != "uid-9" {
		t.Errorf("user id: got %q, want %q", u.ID, "uid-9")
	}
}
