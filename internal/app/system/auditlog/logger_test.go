package auditlog_test

import (
	"net/http/httptest"
	"testing"

	"github.com/ourthirdplace/thirdplace/internal/app/store/audit"
	"github.com/ourthirdplace/thirdplace/internal/app/system/auditlog"
	"github.com/ourthirdplace/thirdplace/internal/testutil"
	"go.uber.org/zap"
)

func TestLogger_NilLogger(t *testing.T) {
	// nil logger should be a no-op (not panic)
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	// These should all be no-ops, not panic
	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, req, "user-1", "password", "test@example.com")
	logger.Logout(ctx, req, "user-1")
	logger.MembershipActivated(ctx, nil, "user-1", "cs_1", "webhook")
}

func TestLogger_Log_ConfigOff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	zapLog := zap.NewNop()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zapLog, auditlog.Config{
		Auth:    "off",
		Billing: "off",
		Admin:   "off",
	})

	logger.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    "user-off",
		Success:   true,
	})

	events, err := store.GetByUser(ctx, "user-off", 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 0 {
		t.Error("expected no events when config is 'off'")
	}
}

func TestLogger_Log_ConfigDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	zapLog := zap.NewNop()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zapLog, auditlog.Config{
		Auth:    "db",
		Billing: "db",
		Admin:   "db",
	})

	logger.Log(ctx, audit.Event{
		Category:  audit.CategoryBilling,
		EventType: audit.EventMembershipActivated,
		UserID:    "user-db",
		Success:   true,
	})

	events, err := store.GetByUser(ctx, "user-db", 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 event, got %d", len(events))
	}
}

func TestGetClientIP_XForwardedFor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "db"})

	req := httptest.NewRequest("POST", "/login", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	logger.LoginSuccess(ctx, req, "user-ip", "password", "ip@example.com")

	events, err := store.GetByUser(ctx, "user-ip", 1)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].IP != "203.0.113.9" {
		t.Errorf("IP: got %q, want %q", events[0].IP, "203.0.113.9")
	}
}
