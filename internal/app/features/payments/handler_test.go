package payments

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	membershipstore "github.com/ourthirdplace/thirdplace/internal/app/store/memberships"
	profilestore "github.com/ourthirdplace/thirdplace/internal/app/store/profiles"
	gateway "github.com/ourthirdplace/thirdplace/internal/app/system/payments"
	"github.com/ourthirdplace/thirdplace/internal/domain/models"
	"github.com/ourthirdplace/thirdplace/internal/testutil"
	"go.uber.org/zap"
)

type testEnv struct {
	h           *Handler
	gw          *testutil.FakePaymentGateway
	memberships *membershipstore.Store
	profiles    *profilestore.Store
	fixtures    *testutil.Fixtures
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	memberships := membershipstore.New(db)
	profiles := profilestore.New(db)
	gw := testutil.NewFakePaymentGateway()
	return &testEnv{
		h:           NewHandler(memberships, profiles, gw, nil, zap.NewNop()),
		gw:          gw,
		memberships: memberships,
		profiles:    profiles,
		fixtures:    testutil.NewFixtures(t, db),
	}
}

// seedPendingSignup plants the state signup and checkout leave behind.
func (e *testEnv) seedPendingSignup(t *testing.T, userID, sessionID string) {
	t.Helper()

	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := e.profiles.Insert(ctx, models.Profile{
		UserID:   userID,
		FullName: "Pending Member",
		Email:    userID + "@example.com",
		Status:   models.ProfilePending,
	}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	e.fixtures.CreatePendingMembership(ctx, userID, models.TierMonthly, sessionID)
}

func completedEvent(userID, sessionID string) *gateway.Event {
	return &gateway.Event{
		ID:   "evt_1",
		Type: gateway.EventCheckoutCompleted,
		Session: &gateway.CheckoutSession{
			ID:              sessionID,
			PaymentStatus:   gateway.StatusPaid,
			PaymentIntentID: "pi_123",
			AmountTotal:     1500,
			Currency:        "usd",
			Metadata:        map[string]string{"user_id": userID},
		},
	}
}

func postWebhook(h *Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader("{}"))
	req.Header.Set("Stripe-Signature", "t=1,v1=sig")
	rec := httptest.NewRecorder()
	h.HandleWebhook(rec, req)
	return rec
}

func TestWebhookActivatesMembership(t *testing.T) {
	env := newTestEnv(t)
	env.seedPendingSignup(t, "user-1", "cs_123")
	env.gw.ParsedEvent = completedEvent("user-1", "cs_123")

	rec := postWebhook(env.h)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()

	m, err := env.memberships.GetByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("membership lookup failed: %v", err)
	}
	if m.Status != models.MembershipActive {
		t.Errorf("membership status: got %q, want active", m.Status)
	}
	if m.PaymentIntentID != "pi_123" {
		t.Errorf("payment intent: got %q, want pi_123", m.PaymentIntentID)
	}
	if m.PeriodEnd == nil {
		t.Error("expected a billing period end")
	}

	p, err := env.profiles.GetByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("profile lookup failed: %v", err)
	}
	if p.Status != models.ProfileActive {
		t.Errorf("profile status: got %q, want active", p.Status)
	}
}

func TestWebhookActivatesWhenSessionNeverAttached(t *testing.T) {
	env := newTestEnv(t)
	// The attach write during checkout creation is tolerated to fail, so the
	// webhook can arrive while the membership carries no session id. The paid
	// session must still activate, off the user id in its metadata.
	env.seedPendingSignup(t, "user-1", "")
	env.gw.ParsedEvent = completedEvent("user-1", "cs_123")

	rec := postWebhook(env.h)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()

	m, err := env.memberships.GetByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("membership lookup failed: %v", err)
	}
	if m.Status != models.MembershipActive {
		t.Errorf("membership status: got %q, want active", m.Status)
	}
	if m.SessionID != "cs_123" {
		t.Errorf("session id: got %q, want cs_123", m.SessionID)
	}

	p, err := env.profiles.GetByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("profile lookup failed: %v", err)
	}
	if p.Status != models.ProfileActive {
		t.Errorf("profile status: got %q, want active", p.Status)
	}
}

func TestWebhookRedeliveryIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.seedPendingSignup(t, "user-1", "cs_123")
	env.gw.ParsedEvent = completedEvent("user-1", "cs_123")

	if rec := postWebhook(env.h); rec.Code != http.StatusOK {
		t.Fatalf("first delivery: got %d, want 200", rec.Code)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	first, err := env.memberships.GetByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("membership lookup failed: %v", err)
	}

	if rec := postWebhook(env.h); rec.Code != http.StatusOK {
		t.Fatalf("second delivery: got %d, want 200", rec.Code)
	}

	second, err := env.memberships.GetByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("membership lookup failed: %v", err)
	}

	if second.Status != models.MembershipActive {
		t.Errorf("status after redelivery: got %q, want active", second.Status)
	}
	if second.PaymentIntentID != first.PaymentIntentID {
		t.Errorf("payment intent changed on redelivery: %q != %q", second.PaymentIntentID, first.PaymentIntentID)
	}
	if first.ActivatedAt == nil || second.ActivatedAt == nil || !second.ActivatedAt.Equal(*first.ActivatedAt) {
		t.Errorf("activation timestamp changed on redelivery: %v != %v", second.ActivatedAt, first.ActivatedAt)
	}
}

func TestWebhookBadSignature(t *testing.T) {
	env := newTestEnv(t)
	env.seedPendingSignup(t, "user-1", "cs_123")
	env.gw.ParseErr = gateway.ErrSignature

	rec := postWebhook(env.h)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}

	// No state change.
	ctx, cancel := testutil.TestContext()
	defer cancel()
	m, err := env.memberships.GetByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("membership lookup failed: %v", err)
	}
	if m.Status != models.MembershipPending {
		t.Errorf("membership status: got %q, want pending", m.Status)
	}
}

func TestWebhookUnknownEventType(t *testing.T) {
	env := newTestEnv(t)
	env.seedPendingSignup(t, "user-1", "cs_123")
	env.gw.ParsedEvent = &gateway.Event{ID: "evt_9", Type: "invoice.finalized"}

	rec := postWebhook(env.h)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	m, err := env.memberships.GetByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("membership lookup failed: %v", err)
	}
	if m.Status != models.MembershipPending {
		t.Errorf("membership status: got %q, want pending", m.Status)
	}
}

func TestWebhookSubscriptionDeleted(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	env.fixtures.CreateMembership(ctx, "user-1", models.TierMonthly, models.MembershipActive)

	env.gw.ParsedEvent = &gateway.Event{
		ID:   "evt_2",
		Type: gateway.EventSubscriptionDeleted,
		Subscription: &gateway.Subscription{
			ID:       "sub_1",
			Metadata: map[string]string{"user_id": "user-1"},
		},
	}

	rec := postWebhook(env.h)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}

	m, err := env.memberships.GetByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("membership lookup failed: %v", err)
	}
	if m.Status != models.MembershipCancelled {
		t.Errorf("membership status: got %q, want cancelled", m.Status)
	}
}

func postConfirm(t *testing.T, h *Handler, sessionID string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(map[string]string{"session_id": sessionID})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/payment-success", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.HandleConfirm(rec, req)
	return rec
}

func TestConfirmActivatesPaidSession(t *testing.T) {
	env := newTestEnv(t)
	env.seedPendingSignup(t, "user-1", "")

	ctx, cancel := testutil.TestContext()
	defer cancel()

	sess, err := env.gw.CreateCheckoutSession(ctx, gateway.CheckoutRequest{
		Amount:          1500,
		Currency:        "usd",
		ClientReference: "user-1",
		Metadata:        map[string]string{"user_id": "user-1"},
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := env.memberships.AttachSession(ctx, "user-1", sess.ID, 1500, "usd"); err != nil {
		t.Fatalf("attach session: %v", err)
	}
	env.gw.MarkPaid(sess.ID, "pi_999")

	rec := postConfirm(t, env.h, sess.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	m, err := env.memberships.GetByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("membership lookup failed: %v", err)
	}
	if m.Status != models.MembershipActive {
		t.Errorf("membership status: got %q, want active", m.Status)
	}
	if m.PaymentIntentID != "pi_999" {
		t.Errorf("payment intent: got %q, want pi_999", m.PaymentIntentID)
	}
}

func TestConfirmRejectsUnpaidSession(t *testing.T) {
	env := newTestEnv(t)
	env.seedPendingSignup(t, "user-1", "")

	ctx, cancel := testutil.TestContext()
	defer cancel()

	sess, err := env.gw.CreateCheckoutSession(ctx, gateway.CheckoutRequest{
		Amount:          1500,
		Currency:        "usd",
		ClientReference: "user-1",
		Metadata:        map[string]string{"user_id": "user-1"},
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := env.memberships.AttachSession(ctx, "user-1", sess.ID, 1500, "usd"); err != nil {
		t.Fatalf("attach session: %v", err)
	}
	// Session stays unpaid.

	rec := postConfirm(t, env.h, sess.ID)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want 409 (body %s)", rec.Code, rec.Body.String())
	}

	m, err := env.memberships.GetByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("membership lookup failed: %v", err)
	}
	if m.Status != models.MembershipPending {
		t.Errorf("membership status: got %q, want pending", m.Status)
	}
}

func TestConfirmMissingSessionID(t *testing.T) {
	env := newTestEnv(t)

	rec := postConfirm(t, env.h, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
}
