package membershipstore_test

import (
	"testing"
	"time"

	membershipstore "github.com/ourthirdplace/thirdplace/internal/app/store/memberships"
	"github.com/ourthirdplace/thirdplace/internal/app/system/indexes"
	"github.com/ourthirdplace/thirdplace/internal/domain/models"
	"github.com/ourthirdplace/thirdplace/internal/testutil"
)

func TestInsertAndGetByUserID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	m := models.Membership{
		UserID:          "user-1",
		Tier:            models.TierMonthly,
		PrimaryLocation: "Columbia",
	}
	if err := store.Insert(ctx, m); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetByUserID failed: %v", err)
	}
	if got.Status != models.MembershipPending {
		t.Errorf("Status: got %q, want %q", got.Status, models.MembershipPending)
	}
	if got.Tier != models.TierMonthly {
		t.Errorf("Tier: got %q, want %q", got.Tier, models.TierMonthly)
	}

	if _, err := store.GetByUserID(ctx, "nope"); err != membershipstore.ErrNotFound {
		t.Errorf("missing user: got %v, want ErrNotFound", err)
	}
}

func TestInsertDuplicateUserID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	m := models.Membership{UserID: "user-1", Tier: models.TierMonthly}
	if err := store.Insert(ctx, m); err != nil {
		t.Fatalf("first Insert failed: %v", err)
	}
	if err := store.Insert(ctx, m); err != membershipstore.ErrDuplicateMembership {
		t.Errorf("duplicate Insert: got %v, want ErrDuplicateMembership", err)
	}
}

func TestAttachSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	m := fixtures.CreateMembership(ctx, "user-1", models.TierAnnual, models.MembershipPending)

	if err := store.AttachSession(ctx, m.UserID, "cs_123", 14400, "usd"); err != nil {
		t.Fatalf("AttachSession failed: %v", err)
	}

	got, err := store.GetBySessionID(ctx, "cs_123")
	if err != nil {
		t.Fatalf("GetBySessionID failed: %v", err)
	}
	if got.UserID != m.UserID {
		t.Errorf("UserID: got %q, want %q", got.UserID, m.UserID)
	}
	if got.AmountDue != 14400 {
		t.Errorf("AmountDue: got %d, want 14400", got.AmountDue)
	}

	// No pending membership for this user: ErrNotFound.
	if err := store.AttachSession(ctx, "absent-user", "cs_456", 1500, "usd"); err != membershipstore.ErrNotFound {
		t.Errorf("AttachSession for missing user: got %v, want ErrNotFound", err)
	}
}

func TestActivate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	m := fixtures.CreatePendingMembership(ctx, "user-1", models.TierMonthly, "cs_123")

	params := membershipstore.ActivateParams{
		SessionID:       "cs_123",
		PaymentIntentID: "pi_456",
		AmountPaid:      1500,
		Currency:        "usd",
		PeriodEnd:       time.Now().UTC().AddDate(0, 1, 0),
	}

	activated, err := store.Activate(ctx, m.UserID, params)
	if err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if !activated {
		t.Fatal("expected first Activate to report true")
	}

	got, err := store.GetByUserID(ctx, m.UserID)
	if err != nil {
		t.Fatalf("GetByUserID failed: %v", err)
	}
	if got.Status != models.MembershipActive {
		t.Errorf("Status: got %q, want %q", got.Status, models.MembershipActive)
	}
	if got.PaymentIntentID != "pi_456" {
		t.Errorf("PaymentIntentID: got %q, want %q", got.PaymentIntentID, "pi_456")
	}
	if got.ActivatedAt == nil {
		t.Error("expected ActivatedAt to be set")
	}
	if got.AmountPaid != 1500 {
		t.Errorf("AmountPaid: got %d, want 1500", got.AmountPaid)
	}
}

func TestActivateIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	m := fixtures.CreatePendingMembership(ctx, "user-1", models.TierMonthly, "cs_123")

	params := membershipstore.ActivateParams{
		SessionID:       "cs_123",
		PaymentIntentID: "pi_456",
		AmountPaid:      1500,
		Currency:        "usd",
		PeriodEnd:       time.Now().UTC().AddDate(0, 1, 0),
	}

	// Webhook path activates first.
	activated, err := store.Activate(ctx, m.UserID, params)
	if err != nil {
		t.Fatalf("first Activate failed: %v", err)
	}
	if !activated {
		t.Fatal("expected first Activate to report true")
	}

	// Client-side confirmation arrives second: nothing to do, no error.
	activated, err = store.Activate(ctx, m.UserID, params)
	if err != nil {
		t.Fatalf("second Activate failed: %v", err)
	}
	if activated {
		t.Error("expected second Activate to report false")
	}
}

func TestActivateRecordsSessionWhenNeverAttached(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	// The attach write after checkout creation can be lost; the membership
	// then sits pending with no session id. Activation must still land.
	m := fixtures.CreatePendingMembership(ctx, "user-1", models.TierMonthly, "")

	activated, err := store.Activate(ctx, m.UserID, membershipstore.ActivateParams{
		SessionID:       "cs_123",
		PaymentIntentID: "pi_456",
		AmountPaid:      1500,
		Currency:        "usd",
		PeriodEnd:       time.Now().UTC().AddDate(0, 1, 0),
	})
	if err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if !activated {
		t.Fatal("expected Activate to report true for a pending membership without a session id")
	}

	got, err := store.GetByUserID(ctx, m.UserID)
	if err != nil {
		t.Fatalf("GetByUserID failed: %v", err)
	}
	if got.Status != models.MembershipActive {
		t.Errorf("Status: got %q, want %q", got.Status, models.MembershipActive)
	}
	if got.SessionID != "cs_123" {
		t.Errorf("SessionID: got %q, want %q", got.SessionID, "cs_123")
	}
}

func TestActivatePreservesFirstActivation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	m := fixtures.CreatePendingMembership(ctx, "user-1", models.TierMonthly, "cs_123")

	first := membershipstore.ActivateParams{
		SessionID:       "cs_123",
		PaymentIntentID: "pi_first",
		AmountPaid:      1500,
		Currency:        "usd",
		PeriodEnd:       time.Now().UTC().AddDate(0, 1, 0),
	}
	if activated, err := store.Activate(ctx, m.UserID, first); err != nil || !activated {
		t.Fatalf("first Activate: activated=%v err=%v", activated, err)
	}

	// A later delivery carrying a different session must not rewrite the
	// payment facts already recorded.
	second := first
	second.SessionID = "cs_other"
	second.PaymentIntentID = "pi_second"
	activated, err := store.Activate(ctx, m.UserID, second)
	if err != nil {
		t.Fatalf("second Activate failed: %v", err)
	}
	if activated {
		t.Error("expected second Activate to report false")
	}

	got, err := store.GetByUserID(ctx, m.UserID)
	if err != nil {
		t.Fatalf("GetByUserID failed: %v", err)
	}
	if got.SessionID != "cs_123" || got.PaymentIntentID != "pi_first" {
		t.Errorf("payment facts rewritten: session %q intent %q", got.SessionID, got.PaymentIntentID)
	}
}

func TestCancel(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	m := fixtures.CreateMembership(ctx, "user-1", models.TierMonthly, models.MembershipActive)

	cancelled, err := store.Cancel(ctx, m.UserID)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if !cancelled {
		t.Fatal("expected Cancel to report true")
	}

	got, err := store.GetByUserID(ctx, m.UserID)
	if err != nil {
		t.Fatalf("GetByUserID failed: %v", err)
	}
	if got.Status != models.MembershipCancelled {
		t.Errorf("Status: got %q, want %q", got.Status, models.MembershipCancelled)
	}
	if got.CancelledAt == nil {
		t.Error("expected CancelledAt to be set")
	}

	// Cancelling again is a no-op.
	cancelled, err = store.Cancel(ctx, m.UserID)
	if err != nil {
		t.Fatalf("second Cancel failed: %v", err)
	}
	if cancelled {
		t.Error("expected second Cancel to report false")
	}
}

func TestDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	m := fixtures.CreateMembership(ctx, "user-1", models.TierMonthly, models.MembershipPending)

	if err := store.Delete(ctx, m.UserID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByUserID(ctx, m.UserID); err != membershipstore.ErrNotFound {
		t.Errorf("after Delete: got %v, want ErrNotFound", err)
	}
}
