// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/ourthirdplace/thirdplace/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when no membership exists for the user.
	ErrNotFound = errors.New("membership not found")
	// ErrDuplicateMembership is returned when the user already has a
	// membership record.
	ErrDuplicateMembership = errors.New("membership already exists for this user")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("memberships")}
}

// Insert creates a pending membership for the user. One membership per
// identity is enforced by the unique index on user_id.
func (s *Store) Insert(ctx context.Context, m models.Membership) error {
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	if m.Status == "" {
		m.Status = models.MembershipPending
	}

	_, err := s.c.InsertOne(ctx, m)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateMembership
		}
		return err
	}
	return nil
}

// GetByUserID returns the membership for the identity, or ErrNotFound.
func (s *Store) GetByUserID(ctx context.Context, userID string) (*models.Membership, error) {
	var m models.Membership
	err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetBySessionID looks a membership up by the checkout session that is
// paying for it.
func (s *Store) GetBySessionID(ctx context.Context, sessionID string) (*models.Membership, error) {
	var m models.Membership
	err := s.c.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// AttachSession records the checkout session created for a pending
// membership, along with the quoted amount.
func (s *Store) AttachSession(ctx context.Context, userID, sessionID string, amount int64, currency string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": userID, "status": models.MembershipPending},
		bson.M{"$set": bson.M{
			"session_id": sessionID,
			"amount_due": amount,
			"currency":   currency,
			"updated_at": time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ActivateParams carries the payment facts recorded at activation.
type ActivateParams struct {
	SessionID       string
	PaymentIntentID string
	AmountPaid      int64
	Currency        string
	PeriodEnd       time.Time
}

// Activate flips a pending membership to active, recording the session id
// alongside the payment facts. Writing the session id here means a paid
// session still activates even when the earlier AttachSession write was
// lost. The filter matches only a pending membership, so the webhook and the
// client-side confirmation can both call it: whichever arrives second matches
// zero documents and returns (false, nil), and the first activation's
// payment identifiers and timestamp survive untouched.
func (s *Store) Activate(ctx context.Context, userID string, p ActivateParams) (bool, error) {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"user_id": userID,
			"status":  models.MembershipPending,
		},
		bson.M{"$set": bson.M{
			"status":            models.MembershipActive,
			"session_id":        p.SessionID,
			"payment_intent_id": p.PaymentIntentID,
			"amount_paid":       p.AmountPaid,
			"currency":          p.Currency,
			"period_end":        p.PeriodEnd,
			"activated_at":      now,
			"updated_at":        now,
		}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// Cancel marks the membership cancelled. Cancelling an already-cancelled
// membership matches zero documents and reports false.
func (s *Store) Cancel(ctx context.Context, userID string) (bool, error) {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": userID, "status": models.MembershipActive},
		bson.M{"$set": bson.M{
			"status":       models.MembershipCancelled,
			"cancelled_at": now,
			"updated_at":   now,
		}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// Delete removes the membership document. Used only by the signup saga's
// compensating rollback; deleting a missing membership is a no-op.
func (s *Store) Delete(ctx context.Context, userID string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID})
	return err
}
