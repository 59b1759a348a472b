// internal/app/features/payments/handler.go

// Package payments owns the two activation paths: the processor-pushed
// webhook and the client-side confirmation fallback. Both converge on the
// same idempotent activation, so their ordering does not matter.
package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	membershipstore "github.com/ourthirdplace/thirdplace/internal/app/store/memberships"
	profilestore "github.com/ourthirdplace/thirdplace/internal/app/store/profiles"
	"github.com/ourthirdplace/thirdplace/internal/app/system/auditlog"
	gateway "github.com/ourthirdplace/thirdplace/internal/app/system/payments"
	"github.com/ourthirdplace/thirdplace/internal/domain/models"
	"go.uber.org/zap"
)

// ErrPaymentIncomplete is returned by the confirmation fallback when the
// re-fetched session is not paid.
var ErrPaymentIncomplete = errors.New("payment not completed")

type Handler struct {
	Memberships *membershipstore.Store
	Profiles    *profilestore.Store
	Gateway     gateway.Gateway
	Audit       *auditlog.Logger
	Log         *zap.Logger
}

func NewHandler(memberships *membershipstore.Store, profiles *profilestore.Store, gw gateway.Gateway, audit *auditlog.Logger, log *zap.Logger) *Handler {
	return &Handler{
		Memberships: memberships,
		Profiles:    profiles,
		Gateway:     gw,
		Audit:       audit,
		Log:         log,
	}
}

// activate is the single activation transition both paths call. The
// conditional membership update matches only a pending membership, so a
// second delivery finds nothing to do and the first activation's payment
// identifiers and timestamp survive untouched. A zero-match result is only
// trusted after confirming the membership really left pending; otherwise
// the caller gets an error and the processor redelivers.
func (h *Handler) activate(ctx context.Context, userID string, sess *gateway.CheckoutSession, source string) error {
	m, err := h.Memberships.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}

	periodEnd := time.Now().UTC().AddDate(0, 1, 0)
	if m.Tier == models.TierAnnual {
		periodEnd = time.Now().UTC().AddDate(1, 0, 0)
	}

	activated, err := h.Memberships.Activate(ctx, userID, membershipstore.ActivateParams{
		SessionID:       sess.ID,
		PaymentIntentID: sess.PaymentIntentID,
		AmountPaid:      sess.AmountTotal,
		Currency:        sess.Currency,
		PeriodEnd:       periodEnd,
	})
	if err != nil {
		return err
	}
	if !activated {
		current, err := h.Memberships.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if current.Status == models.MembershipPending {
			return fmt.Errorf("membership for user %s still pending after activation attempt", userID)
		}
		h.Log.Info("membership already settled; nothing to do",
			zap.String("user_id", userID),
			zap.String("session_id", sess.ID),
			zap.String("membership_status", current.Status),
			zap.String("source", source))
		return nil
	}

	if err := h.Profiles.SetStatus(ctx, userID, models.ProfileActive); err != nil {
		// Membership is active; the profile flag is display state. Log and
		// let the next activation delivery or an operator repair it.
		h.Log.Error("profile status flip failed after activation",
			zap.String("user_id", userID),
			zap.Error(err))
	}

	h.Audit.MembershipActivated(ctx, nil, userID, sess.ID, source)
	h.Log.Info("membership activated",
		zap.String("user_id", userID),
		zap.String("session_id", sess.ID),
		zap.String("payment_intent_id", sess.PaymentIntentID),
		zap.Int64("amount", sess.AmountTotal),
		zap.String("source", source))
	return nil
}

// userIDFromSession recovers the identity reference the checkout step put on
// the session.
func userIDFromSession(sess *gateway.CheckoutSession) string {
	if sess == nil {
		return ""
	}
	if id := sess.Metadata["user_id"]; id != "" {
		return id
	}
	return sess.ClientReference
}
