// internal/app/features/payments/webhook.go
package payments

import (
	"errors"
	"io"
	"net/http"

	"github.com/ourthirdplace/thirdplace/internal/app/system/httpjson"
	"github.com/ourthirdplace/thirdplace/internal/app/system/limits"
	gateway "github.com/ourthirdplace/thirdplace/internal/app/system/payments"
	"github.com/ourthirdplace/thirdplace/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleWebhook processes processor-pushed events.
//
// POST /webhooks/payment
//
// Only a signature failure gets a 4xx. Everything else, including event
// types we do not handle, is acknowledged with 200 so the processor stops
// redelivering.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, limits.MaxWebhookBodySize))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "could not read body")
		return
	}

	event, err := h.Gateway.ParseWebhook(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, gateway.ErrSignature) {
			h.Log.Warn("webhook signature verification failed", zap.Error(err))
			httpjson.Error(w, http.StatusBadRequest, "signature verification failed")
			return
		}
		h.Log.Warn("webhook payload unreadable", zap.Error(err))
		httpjson.Error(w, http.StatusBadRequest, "invalid payload")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "payment webhook")
	defer cancel()

	switch event.Type {
	case gateway.EventCheckoutCompleted:
		sess := event.Session
		userID := userIDFromSession(sess)
		if userID == "" {
			h.Log.Error("checkout completed event without identity reference",
				zap.String("event_id", event.ID))
			// Acknowledge: redelivery cannot add the missing metadata.
			break
		}
		if err := h.activate(ctx, userID, sess, "webhook"); err != nil {
			h.Log.Error("webhook activation failed",
				zap.String("event_id", event.ID),
				zap.String("user_id", userID),
				zap.Error(err))
			// 5xx so the processor redelivers once the store is back.
			httpjson.Error(w, http.StatusInternalServerError, "activation failed")
			return
		}

	case gateway.EventSubscriptionDeleted:
		sub := event.Subscription
		userID := ""
		if sub != nil {
			userID = sub.Metadata["user_id"]
		}
		if userID == "" {
			h.Log.Error("subscription deleted event without identity reference",
				zap.String("event_id", event.ID))
			break
		}
		cancelled, err := h.Memberships.Cancel(ctx, userID)
		if err != nil {
			h.Log.Error("membership cancellation failed",
				zap.String("event_id", event.ID),
				zap.String("user_id", userID),
				zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "cancellation failed")
			return
		}
		if cancelled {
			h.Audit.MembershipCancelled(ctx, userID, sub.ID)
			h.Log.Info("membership cancelled",
				zap.String("user_id", userID),
				zap.String("subscription_id", sub.ID))
		}

	default:
		h.Log.Info("ignoring webhook event",
			zap.String("event_id", event.ID),
			zap.String("type", event.Type))
	}

	httpjson.Write(w, http.StatusOK, map[string]string{"received": "true"})
}
