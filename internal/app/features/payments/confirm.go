// internal/app/features/payments/confirm.go
package payments

import (
	"net/http"
	"strings"

	"github.com/ourthirdplace/thirdplace/internal/app/system/httpjson"
	gateway "github.com/ourthirdplace/thirdplace/internal/app/system/payments"
	"github.com/ourthirdplace/thirdplace/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// confirmRequest is the POST /payment-success body.
type confirmRequest struct {
	SessionID string `json:"session_id"`
}

// HandleConfirm is the client-side fallback for when the user returns from
// the hosted page before (or without) the webhook arriving. The session is
// re-fetched from the processor; the client's word is never trusted.
//
// POST /payment-success
func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		httpjson.FieldError(w, http.StatusBadRequest, "session_id", "session reference is required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "payment confirmation")
	defer cancel()

	sess, err := h.Gateway.GetCheckoutSession(ctx, req.SessionID)
	if err != nil {
		h.Log.Error("session re-fetch failed",
			zap.String("session_id", req.SessionID),
			zap.Error(err))
		httpjson.Error(w, http.StatusBadGateway, "could not verify payment")
		return
	}

	if sess.PaymentStatus != gateway.StatusPaid {
		h.Log.Warn("confirmation for unpaid session",
			zap.String("session_id", req.SessionID),
			zap.String("payment_status", sess.PaymentStatus))
		httpjson.Error(w, http.StatusConflict, ErrPaymentIncomplete.Error())
		return
	}

	userID := userIDFromSession(sess)
	if userID == "" {
		h.Log.Error("paid session without identity reference",
			zap.String("session_id", req.SessionID))
		httpjson.Error(w, http.StatusUnprocessableEntity, "session carries no account reference")
		return
	}

	if err := h.activate(ctx, userID, sess, "client_confirmation"); err != nil {
		h.Log.Error("confirmation activation failed",
			zap.String("session_id", req.SessionID),
			zap.String("user_id", userID),
			zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "activation failed")
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]string{
		"user_id": userID,
		"status":  "active",
	})
}
