// internal/app/features/checkout/handler.go
package checkout

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	membershipstore "github.com/ourthirdplace/thirdplace/internal/app/store/memberships"
	"github.com/ourthirdplace/thirdplace/internal/app/system/auditlog"
	"github.com/ourthirdplace/thirdplace/internal/app/system/httpjson"
	"github.com/ourthirdplace/thirdplace/internal/app/system/normalize"
	"github.com/ourthirdplace/thirdplace/internal/app/system/payments"
	"github.com/ourthirdplace/thirdplace/internal/app/system/timeouts"
	"github.com/ourthirdplace/thirdplace/internal/domain/models"
	"go.uber.org/zap"
)

// ErrMissingIdentity is returned when the request carries no identity
// reference. Checked before any processor call.
var ErrMissingIdentity = errors.New("checkout: missing identity reference")

// CheckoutCreationError wraps a processor failure while creating a session.
// No local state has been mutated when it is raised.
type CheckoutCreationError struct {
	Err error
}

func (e *CheckoutCreationError) Error() string {
	return fmt.Sprintf("checkout session creation failed: %v", e.Err)
}

func (e *CheckoutCreationError) Unwrap() error { return e.Err }

type Handler struct {
	Memberships *membershipstore.Store
	Gateway     payments.Gateway
	Audit       *auditlog.Logger
	Log         *zap.Logger

	// SuccessURL and CancelURL are where the hosted page sends the user back.
	SuccessURL string
	CancelURL  string
	Currency   string
}

func NewHandler(memberships *membershipstore.Store, gw payments.Gateway, audit *auditlog.Logger, log *zap.Logger, successURL, cancelURL, currency string) *Handler {
	return &Handler{
		Memberships: memberships,
		Gateway:     gw,
		Audit:       audit,
		Log:         log,
		SuccessURL:  successURL,
		CancelURL:   cancelURL,
		Currency:    currency,
	}
}

// checkoutRequest is the POST /create-checkout-session body.
type checkoutRequest struct {
	UserID         string   `json:"user_id"`
	Plan           string   `json:"plan"`
	ExtraLocations []string `json:"extra_locations"`
	DiscountCode   string   `json:"discount_code"`
	Email          string   `json:"email"`
	Location       string   `json:"location"`
	Industries     []string `json:"industries"`
}

// HandleCreate prices the plan and asks the processor for a hosted
// subscription checkout session. The session id is recorded on the pending
// membership so both activation paths can match it later.
//
// POST /create-checkout-session
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.UserID) == "" {
		h.Log.Warn("checkout request without identity reference")
		httpjson.Error(w, http.StatusBadRequest, ErrMissingIdentity.Error())
		return
	}

	tier := normalize.Tier(req.Plan)
	if tier != models.TierMonthly && tier != models.TierAnnual {
		httpjson.FieldError(w, http.StatusBadRequest, "plan", `plan must be "monthly" or "annual"`)
		return
	}

	amount, applied := ComputeAmount(tier, len(req.ExtraLocations), req.DiscountCode)

	planName := "Our Third Place Monthly Membership"
	if tier == models.TierAnnual {
		planName = "Our Third Place Annual Membership"
	}
	metadata := map[string]string{
		"user_id":    req.UserID,
		"tier":       tier,
		"location":   req.Location,
		"industries": strings.Join(req.Industries, ","),
		"email":      normalize.Email(req.Email),
	}
	if applied != nil {
		metadata["discount_code"] = applied.Code
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "create checkout session")
	defer cancel()

	sess, err := h.Gateway.CreateCheckoutSession(ctx, payments.CheckoutRequest{
		PlanName:        planName,
		Amount:          amount,
		Currency:        h.Currency,
		Interval:        Interval(tier),
		SuccessURL:      h.SuccessURL,
		CancelURL:       h.CancelURL,
		ClientReference: req.UserID,
		CustomerEmail:   normalize.Email(req.Email),
		Metadata:        metadata,
	})
	if err != nil {
		cerr := &CheckoutCreationError{Err: err}
		h.Log.Error("checkout session creation failed",
			zap.String("user_id", req.UserID),
			zap.Error(err))
		httpjson.Error(w, http.StatusBadGateway, cerr.Error())
		return
	}

	// Record the session on the pending membership. A lost attach is not
	// fatal to the redirect: activation keys on the user id carried by the
	// session metadata and records the session id itself.
	if err := h.Memberships.AttachSession(ctx, req.UserID, sess.ID, amount, h.Currency); err != nil {
		h.Log.Warn("could not attach checkout session to membership",
			zap.String("user_id", req.UserID),
			zap.String("session_id", sess.ID),
			zap.Error(err))
	}

	h.Audit.CheckoutCreated(ctx, r, req.UserID, sess.ID, amount)

	httpjson.Write(w, http.StatusOK, map[string]any{
		"session_id": sess.ID,
		"url":        sess.URL,
		"amount":     amount,
		"currency":   h.Currency,
	})
}

// HandleDiscounts returns the discount table for display use.
//
// GET /create-checkout-session/discounts
func (h *Handler) HandleDiscounts(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, map[string]any{"discounts": Discounts()})
}
