// internal/app/features/events/register.go
package events

import (
	"net/http"

	eventstore "github.com/ourthirdplace/thirdplace/internal/app/store/events"
	membershipstore "github.com/ourthirdplace/thirdplace/internal/app/store/memberships"
	registrationstore "github.com/ourthirdplace/thirdplace/internal/app/store/registrations"
	"github.com/ourthirdplace/thirdplace/internal/app/system/auth"
	"github.com/ourthirdplace/thirdplace/internal/app/system/httpjson"
	"github.com/ourthirdplace/thirdplace/internal/app/system/timeouts"
	"github.com/ourthirdplace/thirdplace/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// registrationRequest is the body for register and deregister.
type registrationRequest struct {
	EventID string `json:"event_id"`
}

// HandleRegister adds the caller to an event's ledger. The duplicate check
// rides on the partial unique index, so two racing requests cannot both win.
//
// POST /events/register
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}

	var req registrationRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	eventID, err := primitive.ObjectIDFromHex(req.EventID)
	if err != nil {
		httpjson.FieldError(w, http.StatusBadRequest, "event_id", "invalid event reference")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "register for event")
	defer cancel()

	// Only paying members hold a place on the ledger.
	m, err := h.Memberships.GetByUserID(ctx, user.ID)
	if err != nil && err != membershipstore.ErrNotFound {
		h.Log.Error("membership lookup failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not register")
		return
	}
	if m == nil || m.Status != models.MembershipActive {
		httpjson.Error(w, http.StatusForbidden, "active membership required")
		return
	}

	if _, err := h.Events.GetByID(ctx, eventID); err != nil {
		if err == eventstore.ErrNotFound {
			httpjson.Error(w, http.StatusNotFound, "event not found")
			return
		}
		h.Log.Error("event lookup failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not register")
		return
	}

	if err := h.Registrations.Register(ctx, eventID, user.ID); err != nil {
		if err == registrationstore.ErrAlreadyRegistered {
			httpjson.Error(w, http.StatusConflict, err.Error())
			return
		}
		h.Log.Error("registration failed",
			zap.String("event_id", req.EventID),
			zap.String("user_id", user.ID),
			zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not register")
		return
	}

	h.Audit.RegistrationAdded(ctx, r, user.ID, req.EventID)
	httpjson.Write(w, http.StatusCreated, map[string]string{
		"event_id": req.EventID,
		"status":   "confirmed",
	})
}

// HandleDeregister cancels the caller's registration. Nothing to cancel is a
// no-op, not an error.
//
// POST /events/deregister
func (h *Handler) HandleDeregister(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}

	var req registrationRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	eventID, err := primitive.ObjectIDFromHex(req.EventID)
	if err != nil {
		httpjson.FieldError(w, http.StatusBadRequest, "event_id", "invalid event reference")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "deregister from event")
	defer cancel()

	cancelled, err := h.Registrations.Deregister(ctx, eventID, user.ID)
	if err != nil {
		h.Log.Error("deregistration failed",
			zap.String("event_id", req.EventID),
			zap.String("user_id", user.ID),
			zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not deregister")
		return
	}
	if cancelled {
		h.Audit.RegistrationCancelled(ctx, r, user.ID, req.EventID)
	}

	httpjson.Write(w, http.StatusOK, map[string]string{
		"event_id": req.EventID,
		"status":   "cancelled",
	})
}
