// internal/app/features/hostevents/handler.go
package hostevents

import (
	"net/http"
	"time"

	eventstore "github.com/ourthirdplace/thirdplace/internal/app/store/events"
	"github.com/ourthirdplace/thirdplace/internal/app/system/auditlog"
	"github.com/ourthirdplace/thirdplace/internal/app/system/auth"
	"github.com/ourthirdplace/thirdplace/internal/app/system/htmlsanitize"
	"github.com/ourthirdplace/thirdplace/internal/app/system/httpjson"
	"github.com/ourthirdplace/thirdplace/internal/app/system/timeouts"
	"github.com/ourthirdplace/thirdplace/internal/domain/models"
	"go.uber.org/zap"
)

// Handler owns event creation for hosts and admins.
type Handler struct {
	Events *eventstore.Store
	Audit  *auditlog.Logger
	Log    *zap.Logger
}

func NewHandler(events *eventstore.Store, audit *auditlog.Logger, log *zap.Logger) *Handler {
	return &Handler{Events: events, Audit: audit, Log: log}
}

type createRequest struct {
	Title    string    `json:"title"`
	StartsAt time.Time `json:"starts_at"`
	Location string    `json:"location"`
	Capacity int       `json:"capacity"`
	Industry string    `json:"industry"`
}

// HandleCreate creates a new event.
//
// POST /host/events
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}

	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	title := htmlsanitize.StripTags(req.Title)
	if title == "" {
		httpjson.FieldError(w, http.StatusBadRequest, "title", "title is required")
		return
	}
	if req.StartsAt.IsZero() {
		httpjson.FieldError(w, http.StatusBadRequest, "starts_at", "start time is required")
		return
	}
	if req.Capacity < 0 {
		httpjson.FieldError(w, http.StatusBadRequest, "capacity", "capacity cannot be negative")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create event")
	defer cancel()

	id, err := h.Events.Insert(ctx, models.Event{
		Title:     title,
		StartsAt:  req.StartsAt.UTC(),
		Location:  htmlsanitize.StripTags(req.Location),
		Capacity:  req.Capacity,
		Industry:  htmlsanitize.StripTags(req.Industry),
		CreatedBy: user.ID,
	})
	if err != nil {
		h.Log.Error("event insert failed", zap.String("user_id", user.ID), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not create event")
		return
	}

	h.Audit.EventCreated(ctx, r, user.ID, id.Hex(), title)
	httpjson.Write(w, http.StatusCreated, map[string]string{"event_id": id.Hex()})
}

// ServeMine lists the caller's own events, newest start first.
//
// GET /host/events
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list host events")
	defer cancel()

	events, err := h.Events.ListByCreator(ctx, user.ID)
	if err != nil {
		h.Log.Error("host event list failed", zap.String("user_id", user.ID), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load events")
		return
	}

	httpjson.Write(w, http.StatusOK, map[string]any{"events": events})
}
