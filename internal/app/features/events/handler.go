// internal/app/features/events/handler.go
package events

import (
	"net/http"
	"time"

	eventstore "github.com/ourthirdplace/thirdplace/internal/app/store/events"
	membershipstore "github.com/ourthirdplace/thirdplace/internal/app/store/memberships"
	registrationstore "github.com/ourthirdplace/thirdplace/internal/app/store/registrations"
	"github.com/ourthirdplace/thirdplace/internal/app/system/auditlog"
	"github.com/ourthirdplace/thirdplace/internal/app/system/auth"
	"github.com/ourthirdplace/thirdplace/internal/app/system/httpjson"
	"github.com/ourthirdplace/thirdplace/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// listLimit caps the upcoming-events listing.
const listLimit = 100

type Handler struct {
	Events        *eventstore.Store
	Registrations *registrationstore.Store
	Memberships   *membershipstore.Store
	Audit         *auditlog.Logger
	Log           *zap.Logger
}

func NewHandler(events *eventstore.Store, registrations *registrationstore.Store, memberships *membershipstore.Store, audit *auditlog.Logger, log *zap.Logger) *Handler {
	return &Handler{
		Events:        events,
		Registrations: registrations,
		Memberships:   memberships,
		Audit:         audit,
		Log:           log,
	}
}

// eventView is one row of the listing.
type eventView struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	StartsAt   time.Time `json:"starts_at"`
	Location   string    `json:"location"`
	Industry   string    `json:"industry,omitempty"`
	Capacity   int       `json:"capacity"`
	Confirmed  int64     `json:"confirmed"`
	Full       bool      `json:"full"`
	Registered bool      `json:"registered"`
}

// ServeList renders upcoming events with confirmed counts and the caller's
// own registration state. Counts are computed from the ledger at read time;
// capacity is compared here, not enforced at write time.
//
// GET /events
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list events")
	defer cancel()

	now := time.Now().UTC()
	events, err := h.Events.ListUpcoming(ctx, now, listLimit)
	if err != nil {
		h.Log.Error("event listing failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load events")
		return
	}

	ids := make([]primitive.ObjectID, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	counts, err := h.Registrations.CountConfirmedForEvents(ctx, ids)
	if err != nil {
		h.Log.Error("registration counts failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load events")
		return
	}

	mine, err := h.Registrations.ListConfirmedByUser(ctx, user.ID)
	if err != nil {
		h.Log.Error("own registrations lookup failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load events")
		return
	}
	registered := make(map[primitive.ObjectID]bool, len(mine))
	for _, reg := range mine {
		registered[reg.EventID] = true
	}

	views := make([]eventView, len(events))
	for i, e := range events {
		count := counts[e.ID]
		views[i] = eventView{
			ID:         e.ID.Hex(),
			Title:      e.Title,
			StartsAt:   e.StartsAt,
			Location:   e.Location,
			Industry:   e.Industry,
			Capacity:   e.Capacity,
			Confirmed:  count,
			Full:       e.Capacity > 0 && count >= int64(e.Capacity),
			Registered: registered[e.ID],
		}
	}

	httpjson.Write(w, http.StatusOK, map[string]any{"events": views})
}
