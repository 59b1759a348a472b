// internal/app/features/profile/handler.go
package profile

import (
	"net/http"

	profilestore "github.com/ourthirdplace/thirdplace/internal/app/store/profiles"
	"github.com/ourthirdplace/thirdplace/internal/app/system/auditlog"
	"github.com/ourthirdplace/thirdplace/internal/app/system/auth"
	"github.com/ourthirdplace/thirdplace/internal/app/system/htmlsanitize"
	"github.com/ourthirdplace/thirdplace/internal/app/system/httpjson"
	"github.com/ourthirdplace/thirdplace/internal/app/system/normalize"
	"github.com/ourthirdplace/thirdplace/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler owns the member-facing profile endpoints.
type Handler struct {
	Profiles *profilestore.Store
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(profiles *profilestore.Store, audit *auditlog.Logger, log *zap.Logger) *Handler {
	return &Handler{Profiles: profiles, Audit: audit, Log: log}
}

// profileView is what a member sees of their own profile.
type profileView struct {
	FullName   string   `json:"full_name"`
	Company    string   `json:"company"`
	NetworkURL string   `json:"network_url"`
	Email      string   `json:"email"`
	City       string   `json:"city"`
	Industries []string `json:"industries"`
	Bio        string   `json:"bio"`
	Tier       string   `json:"tier"`
	Status     string   `json:"status"`
}

// ServeProfile returns the caller's own profile.
//
// GET /profile
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "load profile")
	defer cancel()

	p, err := h.Profiles.GetByUserID(ctx, user.ID)
	if err != nil {
		if err == profilestore.ErrNotFound {
			httpjson.Error(w, http.StatusNotFound, "profile not found")
			return
		}
		h.Log.Error("profile lookup failed", zap.String("user_id", user.ID), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load profile")
		return
	}

	httpjson.Write(w, http.StatusOK, profileView{
		FullName:   p.FullName,
		Company:    p.Company,
		NetworkURL: p.NetworkURL,
		Email:      p.Email,
		City:       p.City,
		Industries: p.Industries,
		Bio:        p.Bio,
		Tier:       p.Tier,
		Status:     p.Status,
	})
}

// updateRequest is the POST /profile body. Status, tier, and role are not
// accepted here; the activation workflow owns status and the membership
// record owns the tier.
type updateRequest struct {
	FullName   string   `json:"full_name"`
	Company    string   `json:"company"`
	NetworkURL string   `json:"network_url"`
	City       string   `json:"city"`
	Industries []string `json:"industries"`
	Bio        string   `json:"bio"`
}

// HandleUpdate applies a member's profile edit. Single-line fields are
// stripped of all markup; the bio keeps basic formatting but nothing that
// executes.
//
// POST /profile
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}

	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fullName := normalize.Name(htmlsanitize.StripTags(req.FullName))
	if fullName == "" {
		httpjson.FieldError(w, http.StatusBadRequest, "full_name", "name is required")
		return
	}

	industries := make([]string, 0, len(req.Industries))
	for _, ind := range req.Industries {
		if s := normalize.Name(htmlsanitize.StripTags(ind)); s != "" {
			industries = append(industries, s)
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update profile")
	defer cancel()

	err := h.Profiles.UpdateDetails(ctx, user.ID, profilestore.UpdateParams{
		FullName:   fullName,
		Company:    htmlsanitize.StripTags(req.Company),
		NetworkURL: htmlsanitize.StripTags(req.NetworkURL),
		City:       htmlsanitize.StripTags(req.City),
		Industries: industries,
		Bio:        htmlsanitize.Sanitize(req.Bio),
	})
	if err != nil {
		if err == profilestore.ErrNotFound {
			httpjson.Error(w, http.StatusNotFound, "profile not found")
			return
		}
		h.Log.Error("profile update failed", zap.String("user_id", user.ID), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not update profile")
		return
	}

	h.Audit.ProfileUpdated(ctx, r, user.ID)
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "updated"})
}
