// internal/app/features/signup/handler.go
package signup

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	validate "github.com/dalemusser/waffle/pantry/validate"
	membershipstore "github.com/ourthirdplace/thirdplace/internal/app/store/memberships"
	profilestore "github.com/ourthirdplace/thirdplace/internal/app/store/profiles"
	"github.com/ourthirdplace/thirdplace/internal/app/system/auditlog"
	"github.com/ourthirdplace/thirdplace/internal/app/system/httpjson"
	"github.com/ourthirdplace/thirdplace/internal/app/system/identity"
	"github.com/ourthirdplace/thirdplace/internal/app/system/normalize"
	"github.com/ourthirdplace/thirdplace/internal/app/system/saga"
	"github.com/ourthirdplace/thirdplace/internal/app/system/timeouts"
	"github.com/ourthirdplace/thirdplace/internal/domain/models"
	"go.uber.org/zap"
)

// ValidationError names the first request field that failed validation.
// Raised before any write happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

type Handler struct {
	Profiles    *profilestore.Store
	Memberships *membershipstore.Store
	Identity    identity.Store
	Audit       *auditlog.Logger
	Log         *zap.Logger
}

func NewHandler(profiles *profilestore.Store, memberships *membershipstore.Store, ids identity.Store, audit *auditlog.Logger, log *zap.Logger) *Handler {
	return &Handler{
		Profiles:    profiles,
		Memberships: memberships,
		Identity:    ids,
		Audit:       audit,
		Log:         log,
	}
}

// signupRequest is the POST /signup body.
type signupRequest struct {
	FullName        string   `json:"full_name"`
	Company         string   `json:"company"`
	NetworkURL      string   `json:"network_url"`
	Birthday        string   `json:"birthday"`
	City            string   `json:"city"`
	PrimaryLocation string   `json:"primary_location"`
	ExtraLocations  []string `json:"extra_locations"`
	Industries      []string `json:"industries"`
	Plan            string   `json:"plan"`
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	PasswordConfirm string   `json:"password_confirm"`
}

// validate checks required fields and returns the first problem found.
func (req *signupRequest) validate() *ValidationError {
	switch {
	case normalize.Name(req.FullName) == "":
		return &ValidationError{Field: "full_name", Message: "name is required"}
	case normalize.Name(req.Company) == "":
		return &ValidationError{Field: "company", Message: "company is required"}
	case normalize.Name(req.NetworkURL) == "":
		return &ValidationError{Field: "network_url", Message: "professional network URL is required"}
	case normalize.Name(req.Birthday) == "":
		return &ValidationError{Field: "birthday", Message: "birthday is required"}
	case normalize.Name(req.PrimaryLocation) == "":
		return &ValidationError{Field: "primary_location", Message: "primary location is required"}
	}

	tier := normalize.Tier(req.Plan)
	if tier != models.TierMonthly && tier != models.TierAnnual {
		return &ValidationError{Field: "plan", Message: `plan must be "monthly" or "annual"`}
	}

	email := normalize.Email(req.Email)
	if email == "" || !validate.SimpleEmailValid(email) {
		return &ValidationError{Field: "email", Message: "a valid email is required"}
	}

	if len(req.Password) < 6 {
		return &ValidationError{Field: "password", Message: "password must be at least 6 characters"}
	}
	if req.Password != req.PasswordConfirm {
		return &ValidationError{Field: "password_confirm", Message: "passwords do not match"}
	}

	return nil
}

// HandleSignup runs the account provisioning saga:
// identity → profile (pending) → membership (pending). A failure partway
// unwinds the earlier writes so no orphaned account is left behind.
//
// POST /signup
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if verr := req.validate(); verr != nil {
		httpjson.FieldError(w, http.StatusBadRequest, verr.Field, verr.Message)
		return
	}

	email := normalize.Email(req.Email)
	tier := normalize.Tier(req.Plan)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "signup")
	defer cancel()

	var user *identity.User

	s := saga.New("signup", h.Log)
	s.AddStep(saga.Step{
		Name: "create identity",
		Run: func(ctx context.Context) error {
			u, err := h.Identity.CreateUser(ctx, email, req.Password)
			if err != nil {
				return err
			}
			user = u
			return nil
		},
		Compensate: func(ctx context.Context) error {
			return h.Identity.DeleteUser(ctx, user.ID)
		},
	})
	s.AddStep(saga.Step{
		Name: "create profile",
		Run: func(ctx context.Context) error {
			return h.Profiles.Insert(ctx, models.Profile{
				UserID:     user.ID,
				FullName:   normalize.Name(req.FullName),
				Company:    normalize.Name(req.Company),
				NetworkURL: normalize.Name(req.NetworkURL),
				Email:      email,
				Birthday:   normalize.Name(req.Birthday),
				City:       normalize.Name(req.City),
				Industries: req.Industries,
				Tier:       tier,
				Status:     models.ProfilePending,
				Role:       "member",
			})
		},
		Compensate: func(ctx context.Context) error {
			return h.Profiles.Delete(ctx, user.ID)
		},
	})
	s.AddStep(saga.Step{
		Name: "create membership",
		Run: func(ctx context.Context) error {
			return h.Memberships.Insert(ctx, models.Membership{
				UserID:          user.ID,
				Tier:            tier,
				Status:          models.MembershipPending,
				PrimaryLocation: normalize.Name(req.PrimaryLocation),
				ExtraLocations:  req.ExtraLocations,
			})
		},
		// Final step: nothing after it can fail.
	})

	if err := s.Execute(ctx); err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			httpjson.FieldError(w, http.StatusConflict, "email", "email already registered")
			return
		}
		h.Log.Error("signup failed", zap.String("email", email), zap.Error(err))
		h.Audit.SignupRolledBack(ctx, r, email, err.Error())
		httpjson.Error(w, http.StatusBadGateway, "could not complete signup")
		return
	}

	h.Audit.SignupCompleted(ctx, r, user.ID, tier)
	h.Log.Info("signup completed",
		zap.String("user_id", user.ID),
		zap.String("tier", tier))

	httpjson.Write(w, http.StatusCreated, map[string]string{
		"user_id": user.ID,
		"email":   user.Email,
		"status":  models.MembershipPending,
	})
}
