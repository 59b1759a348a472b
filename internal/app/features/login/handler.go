// internal/app/features/login/handler.go
package login

import (
	"errors"
	"net/http"

	"github.com/ourthirdplace/thirdplace/internal/app/store/audit"
	profilestore "github.com/ourthirdplace/thirdplace/internal/app/store/profiles"
	"github.com/ourthirdplace/thirdplace/internal/app/system/auditlog"
	"github.com/ourthirdplace/thirdplace/internal/app/system/auth"
	"github.com/ourthirdplace/thirdplace/internal/app/system/httpjson"
	"github.com/ourthirdplace/thirdplace/internal/app/system/identity"
	"github.com/ourthirdplace/thirdplace/internal/app/system/normalize"
	"github.com/ourthirdplace/thirdplace/internal/app/system/ratelimit"
	"github.com/ourthirdplace/thirdplace/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler signs members in with email and password. The identity provider
// verifies the credentials; the profile supplies the display name and role
// stored in the session.
type Handler struct {
	Identity identity.Store
	Profiles *profilestore.Store
	Audit    *auditlog.Logger
	Limiter  *ratelimit.LoginLimiter
	Log      *zap.Logger
}

func NewHandler(ids identity.Store, profiles *profilestore.Store, audit *auditlog.Logger, log *zap.Logger) *Handler {
	return &Handler{
		Identity: ids,
		Profiles: profiles,
		Audit:    audit,
		Limiter:  ratelimit.NewLoginLimiter(),
		Log:      log,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and establishes a session.
//
// POST /login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := normalize.Email(req.Email)
	if email == "" || req.Password == "" {
		httpjson.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	if allowed, reason := h.Limiter.Check(r, email); !allowed {
		httpjson.Error(w, http.StatusTooManyRequests, reason)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "login")
	defer cancel()

	idu, err := h.Identity.VerifyPassword(ctx, email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrBadCredentials) {
			h.Audit.LoginFailed(ctx, r, audit.EventLoginFailedWrongPassword, email, "bad credentials")
			httpjson.Error(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.Log.Error("identity verify failed", zap.String("email", email), zap.Error(err))
		httpjson.Error(w, http.StatusBadGateway, "sign-in is temporarily unavailable")
		return
	}

	p, err := h.Profiles.GetByUserID(ctx, idu.ID)
	if err != nil {
		if err == profilestore.ErrNotFound {
			// Identity exists without a profile; the signup never finished.
			h.Audit.LoginFailed(ctx, r, audit.EventLoginFailedUserNotFound, email, "no profile")
			httpjson.Error(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.Log.Error("profile lookup failed", zap.String("user_id", idu.ID), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not load profile")
		return
	}

	u := auth.SessionUser{ID: idu.ID, Name: p.FullName, Email: p.Email, Role: p.Role}
	if err := auth.SignIn(w, r, u); err != nil {
		h.Log.Error("session save failed", zap.String("user_id", idu.ID), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not establish session")
		return
	}

	h.Limiter.ResetEmail(email)
	h.Audit.LoginSuccess(ctx, r, idu.ID, "password", email)
	httpjson.Write(w, http.StatusOK, map[string]string{
		"user_id": idu.ID,
		"status":  p.Status,
		"role":    p.Role,
	})
}
