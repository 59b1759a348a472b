// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/ourthirdplace/thirdplace/internal/app/system/auditlog"
	"github.com/ourthirdplace/thirdplace/internal/app/system/auth"
	"github.com/ourthirdplace/thirdplace/internal/app/system/httpjson"
	"go.uber.org/zap"
)

type Handler struct {
	Audit *auditlog.Logger
	Log   *zap.Logger
}

func NewHandler(audit *auditlog.Logger, log *zap.Logger) *Handler {
	return &Handler{Audit: audit, Log: log}
}

// HandleLogout clears the session. Safe to call when not signed in.
//
// POST /logout
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	user, signedIn := auth.CurrentUser(r)

	if err := auth.SignOut(w, r); err != nil {
		h.Log.Error("session clear failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "could not sign out")
		return
	}

	if signedIn {
		h.Audit.Logout(r.Context(), r, user.ID)
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "signed_out"})
}
