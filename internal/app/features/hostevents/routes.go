// internal/app/features/hostevents/routes.go
package hostevents

import (
	"github.com/go-chi/chi/v5"
	"github.com/ourthirdplace/thirdplace/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Use(auth.RequireRole("host", "admin"))
		r.Get("/", h.ServeMine)
		r.Post("/", h.HandleCreate)
	})
	return r
}
