// internal/app/features/payments/routes.go
package payments

import "github.com/go-chi/chi/v5"

// Routes mounts the confirmation fallback. The webhook endpoint is mounted
// separately in bootstrap so it can live outside the session middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleConfirm)
	return r
}
