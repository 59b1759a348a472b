// internal/app/features/checkout/routes.go
package checkout

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleCreate)
	r.Get("/discounts", h.HandleDiscounts)
	return r
}
