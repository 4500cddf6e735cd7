package market

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns market router. Trading endpoints additionally require
// a passed KYC check.
func (h *Handler) Routes(authMiddleware, kycMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Book views are public
	r.Get("/{propertyId}/depth", h.Depth)
	r.Get("/{propertyId}/estimate", h.Estimate)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/orders", h.ListMine)
		r.Get("/fills/{reference}", h.GetFill)

		r.Group(func(r chi.Router) {
			r.Use(kycMiddleware)
			r.Post("/orders", h.PlaceOrder)
			r.Post("/orders/{id}/cancel", h.CancelOrder)
		})
	})

	return r
}
