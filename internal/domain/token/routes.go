package token

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns token router
func (h *Handler) Routes(authMiddleware, ownerMiddleware, kycMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/{propertyId}", h.Get)
		r.Get("/holdings", h.ListHoldings)
		r.Get("/transfers", h.ListTransfers)

		r.Group(func(r chi.Router) {
			r.Use(ownerMiddleware)
			r.Post("/", h.Create)
		})

		r.Group(func(r chi.Router) {
			r.Use(kycMiddleware)
			r.Post("/associate", h.Associate)
			r.Get("/{propertyId}/balance", h.Balance)
		})
	})

	return r
}
