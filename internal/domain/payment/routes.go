package payment

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns payment router. The webhook is mounted separately at
// the top level, outside authentication.
func (h *Handler) Routes(authMiddleware, kycMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/reservations", h.InitializeReservation)
		r.Get("/", h.ListMine)
		r.Get("/{reference}", h.Get)
		r.Post("/{reference}/verify", h.Verify)

		r.Group(func(r chi.Router) {
			r.Use(kycMiddleware)
			r.Post("/purchases", h.InitializePurchase)
		})
	})

	return r
}
