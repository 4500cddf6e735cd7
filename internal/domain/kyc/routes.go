package kyc

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns kyc router
func (h *Handler) Routes(authMiddleware, adminMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Submit)
		r.Get("/status", h.Status)

		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware)
			r.Get("/pending", h.ListPending)
			r.Post("/{id}/approve", h.Approve)
			r.Post("/{id}/reject", h.Reject)
		})
	})

	return r
}
