package reservation

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns reservation router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/quote", h.Quote)
		r.Post("/", h.Create)
		r.Get("/", h.ListMine)
		r.Get("/{id}", h.Get)
		r.Post("/{id}/cancel", h.Cancel)
	})

	return r
}

// PropertyRoutes mounts the property-scoped reservation endpoints
// under /properties/{id}.
func (h *Handler) PropertyRoutes(authMiddleware func(http.Handler) http.Handler) func(r chi.Router) {
	return func(r chi.Router) {
		r.Get("/{id}/availability", h.Availability)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/{id}/reservations", h.ListForProperty)
		})
	}
}
