package property

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns property router
func (h *Handler) Routes(authMiddleware, ownerMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Public browsing
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	// Owner routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/mine", h.ListMine)

		r.Group(func(r chi.Router) {
			r.Use(ownerMiddleware)
			r.Post("/", h.Create)
			r.Patch("/{id}", h.Update)
			r.Patch("/{id}/status", h.ChangeStatus)
		})
	})

	return r
}
