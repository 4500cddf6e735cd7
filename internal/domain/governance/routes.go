package governance

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GroupRoutes returns the /groups router
func (h *Handler) GroupRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.CreateGroup)
		r.Get("/", h.ListGroups)
		r.Post("/{id}/join", h.Join)
		r.Post("/{id}/leave", h.Leave)
		r.Post("/{id}/polls", h.CreatePoll)
		r.Get("/{id}/polls", h.ListPolls)
	})

	return r
}

// PollRoutes returns the /polls router
func (h *Handler) PollRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/{id}/votes", h.CastVote)
		r.Get("/{id}/results", h.GetResults)
	})

	return r
}
