package notification

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the /notifications router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.List)
		r.Get("/unread", h.UnreadCount)
		r.Get("/ws", h.WebSocket)
		r.Post("/read-all", h.MarkAllRead)
		r.Post("/{id}/read", h.MarkRead)
	})

	return r
}
