package chat

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers chat routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/query", h.Query)
		r.Get("/courses", h.GetCourses)
		r.Post("/sessions/{id}/clear", h.ClearSession)
	})
}
