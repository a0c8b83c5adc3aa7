package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all solver routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/solver", func(r chi.Router) {
		r.Post("/solve", h.HandleSolve)
		r.Get("/components", h.HandleListComponents)
	})
}
