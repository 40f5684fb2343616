package quotes

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/quotes", h.List)
	r.Post("/quotes", h.Create)
	r.Get("/quotes/{id}", h.Show)
	r.Put("/quotes/{id}", h.Update)
	r.Post("/quotes/{id}/send", h.Send)
	r.Post("/quotes/{id}/accept", h.Accept)
	r.Post("/quotes/{id}/reject", h.Reject)
	r.Post("/quotes/{id}/convert", h.Convert)
}
