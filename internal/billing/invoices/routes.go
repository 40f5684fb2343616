package invoices

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/invoices", h.List)
	r.Post("/invoices", h.Create)
	r.Get("/invoices/{id}", h.Show)
	r.Put("/invoices/{id}", h.Update)
	r.Post("/invoices/{id}/issue", h.Issue)
	r.Post("/invoices/{id}/pay", h.Pay)
	r.Post("/invoices/{id}/void", h.Void)
	r.Post("/invoices/{id}/recurrence", h.AttachRecurrence)
	r.Post("/invoices/{id}/installments", h.AttachInstallments)
	r.Delete("/invoices/{id}/schedule", h.DetachSchedule)
	r.Post("/invoices/{id}/generate", h.Generate)
}
