package periods

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/{module}", func(r chi.Router) {
		r.Get("/", h.Active)
		r.Post("/", h.Lock)
		r.Put("/", h.Edit)
		r.Delete("/", h.Unlock)
		r.Get("/check", h.Check)
		r.Get("/history", h.History)
		r.Post("/exceptions", h.UnlockPartially)
	})
}
