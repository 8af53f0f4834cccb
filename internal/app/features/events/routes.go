// internal/app/features/events/routes.go
package events

import "github.com/go-chi/chi/v5"

// Routes returns the events service API, mounted under /v1.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/add", h.ServeAdd)
	r.Get("/search", h.ServeSearch)
	r.Get("/{event_id}", h.ServeEvent)
	return r
}
