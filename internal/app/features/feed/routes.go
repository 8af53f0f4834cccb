// internal/app/features/feed/routes.go
package feed

import "github.com/go-chi/chi/v5"

// Routes registers the read pages on the gateway's /v1 router. Used as
// r.Group(feed.Routes(h)) so the pages share /v1 with the other features.
func Routes(h *Handler) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", h.ServeHome)
		r.Get("/events", h.ServeEvents)
		r.Get("/events/{event_id}", h.ServeEvent)
	}
}
