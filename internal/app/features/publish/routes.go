// internal/app/features/publish/routes.go
package publish

import "github.com/go-chi/chi/v5"

// Routes registers the gated mutations on the gateway's /v1 router, as
// r.Group(publish.Routes(h)).
func Routes(h *Handler) func(chi.Router) {
	return func(r chi.Router) {
		r.Post("/add_event", h.ServeAddEvent)
		r.Post("/add_post", h.ServeAddPost)
		r.Post("/posts/{post_id}/delete", h.ServeDeletePost)
		r.Delete("/posts/{post_id}", h.ServeDeletePost)
	}
}
