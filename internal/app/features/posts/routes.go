// internal/app/features/posts/routes.go
package posts

import "github.com/go-chi/chi/v5"

// Routes returns the posts service API, mounted under /v1.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/add", h.ServeAdd)
	r.Get("/by_event/{event_id}", h.ServeByEvent)
	r.Get("/{post_id}", h.ServePost)
	r.Delete("/{post_id}", h.ServeDelete)
	return r
}
