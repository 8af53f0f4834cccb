// internal/app/features/accounts/routes.go
package accounts

import "github.com/go-chi/chi/v5"

// Routes returns the users service API, mounted under /v1.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/authenticate", h.ServeAuthenticate)
	r.Post("/authorization", h.ServeAuthorization)
	r.Get("/users/{user_id}", h.ServeUser)
	r.Put("/users/{user_id}/authorization", h.ServeUpdateAuthorization)
	return r
}
