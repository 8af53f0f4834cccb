// internal/app/features/login/routes.go
package login

import (
	"github.com/dalemusser/eventhub/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes serves POST /v1/authenticate. limiter may be nil.
func Routes(h *Handler, limiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()
	if limiter != nil {
		r.Use(limiter.Middleware(h.Log))
	}
	r.Post("/", h.HandleAuthenticate)
	return r
}
