// internal/app/features/authorization/routes.go
package authorization

import (
	"github.com/dalemusser/eventhub/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes serves POST /v1/authorization/update. limiter may be nil.
func Routes(h *Handler, limiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()
	if limiter != nil {
		r.Use(limiter.Middleware(h.Log))
	}
	r.Post("/update", h.HandleUpdate)
	return r
}
