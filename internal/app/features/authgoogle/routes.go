// internal/app/features/authgoogle/routes.go
package authgoogle

import (
	"github.com/dalemusser/eventhub/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for Google OAuth endpoints.
// These routes are public (no authentication required). limiter may be nil.
func Routes(h *Handler, limiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()
	if limiter != nil {
		r.Use(limiter.Middleware(h.Log))
	}

	// GET /auth/google - Initiate Google OAuth flow
	r.Get("/", h.ServeLogin)

	// GET /auth/google/callback - Handle Google OAuth callback
	r.Get("/callback", h.ServeCallback)

	return r
}
