// internal/app/bootstrap/router.go
package bootstrap

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter returns a chi router carrying the middleware every service
// shares. The request id is forwarded by the gateway to backing services.
// trustProxy rewrites RemoteAddr from X-Forwarded-For / X-Real-IP; enable it
// only when a trusted proxy sets those headers.
func NewRouter(trustProxy bool) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)
	return r
}
