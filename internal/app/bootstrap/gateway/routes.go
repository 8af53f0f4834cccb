// internal/app/bootstrap/gateway/routes.go
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/eventhub/internal/app/bootstrap"
	authgooglefeature "github.com/dalemusser/eventhub/internal/app/features/authgoogle"
	authorizationfeature "github.com/dalemusser/eventhub/internal/app/features/authorization"
	feedfeature "github.com/dalemusser/eventhub/internal/app/features/feed"
	healthfeature "github.com/dalemusser/eventhub/internal/app/features/health"
	loginfeature "github.com/dalemusser/eventhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/eventhub/internal/app/features/logout"
	publishfeature "github.com/dalemusser/eventhub/internal/app/features/publish"
	statusfeature "github.com/dalemusser/eventhub/internal/app/features/status"
	"github.com/dalemusser/eventhub/internal/app/system/auth"
	"github.com/dalemusser/eventhub/internal/app/system/downstream"
	"github.com/dalemusser/eventhub/internal/app/system/identity"
	"github.com/dalemusser/eventhub/internal/app/system/metrics"
	"github.com/dalemusser/eventhub/internal/app/system/orchestrator"
	"github.com/dalemusser/eventhub/internal/app/system/ratelimit"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// components are the collaborators the gateway routes are built from.
type components struct {
	SessionMgr *auth.SessionManager
	Orch       *orchestrator.Orchestrator
	Users      *downstream.Users
	Events     *downstream.Events
	Posts      *downstream.Posts
	Limiter    *ratelimit.Limiter // nil disables sign-in rate limiting
	Status     []statusfeature.Target
	TrustProxy bool

	GoogleClientID     string
	GoogleClientSecret string
	BaseURL            string
}

// BuildHandler constructs the gateway router.
//
// Pages and writes live under /v1 with the session loaded for every request.
// The Google code flow, health, status and metrics sit outside /v1.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	usersClient, err := downstream.New("users", appCfg.UsersEndpoint, nil, logger)
	if err != nil {
		return nil, err
	}
	eventsClient, err := downstream.New("events", appCfg.EventsEndpoint, nil, logger)
	if err != nil {
		return nil, err
	}
	postsClient, err := downstream.New("posts", appCfg.PostsEndpoint, nil, logger)
	if err != nil {
		return nil, err
	}
	users := downstream.NewUsers(usersClient)

	keyClient := &http.Client{Timeout: timeouts.Provider()}
	source := identity.NewGoogleSource(context.Background(), appCfg.GoogleClientID, appCfg.GoogleCertsURL, keyClient)
	verifier := identity.NewVerifier(source, logger)

	var targets []statusfeature.Target
	for _, svc := range []struct{ name, endpoint string }{
		{"users", appCfg.UsersEndpoint},
		{"events", appCfg.EventsEndpoint},
		{"posts", appCfg.PostsEndpoint},
	} {
		u, err := statusfeature.HealthURL(svc.endpoint)
		if err != nil {
			return nil, err
		}
		targets = append(targets, statusfeature.Target{Name: svc.name, HealthURL: u})
	}

	var limiter *ratelimit.Limiter
	if appCfg.AuthRateLimit > 0 {
		limiter = ratelimit.New(appCfg.AuthRateLimit, time.Minute, appCfg.AuthRateLimit)
	}

	return newRouter(components{
		SessionMgr:         sessionMgr,
		Orch:               orchestrator.New(verifier, users, logger),
		Users:              users,
		Events:             downstream.NewEvents(eventsClient),
		Posts:              downstream.NewPosts(postsClient),
		Limiter:            limiter,
		Status:             targets,
		TrustProxy:         appCfg.TrustProxyHeaders,
		GoogleClientID:     appCfg.GoogleClientID,
		GoogleClientSecret: appCfg.GoogleClientSecret,
		BaseURL:            appCfg.BaseURL,
	}, logger)
}

func newRouter(c components, logger *zap.Logger) (http.Handler, error) {
	if c.SessionMgr == nil || c.Orch == nil {
		return nil, fmt.Errorf("gateway: session manager and orchestrator are required")
	}

	r := bootstrap.NewRouter(c.TrustProxy)

	healthHandler := healthfeature.NewHandler("gateway", nil, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", metrics.Handler())
	r.Mount("/status", statusfeature.Routes(statusfeature.NewHandler(c.Status, nil, logger)))

	// Server-side Google sign-in. Its callback stores the session itself.
	googleHandler := authgooglefeature.NewHandler(c.SessionMgr, c.Users, c.GoogleClientID, c.GoogleClientSecret, c.BaseURL, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler, c.Limiter))

	feedHandler := feedfeature.NewHandler(c.Orch, c.Events, c.Posts, logger)
	publishHandler := publishfeature.NewHandler(c.Orch, c.Events, c.Posts, logger)
	loginHandler := loginfeature.NewHandler(c.SessionMgr, c.Users, logger)
	logoutHandler := logoutfeature.NewHandler(c.SessionMgr, logger)
	authzHandler := authorizationfeature.NewHandler(c.Orch, logger)

	r.Route("/v1", func(v chi.Router) {
		// Every /v1 handler reads the caller's session from the context.
		v.Use(c.SessionMgr.LoadSession)

		// Pages
		v.Group(feedfeature.Routes(feedHandler))

		// Organizer and owner gated writes
		v.Group(publishfeature.Routes(publishHandler))

		// Sign-in and sign-out
		v.Mount("/authenticate", loginfeature.Routes(loginHandler, c.Limiter))
		v.Mount("/sign_out", logoutfeature.Routes(logoutHandler))

		// Organizer flag changes
		v.Mount("/authorization", authorizationfeature.Routes(authzHandler, c.Limiter))
	})

	return r, nil
}
