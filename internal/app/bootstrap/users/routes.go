// internal/app/bootstrap/users/routes.go
package users

import (
	"context"
	"net/http"

	"github.com/dalemusser/eventhub/internal/app/bootstrap"
	accountsfeature "github.com/dalemusser/eventhub/internal/app/features/accounts"
	healthfeature "github.com/dalemusser/eventhub/internal/app/features/health"
	userstore "github.com/dalemusser/eventhub/internal/app/store/users"
	"github.com/dalemusser/eventhub/internal/app/system/identity"
	"github.com/dalemusser/eventhub/internal/app/system/metrics"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// BuildHandler mounts the registry API under /v1. The service trusts its
// callers; it is meant to be reachable only from the gateway.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	keyClient := &http.Client{Timeout: timeouts.Provider()}
	source := identity.NewGoogleSource(context.Background(), appCfg.GoogleClientID, appCfg.GoogleCertsURL, keyClient)
	verifier := identity.NewVerifier(source, logger)

	return newRouter(verifier, userstore.New(deps.MongoDatabase), healthfeature.MongoPinger(deps.MongoClient), logger), nil
}

func newRouter(v accountsfeature.TokenVerifier, users accountsfeature.Registry, ping healthfeature.Pinger, logger *zap.Logger) http.Handler {
	r := bootstrap.NewRouter(false)

	healthHandler := healthfeature.NewHandler("users", ping, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", metrics.Handler())

	accountsHandler := accountsfeature.NewHandler(v, users, logger)
	r.Mount("/v1", accountsfeature.Routes(accountsHandler))

	return r
}
