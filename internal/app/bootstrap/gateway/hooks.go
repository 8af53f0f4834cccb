// internal/app/bootstrap/gateway/hooks.go
package gateway

import (
	"context"

	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/app"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Hooks wires the gateway into WAFFLE's lifecycle.
var Hooks = app.Hooks[AppConfig, DBDeps]{
	Name:           "eventhub-gateway",
	LoadConfig:     LoadConfig,
	ValidateConfig: ValidateConfig,
	ConnectDB:      ConnectDB,
	EnsureSchema:   EnsureSchema,
	Startup:        Startup,
	BuildHandler:   BuildHandler,
	Shutdown:       Shutdown,
}

// ConnectDB has nothing to connect; the backing services own the data.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	return DBDeps{}, nil
}

func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return nil
}

// Startup applies timeout overrides and logs where the backing services are.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts configured from environment", zap.Int("count", n))
	}
	cur := timeouts.Current()
	logger.Info("gateway backing services",
		zap.String("users", appCfg.UsersEndpoint),
		zap.String("events", appCfg.EventsEndpoint),
		zap.String("posts", appCfg.PostsEndpoint),
		zap.Duration("upstream_timeout", cur.Upstream),
		zap.Duration("provider_timeout", cur.Provider))
	return nil
}

func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return nil
}
