// internal/app/bootstrap/events/routes.go
package events

import (
	"net/http"

	"github.com/dalemusser/eventhub/internal/app/bootstrap"
	eventsfeature "github.com/dalemusser/eventhub/internal/app/features/events"
	healthfeature "github.com/dalemusser/eventhub/internal/app/features/health"
	eventstore "github.com/dalemusser/eventhub/internal/app/store/events"
	"github.com/dalemusser/eventhub/internal/app/system/metrics"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// BuildHandler mounts the events directory under /v1.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	return newRouter(eventstore.New(deps.MongoDatabase), healthfeature.MongoPinger(deps.MongoClient), logger), nil
}

func newRouter(store eventsfeature.Store, ping healthfeature.Pinger, logger *zap.Logger) http.Handler {
	r := bootstrap.NewRouter(false)

	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler("events", ping, logger)))
	r.Handle("/metrics", metrics.Handler())

	eventsHandler := eventsfeature.NewHandler(store, logger)
	r.Mount("/v1", eventsfeature.Routes(eventsHandler))

	return r
}
