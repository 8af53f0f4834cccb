// internal/app/bootstrap/posts/routes.go
package posts

import (
	"net/http"

	"github.com/dalemusser/eventhub/internal/app/bootstrap"
	healthfeature "github.com/dalemusser/eventhub/internal/app/features/health"
	postsfeature "github.com/dalemusser/eventhub/internal/app/features/posts"
	poststore "github.com/dalemusser/eventhub/internal/app/store/posts"
	"github.com/dalemusser/eventhub/internal/app/system/metrics"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// BuildHandler mounts the post feed under /v1.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	return newRouter(poststore.New(deps.MongoDatabase), healthfeature.MongoPinger(deps.MongoClient), logger), nil
}

func newRouter(store postsfeature.Store, ping healthfeature.Pinger, logger *zap.Logger) http.Handler {
	r := bootstrap.NewRouter(false)

	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler("posts", ping, logger)))
	r.Handle("/metrics", metrics.Handler())
	r.Mount("/v1", postsfeature.Routes(postsfeature.NewHandler(store, logger)))

	return r
}
