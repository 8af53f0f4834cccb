// internal/app/bootstrap/posts/db.go
package posts

import (
	"context"

	"github.com/dalemusser/eventhub/internal/app/bootstrap"
	"github.com/dalemusser/eventhub/internal/app/system/indexes"
	"github.com/dalemusser/eventhub/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	client, db, err := bootstrap.ConnectMongo(ctx, appCfg.Mongo, logger)
	if err != nil {
		return DBDeps{}, err
	}
	return DBDeps{MongoClient: client, MongoDatabase: db}, nil
}

// EnsureSchema installs the posts validator and the per-event listing
// indexes.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := validators.EnsurePosts(ctx, deps.MongoDatabase, logger); err != nil {
		return err
	}
	return indexes.EnsurePosts(ctx, deps.MongoDatabase, logger)
}
