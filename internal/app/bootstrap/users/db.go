// internal/app/bootstrap/users/db.go
package users

import (
	"context"

	"github.com/dalemusser/eventhub/internal/app/bootstrap"
	"github.com/dalemusser/eventhub/internal/app/system/indexes"
	"github.com/dalemusser/eventhub/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// ConnectDB opens the registry database.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	client, db, err := bootstrap.ConnectMongo(ctx, appCfg.Mongo, logger)
	if err != nil {
		return DBDeps{}, err
	}
	return DBDeps{MongoClient: client, MongoDatabase: db}, nil
}

// EnsureSchema installs the users validator and the unique user_id index.
// The unique index is what keeps UpsertIdentity to one record per user.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := validators.EnsureUsers(ctx, deps.MongoDatabase, logger); err != nil {
		return err
	}
	return indexes.EnsureUsers(ctx, deps.MongoDatabase, logger)
}
