// internal/app/bootstrap/mongo.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoConfig is the database section shared by the services that own a
// collection.
type MongoConfig struct {
	URI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	Database    string // Database name within MongoDB
	MaxPoolSize uint64
	MinPoolSize uint64
}

// MongoKeys returns the config keys every storage service loads. The default
// database name differs per service.
func MongoKeys(defaultDatabase string) []config.AppKey {
	return []config.AppKey{
		{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
		{Name: "mongo_database", Default: defaultDatabase, Desc: "MongoDB database name"},
		{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
		{Name: "mongo_min_pool_size", Default: 0, Desc: "MongoDB min connection pool size (default: 0)"},
	}
}

// Validate rejects a malformed URI or a blank database name before any
// connection is attempted.
func (c MongoConfig) Validate(logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(c.URI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if c.Database == "" {
		return fmt.Errorf("mongo_database is required")
	}
	if c.MinPoolSize > c.MaxPoolSize {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)", c.MinPoolSize, c.MaxPoolSize)
	}
	return nil
}

// ConnectMongo opens a client and pings the primary so a bad deployment fails
// at startup rather than on the first request.
func ConnectMongo(ctx context.Context, c MongoConfig, logger *zap.Logger) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(c.URI).
		SetMaxPoolSize(c.MaxPoolSize).
		SetMinPoolSize(c.MinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), logger, "mongo startup ping")
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", c.Database),
		zap.Uint64("max_pool_size", c.MaxPoolSize))
	return client, client.Database(c.Database), nil
}

// DisconnectMongo closes client. A nil client is a no-op.
func DisconnectMongo(ctx context.Context, client *mongo.Client, logger *zap.Logger) error {
	if client == nil {
		return nil
	}
	logger.Info("disconnecting MongoDB client")
	if err := client.Disconnect(ctx); err != nil {
		logger.Error("MongoDB disconnect failed", zap.Error(err))
		return err
	}
	return nil
}
