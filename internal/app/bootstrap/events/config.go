// internal/app/bootstrap/events/config.go
package events

import (
	"github.com/dalemusser/eventhub/internal/app/bootstrap"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// LoadConfig loads WAFFLE core config and the EVENTHUB_EVENTS_* keys.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "EVENTHUB_EVENTS", bootstrap.MongoKeys("eventhub_events"))
	if err != nil {
		return nil, AppConfig{}, err
	}
	return coreCfg, AppConfig{
		Mongo: bootstrap.MongoConfig{
			URI:         appValues.String("mongo_uri"),
			Database:    appValues.String("mongo_database"),
			MaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
			MinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		},
	}, nil
}

// ValidateConfig checks the database settings.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	return appCfg.Mongo.Validate(logger)
}
