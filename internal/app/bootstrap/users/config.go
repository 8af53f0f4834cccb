// internal/app/bootstrap/users/config.go
package users

import (
	"fmt"

	"github.com/dalemusser/eventhub/internal/app/bootstrap"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// appConfigKeys are read from config files, EVENTHUB_USERS_* environment
// variables, or flags of the same name.
var appConfigKeys = append(bootstrap.MongoKeys("eventhub_users"),
	config.AppKey{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID (ID-token audience)"},
	config.AppKey{Name: "google_certs_url", Default: "", Desc: "JWKS URL for ID-token signatures (blank for Google's)"},
)

// LoadConfig loads WAFFLE core config and the users service config.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "EVENTHUB_USERS", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		Mongo: bootstrap.MongoConfig{
			URI:         appValues.String("mongo_uri"),
			Database:    appValues.String("mongo_database"),
			MaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
			MinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		},
		GoogleClientID: appValues.String("google_client_id"),
		GoogleCertsURL: appValues.String("google_certs_url"),
	}
	return coreCfg, appCfg, nil
}

// ValidateConfig fails startup when the database or token audience is
// missing. Without a client id every token would be rejected.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := appCfg.Mongo.Validate(logger); err != nil {
		return err
	}
	if appCfg.GoogleClientID == "" {
		return fmt.Errorf("google_client_id is required")
	}
	return nil
}
