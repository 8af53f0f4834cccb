// internal/app/bootstrap/users/appconfig.go
package users

import (
	"github.com/dalemusser/eventhub/internal/app/bootstrap"
	"go.mongodb.org/mongo-driver/mongo"
)

// AppConfig holds the users service configuration.
//
// WAFFLE's CoreConfig covers ports, TLS, logging and CORS. Everything the
// authorization registry and the authenticate endpoint need lives here.
type AppConfig struct {
	Mongo bootstrap.MongoConfig

	// Google ID-token verification
	GoogleClientID string // expected audience of incoming ID tokens
	GoogleCertsURL string // signing keys; blank means Google's published set
}

// DBDeps holds the registry's database handles.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
}
