// internal/app/bootstrap/events/appconfig.go
package events

import (
	"github.com/dalemusser/eventhub/internal/app/bootstrap"
	"go.mongodb.org/mongo-driver/mongo"
)

// AppConfig holds the events service configuration. The directory only
// stores and serves records, so the database is all it needs.
type AppConfig struct {
	Mongo bootstrap.MongoConfig
}

// DBDeps holds the events database handles.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
}
