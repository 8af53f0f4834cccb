// internal/app/bootstrap/posts/appconfig.go
package posts

import (
	"github.com/dalemusser/eventhub/internal/app/bootstrap"
	"go.mongodb.org/mongo-driver/mongo"
)

// AppConfig holds the posts service configuration. The feed only
// stores and serves records, so the database is all it needs.
type AppConfig struct {
	Mongo bootstrap.MongoConfig
}

// DBDeps holds the posts database handles.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
}
