// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureUsers creates the users collection and attaches its validator.
// Only user_id is required: records missing is_organizer are legal and read
// as non-organizers.
func EnsureUsers(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensure(ctx, db, "users", usersSchema(), logger)
}

// EnsureEvents creates the events collection and attaches its validator.
func EnsureEvents(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensure(ctx, db, "events", eventsSchema(), logger)
}

// EnsurePosts creates the posts collection and attaches its validator.
func EnsurePosts(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensure(ctx, db, "posts", postsSchema(), logger)
}

// ensure creates the collection (if missing) and tries to attach a JSON-Schema
// validator. Servers without collMod/validator support are logged and skipped.
func ensure(ctx context.Context, db *mongo.Database, coll string, schema bson.M, logger *zap.Logger) error {
	if _, err := ensureCollection(ctx, db, coll, logger); err != nil {
		return errors.New(coll + ": " + err.Error())
	}
	if err := setValidator(ctx, db, coll, schema, logger); err != nil {
		if isNoSuchCommand(err) || isNotImplemented(err) {
			logger.Info("validator skipped (unsupported)", zap.String("collection", coll))
			return nil
		}
		return errors.New(coll + ": " + err.Error())
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string, logger *zap.Logger) (created bool, err error) {
	if exists, listErr := collectionExists(ctx, db, name); listErr == nil && exists {
		logger.Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			logger.Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		logger.Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	logger.Info("created collection", zap.String("collection", name))
	return true, nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M, logger *zap.Logger) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	logger.Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 59 {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 115 {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id"},
			"properties": bson.M{
				"user_id":      bson.M{"bsonType": "string", "minLength": 1},
				"name":         bson.M{"bsonType": "string"},
				"is_organizer": bson.M{"bsonType": "bool"},
			},
		},
	}
}

func eventsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "author", "event_time", "created_at"},
			"properties": bson.M{
				"name":        bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"name_ci":     bson.M{"bsonType": "string"},
				"description": bson.M{"bsonType": "string"},
				"author":      bson.M{"bsonType": "string", "minLength": 1},
				"event_time":  bson.M{"bsonType": "date"},
				"created_at":  bson.M{"bsonType": "date"},
			},
		},
	}
}

func postsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"event_id", "author_id", "created_at"},
			"properties": bson.M{
				"event_id":   bson.M{"bsonType": "string", "minLength": 1},
				"author_id":  bson.M{"bsonType": "string", "minLength": 1},
				"text":       bson.M{"bsonType": "string"},
				"media":      bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}
