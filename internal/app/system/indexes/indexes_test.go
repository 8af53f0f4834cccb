package indexes_test

import (
	"testing"

	"github.com/dalemusser/eventhub/internal/app/system/indexes"
	"github.com/dalemusser/eventhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	logger := zap.NewNop()

	for i := 0; i < 2; i++ {
		if err := indexes.EnsureUsers(ctx, db, logger); err != nil {
			t.Fatalf("EnsureUsers #%d: %v", i, err)
		}
		if err := indexes.EnsureEvents(ctx, db, logger); err != nil {
			t.Fatalf("EnsureEvents #%d: %v", i, err)
		}
		if err := indexes.EnsurePosts(ctx, db, logger); err != nil {
			t.Fatalf("EnsurePosts #%d: %v", i, err)
		}
	}
}

func TestEnsureUsers_UniqueUserID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureUsers(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureUsers: %v", err)
	}

	users := db.Collection("users")
	if _, err := users.InsertOne(ctx, bson.M{"user_id": "dup"}); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := users.InsertOne(ctx, bson.M{"user_id": "dup"}); err == nil {
		t.Fatal("expected duplicate user_id to be rejected")
	}
}

func TestEnsureUsers_DuplicatesPresent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	users := db.Collection("users")
	for i := 0; i < 2; i++ {
		if _, err := users.InsertOne(ctx, bson.M{"user_id": "dup"}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if err := indexes.EnsureUsers(ctx, db, zap.NewNop()); err == nil {
		t.Fatal("expected failure while duplicates exist")
	}
}
