package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/eventhub/internal/app/system/validators"
	"github.com/dalemusser/eventhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func TestEnsure_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	logger := zap.NewNop()

	for i := 0; i < 2; i++ {
		if err := validators.EnsureUsers(ctx, db, logger); err != nil {
			t.Fatalf("EnsureUsers #%d: %v", i, err)
		}
		if err := validators.EnsureEvents(ctx, db, logger); err != nil {
			t.Fatalf("EnsureEvents #%d: %v", i, err)
		}
		if err := validators.EnsurePosts(ctx, db, logger); err != nil {
			t.Fatalf("EnsurePosts #%d: %v", i, err)
		}
	}
}

func TestUsersValidator_AllowsMissingOrganizerFlag(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureUsers(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureUsers: %v", err)
	}
	users := db.Collection("users")

	if _, err := users.InsertOne(ctx, bson.M{"user_id": "no-flag"}); err != nil {
		t.Fatalf("record without is_organizer should be accepted: %v", err)
	}
	if _, err := users.InsertOne(ctx, bson.M{"name": "nobody"}); err == nil {
		t.Fatal("record without user_id should be rejected")
	}
	if _, err := users.InsertOne(ctx, bson.M{"user_id": "x", "is_organizer": "true"}); err == nil {
		t.Fatal("string is_organizer should be rejected")
	}
}

func TestPostsValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsurePosts(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsurePosts: %v", err)
	}
	posts := db.Collection("posts")

	ok := bson.M{"event_id": "e1", "author_id": "U1", "text": "hi", "created_at": time.Now()}
	if _, err := posts.InsertOne(ctx, ok); err != nil {
		t.Fatalf("valid post rejected: %v", err)
	}
	if _, err := posts.InsertOne(ctx, bson.M{"event_id": "e1", "created_at": time.Now()}); err == nil {
		t.Fatal("post without author_id should be rejected")
	}
}
