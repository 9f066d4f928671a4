package indexes_test

import (
	"testing"

	"github.com/dalemusser/groupsync/internal/app/system/indexes"
	"github.com/dalemusser/groupsync/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestProfileIndexes_CoverLookupKinds(t *testing.T) {
	want := map[string]bool{
		"user_id.value":          false,
		"uuid.value":             false,
		"primary_email.value":    false,
		"primary_username.value": false,
	}
	for _, m := range indexes.ProfileIndexes() {
		keys := m.Keys.(bson.D)
		if len(keys) != 1 {
			t.Fatalf("expected single-field index, got %v", keys)
		}
		if _, ok := want[keys[0].Key]; !ok {
			t.Errorf("unexpected index on %q", keys[0].Key)
		}
		want[keys[0].Key] = true
	}
	for field, seen := range want {
		if !seen {
			t.Errorf("missing index on %q", field)
		}
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, "profiles"); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db, "profiles"); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}

	cur, err := db.Collection("profiles").Indexes().List(ctx)
	if err != nil {
		t.Fatalf("list indexes: %v", err)
	}
	defer cur.Close(ctx)

	names := map[string]bool{}
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	for _, m := range indexes.ProfileIndexes() {
		if !names[*m.Options.Name] {
			t.Errorf("index %q not created", *m.Options.Name)
		}
	}
}

func TestEnsureAll_ReplacesMismatchedIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := db.Collection("profiles")
	if _, err := c.Indexes().CreateOne(ctx, mongoIndex("old_user_id")); err != nil {
		t.Fatalf("seed index: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db, "profiles"); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	cur, err := c.Indexes().List(ctx)
	if err != nil {
		t.Fatalf("list indexes: %v", err)
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if idx["name"] == "old_user_id" {
			t.Error("non-unique user_id index should have been replaced")
		}
	}
}

func TestEnsureAll_DuplicateUserIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := db.Collection("profiles")
	for i := 0; i < 2; i++ {
		if _, err := c.InsertOne(ctx, bson.M{"user_id": bson.M{"value": "dup"}}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if err := indexes.EnsureAll(ctx, db, "profiles"); err == nil {
		t.Fatal("expected unique index creation to fail on duplicates")
	}
}

func mongoIndex(name string) mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id.value", Value: 1}},
		Options: options.Index().SetName(name),
	}
}
