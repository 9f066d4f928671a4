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

// EnsureAll creates the profile collection if it is missing and attaches a
// JSON-Schema validator to it. Servers without collMod/validator support
// (some DocumentDB versions) are logged and skipped.
func EnsureAll(ctx context.Context, db *mongo.Database, profiles string) error {
	if _, err := ensureCollection(ctx, db, profiles); err != nil {
		return errors.New(profiles + ": " + err.Error())
	}
	if err := setValidator(ctx, db, profiles, ProfileSchema()); err != nil {
		if isNoSuchCommand(err) || isNotImplemented(err) {
			zap.L().Info("validator skipped (unsupported)", zap.String("collection", profiles))
			return nil
		}
		return errors.New(profiles + ": " + err.Error())
	}
	return nil
}

// ProfileSchema requires a non-blank user_id and constrains the fields the
// update worker writes: active and the mozilliansorg access attribute.
func ProfileSchema() bson.M {
	values := bson.M{
		"bsonType": "object",
		"required": bson.A{"metadata"},
		"properties": bson.M{
			"metadata": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"created":       bson.M{"bsonType": "string"},
					"last_modified": bson.M{"bsonType": "string"},
					"verified":      bson.M{"bsonType": "bool"},
				},
			},
			"values": bson.M{"bsonType": bson.A{"object", "null"}},
		},
	}
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id"},
			"properties": bson.M{
				"user_id": bson.M{
					"bsonType": "object",
					"required": bson.A{"value"},
					"properties": bson.M{
						"value": bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
					},
				},
				"active": bson.M{
					"bsonType": "object",
					"properties": bson.M{
						"value": bson.M{"bsonType": bson.A{"bool", "null"}},
					},
				},
				"access_information": bson.M{
					"bsonType": "object",
					"properties": bson.M{
						"mozilliansorg": values,
					},
				},
			},
		},
	}
}

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

// Moderate validation leaves existing invalid documents readable; only
// inserts and updates to valid documents are checked.
func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
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
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

func commandErrorMatches(err error, code int32, fragments ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandErrorMatches(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandErrorMatches(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandErrorMatches(err, 115, "not implemented", "not supported")
}
