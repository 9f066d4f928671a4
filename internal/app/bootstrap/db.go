// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/groupsync/internal/app/system/indexes"
	"github.com/dalemusser/groupsync/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// EnsureSchema creates the profile collection with its validator and indexes
// when profiles live in MongoDB. The CIS store has no schema to manage.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.MongoDatabase == nil {
		return nil
	}
	if err := validators.EnsureAll(ctx, deps.MongoDatabase, appCfg.MongoCollection); err != nil {
		logger.Error("ensure validators failed", zap.Error(err))
		return err
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase, appCfg.MongoCollection); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	return nil
}
