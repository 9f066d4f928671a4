// internal/app/bootstrap/connect.go
package bootstrap

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/dalemusser/groupsync/internal/app/store/cisprofiles"
	"github.com/dalemusser/groupsync/internal/app/store/mongoprofiles"
	"github.com/dalemusser/groupsync/internal/app/system/signing"
	"github.com/dalemusser/groupsync/internal/app/system/timeouts"
	"github.com/dalemusser/groupsync/internal/app/system/updater"
	"github.com/dalemusser/waffle/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const mongoConnectTimeout = 10 * time.Second

// ConnectDB builds the signer, the profile store client selected by
// store_type, and the update worker bound to it. The worker is started
// later, in Startup.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	timeouts.Configure(timeouts.Config{
		Fetch:   appCfg.TimeoutFetch,
		Publish: appCfg.TimeoutPublish,
	})

	signer, err := loadSigner(appCfg, logger)
	if err != nil {
		return DBDeps{}, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var deps DBDeps
	switch appCfg.StoreType {
	case StoreMongo:
		client, db, err := connectMongo(ctx, appCfg, logger)
		if err != nil {
			return DBDeps{}, err
		}
		deps.MongoClient = client
		deps.MongoDatabase = db
		deps.Store = mongoprofiles.New(db, appCfg.MongoCollection, signer, signer.PublicKey(), logger)
	default:
		// The token source outlives this hook's context.
		deps.Store = cisprofiles.New(context.Background(), cisprofiles.Config{
			PersonAPIURL: appCfg.CISPersonAPIURL,
			ChangeAPIURL: appCfg.CISChangeAPIURL,
			TokenURL:     appCfg.CISTokenURL,
			ClientID:     appCfg.CISClientID,
			ClientSecret: appCfg.CISClientSecret,
			Audience:     appCfg.CISAudience,
		}, signer, logger)
		logger.Info("using CIS profile store",
			zap.String("person_api", appCfg.CISPersonAPIURL),
			zap.String("change_api", appCfg.CISChangeAPIURL),
			zap.Bool("authenticated", appCfg.CISTokenURL != ""))
	}

	deps.Registry = reg
	deps.Updater = updater.New(deps.Store, logger, updater.Options{
		QueueSize:  appCfg.QueueSize,
		Registerer: reg,
	})
	return deps, nil
}

func loadSigner(appCfg AppConfig, logger *zap.Logger) (*signing.JWSSigner, error) {
	if appCfg.SigningKeyPath == "" {
		logger.Warn("signing_key_path not set; generating an ephemeral signing key")
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			return nil, fmt.Errorf("generate signing key: %w", err)
		}
		return signing.NewJWSSigner(key, appCfg.SigningKeyID), nil
	}

	key, err := signing.LoadRSAKey(appCfg.SigningKeyPath)
	if err != nil {
		logger.Error("failed to load signing key", zap.String("path", appCfg.SigningKeyPath), zap.Error(err))
		return nil, err
	}
	logger.Info("loaded signing key",
		zap.String("path", appCfg.SigningKeyPath),
		zap.String("key_id", appCfg.SigningKeyID))
	return signing.NewJWSSigner(key, appCfg.SigningKeyID), nil
}

func connectMongo(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(appCfg.MongoURI))
	if err != nil {
		logger.Error("MongoDB connect failed", zap.Error(err))
		return nil, nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		logger.Error("MongoDB ping failed", zap.Error(err))
		return nil, nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.String("collection", appCfg.MongoCollection))
	return client, client.Database(appCfg.MongoDatabase), nil
}
