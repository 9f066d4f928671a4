// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dalemusser/groupsync/internal/app/store/mongoprofiles"
	"github.com/dalemusser/groupsync/internal/app/system/timeouts"
	"github.com/dalemusser/groupsync/internal/app/system/updater"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for groupsync.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: queue_size, store_type, etc.
//   - Environment variables: GROUPSYNC_QUEUE_SIZE, GROUPSYNC_STORE_TYPE, etc.
//   - Command-line flags: --queue_size, --store_type, etc.
var appConfigKeys = []config.AppKey{
	{Name: "queue_size", Default: updater.DefaultQueueSize, Desc: "Maximum pending update messages before new ones are dropped"},
	{Name: "store_type", Default: StoreCIS, Desc: "Profile store: 'cis' or 'mongo'"},

	// CIS APIs
	{Name: "cis_person_api_url", Default: "", Desc: "CIS person API base URL (profile reads)"},
	{Name: "cis_change_api_url", Default: "", Desc: "CIS change API base URL (profile writes)"},
	{Name: "cis_token_url", Default: "", Desc: "OAuth2 token endpoint for client credentials (blank disables auth)"},
	{Name: "cis_client_id", Default: "", Desc: "OAuth2 client ID"},
	{Name: "cis_client_secret", Default: "", Desc: "OAuth2 client secret"},
	{Name: "cis_audience", Default: "", Desc: "OAuth2 audience parameter"},

	// Signing
	{Name: "signing_key_path", Default: "", Desc: "PEM RSA private key used to sign the group attribute"},
	{Name: "signing_key_id", Default: "", Desc: "Key ID placed in signature headers"},

	// MongoDB
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI (store_type=mongo)"},
	{Name: "mongo_database", Default: "groupsync", Desc: "MongoDB database name"},
	{Name: "mongo_collection", Default: mongoprofiles.DefaultCollection, Desc: "MongoDB collection holding profiles"},

	// Store call deadlines
	{Name: "timeout_fetch", Default: "10s", Desc: "Deadline for reading one profile"},
	{Name: "timeout_publish", Default: "30s", Desc: "Deadline for writing one profile"},

	{Name: "cors_allowed_origins", Default: "", Desc: "Comma-separated origins allowed to call /v2/update (blank allows any)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// environment variables (GROUPSYNC_* for this app) and flags, with
// precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "GROUPSYNC", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		QueueSize: appValues.Int("queue_size"),
		StoreType: strings.ToLower(strings.TrimSpace(appValues.String("store_type"))),

		CISPersonAPIURL: appValues.String("cis_person_api_url"),
		CISChangeAPIURL: appValues.String("cis_change_api_url"),
		CISTokenURL:     appValues.String("cis_token_url"),
		CISClientID:     appValues.String("cis_client_id"),
		CISClientSecret: appValues.String("cis_client_secret"),
		CISAudience:     appValues.String("cis_audience"),

		SigningKeyPath: appValues.String("signing_key_path"),
		SigningKeyID:   appValues.String("signing_key_id"),

		MongoURI:        appValues.String("mongo_uri"),
		MongoDatabase:   appValues.String("mongo_database"),
		MongoCollection: appValues.String("mongo_collection"),

		TimeoutFetch:   appValues.Duration("timeout_fetch", timeouts.DefaultFetch),
		TimeoutPublish: appValues.Duration("timeout_publish", timeouts.DefaultPublish),

		CORSAllowedOrigins: splitList(appValues.String("cors_allowed_origins")),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// It checks the store selection and the settings that store needs, so a
// misconfigured deployment fails before connecting to anything.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := validateAppConfig(appCfg, coreCfg.Env); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return err
	}
	return nil
}

func validateAppConfig(appCfg AppConfig, env string) error {
	var problems []error

	if appCfg.QueueSize <= 0 {
		problems = append(problems, fmt.Errorf("queue_size must be positive, got %d", appCfg.QueueSize))
	}
	if appCfg.TimeoutFetch <= 0 || appCfg.TimeoutPublish <= 0 {
		problems = append(problems, errors.New("timeout_fetch and timeout_publish must be positive"))
	}
	if appCfg.SigningKeyPath == "" && env == "prod" {
		problems = append(problems, errors.New("signing_key_path is required in prod"))
	}

	switch appCfg.StoreType {
	case StoreCIS:
		if err := validateURL(appCfg.CISPersonAPIURL); err != nil {
			problems = append(problems, fmt.Errorf("cis_person_api_url: %w", err))
		}
		if err := validateURL(appCfg.CISChangeAPIURL); err != nil {
			problems = append(problems, fmt.Errorf("cis_change_api_url: %w", err))
		}
		if appCfg.CISTokenURL != "" {
			if err := validateURL(appCfg.CISTokenURL); err != nil {
				problems = append(problems, fmt.Errorf("cis_token_url: %w", err))
			}
			if appCfg.CISClientID == "" || appCfg.CISClientSecret == "" {
				problems = append(problems, errors.New("cis_client_id and cis_client_secret are required with cis_token_url"))
			}
		}
	case StoreMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			problems = append(problems, fmt.Errorf("invalid MongoDB URI: %w", err))
		}
		if appCfg.MongoDatabase == "" {
			problems = append(problems, errors.New("mongo_database is required"))
		}
	default:
		problems = append(problems, fmt.Errorf("store_type must be %q or %q, got %q", StoreCIS, StoreMongo, appCfg.StoreType))
	}

	return errors.Join(problems...)
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
