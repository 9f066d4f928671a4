// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs after the back ends are connected and before the HTTP handler
// is built. It starts the update worker so requests accepted by the handler
// are drained from the first one on.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	deps.Updater.Start()
	return nil
}
