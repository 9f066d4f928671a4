// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	healthfeature "github.com/dalemusser/groupsync/internal/app/features/health"
	updatefeature "github.com/dalemusser/groupsync/internal/app/features/update"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// WAFFLE calls this after configuration, back-end connections, schema setup
// and Startup have completed. The router exposes:
//   - /v2/update and /v2/update/bulk, which enqueue group updates
//   - /healthz, reporting worker state (and MongoDB reachability)
//   - /metrics, the Prometheus scrape endpoint
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators.
	// A nil *mongo.Client must not become a non-nil interface.
	var pinger healthfeature.Pinger
	if deps.MongoClient != nil {
		pinger = deps.MongoClient
	}
	healthHandler := healthfeature.NewHandler(deps.Updater, pinger, logger)
	r.Mount("/healthz", healthfeature.Routes(healthHandler))

	updateHandler := updatefeature.NewHandler(deps.Updater.Client(), logger)
	r.Mount("/v2/update", updatefeature.Routes(updateHandler, appCfg.CORSAllowedOrigins))

	r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{Registry: deps.Registry}))

	return r, nil
}
