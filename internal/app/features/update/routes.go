// internal/app/features/update/routes.go
package update

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Routes returns a subrouter for the update endpoints, mounted under
// /v2/update. allowedOrigins feeds the CORS policy; empty means any origin.
func Routes(h *Handler, allowedOrigins []string) chi.Router {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"POST"},
		AllowedHeaders: []string{"Authorization", "Accept", "Content-Type"},
		MaxAge:         3600,
	}))
	r.Post("/", h.ServeUpdate)
	r.Post("/bulk", h.ServeBulk)
	return r
}
