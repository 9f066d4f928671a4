package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/groupsync/internal/app/system/timeouts"
	"github.com/dalemusser/groupsync/internal/app/system/updater"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Worker reports the update worker's lifecycle state.
type Worker interface {
	State() updater.State
}

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Worker Worker
	DB     Pinger // nil when profiles are not stored in MongoDB
	Log    *zap.Logger
}

// NewHandler constructs a health Handler. db may be nil.
func NewHandler(worker Worker, db Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		Worker: worker,
		DB:     db,
		Log:    logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Worker   string `json:"worker"`
	Database string `json:"database,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /healthz.
//
// On success: 200 and
//
//	{ "status":"ok", "worker":"running", "database":"connected" }
//
// When the worker has stopped or the database is unreachable: 503 and
//
//	{ "status":"error", "worker":"stopped", "message":"Update worker stopped" }
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status: "ok",
		Worker: h.Worker.State().String(),
	}

	if h.Worker.State() == updater.Stopped {
		resp.Status = "error"
		resp.Message = "Update worker stopped"
	}

	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
		defer cancel()

		resp.Database = "connected"
		if err := h.DB.Ping(ctx, readpref.Primary()); err != nil {
			h.Log.Error("health-check: mongo ping failed", zap.Error(err))
			resp.Status = "error"
			resp.Database = "disconnected"
			if resp.Message == "" {
				resp.Message = "Database unavailable"
			}
			resp.Error = err.Error()
		}
	}

	if resp.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}
