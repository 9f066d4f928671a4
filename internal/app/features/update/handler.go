// internal/app/features/update/handler.go
package update

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/groupsync/internal/app/system/htmlsanitize"
	"github.com/dalemusser/groupsync/internal/app/system/updater"
	"github.com/dalemusser/groupsync/internal/domain/models"
	"go.uber.org/zap"
)

// maxBodyBytes bounds a single request body; bulk requests share the limit.
const maxBodyBytes = 1 << 20

// Queue accepts messages for the update worker. updater.Client satisfies it.
type Queue interface {
	Update(msg updater.Message)
}

// Handler turns HTTP requests into update queue messages.
type Handler struct {
	Queue Queue
	Log   *zap.Logger
}

// NewHandler creates a new update handler.
func NewHandler(queue Queue, logger *zap.Logger) *Handler {
	return &Handler{
		Queue: queue,
		Log:   logger,
	}
}

// ServeUpdate handles POST /v2/update with a single {"user_id","groups"} body.
// The update is queued and the response is sent before it is applied.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	var req models.GroupUpdate
	if err := decode(w, r, &req); err != nil {
		h.badRequest(w, err)
		return
	}
	if err := validate(req); err != nil {
		h.badRequest(w, err)
		return
	}

	msg := updater.NewUpdate(req)
	h.Log.Debug("queueing update",
		zap.String("message_id", msg.ID),
		zap.String("user_id", req.UserID),
		zap.Int("groups", len(req.Groups)))
	h.Queue.Update(msg)
	writeEmpty(w)
}

// ServeBulk handles POST /v2/update/bulk with an array of updates. The whole
// batch is queued as one message so it is applied contiguously.
func (h *Handler) ServeBulk(w http.ResponseWriter, r *http.Request) {
	var reqs []models.GroupUpdate
	if err := decode(w, r, &reqs); err != nil {
		h.badRequest(w, err)
		return
	}
	for i, req := range reqs {
		if err := validate(req); err != nil {
			h.badRequest(w, fmt.Errorf("update %d: %w", i, err))
			return
		}
	}

	msg := updater.NewBulk(reqs)
	h.Log.Debug("queueing bulk update",
		zap.String("message_id", msg.ID),
		zap.Int("total", len(reqs)))
	h.Queue.Update(msg)
	writeEmpty(w)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON body: trailing data")
	}
	return nil
}

func validate(req models.GroupUpdate) error {
	if req.UserID == "" {
		return errors.New("user_id is required")
	}
	for _, g := range req.Groups {
		if !htmlsanitize.IsPlainText(g) {
			return fmt.Errorf("invalid group name %q", g)
		}
	}
	return nil
}

func (h *Handler) badRequest(w http.ResponseWriter, err error) {
	h.Log.Info("rejecting update request", zap.Error(err))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func writeEmpty(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte("{}"))
}
