// internal/app/system/updater/messages.go
package updater

import (
	"github.com/dalemusser/groupsync/internal/domain/models"
	"github.com/google/uuid"
)

// Message is one entry in the update queue: Update, Bulk or Stop.
type Message interface {
	kind() string
}

// Update asks the worker to replace one user's groups.
type Update struct {
	ID      string // correlates log lines, not part of the request
	Request models.GroupUpdate
}

// Bulk asks the worker to apply several group updates, in order, as one
// queue entry.
type Bulk struct {
	ID       string
	Requests []models.GroupUpdate
}

// Stop tells the worker to stop draining the queue. It is a sentinel, not a
// user-initiated change.
type Stop struct{}

func (Update) kind() string { return "update" }
func (Bulk) kind() string   { return "bulk" }
func (Stop) kind() string   { return "stop" }

// NewUpdate wraps a single request with a fresh message id.
func NewUpdate(req models.GroupUpdate) Update {
	return Update{ID: uuid.NewString(), Request: req}
}

// NewBulk wraps a batch of requests with a fresh message id.
func NewBulk(reqs []models.GroupUpdate) Bulk {
	return Bulk{ID: uuid.NewString(), Requests: reqs}
}
