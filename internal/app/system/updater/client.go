// internal/app/system/updater/client.go
package updater

import (
	"go.uber.org/zap"
)

// Client is the producer side of the update queue. It is a small value type;
// copies share the same queue and are safe for concurrent use because the
// underlying channel is.
type Client struct {
	queue   chan<- Message
	log     *zap.Logger
	metrics *Metrics
}

// Update enqueues msg without blocking. If the queue is full the message is
// dropped and a warning is logged; the caller is never told.
func (c Client) Update(msg Message) {
	if err := c.trySend(msg); err != nil {
		c.log.Warn("unable to send internally", zap.String("kind", msg.kind()), zap.Error(err))
	}
}

// RequestStop enqueues the Stop sentinel under the same drop-on-full policy.
func (c Client) RequestStop() {
	if err := c.trySend(Stop{}); err != nil {
		c.log.Warn("unable to internally send stop message", zap.Error(err))
	}
}

func (c Client) trySend(msg Message) error {
	select {
	case c.queue <- msg:
		c.metrics.incEnqueued(msg.kind())
		return nil
	default:
		c.metrics.incDropped(msg.kind())
		return ErrEnqueueDropped
	}
}
