// internal/app/system/updater/updater.go
package updater

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dalemusser/groupsync/internal/app/system/groupattr"
	"github.com/dalemusser/groupsync/internal/app/system/profilestore"
	"github.com/dalemusser/groupsync/internal/domain/models"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// DefaultQueueSize bounds the update queue when Options.QueueSize is zero.
const DefaultQueueSize = 100

// State is the worker's lifecycle state.
type State int32

const (
	Running State = iota
	Stopped
)

func (s State) String() string {
	if s == Stopped {
		return "stopped"
	}
	return "running"
}

// Options configures an Updater.
type Options struct {
	// QueueSize bounds the queue; messages beyond it are dropped.
	QueueSize int
	// Registerer receives the pipeline's collectors. Nil disables metrics.
	Registerer prometheus.Registerer
	// Now is the clock used for attribute timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Updater is the single sequential worker that drains the update queue and
// publishes group changes to the profile store.
type Updater struct {
	store   profilestore.Client
	log     *zap.Logger
	queue   chan Message
	metrics *Metrics
	now     func() time.Time

	state   atomic.Int32
	started sync.Once
	done    chan struct{}

	// processed counts handled queue messages; only the worker goroutine touches it.
	processed int
}

// New creates an Updater bound to store. The worker does not run until Start
// (or Run) is called; producers may enqueue before that.
func New(store profilestore.Client, logger *zap.Logger, opts Options) *Updater {
	size := opts.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	u := &Updater{
		store: store,
		log:   logger,
		queue: make(chan Message, size),
		now:   now,
		done:  make(chan struct{}),
	}
	u.metrics = newMetrics(opts.Registerer, func() float64 { return float64(len(u.queue)) })
	return u
}

// Client returns a producer handle for the queue. Handles may be copied and
// used from any goroutine.
func (u *Updater) Client() Client {
	return Client{queue: u.queue, log: u.log, metrics: u.metrics}
}

// State reports whether the worker is still accepting work.
func (u *Updater) State() State {
	return State(u.state.Load())
}

// Done is closed once the worker loop has ended.
func (u *Updater) Done() <-chan struct{} {
	return u.done
}

// Start runs the worker loop on its own goroutine.
func (u *Updater) Start() {
	go u.Run()
	u.log.Info("update worker started", zap.Int("queue_size", cap(u.queue)))
}

// Run drains the queue until a Stop message arrives or the queue is closed.
// Only the first call runs the loop; later calls return immediately.
func (u *Updater) Run() {
	u.started.Do(u.run)
}

// Wait blocks until the worker loop has ended or ctx is done.
func (u *Updater) Wait(ctx context.Context) error {
	select {
	case <-u.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown asks the worker to stop and waits for the loop to end. Work that
// is already in flight finishes; messages queued after the stop are not
// processed. If the queue is full the stop request is dropped like any other
// message and Shutdown returns when ctx expires.
func (u *Updater) Shutdown(ctx context.Context) error {
	u.Client().RequestStop()
	if err := u.Wait(ctx); err != nil {
		u.log.Error("update worker did not stop", zap.Error(err))
		return err
	}
	u.log.Info("update worker stopped", zap.Int("processed", u.processed))
	return nil
}

func (u *Updater) run() {
	defer close(u.done)
	defer u.state.Store(int32(Stopped))

	ctx := context.Background()
	u.log.Info("start processing msgs")
	for {
		msg, ok := <-u.queue
		if !ok {
			u.log.Warn("update queue closed without stop message")
			return
		}
		switch m := msg.(type) {
		case Update:
			_ = u.update(ctx, m.ID, m.Request)
		case Bulk:
			u.updateBatch(ctx, m.ID, m.Requests)
		case Stop:
			u.log.Info("stopping", zap.Int("processed", u.processed))
			return
		}
		u.processed++
		u.log.Info("processed messages so far", zap.Int("processed", u.processed))
	}
}

// update is the per-request flow: fetch, merge and sign, publish. A failure
// at any step is logged and returned; it never stops the worker.
func (u *Updater) update(ctx context.Context, msgID string, req models.GroupUpdate) (err error) {
	log := u.log.With(zap.String("message_id", msgID), zap.String("user_id", req.UserID))
	defer func() { u.metrics.incProcessed(resultOf(err)) }()

	profile, err := u.store.GetUserBy(ctx, req.UserID, profilestore.ByUserID, nil)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrFetchFailed, err)
		log.Warn("unable to fetch profile", zap.Error(err))
		return err
	}

	log.Info("updating groups", zap.Int("groups", len(req.Groups)))
	updated, err := groupattr.UpdateGroups(profile, req.Groups, u.store.Signer(), u.now())
	if err != nil {
		log.Warn("error updating groups", zap.Error(err))
		return err
	}

	log.Debug("sending groups")
	if err = u.store.UpdateUser(ctx, req.UserID, updated); err != nil {
		err = fmt.Errorf("%w: %w", ErrPublishFailed, err)
		log.Warn("unable to publish update", zap.Error(err))
		return err
	}

	log.Info("updated")
	return nil
}

// updateBatch applies requests in order and returns how many were processed.
// A failed request is logged and counted; the batch always runs to the end.
func (u *Updater) updateBatch(ctx context.Context, msgID string, reqs []models.GroupUpdate) int {
	total := len(reqs)
	log := u.log.With(zap.String("message_id", msgID), zap.Int("total", total))
	log.Info("bulk publishing: start")

	processed, failed := 0, 0
	for _, req := range reqs {
		if err := u.update(ctx, msgID, req); err != nil {
			failed++
		}
		processed++
		log.Info("updated profiles so far", zap.Int("processed", processed))
	}

	log.Info("bulk updated profiles",
		zap.Int("processed", processed),
		zap.Int("failed", failed))
	return processed
}
