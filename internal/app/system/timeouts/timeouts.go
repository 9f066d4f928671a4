// Package timeouts provides centralized timeout values for calls to the
// profile store.
//
// The update worker itself never times out a request; deadlines belong to
// the store client implementations, which wrap each call with one of these:
//   - Ping: health checks and connectivity verification
//   - Fetch: reading a single profile
//   - Publish: writing a single profile
//
// Timeouts can be configured at startup using Configure(). If not configured,
// defaults are used.
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing    = 2 * time.Second
	DefaultFetch   = 10 * time.Second
	DefaultPublish = 30 * time.Second
)

// mu protects all timeout values from concurrent access.
var mu sync.RWMutex

var (
	ping    = DefaultPing
	fetch   = DefaultFetch
	publish = DefaultPublish
)

// Ping returns the timeout for health checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Fetch returns the timeout for reading one profile.
func Fetch() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return fetch
}

// Publish returns the timeout for writing one profile.
func Publish() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return publish
}

// Config holds timeout configuration values.
// Zero values are ignored (defaults are kept).
type Config struct {
	Ping    time.Duration
	Fetch   time.Duration
	Publish time.Duration
}

// Configure sets custom timeout values. Zero values are ignored, keeping the
// current value. Call during startup before the worker starts.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Fetch > 0 {
		fetch = cfg.Fetch
	}
	if cfg.Publish > 0 {
		publish = cfg.Publish
	}
}

// Reset restores all timeouts to their default values.
// Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	fetch = DefaultFetch
	publish = DefaultPublish
}

// Current returns the current timeout configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{Ping: ping, Fetch: fetch, Publish: publish}
}

// WithTimeout creates a context with timeout and returns a cancel function that
// logs a warning if the context was canceled due to deadline exceeded.
//
//	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Publish(), s.log, "publish profile")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
