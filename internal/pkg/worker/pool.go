// Package worker provides goroutine pool management. Naked goroutines are
// avoided; fire-and-forget work (view-count increments, audit side writes)
// goes through the pool with context propagation and panic recovery.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"eventdesk.io/eventdesk/internal/pkg/logger"
)

// ErrPoolClosed is returned when submitting to a closed pool.
var ErrPoolClosed = errors.New("worker pool is closed")

// Task is a context-aware task function.
type Task func(ctx context.Context)

// Pool wraps ants.Pool with context-aware submission. Detached tasks run
// against the pool's lifecycle context so they survive request cancellation
// but still respect graceful shutdown.
type Pool struct {
	pool *ants.Pool

	lifecycleCtx    context.Context
	lifecycleCancel context.CancelFunc
}

// Config contains worker pool configuration.
type Config struct {
	Size int
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{Size: 100}
}

// NewPool creates a worker pool bound to ctx's lifetime.
func NewPool(ctx context.Context, cfg Config) (*Pool, error) {
	lifecycleCtx, lifecycleCancel := context.WithCancel(ctx)

	panicHandler := func(p interface{}) {
		logger.Error("Worker panic recovered",
			zap.Any("panic", p),
			zap.Stack("stack"),
		)
	}

	antsPool, err := ants.NewPool(cfg.Size,
		ants.WithPanicHandler(panicHandler),
		ants.WithNonblocking(false),
		ants.WithExpiryDuration(10*time.Second),
	)
	if err != nil {
		lifecycleCancel()
		return nil, err
	}

	return &Pool{
		pool:            antsPool,
		lifecycleCtx:    lifecycleCtx,
		lifecycleCancel: lifecycleCancel,
	}, nil
}

// Submit submits a context-aware task. If ctx is already cancelled, returns
// ctx.Err() without submitting; the task is skipped if cancellation happens
// while queued.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	return p.pool.Submit(func() {
		select {
		case <-ctx.Done():
			logger.Debug("Task skipped: context cancelled", zap.Error(ctx.Err()))
			return
		default:
		}
		task(ctx)
	})
}

// SubmitDetached submits a task bound to the pool lifecycle context rather
// than a request context. Used for side effects that must not fail or block
// the request that triggered them.
func (p *Pool) SubmitDetached(task Task) error {
	return p.pool.Submit(func() {
		select {
		case <-p.lifecycleCtx.Done():
			logger.Debug("Detached task skipped: shutting down")
			return
		default:
		}
		task(p.lifecycleCtx)
	})
}

// Shutdown cancels the lifecycle context and waits for running tasks.
func (p *Pool) Shutdown() {
	p.lifecycleCancel()

	const shutdownTimeout = 30 * time.Second
	if err := p.pool.ReleaseTimeout(shutdownTimeout); err != nil {
		logger.Warn("Worker pool shutdown timeout", zap.Error(err))
	}
}

// Metrics returns pool metrics for observability.
func (p *Pool) Metrics() map[string]int {
	return map[string]int{
		"running": p.pool.Running(),
		"free":    p.pool.Free(),
		"cap":     p.pool.Cap(),
	}
}
