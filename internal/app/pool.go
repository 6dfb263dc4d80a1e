package app

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/jeffreymorganio/songza-commands-for-enso/internal/domain"
	"github.com/jeffreymorganio/songza-commands-for-enso/internal/metrics"
	"github.com/jeffreymorganio/songza-commands-for-enso/pkg/lifecycle"
	"github.com/jeffreymorganio/songza-commands-for-enso/pkg/log"
)

// DefaultMaxWorkers bounds concurrent workers when no size is configured.
const DefaultMaxWorkers = 16

// Task is the body of one pooled worker.
type Task func(ctx context.Context, logger log.Logger)

// Pool runs tasks on at most size goroutines. Submit never blocks: a full
// pool rejects the task.
type Pool struct {
	sem     *semaphore.Weighted
	tracker lifecycle.WorkerTracker
	metrics *metrics.Metrics
	logger  log.Logger

	mu     sync.RWMutex
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewPool creates a pool. tracker counts in-flight tasks for shutdown; a nil
// tracker gets a private one.
func NewPool(size int, tracker lifecycle.WorkerTracker, m *metrics.Metrics, logger log.Logger) *Pool {
	if size <= 0 {
		size = DefaultMaxWorkers
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	if tracker == nil {
		tracker = lifecycle.NewManager(logger, nil)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		sem:     semaphore.NewWeighted(int64(size)),
		tracker: tracker,
		metrics: m,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Submit starts task in the background and returns its run id.
// It fails with domain.ErrWorkerPoolFull when every slot is busy and with
// domain.ErrNotRunning after Shutdown.
func (p *Pool) Submit(name string, task Task) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return "", domain.ErrNotRunning
	}
	if !p.sem.TryAcquire(1) {
		return "", domain.ErrWorkerPoolFull
	}

	runID := uuid.NewString()
	logger := p.logger.With(log.String("run_id", runID), log.String("task", name))

	p.tracker.AddWorker()
	p.metrics.WorkerStarted()

	go func() {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("worker panicked",
					log.Any("panic", r),
					log.String("stack", string(debug.Stack())),
				)
			}
			p.metrics.WorkerFinished()
			p.tracker.WorkerDone()
			p.sem.Release(1)
			logger.Debug("worker finished", log.Duration("took", time.Since(start)))
		}()

		task(p.ctx, logger)
	}()

	return runID, nil
}

// Active returns the number of tasks still running.
func (p *Pool) Active() int {
	return p.tracker.Active()
}

// Shutdown stops accepting tasks and waits up to grace for running ones.
// Tasks still running after grace have their context canceled; Shutdown then
// waits up to grace again and reports domain.ErrShutdownTimeout.
func (p *Pool) Shutdown(grace time.Duration) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	defer p.cancel()

	if err := p.tracker.WaitWithTimeout(grace); err == nil {
		return nil
	}

	active := p.tracker.Active()
	p.logger.Warn("workers still running after grace period, canceling",
		log.Int("active", active),
		log.Duration("grace", grace),
	)
	p.cancel()

	if err := p.tracker.WaitWithTimeout(grace); err != nil {
		p.logger.Error("workers did not stop after cancel", log.Int("active", p.tracker.Active()))
	}
	return fmt.Errorf("%w: %d workers canceled", domain.ErrShutdownTimeout, active)
}
