package businessflow

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

type coordinatorJob struct {
	ctx    context.Context
	fn     func(ctx context.Context) error
	result chan error
}

// StoreCoordinator runs every read-modify-write of the data directory on one goroutine,
// each under the StoreLock, so two saves never interleave.
type StoreCoordinator struct {
	jobs   chan coordinatorJob
	lock   StoreLock
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewStoreCoordinator starts the writer goroutine. Close stops it.
func NewStoreCoordinator(lock StoreLock, logger *zap.Logger) *StoreCoordinator {
	if lock == nil {
		lock = NewMutexLock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &StoreCoordinator{
		jobs:   make(chan coordinatorJob),
		lock:   lock,
		logger: logger,
		done:   make(chan struct{}),
	}
	go c.run()
	return c
}

// Do queues fn and waits for it. A job whose ctx ends before it starts is not run.
func (c *StoreCoordinator) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	job := coordinatorJob{ctx: ctx, fn: fn, result: make(chan error, 1)}

	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrCoordinatorClosed
	}
	select {
	case c.jobs <- job:
		c.mu.RUnlock()
	case <-ctx.Done():
		c.mu.RUnlock()
		return ctx.Err()
	}

	return <-job.result
}

// Close waits for the queued jobs to finish and stops the writer goroutine
func (c *StoreCoordinator) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.jobs)
	}
	c.mu.Unlock()
	<-c.done
}

func (c *StoreCoordinator) run() {
	defer close(c.done)
	for job := range c.jobs {
		job.result <- c.execute(job)
	}
}

func (c *StoreCoordinator) execute(job coordinatorJob) (err error) {
	if err := job.ctx.Err(); err != nil {
		return err
	}

	release, err := c.lock.Acquire(job.ctx)
	if err != nil {
		return err
	}
	defer release()

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("store job panicked", zap.Any("panic", r))
			err = fmt.Errorf("store job panicked: %v", r)
		}
	}()

	return job.fn(job.ctx)
}
