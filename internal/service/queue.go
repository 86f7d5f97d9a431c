package service

import (
	"bitwise74/auth-api/internal/metrics"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
)

var (
	ErrQueueFull   = errors.New("job queue full")
	ErrQueueClosed = errors.New("job queue closed")
)

// Dispatcher runs side effects (mail, uploads) without making the caller wait
// for them. A failed job is logged and dropped, it never undoes the request
// that scheduled it
type Dispatcher interface {
	Dispatch(name string, fn func(ctx context.Context) error)
}

type job struct {
	name string
	run  func(ctx context.Context) error
}

type JobQueue struct {
	jobs    chan *job
	running atomic.Int32
	workers int
	timeout time.Duration
	metrics *metrics.Metrics

	mu     sync.RWMutex
	closed bool
	wg     conc.WaitGroup
}

// NewJobQueue initializes a new job queue that holds at most size pending
// jobs. Every job gets its own context bound by timeout
func NewJobQueue(workers, size int, timeout time.Duration, m *metrics.Metrics) *JobQueue {
	if workers <= 0 {
		workers = 1
	}

	zap.L().Debug("Initializing job queue", zap.Int("workers", workers), zap.Int("max_jobs", size))

	return &JobQueue{
		jobs:    make(chan *job, size),
		workers: workers,
		timeout: timeout,
		metrics: m,
	}
}

func (q *JobQueue) StartWorkerPool() {
	for i := 0; i < q.workers; i++ {
		q.wg.Go(q.worker)
	}
}

func (q *JobQueue) worker() {
	for j := range q.jobs {
		err := q.run(j)

		q.running.Add(-1)
		q.metrics.Job(j.name, err)

		if err != nil {
			zap.L().Error("Background job finished with an error", zap.String("job", j.name), zap.Error(err))
		} else {
			zap.L().Debug("Background job finished successfully", zap.String("job", j.name))
		}
	}
}

func (q *JobQueue) run(j *job) (err error) {
	ctx := context.Background()
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}

	var pc panics.Catcher
	pc.Try(func() { err = j.run(ctx) })

	if r := pc.Recovered(); r != nil {
		return fmt.Errorf("job panicked, %w", r.AsError())
	}

	return err
}

// Enqueue hands a job to the pool. It never blocks
func (q *JobQueue) Enqueue(name string, fn func(ctx context.Context) error) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	// Counted before the send so a fast worker can't take Pending below zero
	q.running.Add(1)

	select {
	case q.jobs <- &job{name: name, run: fn}:
		zap.L().Debug("New job enqueued", zap.String("job", name), zap.Int32("enqueued", q.running.Load()))
		return nil
	default:
		q.running.Add(-1)
		return ErrQueueFull
	}
}

func (q *JobQueue) Dispatch(name string, fn func(ctx context.Context) error) {
	if err := q.Enqueue(name, fn); err != nil {
		q.metrics.Job(name, err)
		zap.L().Error("Failed to enqueue background job", zap.String("job", name), zap.Error(err))
	}
}

// Pending returns the amount of jobs queued or running
func (q *JobQueue) Pending() int32 {
	return q.running.Load()
}

// Close stops accepting jobs and waits for the queued ones to finish
func (q *JobQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}

	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	if r := q.wg.WaitAndRecover(); r != nil {
		zap.L().Error("Job queue worker panicked", zap.String("panic", r.String()))
	}
}

// InlineDispatcher runs every job on the calling goroutine
type InlineDispatcher struct{}

func (InlineDispatcher) Dispatch(name string, fn func(ctx context.Context) error) {
	if err := fn(context.Background()); err != nil {
		zap.L().Error("Background job finished with an error", zap.String("job", name), zap.Error(err))
	}
}
