// Package workerpool runs feature requests (completion, hover, and
// friends) on a fixed-size pool of goroutines, grounded on the queue/
// worker split in internal/web/jobs: a bounded channel stands in for the
// job queue, and a small fixed set of goroutines drain it, recording
// success/failure/cancellation counts per method.
package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrStopped is returned by Submit once the pool has been told to Stop.
var ErrStopped = errors.New("workerpool: stopped")

// ErrQueueFull is returned by Submit when the job channel is saturated
// and the caller asked not to block.
var ErrQueueFull = errors.New("workerpool: queue full")

// FeatureRequest is a unit of work submitted to the pool: P is the
// request's typed parameters (e.g. protocol.CompletionParams), and Run
// executes the request, observing ctx cancellation for cooperative
// abandonment.
type FeatureRequest[P any] struct {
	// Method names the LSP method this request serves, used to key
	// per-method metrics.
	Method string
	Params P
	// Ctx is the execution context passed to Run; typically derived from
	// the request's cancel flag (see reqqueue.CancelFlag). Defaults to
	// context.Background if nil.
	Ctx context.Context
	Run func(ctx context.Context, params P) error
}

// job erases FeatureRequest's type parameter so heterogeneous requests
// (hover, completion, ...) can share one queue.
type job struct {
	method string
	ctx    context.Context
	run    func(ctx context.Context) error
}

// Stats holds per-method execution counters.
type Stats struct {
	Succeeded int64
	Failed    int64
	Canceled  int64
}

// Pool runs submitted jobs on a fixed number of worker goroutines.
type Pool struct {
	jobs    chan job
	wg      sync.WaitGroup
	logger  *zap.Logger
	stopped atomic.Bool

	statsMu sync.Mutex
	stats   map[string]*Stats
}

// New starts a Pool with workers goroutines draining a channel of
// capacity queueSize. workers and queueSize are both clamped to at least
// 1.
func New(workers, queueSize int, logger *zap.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pool{
		jobs:   make(chan job, queueSize),
		logger: logger,
		stats:  make(map[string]*Stats),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.runWorker(i)
	}
	return p
}

// Submit enqueues req for execution, blocking until a slot is free, the
// pool is stopped, or ctx is canceled. ctx only governs how long Submit
// itself waits for queue space; req.Run receives its own execution
// context (typically one scoped to the request's cancel flag) bound into
// the closure by the caller.
func Submit[P any](ctx context.Context, p *Pool, req FeatureRequest[P]) error {
	if p.stopped.Load() {
		return ErrStopped
	}
	select {
	case p.jobs <- toJob(req):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySubmit enqueues req without blocking, failing with ErrQueueFull if
// the channel is saturated.
func TrySubmit[P any](p *Pool, req FeatureRequest[P]) error {
	if p.stopped.Load() {
		return ErrStopped
	}
	select {
	case p.jobs <- toJob(req):
		return nil
	default:
		return ErrQueueFull
	}
}

func toJob[P any](req FeatureRequest[P]) job {
	runCtx := req.Ctx
	if runCtx == nil {
		runCtx = context.Background()
	}
	return job{
		method: req.Method,
		ctx:    runCtx,
		run:    func(c context.Context) error { return req.Run(c, req.Params) },
	}
}

func (p *Pool) runWorker(id int) {
	defer p.wg.Done()
	for j := range p.jobs {
		start := time.Now()
		err := j.run(j.ctx)
		p.record(j.method, err, time.Since(start), id)
	}
}

func (p *Pool) record(method string, err error, dur time.Duration, workerID int) {
	p.statsMu.Lock()
	s, ok := p.stats[method]
	if !ok {
		s = &Stats{}
		p.stats[method] = s
	}
	switch {
	case errors.Is(err, context.Canceled):
		s.Canceled++
	case err != nil:
		s.Failed++
	default:
		s.Succeeded++
	}
	p.statsMu.Unlock()

	if err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Warn("feature request failed",
			zap.Int("worker", workerID),
			zap.String("method", method),
			zap.Duration("duration", dur),
			zap.Error(err))
	} else {
		p.logger.Debug("feature request completed",
			zap.Int("worker", workerID),
			zap.String("method", method),
			zap.Duration("duration", dur))
	}
}

// Stats returns a snapshot of per-method counters.
func (p *Pool) Stats() map[string]Stats {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()

	out := make(map[string]Stats, len(p.stats))
	for method, s := range p.stats {
		out[method] = *s
	}
	return out
}

// Stop closes the job channel and waits for in-flight and queued jobs to
// drain. Further Submit/TrySubmit calls return ErrStopped. Stop is not
// safe to call concurrently with itself.
func (p *Pool) Stop() {
	if !p.stopped.CompareAndSwap(false, true) {
		return
	}
	close(p.jobs)
	p.wg.Wait()
}
