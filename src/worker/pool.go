package worker

import (
	"context"
	"runtime"
	"sync"

	"go.uber.org/zap"
)

// Task is one unit of background work. It must honor ctx.
type Task func(ctx context.Context)

// Pool is a fixed-size worker pool with a 1-slot input queue (strict back-pressure).
type Pool struct {
	jobs chan job
	wg   sync.WaitGroup
	log  *zap.Logger
}

type job struct {
	ctx  context.Context
	name string
	run  Task
}

// New creates a worker pool. Size defaults to NumCPU when size<=0. Queue is 1 slot.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{jobs: make(chan job, 1), log: zap.L().Named("worker")}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				p.log.Debug("job started", zap.String("job", j.name))
				j.run(j.ctx)
				p.log.Debug("job finished", zap.String("job", j.name), zap.Error(j.ctx.Err()))
			}
		}()
	}
}

// Submit enqueues a job if the single-slot queue is free. Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, name string, t Task) bool {
	select {
	case p.jobs <- job{ctx: ctx, name: name, run: t}:
		return true
	default:
		p.log.Warn("job dropped, queue full", zap.String("job", name))
		return false
	}
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}

// Call runs fn on its own goroutine and waits for it or for ctx, whichever
// comes first. On timeout fn keeps running in the background and its result
// is discarded.
func Call[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	if _, ok := ctx.Deadline(); !ok && ctx.Done() == nil {
		return fn()
	}
	type outcome struct {
		v   T
		err error
	}
	resCh := make(chan outcome, 1)
	go func() {
		v, err := fn()
		resCh <- outcome{v, err}
	}()
	select {
	case r := <-resCh:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
