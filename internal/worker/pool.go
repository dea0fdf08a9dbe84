package worker

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Task is one unit of work processed by the pool.
type Task func(ctx context.Context) error

// Result reports the outcome of a single task.
type Result struct {
	Err error
}

// Pool is a bounded worker pool with an optional rate limit, used to fan out
// per-member computations during backfill without overwhelming the store.
type Pool struct {
	workers int
	tasks   chan Task
	wg      sync.WaitGroup
	limiter *rate.Limiter
}

func NewPool(workers, buffer int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &Pool{
		workers: workers,
		tasks:   make(chan Task, buffer),
	}
}

// SetRateLimit caps task starts at rps per second across all workers.
// A non-positive rps removes the cap. Call before Run.
func (p *Pool) SetRateLimit(rps int) {
	if rps <= 0 {
		p.limiter = nil
		return
	}
	p.limiter = rate.NewLimiter(rate.Limit(rps), 1)
}

// Submit queues a task. Blocks when the buffer is full.
func (p *Pool) Submit(t Task) {
	if t == nil {
		return
	}
	p.tasks <- t
}

// Close signals that no further tasks will be submitted.
func (p *Pool) Close() {
	close(p.tasks)
}

// Run starts the workers and returns the result channel. The channel closes
// once the pool is closed and all queued tasks have finished or the context
// is canceled.
func (p *Pool) Run(ctx context.Context) <-chan Result {
	out := make(chan Result, p.workers*2)

	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case t, ok := <-p.tasks:
					if !ok {
						return
					}
					if p.limiter != nil {
						if err := p.limiter.Wait(ctx); err != nil {
							return
						}
					}
					err := t(ctx)
					select {
					case <-ctx.Done():
						return
					case out <- Result{Err: err}:
					}
				}
			}
		}()
	}

	go func() {
		p.wg.Wait()
		close(out)
	}()

	return out
}
