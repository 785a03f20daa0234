package engine

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Pool hands out forks of a base engine, one per goroutine.
type Pool struct {
	base *Engine
	pool sync.Pool
}

// NewPool creates a pool of forks of base. base itself is never handed out.
func NewPool(base *Engine) *Pool {
	p := &Pool{base: base}
	p.pool.New = func() any { return base.Fork() }
	return p
}

// Get returns an engine owned by the caller until Put.
func (p *Pool) Get() *Engine {
	return p.pool.Get().(*Engine)
}

// Put returns an engine to the pool. Its cache is kept, so later users
// get already-built actions.
func (p *Pool) Put(e *Engine) {
	if e == nil || e == p.base {
		return
	}
	p.pool.Put(e)
}

// Each runs fn over items with at most workers goroutines, each using its
// own pooled engine. The first error cancels ctx for the rest and is
// returned.
func Each[T any](ctx context.Context, p *Pool, workers int, items []T, fn func(ctx context.Context, e *Engine, item T) error) error {
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for _, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			e := p.Get()
			defer p.Put(e)
			return fn(ctx, e, item)
		})
	}
	return g.Wait()
}
