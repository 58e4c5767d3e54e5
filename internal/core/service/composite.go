package service

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Child is any lifecycle-bearing component a Composite can own.
type Child interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Kill()
	AwaitJoin(ctx context.Context) error
}

// Composite propagates start/stop/kill to its children in forward
// dependency order for start and reverse order for stop, per spec.md
// §4.6. Start and Stop are issued sequentially: each child's call
// returns before the next child's call is made.
type Composite struct {
	children []Child
}

// NewComposite builds a Composite over children listed in forward
// dependency order.
func NewComposite(children ...Child) *Composite {
	return &Composite{children: children}
}

// Start issues Start to each child in forward order, failing fast on
// the first error.
func (c *Composite) Start(ctx context.Context) error {
	for _, child := range c.children {
		if err := child.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Stop issues Stop to each child in reverse order, continuing to stop
// every child even if an earlier one fails, and returns the first
// error.
func (c *Composite) Stop(ctx context.Context) error {
	var firstErr error
	for i := len(c.children) - 1; i >= 0; i-- {
		if err := c.children[i].Stop(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Kill issues Kill to every child, best-effort, in reverse order.
func (c *Composite) Kill() {
	for i := len(c.children) - 1; i >= 0; i-- {
		c.children[i].Kill()
	}
}

// AwaitJoin waits for every child to reach a terminal state.
func (c *Composite) AwaitJoin(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, child := range c.children {
		child := child
		g.Go(func() error { return child.AwaitJoin(ctx) })
	}
	return g.Wait()
}
