package operator

import (
	"context"

	"github.com/streamfabric/corert/internal/core/channel"
	"github.com/streamfabric/corert/internal/core/edge"
)

// Predicate decides whether a value should forward.
type Predicate[T any] func(T) bool

// Conditional is a forwarding writable provider that evaluates a
// predicate on each value: true forwards downstream, false silently
// drops. It releases its downstream half on upstream close.
type Conditional[T any] struct {
	predicate Predicate[T]
	downstream edge.WritableHalf[T]
}

// NewConditional constructs a Conditional wired to a fixed downstream
// writable half.
func NewConditional[T any](predicate Predicate[T], downstream edge.WritableHalf[T]) *Conditional[T] {
	return &Conditional[T]{predicate: predicate, downstream: downstream}
}

// AwaitWrite implements edge.WritableHalf[T] == edge.WritableProvider[T].
func (c *Conditional[T]) AwaitWrite(ctx context.Context, v T) channel.Status {
	if !c.predicate(v) {
		return channel.Success
	}
	return c.downstream.AwaitWrite(ctx, v)
}

// Close releases the downstream half if it supports it, per the
// release-on-upstream-close rule.
func (c *Conditional[T]) Close() {
	if closer, ok := c.downstream.(interface{ Close() }); ok {
		closer.Close()
	}
}
