// Package operator implements the multi-connection dataflow operators
// of spec.md §4.4: broadcast, router, conditional, combine-latest, and
// queue.
package operator

import (
	"context"
	"reflect"
	"sync"

	"github.com/streamfabric/corert/internal/core/channel"
	"github.com/streamfabric/corert/internal/core/edge"
)

// Broadcast fans a single upstream value out to every attached
// downstream consumer. AwaitWrite aggregates individual statuses: any
// one error becomes the result; it returns closed only once every
// downstream has closed.
type Broadcast[T any] struct {
	mu   sync.Mutex
	legs []edge.WritableHalf[T]
}

// NewBroadcast constructs an empty Broadcast.
func NewBroadcast[T any]() *Broadcast[T] {
	return &Broadcast[T]{}
}

// AttachLeg registers a new downstream leg's writable half directly,
// for callers that already constructed edge storage (e.g. another
// operator's output).
func (b *Broadcast[T]) AttachLeg(w edge.WritableHalf[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.legs = append(b.legs, w)
}

// AttachConsumer builds a fresh channel-backed leg and wires it between
// Broadcast and consumer: Broadcast fans writes into the leg's writable
// half, consumer reads the leg's readable half. This is the usual way
// to connect a Sink/Node as one of Broadcast's downstream legs, since
// Broadcast itself has no single ReadableHalf to hand to a builder.
func (b *Broadcast[T]) AttachConsumer(consumer edge.ReadableAcceptor[T], capacity int) {
	ce := edge.NewChannelEdge[T](channel.NewBuffered[T](capacity, 0))
	b.AttachLeg(ce)
	consumer.SetReadableEdge(ce)
}

// AllowsMultiFanOut implements edge.MultiFanOut.
func (b *Broadcast[T]) AllowsMultiFanOut() bool { return true }

// AwaitWrite implements edge.WritableHalf[T] so that Broadcast can sit
// as the writable half an upstream Source/Node is handed.
func (b *Broadcast[T]) AwaitWrite(ctx context.Context, v T) channel.Status {
	b.mu.Lock()
	legs := make([]edge.WritableHalf[T], len(b.legs))
	copy(legs, b.legs)
	b.mu.Unlock()

	if len(legs) == 0 {
		return channel.Closed
	}

	closedCount := 0
	result := channel.Success
	for _, leg := range legs {
		switch status := leg.AwaitWrite(ctx, v); status {
		case channel.Success:
		case channel.Closed:
			closedCount++
		default:
			result = status
		}
	}
	if closedCount == len(legs) {
		return channel.Closed
	}
	return result
}

// Close releases every leg that supports release, propagating the
// upstream's termination to all downstream consumers.
func (b *Broadcast[T]) Close() {
	b.mu.Lock()
	legs := make([]edge.WritableHalf[T], len(b.legs))
	copy(legs, b.legs)
	b.mu.Unlock()

	for _, leg := range legs {
		if closer, ok := leg.(interface{ Close() }); ok {
			closer.Close()
		}
	}
}

// BroadcastTypeless registers as a member of a TypelessGroup and holds
// the group's resolved type once the first typed neighbor connects.
// Go generics cannot instantiate a Broadcast[T] from a reflect.Type
// discovered at runtime, so BroadcastTypeless does not itself fan
// values out — it is a resolution placeholder that the call site
// consults; once ResolvedType() is non-nil, the call site constructs
// the concrete Broadcast[T] (T known statically at that call site) and
// attaches the legs to it. See
// DESIGN.md for the reasoning behind this split.
type BroadcastTypeless struct {
	mu       sync.Mutex
	group    *edge.TypelessGroup
	resolved reflect.Type
}

// NewBroadcastTypeless constructs an unresolved typeless broadcast,
// joining the given typeless resolution group.
func NewBroadcastTypeless(group *edge.TypelessGroup) *BroadcastTypeless {
	bt := &BroadcastTypeless{group: group}
	group.Register(bt)
	return bt
}

// ResolveType implements edge.TypelessPeer.
func (bt *BroadcastTypeless) ResolveType(t reflect.Type) error {
	bt.mu.Lock()
	defer bt.mu.Unlock()
	bt.resolved = t
	return nil
}

// ResolvedType returns the concrete type once known, or nil.
func (bt *BroadcastTypeless) ResolvedType() reflect.Type {
	bt.mu.Lock()
	defer bt.mu.Unlock()
	return bt.resolved
}
