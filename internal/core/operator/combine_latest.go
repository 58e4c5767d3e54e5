package operator

import (
	"context"
	"sync"

	"github.com/streamfabric/corert/internal/core/channel"
	"github.com/streamfabric/corert/internal/core/edge"
)

// Pair is the tuple CombineLatest2 emits downstream.
type Pair[T1, T2 any] struct {
	First  T1
	Second T2
}

// CombineLatest2 is the two-input instance of spec.md §4.4's
// CombineLatest<T1,...,Tn>. Go generics have no variadic type
// parameter list, so this core ships the concrete arity the original
// test exercises (CombineLatest<int,float>; see original_source's
// test_edges.cpp) rather than an unbounded family — recorded as an
// Open Question decision in DESIGN.md.
//
// It emits a Pair each time either sink receives a new value, after
// both sinks have received at least one. The latest value per slot is
// cached. When both inputs close, it emits closed downstream. Inputs
// have no error path of their own: a slot write returns the status of
// the downstream write, and an input error is not carried downstream.
type CombineLatest2[T1, T2 any] struct {
	mu         sync.Mutex
	downstream edge.WritableHalf[Pair[T1, T2]]

	hasFirst, hasSecond   bool
	latestFirst           T1
	latestSecond          T2
	firstClosed, secClosed bool
}

// NewCombineLatest2 constructs a CombineLatest2 wired to a fixed
// downstream writable half for the emitted pairs.
func NewCombineLatest2[T1, T2 any](downstream edge.WritableHalf[Pair[T1, T2]]) *CombineLatest2[T1, T2] {
	return &CombineLatest2[T1, T2]{downstream: downstream}
}

// FirstSink returns the WritableProvider for the first input slot.
func (c *CombineLatest2[T1, T2]) FirstSink() edge.WritableHalf[T1] {
	return &combineLatestSlot1[T1, T2]{owner: c}
}

// SecondSink returns the WritableProvider for the second input slot.
func (c *CombineLatest2[T1, T2]) SecondSink() edge.WritableHalf[T2] {
	return &combineLatestSlot2[T1, T2]{owner: c}
}

type combineLatestSlot1[T1, T2 any] struct{ owner *CombineLatest2[T1, T2] }

func (s *combineLatestSlot1[T1, T2]) AwaitWrite(ctx context.Context, v T1) channel.Status {
	return s.owner.writeFirst(ctx, v)
}

type combineLatestSlot2[T1, T2 any] struct{ owner *CombineLatest2[T1, T2] }

func (s *combineLatestSlot2[T1, T2]) AwaitWrite(ctx context.Context, v T2) channel.Status {
	return s.owner.writeSecond(ctx, v)
}

func (c *CombineLatest2[T1, T2]) writeFirst(ctx context.Context, v T1) channel.Status {
	c.mu.Lock()
	c.latestFirst = v
	c.hasFirst = true
	ready := c.hasFirst && c.hasSecond
	pair := Pair[T1, T2]{First: c.latestFirst, Second: c.latestSecond}
	c.mu.Unlock()

	if !ready {
		return channel.Success
	}
	return c.downstream.AwaitWrite(ctx, pair)
}

func (c *CombineLatest2[T1, T2]) writeSecond(ctx context.Context, v T2) channel.Status {
	c.mu.Lock()
	c.latestSecond = v
	c.hasSecond = true
	ready := c.hasFirst && c.hasSecond
	pair := Pair[T1, T2]{First: c.latestFirst, Second: c.latestSecond}
	c.mu.Unlock()

	if !ready {
		return channel.Success
	}
	return c.downstream.AwaitWrite(ctx, pair)
}

// CloseFirst marks the first input closed; once both are closed the
// downstream half is released.
func (c *CombineLatest2[T1, T2]) CloseFirst() {
	c.mu.Lock()
	c.firstClosed = true
	both := c.firstClosed && c.secClosed
	c.mu.Unlock()
	if both {
		c.closeDownstream()
	}
}

// CloseSecond marks the second input closed.
func (c *CombineLatest2[T1, T2]) CloseSecond() {
	c.mu.Lock()
	c.secClosed = true
	both := c.firstClosed && c.secClosed
	c.mu.Unlock()
	if both {
		c.closeDownstream()
	}
}

func (c *CombineLatest2[T1, T2]) closeDownstream() {
	if closer, ok := c.downstream.(interface{ Close() }); ok {
		closer.Close()
	}
}
