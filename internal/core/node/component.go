package node

import (
	"context"

	"github.com/streamfabric/corert/internal/core/channel"
)

// SourceComponent runs no thread of its own: GetData is pulled by
// whichever downstream reader is driving the edge, per spec.md §4.3.
// It implements edge.ReadableProvider[T] by definition (ReadableHalf
// equals AwaitRead equals GetData).
type SourceComponent[T any] struct {
	produce Producer[T]
}

// NewSourceComponent constructs a SourceComponent around a Producer.
func NewSourceComponent[T any](produce Producer[T]) *SourceComponent[T] {
	return &SourceComponent[T]{produce: produce}
}

// AwaitRead implements edge.ReadableHalf[T] == edge.ReadableProvider[T].
func (s *SourceComponent[T]) AwaitRead(ctx context.Context) (T, channel.Status) {
	v, ok := s.produce(ctx)
	if !ok {
		var zero T
		return zero, channel.Closed
	}
	return v, channel.Success
}

// SinkComponent runs no thread of its own: AwaitWrite is pushed by
// whichever upstream writer is driving the edge.
type SinkComponent[T any] struct {
	consume Consumer[T]
}

// NewSinkComponent constructs a SinkComponent around a Consumer.
func NewSinkComponent[T any](consume Consumer[T]) *SinkComponent[T] {
	return &SinkComponent[T]{consume: consume}
}

// AwaitWrite implements edge.WritableHalf[T] == edge.WritableProvider[T].
func (s *SinkComponent[T]) AwaitWrite(ctx context.Context, v T) channel.Status {
	s.consume(ctx, v)
	return channel.Success
}

// NodeComponent runs no thread of its own: it is pushed values on its
// writable half and, for each one, pushes zero or more transformed
// values into its own writable downstream half synchronously.
type NodeComponent[T, U any] struct {
	transform Transform[T, U]
	writable  interface {
		AwaitWrite(ctx context.Context, value U) channel.Status
	}
}

// NewNodeComponent constructs a NodeComponent around a Transform,
// bound to a downstream writable half to push results into.
func NewNodeComponent[T, U any](transform Transform[T, U], downstream interface {
	AwaitWrite(ctx context.Context, value U) channel.Status
}) *NodeComponent[T, U] {
	return &NodeComponent[T, U]{transform: transform, writable: downstream}
}

// AwaitWrite implements edge.WritableHalf[T] == edge.WritableProvider[T].
func (n *NodeComponent[T, U]) AwaitWrite(ctx context.Context, v T) channel.Status {
	result := channel.Success
	n.transform(ctx, v, func(out U) {
		if result != channel.Success {
			return
		}
		result = n.writable.AwaitWrite(ctx, out)
	})
	return result
}
