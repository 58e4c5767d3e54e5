// Package edge implements the typed producer/consumer connection fabric
// between nodes: capability interfaces, the channel-backed and direct
// edge storage variants, the typeless resolution group, and the edge
// builder that wires a producer to a consumer under the ownership and
// type-compatibility rules.
package edge

import (
	"context"

	"github.com/streamfabric/corert/internal/core/channel"
)

// WritableHalf is the write side of a connected edge.
type WritableHalf[T any] interface {
	AwaitWrite(ctx context.Context, value T) channel.Status
}

// ReadableHalf is the read side of a connected edge.
type ReadableHalf[T any] interface {
	AwaitRead(ctx context.Context) (T, channel.Status)
}

// ChannelOwner is implemented by a node that already owns a channel
// usable directly as edge storage (for example a Node with a
// preallocated input buffer). Builder ties use this to skip allocating
// a fresh channel.
type ChannelOwner[T any] interface {
	OwnedChannel() channel.Channel[T]
}

// WritableProvider is implemented by a push-driven component with no
// owned thread of execution — its AwaitWrite call IS the edge; the
// builder hands it directly to the producer as the writable half
// instead of allocating storage. Matches SinkComponent in spec.md §4.3.
type WritableProvider[T any] interface {
	WritableHalf[T]
}

// ReadableProvider is implemented by a pull-driven component with no
// owned thread of execution — its AwaitRead call IS the edge; the
// builder hands it directly to the consumer as the readable half.
// Matches SourceComponent in spec.md §4.3.
type ReadableProvider[T any] interface {
	ReadableHalf[T]
}

// WritableAcceptor is implemented by a node that drives writes itself
// once handed a writable half — a Source, or a Node's downstream side.
type WritableAcceptor[T any] interface {
	SetWritableEdge(edge WritableHalf[T])
}

// ReadableAcceptor is implemented by a node that drives reads itself
// once handed a readable half — a Sink, or a Node's upstream side.
type ReadableAcceptor[T any] interface {
	SetReadableEdge(edge ReadableHalf[T])
}
