package edge

import (
	"context"

	"github.com/streamfabric/corert/internal/core/channel"
)

// ChannelEdge is the channel-backed storage variant: both halves share
// a channel.Channel[T] owned by whichever endpoint the builder decided
// was the channel owner (or a freshly allocated one).
type ChannelEdge[T any] struct {
	ch channel.Channel[T]
}

// NewChannelEdge wraps an existing channel as an edge. Used both when
// an endpoint supplies its own owned channel and when the builder
// allocates a fresh one.
func NewChannelEdge[T any](ch channel.Channel[T]) *ChannelEdge[T] {
	return &ChannelEdge[T]{ch: ch}
}

func (e *ChannelEdge[T]) AwaitWrite(ctx context.Context, value T) channel.Status {
	return e.ch.AwaitWrite(ctx, value)
}

func (e *ChannelEdge[T]) AwaitRead(ctx context.Context) (T, channel.Status) {
	return e.ch.AwaitRead(ctx)
}

// Close releases the underlying channel. Called by the arena when the
// edge is retired.
func (e *ChannelEdge[T]) Close() {
	e.ch.Close()
}
