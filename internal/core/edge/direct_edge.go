package edge

import (
	"context"

	"github.com/streamfabric/corert/internal/core/channel"
)

// DirectEdge is the component-to-component storage variant: no buffer,
// no channel. Whichever side is a runnable (the common case) calls
// straight through to the other side's own AwaitWrite/AwaitRead. When
// both sides are components, neither half is driven automatically —
// some wrapping node pumps AwaitRead into AwaitWrite itself.
type DirectEdge[T any] struct {
	writable WritableHalf[T]
	readable ReadableHalf[T]
}

func (d *DirectEdge[T]) AwaitWrite(ctx context.Context, value T) channel.Status {
	if d.writable == nil {
		return channel.Error
	}
	return d.writable.AwaitWrite(ctx, value)
}

func (d *DirectEdge[T]) AwaitRead(ctx context.Context) (T, channel.Status) {
	if d.readable == nil {
		var zero T
		return zero, channel.Error
	}
	return d.readable.AwaitRead(ctx)
}

// Pump forwards one value from the readable side to the writable side.
// Only meaningful when both sides of the DirectEdge are plain
// components with no thread of their own.
func (d *DirectEdge[T]) Pump(ctx context.Context) channel.Status {
	v, status := d.AwaitRead(ctx)
	if status != channel.Success {
		return status
	}
	return d.AwaitWrite(ctx, v)
}
