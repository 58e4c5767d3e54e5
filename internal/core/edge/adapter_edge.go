package edge

import (
	"context"

	"github.com/streamfabric/corert/internal/core/channel"
)

// Adapter converts a producer value of type From into a consumer value
// of type To. Registered once per (From, To) pair ahead of edge
// construction; arbitrary conversions are not permitted, only ones with
// a registered adapter.
type Adapter[From, To any] func(From) To

// AdapterReadEdge wraps a readable half producing From values so that
// callers read To values instead — the shape used by the Upcast
// end-to-end scenario (Source<int> -> adapter -> Sink<float>): the
// adapter sits on the read side, converting each int pulled off the
// shared channel into a float before handing it to the sink.
type AdapterReadEdge[From, To any] struct {
	inner   ReadableHalf[From]
	convert Adapter[From, To]
}

// NewAdapterReadEdge constructs a read-side converting edge.
func NewAdapterReadEdge[From, To any](inner ReadableHalf[From], convert Adapter[From, To]) *AdapterReadEdge[From, To] {
	return &AdapterReadEdge[From, To]{inner: inner, convert: convert}
}

func (a *AdapterReadEdge[From, To]) AwaitRead(ctx context.Context) (To, channel.Status) {
	v, status := a.inner.AwaitRead(ctx)
	var zero To
	if status != channel.Success {
		return zero, status
	}
	return a.convert(v), status
}
