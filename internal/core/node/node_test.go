package node_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamfabric/corert/internal/core/edge"
	"github.com/streamfabric/corert/internal/core/node"
)

func TestLinearSourceNodeSink(t *testing.T) {
	log := zerolog.Nop()
	b := edge.NewBuilder(4)

	values := []int{0, 1, 2}
	idx := 0
	src := node.NewSource[int](func(context.Context) (int, bool) {
		if idx >= len(values) {
			return 0, false
		}
		v := values[idx]
		idx++
		return v, true
	}, log)

	mid := node.NewNode[int, int](func(_ context.Context, v int, yield func(int)) {
		yield(v)
	}, log)

	var observed []int
	sink := node.NewSink[int](func(_ context.Context, v int) {
		observed = append(observed, v)
	}, log)

	_, err := edge.MakeEdge[int](b, src, mid)
	require.NoError(t, err)
	_, err = edge.MakeEdge[int](b, mid, sink)
	require.NoError(t, err)

	ctx := context.Background()
	done := make(chan error, 2)
	go func() { done <- mid.Run(ctx) }()
	go func() { done <- src.Run(ctx) }()

	require.NoError(t, <-done)
	require.NoError(t, <-done)
	require.NoError(t, sink.Run(ctx))

	assert.Equal(t, []int{0, 1, 2}, observed)
}

func TestSourceComponentSinkComponentDirect(t *testing.T) {
	b := edge.NewBuilder(1)
	values := []int{10, 20, 30}
	idx := 0
	src := node.NewSourceComponent[int](func(context.Context) (int, bool) {
		if idx >= len(values) {
			return 0, false
		}
		v := values[idx]
		idx++
		return v, true
	})

	var observed []int
	sink := node.NewSinkComponent[int](func(_ context.Context, v int) {
		observed = append(observed, v)
	})

	e, err := edge.MakeEdge[int](b, src, sink)
	require.NoError(t, err)

	ctx := context.Background()
	for {
		v, status := e.AwaitRead(ctx)
		if status != 0 {
			break
		}
		e.AwaitWrite(ctx, v)
	}
	assert.Equal(t, []int{10, 20, 30}, observed)
}
