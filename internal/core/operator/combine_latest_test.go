package operator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamfabric/corert/internal/core/channel"
	"github.com/streamfabric/corert/internal/core/edge"
	"github.com/streamfabric/corert/internal/core/operator"
)

func TestCombineLatestEmitsAfterBothSlotsSeen(t *testing.T) {
	ch := channel.NewBuffered[operator.Pair[int, string]](8, 0)
	downstream := edge.NewChannelEdge[operator.Pair[int, string]](ch)
	cl := operator.NewCombineLatest2[int, string](downstream)

	ctx := context.Background()
	first := cl.FirstSink()
	second := cl.SecondSink()

	// Nothing emits until both slots have a value.
	require.Equal(t, channel.Success, first.AwaitWrite(ctx, 1))
	assert.Equal(t, 0, ch.Len())

	require.Equal(t, channel.Success, second.AwaitWrite(ctx, "a"))
	v, status := downstream.AwaitRead(ctx)
	require.Equal(t, channel.Success, status)
	assert.Equal(t, operator.Pair[int, string]{First: 1, Second: "a"}, v)

	// Latest-per-slot is cached: a new first value pairs with the
	// cached second.
	require.Equal(t, channel.Success, first.AwaitWrite(ctx, 2))
	v, status = downstream.AwaitRead(ctx)
	require.Equal(t, channel.Success, status)
	assert.Equal(t, operator.Pair[int, string]{First: 2, Second: "a"}, v)
}

func TestCombineLatestClosesDownstreamWhenAllInputsClose(t *testing.T) {
	ch := channel.NewBuffered[operator.Pair[int, string]](8, 0)
	downstream := edge.NewChannelEdge[operator.Pair[int, string]](ch)
	cl := operator.NewCombineLatest2[int, string](downstream)

	ctx := context.Background()
	cl.CloseFirst()
	// One input closed is not enough: the second slot still accepts.
	require.Equal(t, channel.Success, cl.SecondSink().AwaitWrite(ctx, "still open"))

	cl.CloseSecond()
	_, status := downstream.AwaitRead(ctx)
	assert.Equal(t, channel.Closed, status)
}
