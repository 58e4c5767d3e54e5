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

func TestConditionalForwardsTrueDropsFalse(t *testing.T) {
	ch := channel.NewBuffered[int](8, 0)
	downstream := edge.NewChannelEdge[int](ch)
	cond := operator.NewConditional(func(v int) bool { return v%2 == 0 }, downstream)

	ctx := context.Background()
	for v := 0; v < 5; v++ {
		require.Equal(t, channel.Success, cond.AwaitWrite(ctx, v))
	}
	assert.Equal(t, 3, ch.Len())

	cond.Close()
	assert.Equal(t, []int{0, 2, 4}, drain[int](t, downstream))
}

func TestConditionalCloseReleasesDownstream(t *testing.T) {
	ch := channel.NewBuffered[int](1, 0)
	cond := operator.NewConditional(func(int) bool { return true }, edge.NewChannelEdge[int](ch))

	cond.Close()
	_, status := ch.AwaitRead(context.Background())
	assert.Equal(t, channel.Closed, status)
}
