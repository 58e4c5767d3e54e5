package operator_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamfabric/corert/internal/core/channel"
	"github.com/streamfabric/corert/internal/core/edge"
	"github.com/streamfabric/corert/internal/core/operator"
)

// collectingAcceptor stores the readable half a broadcast leg hands it.
type collectingAcceptor[T any] struct {
	edge edge.ReadableHalf[T]
}

func (a *collectingAcceptor[T]) SetReadableEdge(e edge.ReadableHalf[T]) { a.edge = e }

func drain[T any](t *testing.T, r edge.ReadableHalf[T]) []T {
	t.Helper()
	ctx := context.Background()
	var out []T
	for {
		v, status := r.AwaitRead(ctx)
		if status == channel.Closed {
			return out
		}
		require.Equal(t, channel.Success, status)
		out = append(out, v)
	}
}

func TestBroadcastEachConsumerSeesFullSequence(t *testing.T) {
	b := operator.NewBroadcast[int]()
	c1 := &collectingAcceptor[int]{}
	c2 := &collectingAcceptor[int]{}
	c3 := &collectingAcceptor[int]{}
	b.AttachConsumer(c1, 8)
	b.AttachConsumer(c2, 8)
	b.AttachConsumer(c3, 8)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.Equal(t, channel.Success, b.AwaitWrite(ctx, i))
	}

	// Close every leg so the drains terminate.
	for _, leg := range []*collectingAcceptor[int]{c1, c2, c3} {
		leg.edge.(interface{ Close() }).Close()
	}

	for _, leg := range []*collectingAcceptor[int]{c1, c2, c3} {
		assert.Equal(t, []int{0, 1, 2}, drain(t, leg.edge))
	}
}

func TestBroadcastClosedOnlyWhenAllLegsClosed(t *testing.T) {
	b := operator.NewBroadcast[int]()

	open := edge.NewChannelEdge[int](channel.NewBuffered[int](4, 0))
	closed := edge.NewChannelEdge[int](channel.NewBuffered[int](4, 0))
	closed.Close()
	b.AttachLeg(open)
	b.AttachLeg(closed)

	ctx := context.Background()
	// One leg still accepts, so the aggregate is success.
	require.Equal(t, channel.Success, b.AwaitWrite(ctx, 1))

	open.Close()
	assert.Equal(t, channel.Closed, b.AwaitWrite(ctx, 2))
}

func TestBroadcastNoLegsIsClosed(t *testing.T) {
	b := operator.NewBroadcast[int]()
	assert.Equal(t, channel.Closed, b.AwaitWrite(context.Background(), 1))
}

func TestBroadcastCloseReleasesEveryLeg(t *testing.T) {
	b := operator.NewBroadcast[int]()
	c1 := &collectingAcceptor[int]{}
	c2 := &collectingAcceptor[int]{}
	b.AttachConsumer(c1, 4)
	b.AttachConsumer(c2, 4)

	ctx := context.Background()
	require.Equal(t, channel.Success, b.AwaitWrite(ctx, 7))
	b.Close()

	assert.Equal(t, []int{7}, drain(t, c1.edge))
	assert.Equal(t, []int{7}, drain(t, c2.edge))
}

func TestBroadcastAllowsMultiFanOut(t *testing.T) {
	assert.True(t, operator.NewBroadcast[int]().AllowsMultiFanOut())
}

func TestBroadcastTypelessResolvesThroughGroup(t *testing.T) {
	group := edge.NewTypelessGroup()
	bt := operator.NewBroadcastTypeless(group)

	require.Nil(t, bt.ResolvedType())

	intType := reflect.TypeOf(0)
	require.NoError(t, group.Resolve(intType))
	assert.Equal(t, intType, bt.ResolvedType())

	// A second, conflicting resolution fails with type_mismatch.
	err := group.Resolve(reflect.TypeOf(""))
	require.Error(t, err)
	assert.ErrorIs(t, err, edge.ErrTypeMismatch)
}
