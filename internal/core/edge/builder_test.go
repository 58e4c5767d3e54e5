package edge_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamfabric/corert/internal/core/channel"
	"github.com/streamfabric/corert/internal/core/edge"
)

// testWritableAcceptor is a minimal WritableAcceptor[T] stand-in for a
// Source's downstream side: it stores the handed-in writable half and
// exposes it to the test for driving writes.
type testWritableAcceptor[T any] struct {
	edge edge.WritableHalf[T]
}

func (a *testWritableAcceptor[T]) SetWritableEdge(e edge.WritableHalf[T]) { a.edge = e }

// testReadableAcceptor is a minimal ReadableAcceptor[T] stand-in for a
// Sink's upstream side.
type testReadableAcceptor[T any] struct {
	edge edge.ReadableHalf[T]
}

func (a *testReadableAcceptor[T]) SetReadableEdge(e edge.ReadableHalf[T]) { a.edge = e }

func TestMakeEdgeChannelBacked(t *testing.T) {
	b := edge.NewBuilder(4)
	producer := &testWritableAcceptor[int]{}
	consumer := &testReadableAcceptor[int]{}

	e, err := edge.MakeEdge[int](b, producer, consumer)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Same(t, producer.edge, e)
	assert.Same(t, consumer.edge, e)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.Equal(t, channel.Success, producer.edge.AwaitWrite(ctx, i))
	}
	for i := 0; i < 3; i++ {
		v, status := consumer.edge.AwaitRead(ctx)
		require.Equal(t, channel.Success, status)
		assert.Equal(t, i, v)
	}
}

func TestMakeEdgeAlreadyConnected(t *testing.T) {
	b := edge.NewBuilder(4)
	producer := &testWritableAcceptor[int]{}
	consumer1 := &testReadableAcceptor[int]{}
	consumer2 := &testReadableAcceptor[int]{}

	_, err := edge.MakeEdge[int](b, producer, consumer1)
	require.NoError(t, err)

	_, err = edge.MakeEdge[int](b, producer, consumer2)
	require.Error(t, err)
	assert.ErrorIs(t, err, edge.ErrAlreadyConnected)
}

// intermediateNode is both a ReadableAcceptor (upstream side) and a
// WritableAcceptor (downstream side), like a Node.
type intermediateNode[T any] struct {
	upstream   edge.ReadableHalf[T]
	downstream edge.WritableHalf[T]
}

func (n *intermediateNode[T]) SetReadableEdge(e edge.ReadableHalf[T]) { n.upstream = e }
func (n *intermediateNode[T]) SetWritableEdge(e edge.WritableHalf[T]) { n.downstream = e }

func TestMakeEdgeNodeConnectsOnBothSides(t *testing.T) {
	// One readable and one writable half on the same endpoint is the
	// normal intermediate-node shape, not an E1 violation.
	b := edge.NewBuilder(4)
	producer := &testWritableAcceptor[int]{}
	mid := &intermediateNode[int]{}
	consumer := &testReadableAcceptor[int]{}

	_, err := edge.MakeEdge[int](b, producer, mid)
	require.NoError(t, err)
	_, err = edge.MakeEdge[int](b, mid, consumer)
	require.NoError(t, err)

	// A second upstream into the same node is still rejected.
	producer2 := &testWritableAcceptor[int]{}
	_, err = edge.MakeEdge[int](b, producer2, mid)
	require.Error(t, err)
	assert.ErrorIs(t, err, edge.ErrAlreadyConnected)
}

// multiFanOutAcceptor allows repeated attachment, as a Broadcast leg
// or Router sink would.
type multiFanOutAcceptor[T any] struct {
	edges []edge.ReadableHalf[T]
}

func (a *multiFanOutAcceptor[T]) SetReadableEdge(e edge.ReadableHalf[T]) {
	a.edges = append(a.edges, e)
}
func (a *multiFanOutAcceptor[T]) AllowsMultiFanOut() bool { return true }

func TestMakeEdgeMultiFanOutBypassesE1(t *testing.T) {
	b := edge.NewBuilder(4)
	consumer := &multiFanOutAcceptor[int]{}

	producer1 := &testWritableAcceptor[int]{}
	producer2 := &testWritableAcceptor[int]{}

	_, err := edge.MakeEdge[int](b, producer1, consumer)
	require.NoError(t, err)
	_, err = edge.MakeEdge[int](b, producer2, consumer)
	require.NoError(t, err)
	assert.Len(t, consumer.edges, 2)
}

// channelOwningAcceptor owns its own channel, exercising the
// ChannelOwner ownership-resolution branch.
type channelOwningAcceptor[T any] struct {
	ch   channel.Channel[T]
	edge edge.ReadableHalf[T]
}

func newChannelOwningAcceptor[T any](capacity int) *channelOwningAcceptor[T] {
	return &channelOwningAcceptor[T]{ch: channel.NewBuffered[T](capacity, 0)}
}
func (a *channelOwningAcceptor[T]) OwnedChannel() channel.Channel[T]   { return a.ch }
func (a *channelOwningAcceptor[T]) SetReadableEdge(e edge.ReadableHalf[T]) { a.edge = e }

func TestMakeEdgeUsesConsumerOwnedChannel(t *testing.T) {
	b := edge.NewBuilder(1)
	producer := &testWritableAcceptor[int]{}
	consumer := newChannelOwningAcceptor[int](8)

	e, err := edge.MakeEdge[int](b, producer, consumer)
	require.NoError(t, err)

	ctx := context.Background()
	require.Equal(t, channel.Success, e.AwaitWrite(ctx, 7))
	assert.Equal(t, 1, consumer.ch.Len())
}

// pushComponent is a WritableProvider[T] (SinkComponent): AwaitWrite
// IS its own behaviour, with no owned thread.
type pushComponent[T any] struct {
	received []T
}

func (p *pushComponent[T]) AwaitWrite(_ context.Context, v T) channel.Status {
	p.received = append(p.received, v)
	return channel.Success
}

// pullComponent is a ReadableProvider[T] (SourceComponent): AwaitRead
// IS its own behaviour.
type pullComponent[T any] struct {
	values []T
	pos    int
}

func (p *pullComponent[T]) AwaitRead(_ context.Context) (T, channel.Status) {
	var zero T
	if p.pos >= len(p.values) {
		return zero, channel.Closed
	}
	v := p.values[p.pos]
	p.pos++
	return v, channel.Success
}

func TestMakeEdgeDirectPushComponent(t *testing.T) {
	b := edge.NewBuilder(1)
	producer := &testWritableAcceptor[int]{}
	consumer := &pushComponent[int]{}

	_, err := edge.MakeEdge[int](b, producer, consumer)
	require.NoError(t, err)

	ctx := context.Background()
	require.Equal(t, channel.Success, producer.edge.AwaitWrite(ctx, 42))
	assert.Equal(t, []int{42}, consumer.received)
}

func TestMakeEdgeDirectPullComponent(t *testing.T) {
	b := edge.NewBuilder(1)
	producer := &pullComponent[int]{values: []int{1, 2, 3}}
	consumer := &testReadableAcceptor[int]{}

	_, err := edge.MakeEdge[int](b, producer, consumer)
	require.NoError(t, err)

	ctx := context.Background()
	for _, want := range []int{1, 2, 3} {
		v, status := consumer.edge.AwaitRead(ctx)
		require.Equal(t, channel.Success, status)
		assert.Equal(t, want, v)
	}
	_, status := consumer.edge.AwaitRead(ctx)
	assert.Equal(t, channel.Closed, status)
}

func TestMakeEdgeNoChannelOwnerAndNoComponentStillAllocatesDefault(t *testing.T) {
	// Neither side owns a channel and neither is a component: the
	// builder falls back to a fresh default-capacity channel rather
	// than failing, since both endpoints are otherwise valid runnables.
	b := edge.NewBuilder(2)
	producer := &testWritableAcceptor[int]{}
	consumer := &testReadableAcceptor[int]{}

	_, err := edge.MakeEdge[int](b, producer, consumer)
	require.NoError(t, err)
	assert.NotNil(t, producer.edge)
}

func TestAdapterReadEdgeUpcast(t *testing.T) {
	b := edge.NewBuilder(4)
	producer := &testWritableAcceptor[int]{}
	consumer := &testReadableAcceptor[int]{}

	_, err := edge.MakeEdge[int](b, producer, consumer)
	require.NoError(t, err)

	adapted := edge.NewAdapterReadEdge[int, float64](consumer.edge, func(v int) float64 { return float64(v) })

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.Equal(t, channel.Success, producer.edge.AwaitWrite(ctx, i))
	}
	for i := 0; i < 3; i++ {
		v, status := adapted.AwaitRead(ctx)
		require.Equal(t, channel.Success, status)
		assert.Equal(t, float64(i), v)
	}
}
