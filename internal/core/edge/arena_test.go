package edge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamfabric/corert/internal/core/channel"
	"github.com/streamfabric/corert/internal/core/edge"
)

func TestArenaDestroyNodeAfterRetireSucceeds(t *testing.T) {
	a := edge.NewArena()
	node := a.RegisterNode()

	ce := edge.NewChannelEdge[int](channel.NewBuffered[int](1, 0))
	id := a.RegisterEdge(ce, node)
	require.Equal(t, 1, a.LiveEdgeCount(node))

	a.RetireEdge(id, node)
	assert.Equal(t, 0, a.LiveEdgeCount(node))

	assert.NotPanics(t, func() { a.DestroyNode(node) })
}

func TestArenaDestroyNodeWithLiveEdgePanics(t *testing.T) {
	a := edge.NewArena()
	node := a.RegisterNode()

	ce := edge.NewChannelEdge[int](channel.NewBuffered[int](1, 0))
	a.RegisterEdge(ce, node)

	assert.Panics(t, func() { a.DestroyNode(node) })
}

func TestArenaRetireEdgeIsIdempotent(t *testing.T) {
	a := edge.NewArena()
	node := a.RegisterNode()

	ce := edge.NewChannelEdge[int](channel.NewBuffered[int](1, 0))
	id := a.RegisterEdge(ce, node)

	a.RetireEdge(id, node)
	assert.NotPanics(t, func() { a.RetireEdge(id, node) })
	assert.Equal(t, 0, a.LiveEdgeCount(node))
}

func TestArenaEdgeSharedBetweenTwoNodesMustRetireFromBoth(t *testing.T) {
	a := edge.NewArena()
	producer := a.RegisterNode()
	consumer := a.RegisterNode()

	ce := edge.NewChannelEdge[int](channel.NewBuffered[int](1, 0))
	id := a.RegisterEdge(ce, producer, consumer)

	a.RetireEdge(id, producer, consumer)
	assert.NotPanics(t, func() { a.DestroyNode(producer) })
	assert.NotPanics(t, func() { a.DestroyNode(consumer) })
}
