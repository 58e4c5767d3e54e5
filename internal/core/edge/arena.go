package edge

import (
	"fmt"
	"sync"

	"github.com/streamfabric/corert/internal/infrastructure/metrics"
)

// NodeID identifies a node registered in an Arena.
type NodeID int

// EdgeID identifies an edge registered in an Arena.
type EdgeID int

// retirable is satisfied by every edge storage variant; Close releases
// the underlying storage (closing the shared channel, in the
// channel-backed case; a no-op for direct edges).
type retirable interface {
	Close()
}

// Arena owns the node and edge index spaces for one executor/runtime
// instance, implementing the arena-plus-index ownership scheme of
// spec.md §9: the executor owns both arenas, and the arena records for
// each node index the edge indices it holds. Destroying a node while it still owns
// unretired edges is Invariant E2/I3 and is fatal — the original
// source enforces this with an EXPECT_DEATH test; the Go analogue is a
// panic, checked in tests with require.Panics.
type Arena struct {
	mu        sync.Mutex
	nextNode  NodeID
	nextEdge  EdgeID
	nodeEdges map[NodeID]map[EdgeID]struct{}
	retirable map[EdgeID]retirable
}

// NewArena constructs an empty arena.
func NewArena() *Arena {
	return &Arena{
		nodeEdges: make(map[NodeID]map[EdgeID]struct{}),
		retirable: make(map[EdgeID]retirable),
	}
}

// RegisterNode allocates a fresh node index.
func (a *Arena) RegisterNode() NodeID {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextNode
	a.nextNode++
	a.nodeEdges[id] = make(map[EdgeID]struct{})
	return id
}

// RegisterEdge allocates a fresh edge index, associating it with every
// node that holds a half of it (typically the producer and consumer
// node ids, though a direct component-only edge may list just one).
func (a *Arena) RegisterEdge(e retirable, owners ...NodeID) EdgeID {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextEdge
	a.nextEdge++
	a.retirable[id] = e
	for _, owner := range owners {
		set, ok := a.nodeEdges[owner]
		if !ok {
			set = make(map[EdgeID]struct{})
			a.nodeEdges[owner] = set
		}
		set[id] = struct{}{}
	}
	metrics.IncEdgesBuilt()
	return id
}

// RetireEdge closes the edge's storage and removes it from every node
// that held it. Safe to call more than once.
func (a *Arena) RetireEdge(id EdgeID, owners ...NodeID) {
	a.mu.Lock()
	e, ok := a.retirable[id]
	if ok {
		delete(a.retirable, id)
	}
	for _, owner := range owners {
		if set, ok := a.nodeEdges[owner]; ok {
			delete(set, id)
		}
	}
	a.mu.Unlock()

	if ok {
		e.Close()
		metrics.IncEdgesDestroyed()
	}
}

// DestroyNode removes a node from the arena. It panics if the node
// still owns any unretired edge, per Invariant E2/I3.
func (a *Arena) DestroyNode(id NodeID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	edges, ok := a.nodeEdges[id]
	if ok && len(edges) > 0 {
		panic(fmt.Errorf("%w: node %d destroyed while still holding %d edge(s)", ErrUseAfterDestruction, id, len(edges)))
	}
	delete(a.nodeEdges, id)
	metrics.IncNodesDestroyed()
}

// LiveEdgeCount reports how many edges a node still owns; used by
// tests to assert retire-before-destroy without triggering the panic.
func (a *Arena) LiveEdgeCount(id NodeID) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.nodeEdges[id])
}

func (d *DirectEdge[T]) Close() {}
