package edge

import (
	"fmt"
	"reflect"
	"sync"
)

// TypelessPeer is notified once a typeless group resolves to a concrete
// type. Implementations (BroadcastTypeless output ports, for instance)
// use the reflect.Type to construct their concrete channel edge.
type TypelessPeer interface {
	ResolveType(t reflect.Type) error
}

// TypelessGroup tracks a set of as-yet-unresolved typeless endpoints
// that all belong to the same logical edge fan (e.g. every leg of a
// BroadcastTypeless). It implements the union-find propagation
// described in spec.md §9: connecting the first typed neighbor fixes
// the group's type; every other member of the group, transitively, is
// then resolved to the same type. A second attempt to resolve the group
// to a different type fails with ErrTypeMismatch.
//
// Groups are merged (unioned) when two typeless endpoints that were
// independently registered turn out to be connected to each other,
// giving O(alpha(n)) amortized resolution checks.
type TypelessGroup struct {
	mu       sync.Mutex
	parent   *TypelessGroup
	rank     int
	resolved reflect.Type
	members  []TypelessPeer
}

// NewTypelessGroup creates a fresh, unresolved group.
func NewTypelessGroup() *TypelessGroup {
	return &TypelessGroup{}
}

// find returns the representative group after path compression.
func (g *TypelessGroup) find() *TypelessGroup {
	root := g
	for root.parent != nil {
		root = root.parent
	}
	for g.parent != nil {
		next := g.parent
		g.parent = root
		g = next
	}
	return root
}

// Union merges two groups. If both are already resolved to different
// concrete types, returns ErrTypeMismatch.
func (g *TypelessGroup) Union(other *TypelessGroup) error {
	ra, rb := g.find(), other.find()
	if ra == rb {
		return nil
	}
	ra.mu.Lock()
	rb.mu.Lock()
	unlock := func() { rb.mu.Unlock(); ra.mu.Unlock() }

	if ra.resolved != nil && rb.resolved != nil && ra.resolved != rb.resolved {
		unlock()
		return fmt.Errorf("%w: typeless group already resolved to %s, cannot merge with group resolved to %s",
			ErrTypeMismatch, ra.resolved, rb.resolved)
	}

	// Members of a still-unresolved side learn the other side's type.
	var notify []TypelessPeer
	if ra.resolved == nil && rb.resolved != nil {
		notify = ra.members
	} else if ra.resolved != nil && rb.resolved == nil {
		notify = rb.members
	}

	if rb.rank > ra.rank {
		ra, rb = rb, ra
	}
	rb.parent = ra
	if rb.rank == ra.rank {
		ra.rank++
	}
	if ra.resolved == nil {
		ra.resolved = rb.resolved
	}
	ra.members = append(ra.members, rb.members...)
	rb.members = nil
	t := ra.resolved
	unlock()

	for _, m := range notify {
		if err := m.ResolveType(t); err != nil {
			return err
		}
	}
	return nil
}

// Register adds a member to the group without resolving it.
func (g *TypelessGroup) Register(peer TypelessPeer) {
	root := g.find()
	root.mu.Lock()
	defer root.mu.Unlock()
	root.members = append(root.members, peer)
}

// Resolve fixes the group's concrete type, propagating it to every
// current member. If the group is already resolved to a different
// type, returns ErrTypeMismatch and leaves the group untouched.
func (g *TypelessGroup) Resolve(t reflect.Type) error {
	root := g.find()
	root.mu.Lock()
	if root.resolved != nil {
		existing := root.resolved
		root.mu.Unlock()
		if existing != t {
			return fmt.Errorf("%w: typeless group resolved to %s, cannot also resolve to %s",
				ErrTypeMismatch, existing, t)
		}
		return nil
	}
	root.resolved = t
	members := root.members
	root.mu.Unlock()

	for _, m := range members {
		if err := m.ResolveType(t); err != nil {
			return err
		}
	}
	return nil
}

// ResolvedType returns the group's concrete type, or nil if unresolved.
func (g *TypelessGroup) ResolvedType() reflect.Type {
	root := g.find()
	root.mu.Lock()
	defer root.mu.Unlock()
	return root.resolved
}
