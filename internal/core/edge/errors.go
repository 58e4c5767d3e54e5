package edge

import "errors"

// Sentinel errors matching the programming-error kinds of the error
// taxonomy: surfaced synchronously from the builder, never as an edge
// Status.
var (
	// ErrTypeMismatch is raised when make_edge cannot reconcile
	// producer/consumer types and no adapter is registered.
	ErrTypeMismatch = errors.New("edge: type mismatch")

	// ErrAlreadyConnected is raised when a second edge is attached to
	// an endpoint that is not declared multi-fan-out (Invariant E1).
	ErrAlreadyConnected = errors.New("edge: already connected")

	// ErrUseAfterDestruction is the panic value used by the arena when
	// a node is destroyed while still holding connected edges
	// (Invariant E2/I3). It is never returned as an error value; see
	// Arena.DestroyNode.
	ErrUseAfterDestruction = errors.New("edge: use after destruction")
)
