package edge

import (
	"fmt"
	"sync"

	"github.com/streamfabric/corert/internal/core/channel"
)

// MultiFanOut is implemented by an endpoint that may have more than one
// edge attached to it; when AllowsMultiFanOut reports true, a second
// MakeEdge call against it does not trip Invariant E1. Broadcast
// reports true; Router reports false.
type MultiFanOut interface {
	AllowsMultiFanOut() bool
}

// Builder tracks which endpoints already have an edge attached, so it
// can enforce Invariant E1 (at most one writable half and one readable
// half connected per single-fan endpoint) across repeated MakeEdge
// calls. A Builder is safe for concurrent use.
type Builder struct {
	mu         sync.Mutex
	asProducer map[any]bool
	asConsumer map[any]bool
	defaultCap int
}

// NewBuilder constructs an edge builder. defaultCapacity is used when
// neither endpoint owns a channel and a fresh one must be allocated.
func NewBuilder(defaultCapacity int) *Builder {
	if defaultCapacity < 1 {
		defaultCapacity = 1
	}
	return &Builder{
		asProducer: make(map[any]bool),
		asConsumer: make(map[any]bool),
		defaultCap: defaultCapacity,
	}
}

// checkAndMark records one endpoint's connection in one role. The two
// roles are tracked separately: an intermediate node legitimately holds
// one readable and one writable half at once, so Invariant E1 binds per
// side, not per endpoint.
func (b *Builder) checkAndMark(endpoint any, role map[any]bool) error {
	if endpoint == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if role[endpoint] {
		if mf, ok := endpoint.(MultiFanOut); ok && mf.AllowsMultiFanOut() {
			return nil
		}
		return fmt.Errorf("%w: endpoint already has an edge attached", ErrAlreadyConnected)
	}
	role[endpoint] = true
	return nil
}

// MakeEdge resolves and constructs an edge between producer and
// consumer, enforcing the ownership, type-compatibility, and
// single-fan rules of spec.md §4.2.
//
// producer must be one of WritableAcceptor[T] (the common case: a
// runnable that will drive AwaitWrite itself) or ReadableProvider[T]
// (a pull-driven component that IS the readable half). consumer must
// be one of ReadableAcceptor[T] (the common case) or WritableProvider[T]
// (a push-driven component that IS the writable half).
func MakeEdge[T any](b *Builder, producer, consumer any) (Edge[T], error) {
	if err := b.checkAndMark(producer, b.asProducer); err != nil {
		return nil, err
	}
	if err := b.checkAndMark(consumer, b.asConsumer); err != nil {
		return nil, err
	}

	readableProvider, producerIsComponent := producer.(ReadableProvider[T])
	writableProvider, consumerIsComponent := consumer.(WritableProvider[T])

	// Direct storage: the producer's own AwaitRead, or the consumer's
	// own AwaitWrite, IS the edge — no channel is allocated. This is
	// the "forwards synchronously into the consumer's callback; no
	// buffer" variant of spec.md §4.1.
	switch {
	case producerIsComponent && consumerIsComponent:
		// Neither side owns a thread; a wrapping node (or test) must
		// pump AwaitRead->AwaitWrite itself.
		return &DirectEdge[T]{writable: writableProvider, readable: readableProvider}, nil
	case consumerIsComponent:
		wa, ok := producer.(WritableAcceptor[T])
		if !ok {
			return nil, fmt.Errorf("%w: producer exposes neither WritableAcceptor[T] nor ReadableProvider[T]", ErrTypeMismatch)
		}
		wa.SetWritableEdge(writableProvider)
		return &DirectEdge[T]{writable: writableProvider}, nil
	case producerIsComponent:
		ra, ok := consumer.(ReadableAcceptor[T])
		if !ok {
			return nil, fmt.Errorf("%w: consumer exposes neither ReadableAcceptor[T] nor WritableProvider[T]", ErrTypeMismatch)
		}
		ra.SetReadableEdge(readableProvider)
		return &DirectEdge[T]{readable: readableProvider}, nil
	}

	wa, ok := producer.(WritableAcceptor[T])
	if !ok {
		return nil, fmt.Errorf("%w: producer does not implement WritableAcceptor[T]", ErrTypeMismatch)
	}
	ra, ok := consumer.(ReadableAcceptor[T])
	if !ok {
		return nil, fmt.Errorf("%w: consumer does not implement ReadableAcceptor[T]", ErrTypeMismatch)
	}

	ch, err := resolveChannel[T](b, producer, consumer)
	if err != nil {
		return nil, err
	}

	ce := NewChannelEdge[T](ch)
	wa.SetWritableEdge(ce)
	ra.SetReadableEdge(ce)
	return ce, nil
}

// resolveChannel implements the ownership rule: if exactly one side is
// a ChannelOwner its channel is used; if both are, the producer
// (upstream) side wins; if neither, a fresh channel of the builder's
// default capacity is allocated, since by this point both sides are
// already known not to be direct components.
func resolveChannel[T any](b *Builder, producer, consumer any) (channel.Channel[T], error) {
	pOwner, pOwns := producer.(ChannelOwner[T])
	cOwner, cOwns := consumer.(ChannelOwner[T])

	switch {
	case pOwns:
		return pOwner.OwnedChannel(), nil
	case cOwns:
		return cOwner.OwnedChannel(), nil
	default:
		return channel.NewBuffered[T](b.defaultCap, 0), nil
	}
}

// MakeEdgeTypeless bypasses static type checking: it connects a
// producer and consumer whose value type is not fixed until runtime,
// relying on tag equality enforced by the caller via TypelessGroup.
// The concrete edge is built once both sides have resolved to type T;
// callers use MakeEdge[T] directly once resolution has happened — this
// helper exists to record the connection for Invariant E1 tracking
// ahead of resolution.
func (b *Builder) MakeEdgeTypeless(producer, consumer any) error {
	if err := b.checkAndMark(producer, b.asProducer); err != nil {
		return err
	}
	if err := b.checkAndMark(consumer, b.asConsumer); err != nil {
		return err
	}
	return nil
}
