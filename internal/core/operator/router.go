package operator

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/streamfabric/corert/internal/core/channel"
	"github.com/streamfabric/corert/internal/core/edge"
)

// KeyFunc extracts a routing key from a value.
type KeyFunc[K comparable, T any] func(T) K

// UnknownKeyPolicy decides what happens to a value whose key has no
// registered sink. The open question of spec.md §9 resolves to
// DropWithWarning by default; implementations may substitute their
// own, which is the "make this policy configurable" instruction.
type UnknownKeyPolicy[K comparable, T any] func(log zerolog.Logger, key K, value T)

// DropWithWarning is the default UnknownKeyPolicy.
func DropWithWarning[K comparable, T any](log zerolog.Logger, key K, value T) {
	log.Warn().Interface("key", key).Msg("router: dropping value for unknown key")
}

// Router holds a key extractor and a dynamically grown table of
// per-key writable sinks.
type Router[K comparable, T any] struct {
	mu          sync.Mutex
	extractKey  KeyFunc[K, T]
	onUnknown   UnknownKeyPolicy[K, T]
	log         zerolog.Logger
	sinks       map[K]edge.WritableHalf[T]
	sources     map[K]edge.ReadableHalf[T]
	newSinkFunc func() (edge.WritableHalf[T], edge.ReadableHalf[T])
}

// NewRouter constructs a Router. newSink is invoked once per newly
// observed key, by GetSource, to allocate that key's channel-backed
// edge (writable half kept internally, readable half returned to the
// caller so it can be handed to a per-key Sink).
func NewRouter[K comparable, T any](
	extractKey KeyFunc[K, T],
	onUnknown UnknownKeyPolicy[K, T],
	log zerolog.Logger,
	newSink func() (edge.WritableHalf[T], edge.ReadableHalf[T]),
) *Router[K, T] {
	if onUnknown == nil {
		onUnknown = DropWithWarning[K, T]
	}
	return &Router[K, T]{
		extractKey:  extractKey,
		onUnknown:   onUnknown,
		log:         log,
		sinks:       make(map[K]edge.WritableHalf[T]),
		sources:     make(map[K]edge.ReadableHalf[T]),
		newSinkFunc: newSink,
	}
}

// GetSource returns the readable half for key k, creating its
// channel-backed pair if absent. Idempotent: a second call with the
// same key returns the same readable half.
func (r *Router[K, T]) GetSource(k K) edge.ReadableHalf[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rd, ok := r.sources[k]; ok {
		return rd
	}
	w, rd := r.newSinkFunc()
	r.sinks[k] = w
	r.sources[k] = rd
	return rd
}

// AllowsMultiFanOut implements edge.MultiFanOut: a Router's sinks are
// created lazily by value, not by repeated MakeEdge calls, so the
// upstream writable side attaching to the Router itself is still
// single-fan; this flag governs attachment to the Router as a whole
// when used as a shared fan-in target.
func (r *Router[K, T]) AllowsMultiFanOut() bool { return false }

// Close releases every per-key sink, propagating the upstream's
// termination to all routed consumers.
func (r *Router[K, T]) Close() {
	r.mu.Lock()
	sinks := make([]edge.WritableHalf[T], 0, len(r.sinks))
	for _, s := range r.sinks {
		sinks = append(sinks, s)
	}
	r.mu.Unlock()

	for _, s := range sinks {
		if closer, ok := s.(interface{ Close() }); ok {
			closer.Close()
		}
	}
}

// AwaitWrite routes the value to its key's sink, or applies the
// unknown-key policy.
func (r *Router[K, T]) AwaitWrite(ctx context.Context, v T) channel.Status {
	k := r.extractKey(v)
	r.mu.Lock()
	sink, ok := r.sinks[k]
	r.mu.Unlock()
	if !ok {
		r.onUnknown(r.log, k, v)
		return channel.Success
	}
	return sink.AwaitWrite(ctx, v)
}
