package operator

import (
	"context"

	"github.com/streamfabric/corert/internal/core/channel"
)

// Queue shares a single internal channel between one writable and
// potentially many readable providers: each value goes to exactly one
// reader (work-stealing semantics — Go's buffered channel already
// gives this for free when multiple goroutines call AwaitRead
// concurrently, since channel receives are themselves work-stealing).
type Queue[T any] struct {
	ch channel.Channel[T]
}

// NewQueue constructs a Queue backed by a buffered channel of the
// given capacity.
func NewQueue[T any](capacity int) *Queue[T] {
	return &Queue[T]{ch: channel.NewBuffered[T](capacity, 0)}
}

// AwaitWrite implements edge.WritableHalf[T] == edge.WritableProvider[T].
func (q *Queue[T]) AwaitWrite(ctx context.Context, v T) channel.Status {
	return q.ch.AwaitWrite(ctx, v)
}

// AwaitRead implements edge.ReadableHalf[T] == edge.ReadableProvider[T].
// Multiple goroutines may call AwaitRead concurrently; the underlying
// Go channel guarantees each value is delivered to exactly one of
// them.
func (q *Queue[T]) AwaitRead(ctx context.Context) (T, channel.Status) {
	return q.ch.AwaitRead(ctx)
}

// Close releases the shared channel.
func (q *Queue[T]) Close() {
	q.ch.Close()
}
