// Package node provides the runnable and component node kinds that sit
// on either end of an edge: sources, sinks, intermediate nodes, and
// their thread-less component counterparts.
package node

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/streamfabric/corert/internal/core/channel"
	"github.com/streamfabric/corert/internal/core/edge"
)

// Producer is invoked once per iteration of a Source's run loop. It
// returns the next value and ok=false once production is complete.
type Producer[T any] func(ctx context.Context) (value T, ok bool)

// Consumer is invoked once per value a Sink reads.
type Consumer[T any] func(ctx context.Context, value T)

// Transform is invoked once per value a Node reads upstream, producing
// zero or more downstream values via the yield callback.
type Transform[T, U any] func(ctx context.Context, value T, yield func(U))

// Source owns its writable-edge half and runs a loop producing values
// of T, writing them downstream. On producer termination it releases
// its edge half, propagating closed.
type Source[T any] struct {
	log      zerolog.Logger
	produce  Producer[T]
	writable edge.WritableHalf[T]
}

// NewSource constructs a Source around a Producer function.
func NewSource[T any](produce Producer[T], log zerolog.Logger) *Source[T] {
	return &Source[T]{produce: produce, log: log}
}

// SetWritableEdge implements edge.WritableAcceptor[T].
func (s *Source[T]) SetWritableEdge(e edge.WritableHalf[T]) { s.writable = e }

// Run drives the production loop until the producer signals completion,
// the context is cancelled, or a write fails terminally.
func (s *Source[T]) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		v, ok := s.produce(ctx)
		if !ok {
			closeEdge(s.writable)
			return nil
		}
		switch status := s.writable.AwaitWrite(ctx, v); status {
		case channel.Success:
			continue
		case channel.Closed:
			s.log.Debug().Msg("source: downstream closed, stopping")
			return nil
		case channel.Timeout:
			s.log.Warn().Msg("source: write timed out")
			return nil
		default:
			s.log.Warn().Str("status", status.String()).Msg("source: write failed")
			return nil
		}
	}
}

// Sink owns its readable-edge half and runs a loop reading until
// closed.
type Sink[T any] struct {
	log      zerolog.Logger
	consume  Consumer[T]
	readable edge.ReadableHalf[T]
}

// NewSink constructs a Sink around a Consumer function.
func NewSink[T any](consume Consumer[T], log zerolog.Logger) *Sink[T] {
	return &Sink[T]{consume: consume, log: log}
}

// SetReadableEdge implements edge.ReadableAcceptor[T].
func (s *Sink[T]) SetReadableEdge(e edge.ReadableHalf[T]) { s.readable = e }

// Run drives the consumption loop until the upstream edge closes.
func (s *Sink[T]) Run(ctx context.Context) error {
	for {
		v, status := s.readable.AwaitRead(ctx)
		switch status {
		case channel.Success:
			s.consume(ctx, v)
		case channel.Closed:
			return nil
		case channel.Timeout:
			s.log.Warn().Msg("sink: read timed out")
			return nil
		default:
			s.log.Warn().Str("status", status.String()).Msg("sink: read failed")
			return nil
		}
	}
}

// Node is an intermediate that owns both halves, reads upstream,
// transforms, and writes downstream. On upstream closed it releases
// its downstream half.
type Node[T, U any] struct {
	log       zerolog.Logger
	transform Transform[T, U]
	readable  edge.ReadableHalf[T]
	writable  edge.WritableHalf[U]
}

// NewNode constructs a Node around a Transform function.
func NewNode[T, U any](transform Transform[T, U], log zerolog.Logger) *Node[T, U] {
	return &Node[T, U]{transform: transform, log: log}
}

// SetReadableEdge implements edge.ReadableAcceptor[T].
func (n *Node[T, U]) SetReadableEdge(e edge.ReadableHalf[T]) { n.readable = e }

// SetWritableEdge implements edge.WritableAcceptor[U].
func (n *Node[T, U]) SetWritableEdge(e edge.WritableHalf[U]) { n.writable = e }

// Run drives the read-transform-write loop until upstream closes.
func (n *Node[T, U]) Run(ctx context.Context) error {
	for {
		v, status := n.readable.AwaitRead(ctx)
		if status != channel.Success {
			if status != channel.Closed {
				n.log.Warn().Str("status", status.String()).Msg("node: upstream read failed")
			}
			closeEdge(n.writable)
			return nil
		}

		var writeErr error
		n.transform(ctx, v, func(out U) {
			if writeErr != nil {
				return
			}
			if s := n.writable.AwaitWrite(ctx, out); s != channel.Success {
				writeErr = errStatus(s)
			}
		})
		if writeErr != nil {
			n.log.Debug().Err(writeErr).Msg("node: downstream write stopped")
			return nil
		}
	}
}

func errStatus(s channel.Status) error {
	return statusError{s}
}

type statusError struct{ s channel.Status }

func (e statusError) Error() string { return "node: write returned " + e.s.String() }

// closeEdge releases edge storage that supports it (channel-backed
// edges do; direct edges are no-ops), propagating closed downstream
// per spec.md §4.3's release-on-termination rule.
func closeEdge(half any) {
	if c, ok := half.(interface{ Close() }); ok {
		c.Close()
	}
}
