package controlplane

import "errors"

// Sentinel errors matching the control-plane-scoped kinds of the error
// taxonomy (spec.md §7).
var (
	// ErrNotReady is returned by a unary request issued before the
	// client reaches Operational, if shutdown intervenes first instead
	// of the request later succeeding once Operational is reached.
	ErrNotReady = errors.New("controlplane: not_ready")

	// ErrTransport marks the bidi stream as broken. All pending unary
	// promises complete with this error and the client transitions to
	// FailedToConnect.
	ErrTransport = errors.New("controlplane: transport_error")

	// ErrTimeout is the error a pending unary promise completes with
	// when its deadline elapses before a matching response arrives.
	ErrTimeout = errors.New("controlplane: timeout")

	// ErrRemote wraps an EventError.Message carried by the architect on
	// a unary response or a ServerError event.
	ErrRemote = errors.New("controlplane: remote_error")

	// ErrClosed is returned by operations attempted after the client has
	// shut down.
	ErrClosed = errors.New("controlplane: client closed")
)
