// Package controlplane implements the long-lived bidirectional event
// stream to the remote architect service (spec.md §4.8): the client
// state machine, unary request/response correlation, the state-update
// pub/sub subject, and named subscription services.
package controlplane

// EventType enumerates the request kinds carried on the bidi stream
// (spec.md §6). The wire protocol itself is out of scope — Event is
// the core's own in-memory shape of what crosses the boundary.
type EventType int

const (
	// ClientRegisterWorkers registers this process's workers.
	ClientRegisterWorkers EventType = iota
	// ClientUnaryRequestPipelineAssignment requests segment->partition
	// assignment.
	ClientUnaryRequestPipelineAssignment
	// ClientEventRequestStateUpdate demands a fresh state update.
	ClientEventRequestStateUpdate
	// ClientSubscriptionServiceRegister creates/attaches a subscription
	// service.
	ClientSubscriptionServiceRegister
	// ServerStateUpdate is a control-plane state snapshot, server to
	// client.
	ServerStateUpdate
	// ServerError is a fatal or client-scoped error.
	ServerError
	// InstanceError is an error scoped to an addressed partition
	// instance.
	InstanceError
)

func (t EventType) String() string {
	switch t {
	case ClientRegisterWorkers:
		return "ClientRegisterWorkers"
	case ClientUnaryRequestPipelineAssignment:
		return "ClientUnaryRequestPipelineAssignment"
	case ClientEventRequestStateUpdate:
		return "ClientEventRequestStateUpdate"
	case ClientSubscriptionServiceRegister:
		return "ClientSubscriptionServiceRegister"
	case ServerStateUpdate:
		return "ServerStateUpdate"
	case ServerError:
		return "ServerError"
	case InstanceError:
		return "InstanceError"
	default:
		return "unknown"
	}
}

// EventError carries a control-plane-side error message, mirroring the
// wire protocol's optional `error` field (spec.md §6).
type EventError struct {
	Message string
}

// Event is a single message on the bidi stream: a tagged, opaquely
// encoded payload plus the correlation tag used to match unary
// request/response pairs (spec.md §3 "Correlation tag").
type Event struct {
	EventType EventType
	Tag       uint64
	Message   AnyPayload
	Error     *EventError
}
