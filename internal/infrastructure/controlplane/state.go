package controlplane

// ClientState is the control-plane client's own connection state
// (spec.md §3 "ControlPlaneClient state", distinct from the generic
// service.State lifecycle the client also embeds). Transitions:
//
//	Disconnected --connect--> Connected --register--> RegisteringWorkers --ack--> Operational
//	        \                   |                             |                      |
//	         +---any failure----+-----------------------------+----------------------+--> FailedToConnect
//	Operational --shutdown--> (terminal)
type ClientState int

const (
	Disconnected ClientState = iota
	FailedToConnect
	Connected
	RegisteringWorkers
	Operational
)

func (s ClientState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case FailedToConnect:
		return "failed_to_connect"
	case Connected:
		return "connected"
	case RegisteringWorkers:
		return "registering_workers"
	case Operational:
		return "operational"
	default:
		return "unknown"
	}
}

// ControlPlaneState is the most recent state snapshot published by the
// architect (spec.md §3), decoded from a ServerStateUpdate event. The
// core treats its contents as opaque beyond the fields needed to drive
// the client itself and segment assignment.
type ControlPlaneState struct {
	// Revision is a server-assigned monotonic snapshot version, distinct
	// from the client-local StateUpdateCount used for freshness testing
	// (spec.md §4.8).
	Revision uint64
	// Assignments maps segment name to its assigned partition, the
	// result of a ClientUnaryRequestPipelineAssignment round trip.
	Assignments map[string]SegmentAssignment
	// SubscriptionMembers maps subscription-service name to its current
	// membership list, populated asynchronously as state updates arrive
	// (spec.md §4.8 "get_or_create_subscription_service").
	SubscriptionMembers map[string][]string
}

// SegmentAssignment is the (machine, partition) pair the architect
// assigns a segment instance to. corert keeps a single-partition
// simplification (spec.md's "no dynamic rebalancing" non-goal) but
// models PartitionID as a first-class field so a future multi-partition
// build has a seam (SPEC_FULL §4.6).
type SegmentAssignment struct {
	SegmentName string
	WorkerID    string
	PartitionID int
}
