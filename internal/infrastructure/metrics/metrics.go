package metrics

import (
	"expvar"
)

// Channel metrics: writes/reads/closes observed by internal/core/channel,
// keyed by the channel's own kind label ("buffered", "immediate").
var (
	channelWritten = expvar.NewMap("corert_channel_written_total")
	channelRead    = expvar.NewMap("corert_channel_read_total")
	channelClosed  = expvar.NewMap("corert_channel_closed_total")
	channelLen     = expvar.NewMap("corert_channel_len")
)

// Edge metrics: edges made and nodes/edges destroyed by
// internal/core/edge's Arena.
var (
	edgesBuilt       = new(expvar.Int)
	edgesDestroyed   = new(expvar.Int)
	nodesDestroyed   = new(expvar.Int)
)

// Control-plane metrics: client state transitions, unary round trips,
// and state-update publications observed by
// internal/infrastructure/controlplane.Client.
var (
	controlPlaneState        = new(expvar.String)
	controlPlaneUnarySent    = new(expvar.Int)
	controlPlaneUnaryTimeout = new(expvar.Int)
	controlPlaneUnaryFailed  = new(expvar.Int)
	controlPlaneStateUpdates = new(expvar.Int)
)

func init() {
	expvar.Publish("corert_edges_built_total", edgesBuilt)
	expvar.Publish("corert_edges_destroyed_total", edgesDestroyed)
	expvar.Publish("corert_nodes_destroyed_total", nodesDestroyed)
	expvar.Publish("corert_controlplane_state", controlPlaneState)
	expvar.Publish("corert_controlplane_unary_sent_total", controlPlaneUnarySent)
	expvar.Publish("corert_controlplane_unary_timeout_total", controlPlaneUnaryTimeout)
	expvar.Publish("corert_controlplane_unary_failed_total", controlPlaneUnaryFailed)
	expvar.Publish("corert_controlplane_state_updates_total", controlPlaneStateUpdates)
}

// Channel helpers.
func ChannelWritten(kind string, n int64) { channelWritten.Add(kind, n) }
func ChannelRead(kind string, n int64)    { channelRead.Add(kind, n) }
func ChannelClosed(kind string)           { channelClosed.Add(kind, 1) }
func ChannelLen(kind string, n int64)     { setMapInt(channelLen, kind, n) }

// Edge/Arena helpers.
func IncEdgesBuilt()     { edgesBuilt.Add(1) }
func IncEdgesDestroyed() { edgesDestroyed.Add(1) }
func IncNodesDestroyed() { nodesDestroyed.Add(1) }

// Control-plane helpers.
func SetControlPlaneState(s string)    { controlPlaneState.Set(s) }
func IncControlPlaneUnarySent()        { controlPlaneUnarySent.Add(1) }
func IncControlPlaneUnaryTimeout()     { controlPlaneUnaryTimeout.Add(1) }
func IncControlPlaneUnaryFailed()      { controlPlaneUnaryFailed.Add(1) }
func IncControlPlaneStateUpdates()     { controlPlaneStateUpdates.Add(1) }

// setMapInt replaces the value for a key in an expvar.Map with an
// *expvar.Int set to v.
func setMapInt(m *expvar.Map, key string, v int64) {
	x := new(expvar.Int)
	x.Set(v)
	m.Set(key, x)
}
