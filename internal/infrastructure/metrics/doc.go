// Package metrics exposes expvar-published counters and gauges for the
// corert runtime (channels, edges, and the control-plane client). It
// deliberately avoids a third-party metrics dependency, following the
// teacher's own choice for this concern, and is consumed by an
// optional debug server for /debug/vars.
package metrics
