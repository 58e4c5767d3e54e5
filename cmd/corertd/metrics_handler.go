package main

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// promMetricsHandler renders expvar-published corert metrics in
// Prometheus text exposition format, grounded on the teacher's
// cmd/flowgraph-server conversion (no external Prometheus client
// dependency — expvar's own registry is the source of truth, and the
// teacher's doc comment for internal/infrastructure/metrics already
// commits to avoiding one for this concern).
func promMetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	type meta struct {
		typ, help string
		isMap     bool
		label     string
	}
	metas := map[string]meta{
		"corert_channel_written_total":            {typ: "counter", help: "Channel values written", isMap: true, label: "kind"},
		"corert_channel_read_total":                {typ: "counter", help: "Channel values read", isMap: true, label: "kind"},
		"corert_channel_closed_total":               {typ: "counter", help: "Channels closed", isMap: true, label: "kind"},
		"corert_channel_len":                        {typ: "gauge", help: "Most recently observed channel length", isMap: true, label: "kind"},
		"corert_edges_built_total":                  {typ: "counter", help: "Edges registered in an arena"},
		"corert_edges_destroyed_total":              {typ: "counter", help: "Edges retired in an arena"},
		"corert_nodes_destroyed_total":               {typ: "counter", help: "Nodes destroyed in an arena"},
		"corert_controlplane_unary_sent_total":       {typ: "counter", help: "Unary requests sent to the architect"},
		"corert_controlplane_unary_timeout_total":    {typ: "counter", help: "Unary requests that timed out"},
		"corert_controlplane_unary_failed_total":     {typ: "counter", help: "Unary requests failed by transport or remote error"},
		"corert_controlplane_state_updates_total":     {typ: "counter", help: "Control-plane state updates published"},
	}

	varNames := make([]string, 0, 32)
	expvar.Do(func(kv expvar.KeyValue) { varNames = append(varNames, kv.Key) })
	sort.Strings(varNames)

	printed := make(map[string]bool)
	writeHeader := func(name string, m meta) {
		if printed[name] {
			return
		}
		_, _ = fmt.Fprintf(w, "# HELP %s %s\n", name, sanitizeHelp(m.help))
		_, _ = fmt.Fprintf(w, "# TYPE %s %s\n", name, m.typ)
		printed[name] = true
	}

	for _, name := range varNames {
		v := expvar.Get(name)
		m, known := metas[name]
		if !known {
			if iv, ok := v.(*expvar.Int); ok {
				_, _ = fmt.Fprintf(w, "# TYPE %s gauge\n", name)
				_, _ = fmt.Fprintf(w, "%s %s\n", name, iv.String())
			}
			continue
		}
		writeHeader(name, m)
		if m.isMap {
			mp, ok := v.(*expvar.Map)
			if !ok {
				continue
			}
			sub := make([]expvar.KeyValue, 0, 8)
			mp.Do(func(kv expvar.KeyValue) { sub = append(sub, kv) })
			sort.Slice(sub, func(i, j int) bool { return sub[i].Key < sub[j].Key })
			for _, kv := range sub {
				_, _ = fmt.Fprintf(w, "%s{%s=\"%s\"} %s\n", name, m.label, escapeLabel(kv.Key), kv.Value.String())
			}
		} else {
			_, _ = fmt.Fprintf(w, "%s %s\n", name, v.String())
		}
	}
}

func sanitizeHelp(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
