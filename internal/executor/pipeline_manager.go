// Package executor wires the control-plane client, the registered
// pipeline definitions, and the per-process runtime state machine
// together (spec.md §4.7 "Executor").
package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/streamfabric/corert/internal/core/pipeline"
	"github.com/streamfabric/corert/internal/core/service"
	"github.com/streamfabric/corert/internal/infrastructure/controlplane"
)

// assignmentRequest/assignmentResponse are the wire shapes exchanged
// with the architect over ClientUnaryRequestPipelineAssignment. Field
// names are exported so they round-trip through the msgpack codec
// without struct tags, matching the rest of the controlplane package.
type assignmentRequest struct {
	PipelineName string
	Segments     []string
}

type assignmentResponse struct {
	Assignments []controlplane.SegmentAssignment
}

// PipelineManager owns the set of registered PipelineDefinitions for
// one runtime, requests their segment assignment from the architect on
// start, and exposes the resulting assignment for the executor's own
// diagnostics (spec.md §4.7: "the runtime's pipeline manager").
type PipelineManager struct {
	*service.Lifecycle

	log    zerolog.Logger
	client *controlplane.Client

	mu          sync.Mutex
	definitions []pipeline.PipelineDefinition
	assignments map[string][]controlplane.SegmentAssignment
}

// NewPipelineManager constructs a manager bound to client. Call
// Register for every pipeline before Start.
func NewPipelineManager(client *controlplane.Client, log zerolog.Logger) *PipelineManager {
	m := &PipelineManager{
		log:         log,
		client:      client,
		assignments: make(map[string][]controlplane.SegmentAssignment),
	}
	m.Lifecycle = service.NewLifecycle(service.Hooks{OnStart: m.onStart})
	return m
}

// Register validates def and adds it to the set the manager requests
// assignment for on Start. Register must be called before Start.
func (m *PipelineManager) Register(def pipeline.PipelineDefinition) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("executor: register pipeline %q: %w", def.Name, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.definitions = append(m.definitions, def)
	return nil
}

// Assignments returns the segment->partition assignment the architect
// returned for pipeline name, if any.
func (m *PipelineManager) Assignments(name string) ([]controlplane.SegmentAssignment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[name]
	return a, ok
}

func (m *PipelineManager) onStart(ctx context.Context) error {
	m.mu.Lock()
	defs := append([]pipeline.PipelineDefinition(nil), m.definitions...)
	m.mu.Unlock()

	for _, def := range defs {
		segments := make([]string, len(def.Segments))
		for i, s := range def.Segments {
			segments[i] = s.Name
		}
		req := assignmentRequest{PipelineName: def.Name, Segments: segments}
		resp, err := controlplane.AwaitUnary[assignmentResponse](ctx, m.client, controlplane.ClientUnaryRequestPipelineAssignment, req)
		if err != nil {
			return fmt.Errorf("executor: request assignment for pipeline %q: %w", def.Name, err)
		}
		m.mu.Lock()
		m.assignments[def.Name] = resp.Assignments
		m.mu.Unlock()
		m.log.Info().Str("pipeline", def.Name).Int("segments", len(resp.Assignments)).Msg("executor: pipeline assigned")
	}
	return nil
}
