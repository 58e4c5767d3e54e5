// Package pipeline models a user-declared PipelineDefinition — the set
// of segments and the named ports they use — and validates the
// resulting PortGraph before the executor will accept it.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Sentinel errors for the validation taxonomy of spec.md §7.
var (
	// ErrValidation wraps every port-graph validation failure.
	ErrValidation = errors.New("pipeline: validation_error")
)

// structValidate checks the struct-level constraints (required names,
// at least one segment) before the more expensive port-graph rules run,
// grounded on the teacher's Validate/validator.Validate instance
// (pkg/validation/enhanced.go).
var structValidate = validator.New()

// SegmentType names the kind of computation a segment performs.
// Segments on the same side of a port (all its egress segments, or all
// its ingress segments) must share a SegmentType; a port has no
// manifold declaration of its own.
type SegmentType string

// Segment is a user-defined unit of computation, naming the ports it
// uses as ingress and egress.
type Segment struct {
	Name    string      `validate:"required"`
	Type    SegmentType `validate:"required"`
	Ingress []string
	Egress  []string
}

// PipelineDefinition is a set of segments, given a name for diagnostics.
type PipelineDefinition struct {
	Name     string    `validate:"required"`
	Segments []Segment `validate:"required,min=1,dive"`
}

// PortGraph maps each port name to the sets of segments that use it as
// ingress and egress, respectively.
type PortGraph struct {
	Ingress map[string]map[string]SegmentType // port -> segment name -> type
	Egress  map[string]map[string]SegmentType
}

// BuildPortGraph derives the PortGraph from a PipelineDefinition.
func BuildPortGraph(def PipelineDefinition) *PortGraph {
	g := &PortGraph{
		Ingress: make(map[string]map[string]SegmentType),
		Egress:  make(map[string]map[string]SegmentType),
	}
	for _, seg := range def.Segments {
		for _, port := range seg.Ingress {
			if g.Ingress[port] == nil {
				g.Ingress[port] = make(map[string]SegmentType)
			}
			g.Ingress[port][seg.Name] = seg.Type
		}
		for _, port := range seg.Egress {
			if g.Egress[port] == nil {
				g.Egress[port] = make(map[string]SegmentType)
			}
			g.Egress[port][seg.Name] = seg.Type
		}
	}
	return g
}

// Validate implements spec.md §4.5's two rules, grounded literally on
// the original's valid_pipeline(): a port fails validation if either
// its ingress or egress segment set is empty (dangling port), or if
// either set spans more than one distinct segment type (a multi-typed
// port without an explicit manifold declaration — manifolds are not
// modeled at this layer, so multi-typed ports always fail here).
func (def PipelineDefinition) Validate() error {
	if err := structValidate.Struct(def); err != nil {
		return errors.Join(ErrValidation, err)
	}

	g := BuildPortGraph(def)

	ports := make(map[string]struct{})
	for p := range g.Ingress {
		ports[p] = struct{}{}
	}
	for p := range g.Egress {
		ports[p] = struct{}{}
	}

	for port := range ports {
		ingress := g.Ingress[port]
		egress := g.Egress[port]

		if len(ingress) == 0 {
			return errors.Join(ErrValidation, fmt.Errorf("port %q has no ingress segment", port))
		}
		if len(egress) == 0 {
			return errors.Join(ErrValidation, fmt.Errorf("port %q has no egress segment", port))
		}
		if distinctTypes(ingress) > 1 {
			return errors.Join(ErrValidation, fmt.Errorf("port %q has more than one distinct segment type on its ingress side", port))
		}
		if distinctTypes(egress) > 1 {
			return errors.Join(ErrValidation, fmt.Errorf("port %q has more than one distinct segment type on its egress side", port))
		}
	}
	return nil
}

func distinctTypes(segs map[string]SegmentType) int {
	seen := make(map[SegmentType]struct{})
	for _, t := range segs {
		seen[t] = struct{}{}
	}
	return len(seen)
}
