package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/streamfabric/corert/internal/core/pipeline"
	"github.com/streamfabric/corert/internal/infrastructure/config"
)

// Executor is the top-level entry point a corert process drives: it
// collects pipeline definitions before start, then owns the single
// Runtime constructed from them (spec.md §4.7: "A mutex guards
// concurrent register_pipeline / start").
type Executor struct {
	cfg  config.RuntimeConfig
	log  zerolog.Logger
	opts []Option

	mu      sync.Mutex
	defs    []pipeline.PipelineDefinition
	started bool
	runtime *Runtime
}

// New constructs an Executor that has not yet started. opts customize
// the Runtime's control-plane client, e.g. WithStream in tests.
func New(cfg config.RuntimeConfig, log zerolog.Logger, opts ...Option) *Executor {
	return &Executor{cfg: cfg, log: log, opts: opts}
}

// RegisterPipeline adds def to the set started with the runtime. It is
// an error to call RegisterPipeline after Start.
func (e *Executor) RegisterPipeline(def pipeline.PipelineDefinition) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("executor: register pipeline %q: %w", def.Name, err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return fmt.Errorf("executor: cannot register pipeline %q after start", def.Name)
	}
	e.defs = append(e.defs, def)
	return nil
}

// Start is idempotent: a second call on an already-started Executor is
// a no-op. It constructs the Runtime, registers every pipeline
// definition collected so far, and starts it.
func (e *Executor) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return nil
	}
	rt := NewRuntime(e.cfg.ControlPlane, e.log, e.opts...)
	for _, def := range e.defs {
		if err := rt.RegisterPipeline(def); err != nil {
			e.mu.Unlock()
			return err
		}
	}
	e.runtime = rt
	e.started = true
	e.mu.Unlock()

	return rt.Start(ctx)
}

// Stop tears the runtime down, if started.
func (e *Executor) Stop(ctx context.Context) error {
	e.mu.Lock()
	rt := e.runtime
	e.mu.Unlock()
	if rt == nil {
		return nil
	}
	return rt.Stop(ctx)
}

// Kill tears the runtime down immediately, if started.
func (e *Executor) Kill() {
	e.mu.Lock()
	rt := e.runtime
	e.mu.Unlock()
	if rt != nil {
		rt.Kill()
	}
}

// Join blocks until the runtime reaches a terminal state, if started.
func (e *Executor) Join(ctx context.Context) error {
	e.mu.Lock()
	rt := e.runtime
	e.mu.Unlock()
	if rt == nil {
		return nil
	}
	return rt.AwaitJoin(ctx)
}
