package executor

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/streamfabric/corert/internal/core/pipeline"
	"github.com/streamfabric/corert/internal/core/service"
	"github.com/streamfabric/corert/internal/infrastructure/config"
	"github.com/streamfabric/corert/internal/infrastructure/controlplane"
)

// Runtime is one running instance of the corert process: the
// control-plane client plus the pipeline manager it hands registered
// definitions to once connected (spec.md §4.7: "`start` constructs the
// Runtime... starts it, waits for Running, then hands the registered
// pipeline definitions to the runtime's pipeline manager").
//
// Runtime does not itself implement service.Child's single-phase Start,
// because construction requires the caller's pipeline definitions be
// handed to the manager between the client reaching Running and the
// manager's own Start — Stop/Kill/AwaitJoin are delegated to an
// internal Composite once both children exist.
type Runtime struct {
	log zerolog.Logger

	Client   *controlplane.Client
	Pipeline *PipelineManager

	composite *service.Composite
}

// Option customizes the controlplane.Options a Runtime constructs its
// Client from — primarily a seam for tests to supply a fake Stream in
// place of dialing a real architect.
type Option func(*controlplane.Options)

// WithStream overrides the Stream the runtime's client drives, instead
// of dialing Address.
func WithStream(stream controlplane.Stream) Option {
	return func(o *controlplane.Options) { o.Stream = stream }
}

// NewRuntime constructs the control-plane client and pipeline manager
// for cfg, wiring the client's architect address and using the unary
// timeout as the bound on the client's registration handshake.
func NewRuntime(cfg config.ControlPlaneConfig, log zerolog.Logger, opts ...Option) *Runtime {
	clientOpts := controlplane.Options{
		Address:         cfg.ArchitectEndpoint,
		RegisterTimeout: cfg.UnaryTimeout,
		Log:             log.With().Str("component", "controlplane").Logger(),
	}
	for _, opt := range opts {
		opt(&clientOpts)
	}
	client := controlplane.New(clientOpts)
	pm := NewPipelineManager(client, log.With().Str("component", "pipeline_manager").Logger())

	return &Runtime{
		log:       log,
		Client:    client,
		Pipeline:  pm,
		composite: service.NewComposite(client, pm),
	}
}

// RegisterPipeline adds def to the set requested for assignment once
// the runtime starts. It must be called before Start.
func (r *Runtime) RegisterPipeline(def pipeline.PipelineDefinition) error {
	return r.Pipeline.Register(def)
}

// Start brings the control-plane client up, waits for it to reach
// Running (spec.md's "Operational" client state is reached inside the
// client's own OnStart before Lifecycle.Start returns), then starts the
// pipeline manager so it can request assignment for every registered
// definition.
func (r *Runtime) Start(ctx context.Context) error {
	if err := r.Client.Start(ctx); err != nil {
		return fmt.Errorf("executor: start control-plane client: %w", err)
	}
	if err := r.Client.AwaitLive(ctx); err != nil {
		return fmt.Errorf("executor: control-plane client never became live: %w", err)
	}
	if err := r.Pipeline.Start(ctx); err != nil {
		return fmt.Errorf("executor: start pipeline manager: %w", err)
	}
	go r.superviseClient()
	return nil
}

// superviseClient tears the rest of the runtime down when the
// control-plane client dies rather than being stopped cooperatively: a
// transport failure kills the client, and the pipeline manager must
// follow so AwaitJoin unblocks.
func (r *Runtime) superviseClient() {
	_ = r.Client.Lifecycle.AwaitJoin(context.Background())
	if r.Client.Lifecycle.State() == service.Killed {
		r.log.Warn().Msg("executor: control-plane client died, killing pipeline manager")
		r.Pipeline.Kill()
	}
}

// Stop tears the runtime down in reverse dependency order: pipeline
// manager, then control-plane client.
func (r *Runtime) Stop(ctx context.Context) error { return r.composite.Stop(ctx) }

// Kill tears the runtime down immediately, best-effort.
func (r *Runtime) Kill() { r.composite.Kill() }

// AwaitJoin blocks until every runtime component has reached a
// terminal state.
func (r *Runtime) AwaitJoin(ctx context.Context) error { return r.composite.AwaitJoin(ctx) }
