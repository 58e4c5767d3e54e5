// Command corertd runs one corert worker process: it loads
// configuration, constructs an Executor, registers its pipeline
// definitions, and serves a debug/metrics HTTP endpoint alongside the
// running executor (spec.md §4.7, §2 "External Interfaces").
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/streamfabric/corert/internal/core/pipeline"
	"github.com/streamfabric/corert/internal/executor"
	"github.com/streamfabric/corert/internal/infrastructure/config"
)

func main() {
	configPath := flag.String("config", "corert.yaml", "path to a YAML RuntimeConfig")
	debugAddr := flag.String("debug-addr", ":8080", "address for the debug/metrics HTTP server")
	flag.Parse()

	log := newLogger()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("corertd: load config")
	}

	exec := executor.New(*cfg, log)
	if err := exec.RegisterPipeline(examplePipeline()); err != nil {
		log.Fatal().Err(err).Msg("corertd: register pipeline")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go serveDebug(*debugAddr, log)

	if err := exec.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("corertd: start executor")
	}
	log.Info().Msg("corertd: executor running")

	<-ctx.Done()
	log.Info().Msg("corertd: shutting down")

	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Executor.ShutdownTimeout)
	defer cancel()
	if err := exec.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("corertd: graceful stop failed, killing")
		exec.Kill()
	}
	_ = exec.Join(stopCtx)
}

// newLogger constructs the process-wide zerolog logger, following the
// pack's constructor-injection convention
// (piwi3910-openfroyo/pkg/telemetry/logger.go): corertd builds one
// logger here and passes it down explicitly, never through a package
// global.
func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}

// examplePipeline is a minimal well-formed pipeline registered so a
// freshly cloned corertd has something to request assignment for; real
// deployments register their own definitions before calling Start.
func examplePipeline() pipeline.PipelineDefinition {
	return pipeline.PipelineDefinition{
		Name: "example",
		Segments: []pipeline.Segment{
			{Name: "source", Type: "source", Egress: []string{"events"}},
			{Name: "sink", Type: "sink", Ingress: []string{"events"}},
		},
	}
}

func serveDebug(addr string, log zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintln(w, "corertd is running. See /healthz, /debug/vars, /debug/pprof/")
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "ok")
	})
	mux.HandleFunc("/metrics", promMetricsHandler)
	// expvar and net/http/pprof register on the default mux.
	mux.Handle("/debug/", http.DefaultServeMux)

	log.Info().Str("addr", addr).Msg("corertd: debug server listening")
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("corertd: debug server error")
	}
}
