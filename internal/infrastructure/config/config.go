// Package config loads the RuntimeConfig that parameterizes a corert
// executor: worker count, channel capacity, and the architect endpoint
// (SPEC_FULL.md §2.3). It follows the pack's yaml.v3 nested-struct plus
// Defaults() convention (yatesdr-warpath/shingo-core/config), layered
// with a godotenv .env overlay for local development (raja-aiml-flowgraph's
// rag-pgvector-openai example config).
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// RuntimeConfig is the top-level configuration for a corert process.
type RuntimeConfig struct {
	Executor     ExecutorConfig     `yaml:"executor"`
	ControlPlane ControlPlaneConfig `yaml:"control_plane"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// ExecutorConfig controls the runtime's local resource shape.
type ExecutorConfig struct {
	// WorkerCount is the number of segment-execution workers per
	// partition (SPEC_FULL.md §4.6).
	WorkerCount int `yaml:"worker_count"`
	// ChannelCapacity is the default buffered-channel capacity for edges
	// that own their channel (internal/core/channel.Buffered). Nothing
	// outside this package reads it; edge.NewBuilder takes its capacity
	// as an argument.
	ChannelCapacity int `yaml:"channel_capacity"`
	// ShutdownTimeout bounds how long Stop waits for segments to drain
	// before the executor escalates to Kill.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ControlPlaneConfig addresses the architect. ReconnectInterval is
// loaded but not read: the runtime does not reconnect a client.
type ControlPlaneConfig struct {
	ArchitectEndpoint string        `yaml:"architect_endpoint"`
	UnaryTimeout      time.Duration `yaml:"unary_timeout"`
	ReconnectInterval time.Duration `yaml:"reconnect_interval"`
}

// LoggingConfig names a zerolog sink level and format. corertd builds
// its logger before loading the config and does not apply it.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Defaults returns a RuntimeConfig usable with no external
// configuration at all, mirroring the pack's Defaults() convention.
func Defaults() *RuntimeConfig {
	return &RuntimeConfig{
		Executor: ExecutorConfig{
			WorkerCount:     1,
			ChannelCapacity: 64,
			ShutdownTimeout: 30 * time.Second,
		},
		ControlPlane: ControlPlaneConfig{
			ArchitectEndpoint: "localhost:13337",
			UnaryTimeout:      10 * time.Second,
			ReconnectInterval: time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: false,
		},
	}
}

// Load reads a YAML config file at path over top of Defaults(). A
// missing file is not an error — the caller gets plain defaults, the
// same behavior as shingo-core's config.Load.
func Load(path string) (*RuntimeConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadWithEnv loads .env (if present, ignoring a missing file) before
// loading the YAML config at path, so local development can override
// secrets like the architect endpoint without editing the YAML file.
func LoadWithEnv(path string) (*RuntimeConfig, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if v := os.Getenv("CORERT_ARCHITECT_ENDPOINT"); v != "" {
		cfg.ControlPlane.ArchitectEndpoint = v
	}
	return cfg, nil
}
