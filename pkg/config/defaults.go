package config

import (
	"strings"

	"github.com/marmos91/pzip/internal/bytesize"
	"github.com/marmos91/pzip/pkg/turn"
)

const (
	// DefaultChunkSize is the per-turn read size.
	DefaultChunkSize = 256 * bytesize.KiB

	// DefaultCodec is the codec used when none is configured.
	DefaultCodec = "gzip"
)

// ApplyDefaults sets default values for any unspecified configuration fields
// and normalizes case-insensitive ones.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyPipelineDefaults(&cfg.Pipeline)
	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	cfg.Format = strings.ToLower(cfg.Format)

	// stdout carries command output, so logs default to stderr.
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

func applyPipelineDefaults(cfg *PipelineConfig) {
	// Threads stays 0: resolved to runtime.NumCPU() when the run starts.
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.Codec == "" {
		cfg.Codec = DefaultCodec
	}
	cfg.Codec = strings.ToLower(cfg.Codec)

	if cfg.Wait == "" {
		cfg.Wait = string(turn.WaitCond)
	}
	cfg.Wait = strings.ToLower(cfg.Wait)

	if cfg.PollInterval == 0 {
		cfg.PollInterval = turn.DefaultPollInterval
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	if cfg.Profiling.Endpoint == "" {
		cfg.Profiling.Endpoint = "http://localhost:4040"
	}
	if len(cfg.Profiling.ProfileTypes) == 0 {
		cfg.Profiling.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Telemetry: TelemetryConfig{Insecure: true},
	}
	ApplyDefaults(cfg)
	return cfg
}

