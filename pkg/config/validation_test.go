package config

import (
	"strings"
	"testing"
)

func TestValidate_DefaultConfig(t *testing.T) {
	if err := Validate(GetDefaultConfig()); err != nil {
		t.Errorf("Expected default config to pass validation, got error: %v", err)
	}
}

func TestValidate_Rules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantTag string
	}{
		{"InvalidLogLevel", func(c *Config) { c.Logging.Level = "LOUD" }, "oneof"},
		{"InvalidLogFormat", func(c *Config) { c.Logging.Format = "xml" }, "oneof"},
		{"NegativeThreads", func(c *Config) { c.Pipeline.Threads = -1 }, "gte"},
		{"TooManyThreads", func(c *Config) { c.Pipeline.Threads = 5000 }, "lte"},
		{"ZeroChunk", func(c *Config) { c.Pipeline.ChunkSize = 0 }, "gte"},
		{"UnknownCodec", func(c *Config) { c.Pipeline.Codec = "lz4" }, "oneof"},
		{"GzipLevelTooHigh", func(c *Config) { c.Pipeline.Level = 12 }, "codec_level"},
		{"UnknownWait", func(c *Config) { c.Pipeline.Wait = "spin" }, "oneof"},
		{"ZeroPollInterval", func(c *Config) { c.Pipeline.PollInterval = 0 }, "gt"},
		{"MetricsWithoutTextfile", func(c *Config) { c.Metrics.Enabled = true }, "required_if"},
		{"SampleRateAboveOne", func(c *Config) { c.Telemetry.SampleRate = 1.5 }, "lte"},
		{"UnknownProfileType", func(c *Config) { c.Telemetry.Profiling.ProfileTypes = []string{"heap"} }, "oneof"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), `"`+tt.wantTag+`"`) {
				t.Errorf("Expected %q validation error, got: %v", tt.wantTag, err)
			}
		})
	}
}

func TestValidate_ZstdAcceptsHighLevels(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Pipeline.Codec = "zstd"
	cfg.Pipeline.Level = 19

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected zstd level 19 to be valid, got: %v", err)
	}
}

func TestValidate_MetricsWithTextfile(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Textfile = "/var/lib/node_exporter/pzip.prom"

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected metrics with textfile to be valid, got: %v", err)
	}
}
