package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/marmos91/pzip/internal/logger"
	"github.com/marmos91/pzip/internal/telemetry"
	"github.com/marmos91/pzip/pkg/codec"
	"github.com/marmos91/pzip/pkg/config"
	"github.com/marmos91/pzip/pkg/metrics"
	"github.com/marmos91/pzip/pkg/pipeline"
	"github.com/marmos91/pzip/pkg/turn"

	// Import prometheus metrics to register init() functions
	_ "github.com/marmos91/pzip/pkg/metrics/prometheus"
)

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// signalContext is canceled on SIGINT or SIGTERM, which aborts a running
// pipeline and removes its partial output.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// environment holds what setup started and close must release.
type environment struct {
	telemetryShutdown func(context.Context) error
	profilingStop     func() error
	metricsFile       string
}

// setup initializes logging, tracing, profiling and metrics for one command.
// metricsFile overrides cfg.Metrics.Textfile and enables metrics on its own.
func setup(ctx context.Context, cfg *config.Config, metricsFile string) (*environment, error) {
	if err := InitLogger(cfg); err != nil {
		return nil, err
	}

	env := &environment{
		telemetryShutdown: func(context.Context) error { return nil },
		profilingStop:     func() error { return nil },
	}

	tcfg := telemetry.DefaultConfig()
	tcfg.Enabled = cfg.Telemetry.Enabled
	tcfg.ServiceVersion = Version
	tcfg.Endpoint = cfg.Telemetry.Endpoint
	tcfg.Insecure = cfg.Telemetry.Insecure
	tcfg.SampleRate = cfg.Telemetry.SampleRate

	shutdown, err := telemetry.Init(ctx, tcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	env.telemetryShutdown = shutdown

	stop, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "pzip",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
		Tags: map[string]string{
			"codec":   cfg.Pipeline.Codec,
			"threads": strconv.Itoa(cfg.Pipeline.Threads),
		},
	})
	if err != nil {
		env.close(ctx)
		return nil, fmt.Errorf("failed to initialize profiling: %w", err)
	}
	env.profilingStop = stop

	env.metricsFile = cfg.Metrics.Textfile
	if metricsFile != "" {
		env.metricsFile = metricsFile
	}
	if cfg.Metrics.Enabled || metricsFile != "" {
		metrics.InitRegistry()
	}

	logger.Debug("configuration loaded",
		"config", configSource(),
		"telemetry", telemetry.IsEnabled(),
		"profiling", cfg.Telemetry.Profiling.Enabled,
		"metrics", metrics.IsEnabled(),
	)
	return env, nil
}

// close flushes metrics and stops tracing and profiling. Failures are logged
// since the command's own result has already been decided.
func (e *environment) close(ctx context.Context) {
	if e.metricsFile != "" && metrics.IsEnabled() {
		if err := metrics.WriteTextfile(e.metricsFile); err != nil {
			logger.Error("metrics export failed", logger.Err(err))
		}
	}
	if err := e.profilingStop(); err != nil {
		logger.Error("profiling shutdown error", logger.Err(err))
	}
	// ctx may already be canceled by a signal; shutdown still needs to flush.
	if err := e.telemetryShutdown(context.WithoutCancel(ctx)); err != nil {
		logger.Error("telemetry shutdown error", logger.Err(err))
	}
	if err := logger.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
	}
}

// pipelineOptions translates the pipeline section of cfg into run options.
func pipelineOptions(cfg *config.Config) (pipeline.Options, error) {
	c, err := codec.New(cfg.Pipeline.Codec, cfg.Pipeline.Level)
	if err != nil {
		return pipeline.Options{}, err
	}
	wait, err := turn.ParseWaitStrategy(cfg.Pipeline.Wait)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Threads:      cfg.Pipeline.Threads,
		ChunkSize:    cfg.Pipeline.ChunkSize.Int(),
		Codec:        c,
		Wait:         wait,
		PollInterval: cfg.Pipeline.PollInterval,
		Metrics:      metrics.NewPipelineMetrics(),
	}, nil
}

func configSource() string {
	if cfgFile != "" {
		return cfgFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
