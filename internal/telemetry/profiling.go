package telemetry

import (
	"fmt"
	"runtime"

	"github.com/grafana/pyroscope-go"
)

// InitProfiling starts Pyroscope continuous profiling.
// Returns a function that stops the profiler and flushes the last batch.
//
// Gate contention appears in the mutex and block profiles.
func InitProfiling(cfg ProfilingConfig) (stop func() error, err error) {
	if !cfg.Enabled {
		return func() error { return nil }, nil
	}

	types := make([]pyroscope.ProfileType, 0, len(cfg.ProfileTypes))
	var mutexRate, blockRate int
	for _, pt := range cfg.ProfileTypes {
		profileType, err := parseProfileType(pt)
		if err != nil {
			return nil, fmt.Errorf("invalid profile type %q: %w", pt, err)
		}
		types = append(types, profileType)

		switch pt {
		case "mutex_count", "mutex_duration":
			mutexRate = 5
		case "block_count", "block_duration":
			blockRate = 5
		}
	}

	tags := map[string]string{"version": cfg.ServiceVersion}
	for k, v := range cfg.Tags {
		tags[k] = v
	}

	prevMutex := runtime.SetMutexProfileFraction(mutexRate)
	runtime.SetBlockProfileRate(blockRate)

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.ServiceName,
		ServerAddress:   cfg.Endpoint,
		Tags:            tags,
		ProfileTypes:    types,
	})
	if err != nil {
		runtime.SetMutexProfileFraction(prevMutex)
		runtime.SetBlockProfileRate(0)
		return nil, fmt.Errorf("failed to start Pyroscope profiler: %w", err)
	}

	return func() error {
		defer func() {
			runtime.SetMutexProfileFraction(prevMutex)
			runtime.SetBlockProfileRate(0)
		}()
		return profiler.Stop()
	}, nil
}

func parseProfileType(pt string) (pyroscope.ProfileType, error) {
	if t, ok := profileTypes[pt]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown profile type: %s", pt)
}
