// Package metrics exposes optional Prometheus instrumentation for pzip runs.
//
// Metrics are disabled until InitRegistry is called. Constructors return nil
// while disabled and every recording helper accepts nil, so uninstrumented
// runs pay nothing.
package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	registryMu sync.RWMutex
	registry   *prometheus.Registry
)

// InitRegistry enables metrics collection with a fresh registry that also
// carries the Go runtime and process collectors. Calling it again replaces
// the registry.
func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	registryMu.Lock()
	registry = reg
	registryMu.Unlock()
	return reg
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry != nil
}

// GetRegistry returns the active registry, or nil when metrics are disabled.
func GetRegistry() *prometheus.Registry {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry
}

// Disable drops the active registry.
func Disable() {
	registryMu.Lock()
	registry = nil
	registryMu.Unlock()
}

// WriteTextfile writes every gathered metric to path in the text exposition
// format, for node_exporter's textfile collector.
func WriteTextfile(path string) error {
	reg := GetRegistry()
	if reg == nil {
		return fmt.Errorf("write metrics to %s: metrics are not enabled", path)
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
