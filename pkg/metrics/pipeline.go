package metrics

import (
	"time"
)

// PipelineMetrics records what a compression run does.
//
// Implementations must be safe for concurrent use: every worker records its
// own turns. Pass nil to disable collection.
type PipelineMetrics interface {
	// ObserveTurn records one granted turn on a gate ("read" or "write")
	// and how long the slot waited for it.
	ObserveTurn(gate string, slot int, wait time.Duration)

	// ObserveChunk records one transformed chunk.
	ObserveChunk(codec string, bytesIn, bytesOut int, duration time.Duration)

	// ObserveRun records a finished run. status is "ok" or "error".
	ObserveRun(codec string, status string, bytesIn, bytesOut int64, duration time.Duration)

	// SetWorkers records the worker count of the current run.
	SetWorkers(n int)
}

// NewPipelineMetrics returns a Prometheus-backed PipelineMetrics, or nil when
// metrics are disabled or no backend has been linked in.
//
// The backend lives in pkg/metrics/prometheus and registers itself on import:
//
//	import _ "github.com/marmos91/pzip/pkg/metrics/prometheus"
func NewPipelineMetrics() PipelineMetrics {
	if !IsEnabled() || newPrometheusPipelineMetrics == nil {
		return nil
	}
	return newPrometheusPipelineMetrics()
}

var newPrometheusPipelineMetrics func() PipelineMetrics

// RegisterPipelineMetricsConstructor installs the backend constructor.
// Called by pkg/metrics/prometheus during package initialization.
func RegisterPipelineMetricsConstructor(constructor func() PipelineMetrics) {
	newPrometheusPipelineMetrics = constructor
}

// ObserveTurn records a granted turn on m if it is non-nil.
func ObserveTurn(m PipelineMetrics, gate string, slot int, wait time.Duration) {
	if m != nil {
		m.ObserveTurn(gate, slot, wait)
	}
}

// ObserveChunk records a transformed chunk on m if it is non-nil.
func ObserveChunk(m PipelineMetrics, codec string, bytesIn, bytesOut int, duration time.Duration) {
	if m != nil {
		m.ObserveChunk(codec, bytesIn, bytesOut, duration)
	}
}

// ObserveRun records a finished run on m if it is non-nil.
func ObserveRun(m PipelineMetrics, codec string, err error, bytesIn, bytesOut int64, duration time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ObserveRun(codec, status, bytesIn, bytesOut, duration)
}

// SetWorkers records the worker count on m if it is non-nil.
func SetWorkers(m PipelineMetrics, n int) {
	if m != nil {
		m.SetWorkers(n)
	}
}
