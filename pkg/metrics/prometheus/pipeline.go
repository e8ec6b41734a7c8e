// Package prometheus is the Prometheus backend for pkg/metrics.
package prometheus

import (
	"strconv"
	"time"

	"github.com/marmos91/pzip/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterPipelineMetricsConstructor(NewPipelineMetrics)
}

// pipelineMetrics is the Prometheus implementation of metrics.PipelineMetrics.
type pipelineMetrics struct {
	turns         *prometheus.CounterVec
	turnWait      *prometheus.HistogramVec
	chunks        *prometheus.CounterVec
	chunkBytesIn  *prometheus.HistogramVec
	chunkDuration *prometheus.HistogramVec
	bytes         *prometheus.CounterVec
	runs          *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	ratio         *prometheus.GaugeVec
	workers       prometheus.Gauge
}

// NewPipelineMetrics creates the pipeline collectors on the active registry.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewPipelineMetrics() metrics.PipelineMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &pipelineMetrics{
		turns: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "pzip_turns_total",
				Help: "Total number of granted turns by gate and worker slot",
			},
			[]string{"gate", "slot"},
		),
		turnWait: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "pzip_turn_wait_milliseconds",
				Help: "Time a worker waited for its turn on a gate in milliseconds",
				Buckets: []float64{
					0.01, // 10us - uncontended
					0.1,
					1,
					5, // one poll interval
					10,
					50,
					100,
					500,
				},
			},
			[]string{"gate"},
		),
		chunks: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "pzip_chunks_total",
				Help: "Total number of chunks transformed by codec",
			},
			[]string{"codec"},
		),
		chunkBytesIn: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "pzip_chunk_bytes",
				Help: "Distribution of uncompressed chunk sizes",
				Buckets: []float64{
					0,
					4096,     // 4KB
					65536,    // 64KB
					262144,   // 256KB - default chunk size
					1048576,  // 1MB
					4194304,  // 4MB
					16777216, // 16MB
				},
			},
			[]string{"codec"},
		),
		chunkDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pzip_chunk_compress_milliseconds",
				Help:    "Time spent compressing one chunk in milliseconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000},
			},
			[]string{"codec"},
		),
		bytes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "pzip_bytes_total",
				Help: "Total bytes processed by codec and direction",
			},
			[]string{"codec", "direction"}, // direction: "in", "out"
		),
		runs: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "pzip_runs_total",
				Help: "Total number of pipeline runs by codec and status",
			},
			[]string{"codec", "status"},
		),
		runDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pzip_run_duration_seconds",
				Help:    "Duration of pipeline runs in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{"codec", "status"},
		),
		ratio: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pzip_last_run_ratio",
				Help: "Compressed to uncompressed size ratio of the last successful run",
			},
			[]string{"codec"},
		),
		workers: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "pzip_workers",
				Help: "Number of workers in the current run",
			},
		),
	}
}

func (m *pipelineMetrics) ObserveTurn(gate string, slot int, wait time.Duration) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(gate, strconv.Itoa(slot)).Inc()
	m.turnWait.WithLabelValues(gate).Observe(wait.Seconds() * 1000)
}

func (m *pipelineMetrics) ObserveChunk(codec string, bytesIn, bytesOut int, duration time.Duration) {
	if m == nil {
		return
	}
	m.chunks.WithLabelValues(codec).Inc()
	m.chunkBytesIn.WithLabelValues(codec).Observe(float64(bytesIn))
	m.chunkDuration.WithLabelValues(codec).Observe(duration.Seconds() * 1000)
	m.bytes.WithLabelValues(codec, "in").Add(float64(bytesIn))
	m.bytes.WithLabelValues(codec, "out").Add(float64(bytesOut))
}

func (m *pipelineMetrics) ObserveRun(codec string, status string, bytesIn, bytesOut int64, duration time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(codec, status).Inc()
	m.runDuration.WithLabelValues(codec, status).Observe(duration.Seconds())
	if status == "ok" && bytesIn > 0 {
		m.ratio.WithLabelValues(codec).Set(float64(bytesOut) / float64(bytesIn))
	}
}

func (m *pipelineMetrics) SetWorkers(n int) {
	if m == nil {
		return
	}
	m.workers.Set(float64(n))
}
