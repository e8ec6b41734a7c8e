package pipeline

import (
	"fmt"
	"runtime"
	"time"

	"github.com/marmos91/pzip/pkg/codec"
	"github.com/marmos91/pzip/pkg/metrics"
	"github.com/marmos91/pzip/pkg/turn"
)

// DefaultChunkSize is the number of bytes a worker reads per read turn.
const DefaultChunkSize = 256 << 10

// MaxChunkSize bounds the per-worker buffer.
const MaxChunkSize = 1 << 30

// Options configures a run. The zero value is usable: it selects one worker
// per CPU, 256KiB chunks, gzip at its default level and condition-variable
// waiting.
type Options struct {
	// Threads is the number of workers. Values below 1 select runtime.NumCPU().
	Threads int

	// ChunkSize is the read size per turn. 0 selects DefaultChunkSize.
	ChunkSize int

	// Codec transforms each chunk. nil selects gzip at its default level.
	Codec codec.Codec

	// Wait selects how workers wait for their turn. Empty selects turn.WaitCond.
	Wait turn.WaitStrategy

	// PollInterval is the sleep between polls with turn.WaitPoll.
	PollInterval time.Duration

	// Metrics receives per-turn and per-run observations. May be nil.
	Metrics metrics.PipelineMetrics
}

func (o Options) normalize() (Options, error) {
	if o.Threads < 1 {
		o.Threads = runtime.NumCPU()
	}

	switch {
	case o.ChunkSize == 0:
		o.ChunkSize = DefaultChunkSize
	case o.ChunkSize < 0 || o.ChunkSize > MaxChunkSize:
		return o, fmt.Errorf("%w: chunk size %d not in [1, %d]", ErrInvalidOptions, o.ChunkSize, MaxChunkSize)
	}

	if o.Codec == nil {
		c, err := codec.New("gzip", codec.DefaultLevel)
		if err != nil {
			return o, err
		}
		o.Codec = c
	}

	if o.Wait == "" {
		o.Wait = turn.WaitCond
	}
	if o.PollInterval <= 0 {
		o.PollInterval = turn.DefaultPollInterval
	}
	return o, nil
}

func (o Options) gateOptions(name string) []turn.Option {
	return []turn.Option{
		turn.WithName(name),
		turn.WithWaitStrategy(o.Wait),
		turn.WithPollInterval(o.PollInterval),
	}
}
