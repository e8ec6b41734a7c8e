package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/marmos91/pzip/internal/logger"
	"github.com/marmos91/pzip/internal/telemetry"
	"github.com/marmos91/pzip/pkg/bufpool"
	"github.com/marmos91/pzip/pkg/chunk"
	"github.com/marmos91/pzip/pkg/codec"
	"github.com/marmos91/pzip/pkg/metrics"
	"github.com/marmos91/pzip/pkg/turn"
)

type workerState int

const (
	stateReading workerState = iota
	stateTransforming
	stateWriting
	stateDone
)

func (s workerState) String() string {
	switch s {
	case stateReading:
		return "reading"
	case stateTransforming:
		return "transforming"
	case stateWriting:
		return "writing"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}

// worker owns one slot on both gates and one chunk buffer.
type worker struct {
	slot      int
	chunkSize int
	codec     codec.Codec
	readGate  *turn.Gate[*chunk.Source]
	writeGate *turn.Gate[*chunk.Sink]
	metrics   metrics.PipelineMetrics

	state workerState
	stats SlotStats
}

func newWorker(slot int, opts Options, readGate *turn.Gate[*chunk.Source], writeGate *turn.Gate[*chunk.Sink]) *worker {
	return &worker{
		slot:      slot,
		chunkSize: opts.ChunkSize,
		codec:     opts.Codec,
		readGate:  readGate,
		writeGate: writeGate,
		metrics:   opts.Metrics,
		stats:     SlotStats{Slot: slot},
	}
}

// run drives the worker until the read gate is exhausted, the chunk it read
// was the last one, or a gate fails.
func (w *worker) run(ctx context.Context) (err error) {
	ctx, span := telemetry.StartWorkerSpan(ctx, w.slot)
	defer func() {
		if err != nil {
			logger.DebugCtx(ctx, "worker stopped", logger.Slot(w.slot), "state", w.state.String(), logger.Err(err))
		}
		telemetry.RecordError(ctx, err)
		span.End()
	}()

	buf := bufpool.Get(w.chunkSize)
	defer bufpool.Put(buf)
	frame := bufpool.Get(w.chunkSize)[:0]
	defer func() { bufpool.Put(frame) }()

	var (
		n        int
		last     bool
		readTurn uint64
	)

	w.state = stateReading
	for w.state != stateDone {
		switch w.state {
		case stateReading:
			if err := context.Cause(ctx); err != nil {
				return err
			}
			n, last, readTurn, err = w.read(ctx, buf)
			if err != nil {
				return err
			}
			if readTurn == 0 {
				w.state = stateDone
				continue
			}
			w.state = stateTransforming

		case stateTransforming:
			frame, err = w.transform(frame[:0], buf[:n])
			if err != nil {
				return fmt.Errorf("slot %d: compress chunk of read turn %d: %w", w.slot, readTurn, err)
			}
			w.state = stateWriting

		case stateWriting:
			if err := w.write(ctx, frame, readTurn, last); err != nil {
				return err
			}
			if last {
				w.state = stateDone
			} else {
				w.state = stateReading
			}
		}
	}
	return nil
}

// read takes one read turn. A zero turn means the read gate was exhausted
// and the worker has nothing left to do.
func (w *worker) read(ctx context.Context, buf []byte) (n int, last bool, granted uint64, err error) {
	var wait time.Duration
	start := time.Now()

	outcome, err := w.readGate.Request(w.slot, func(src *chunk.Source, t uint64) (bool, error) {
		wait = time.Since(start)
		var rerr error
		n, last, rerr = src.ReadChunk(buf)
		if rerr != nil {
			return false, rerr
		}
		granted = t
		return last, nil
	})
	w.stats.ReadWait += wait
	if err != nil {
		return 0, false, 0, err
	}
	if outcome == turn.Exhausted {
		telemetry.AddEvent(ctx, telemetry.EventGateExhausted, telemetry.Slot(w.slot))
		return 0, false, 0, nil
	}

	w.stats.ReadTurns++
	w.stats.BytesIn += int64(n)
	metrics.ObserveTurn(w.metrics, w.readGate.Name(), w.slot, wait)
	logger.DebugCtx(ctx, "read turn",
		logger.Slot(w.slot), logger.Turn(granted), logger.ChunkBytes(n), logger.Last(last))
	return n, last, granted, nil
}

// transform compresses one chunk into dst. An empty chunk produces no frame:
// the write turn is still taken so turn numbers stay aligned across gates.
func (w *worker) transform(dst, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return dst, nil
	}
	start := time.Now()
	out, err := w.codec.Compress(dst, data)
	if err != nil {
		return dst, err
	}
	elapsed := time.Since(start)
	w.stats.Compress += elapsed
	metrics.ObserveChunk(w.metrics, w.codec.Name(), len(data), len(out), elapsed)
	return out, nil
}

// write appends frame on the write turn matching readTurn. If last, that
// append exhausts the write gate.
func (w *worker) write(ctx context.Context, frame []byte, readTurn uint64, last bool) error {
	var (
		wait    time.Duration
		granted uint64
	)
	start := time.Now()

	outcome, err := w.writeGate.Request(w.slot, func(sink *chunk.Sink, t uint64) (bool, error) {
		wait = time.Since(start)
		if t != readTurn {
			return false, fmt.Errorf("%w: slot %d holds read turn %d but was granted write turn %d",
				ErrInconsistentState, w.slot, readTurn, t)
		}
		if err := sink.Append(frame); err != nil {
			return false, err
		}
		granted = t
		return last, nil
	})
	w.stats.WriteWait += wait
	if err != nil {
		return err
	}
	if outcome == turn.Exhausted {
		return fmt.Errorf("%w: slot %d holds the chunk of read turn %d but the write gate is exhausted",
			ErrInconsistentState, w.slot, readTurn)
	}

	w.stats.WriteTurns++
	w.stats.BytesOut += int64(len(frame))
	metrics.ObserveTurn(w.metrics, w.writeGate.Name(), w.slot, wait)
	logger.DebugCtx(ctx, "write turn",
		logger.Slot(w.slot), logger.Turn(granted), logger.FrameBytes(len(frame)), logger.Last(last))
	return nil
}
