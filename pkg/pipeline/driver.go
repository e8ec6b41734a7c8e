package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/marmos91/pzip/internal/logger"
	"github.com/marmos91/pzip/internal/telemetry"
	"github.com/marmos91/pzip/pkg/chunk"
	"github.com/marmos91/pzip/pkg/metrics"
	"github.com/marmos91/pzip/pkg/turn"
	"golang.org/x/sync/errgroup"
)

// Run compresses everything r yields and returns the finished stream.
//
// The stream is the concatenation of one compressed frame per chunk, in input
// order, which any standard decoder for the codec expands back to the input.
// If any worker fails, or ctx is canceled, both gates are aborted so no
// worker is left waiting, and Run returns the root cause with no bytes.
func Run(ctx context.Context, r io.Reader, opts Options) ([]byte, *Stats, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, nil, err
	}

	lc := logger.FromContext(ctx).Clone()
	if lc == nil {
		lc = logger.NewLogContext("", opts.Codec.Name())
	}

	ctx, span := telemetry.StartRunSpan(ctx, lc.RunID, opts.Codec.Name(), opts.Threads,
		telemetry.Level(opts.Codec.Level()),
		telemetry.ChunkSize(opts.ChunkSize),
		telemetry.Wait(string(opts.Wait)),
	)
	defer span.End()
	ctx = logger.WithContext(ctx, lc.WithTrace(telemetry.TraceID(ctx), telemetry.SpanID(ctx)))

	stats := &Stats{
		RunID:     lc.RunID,
		Codec:     opts.Codec.Name(),
		Level:     opts.Codec.Level(),
		Workers:   opts.Threads,
		ChunkSize: opts.ChunkSize,
		Wait:      string(opts.Wait),
	}
	metrics.SetWorkers(opts.Metrics, opts.Threads)

	start := time.Now()
	data, err := run(ctx, r, opts, stats)
	stats.Duration = time.Since(start)

	metrics.ObserveRun(opts.Metrics, stats.Codec, err, stats.BytesIn, stats.BytesOut, stats.Duration)
	if err != nil {
		telemetry.RecordError(ctx, err)
		logger.WarnCtx(ctx, "compression failed", logger.Workers(opts.Threads), logger.Err(err))
		return nil, stats, err
	}

	telemetry.SetAttributes(ctx,
		telemetry.Chunks(stats.Chunks),
		telemetry.BytesIn(stats.BytesIn),
		telemetry.BytesOut(stats.BytesOut),
	)
	logger.DebugCtx(ctx, "compression finished",
		logger.Workers(opts.Threads),
		logger.Chunks(stats.Chunks),
		logger.BytesIn(stats.BytesIn),
		logger.BytesOut(stats.BytesOut),
		logger.DurationMs(stats.Duration),
	)
	return data, stats, nil
}

func run(ctx context.Context, r io.Reader, opts Options, stats *Stats) ([]byte, error) {
	source := chunk.NewSource(r)
	readGate, err := turn.NewGate(source, opts.Threads, opts.gateOptions("read")...)
	if err != nil {
		return nil, err
	}
	writeGate, err := turn.NewGate(chunk.NewSink(opts.Codec), opts.Threads, opts.gateOptions("write")...)
	if err != nil {
		return nil, err
	}

	logger.DebugCtx(ctx, "starting workers",
		logger.Workers(opts.Threads),
		logger.ChunkSize(opts.ChunkSize),
		logger.Codec(opts.Codec.Name()),
		logger.Wait(string(opts.Wait)),
	)

	g, gctx := errgroup.WithContext(ctx)

	// The first worker failure cancels gctx; so does the caller. Either way
	// both gates are poisoned so peers blocked in Request return.
	stop := make(chan struct{})
	watcherDone := make(chan struct{})
	go func() {
		defer close(watcherDone)
		select {
		case <-gctx.Done():
			cause := context.Cause(gctx)
			readGate.Abort(cause)
			writeGate.Abort(cause)
		case <-stop:
		}
	}()

	workers := make([]*worker, opts.Threads)
	for slot := range workers {
		w := newWorker(slot, opts, readGate, writeGate)
		workers[slot] = w
		g.Go(func() error { return w.run(gctx) })
	}

	waitErr := g.Wait()
	close(stop)
	<-watcherDone

	stats.Slots = make([]SlotStats, len(workers))
	for i, w := range workers {
		stats.Slots[i] = w.stats
	}
	stats.Chunks = source.Chunks()
	stats.BytesIn = source.Bytes()

	if waitErr != nil {
		telemetry.AddEvent(ctx, telemetry.EventAborted)
		return nil, rootCause(waitErr, readGate.Cause(), writeGate.Cause())
	}

	sink := writeGate.Close()
	readGate.Close()

	// Every granted read turn has exactly one write turn.
	if reads, writes := readGate.Turn()-1, writeGate.Turn()-1; reads != writes || reads != stats.Chunks {
		return nil, fmt.Errorf("%w: %d read turns, %d write turns, %d chunks",
			ErrInconsistentState, reads, writes, stats.Chunks)
	}

	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanFinish)
	defer span.End()
	data, err := sink.Finish()
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}
	stats.Frames = sink.Units()
	stats.BytesOut = int64(len(data))
	return data, nil
}

// rootCause picks the error that started a failure. Workers woken by an
// aborted gate report turn.ErrAborted; the gate remembers what aborted it.
func rootCause(err error, causes ...error) error {
	if !errors.Is(err, turn.ErrAborted) {
		return err
	}
	for _, c := range causes {
		if c != nil && !errors.Is(c, turn.ErrAborted) {
			return c
		}
	}
	return err
}
