package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for pipeline spans.
const (
	AttrRunID     = "pzip.run_id"
	AttrCodec     = "pzip.codec"
	AttrLevel     = "pzip.level"
	AttrWorkers   = "pzip.workers"
	AttrChunkSize = "pzip.chunk_size"
	AttrWait      = "pzip.wait"
	AttrChunks    = "pzip.chunks"
	AttrBytesIn   = "pzip.bytes_in"
	AttrBytesOut  = "pzip.bytes_out"
	AttrSlot      = "pzip.slot"
	AttrInput     = "file.path"
	AttrOutput    = "pzip.output"
)

// Span names.
const (
	SpanCompressFile = "pzip.compress_file"
	SpanRun          = "pzip.run"
	SpanWorker       = "pzip.worker"
	SpanFinish       = "pzip.finish"
	SpanPersist      = "pzip.persist"
	SpanDecompress   = "pzip.decompress"
)

// Event names recorded on spans.
const (
	EventGateExhausted = "gate.exhausted"
	EventAborted       = "pipeline.aborted"
)

// RunID returns an attribute for the run identifier
func RunID(id string) attribute.KeyValue {
	return attribute.String(AttrRunID, id)
}

// Codec returns an attribute for the codec name
func Codec(name string) attribute.KeyValue {
	return attribute.String(AttrCodec, name)
}

// Level returns an attribute for the codec level
func Level(level int) attribute.KeyValue {
	return attribute.Int(AttrLevel, level)
}

// Workers returns an attribute for the worker count
func Workers(n int) attribute.KeyValue {
	return attribute.Int(AttrWorkers, n)
}

// ChunkSize returns an attribute for the chunk size
func ChunkSize(n int) attribute.KeyValue {
	return attribute.Int(AttrChunkSize, n)
}

// Wait returns an attribute for the gate wait strategy
func Wait(strategy string) attribute.KeyValue {
	return attribute.String(AttrWait, strategy)
}

// Chunks returns an attribute for the chunk count
func Chunks(n uint64) attribute.KeyValue {
	return attribute.Int64(AttrChunks, int64(n))
}

// BytesIn returns an attribute for uncompressed bytes
func BytesIn(n int64) attribute.KeyValue {
	return attribute.Int64(AttrBytesIn, n)
}

// BytesOut returns an attribute for compressed bytes
func BytesOut(n int64) attribute.KeyValue {
	return attribute.Int64(AttrBytesOut, n)
}

// Slot returns an attribute for a worker slot
func Slot(slot int) attribute.KeyValue {
	return attribute.Int(AttrSlot, slot)
}

// Input returns an attribute for the input path
func Input(path string) attribute.KeyValue {
	return attribute.String(AttrInput, path)
}

// Output returns an attribute for the output path
func Output(path string) attribute.KeyValue {
	return attribute.String(AttrOutput, path)
}

// StartRunSpan starts the root span of one pipeline run.
func StartRunSpan(ctx context.Context, runID, codec string, workers int, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{RunID(runID), Codec(codec), Workers(workers)}, attrs...)
	return StartSpan(ctx, SpanRun, trace.WithAttributes(all...))
}

// StartWorkerSpan starts the span covering one worker's lifetime.
func StartWorkerSpan(ctx context.Context, slot int) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanWorker, trace.WithAttributes(Slot(slot)))
}
