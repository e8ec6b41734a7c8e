package logger

import (
	"log/slog"
	"time"
)

// Standard field keys for structured logging.
// Use these keys consistently so runs can be correlated and queried.
const (
	// ========================================================================
	// Correlation
	// ========================================================================
	KeyRunID   = "run_id"   // Unique identifier of one pipeline run
	KeyTraceID = "trace_id" // OpenTelemetry trace ID
	KeySpanID  = "span_id"  // OpenTelemetry span ID

	// ========================================================================
	// Files
	// ========================================================================
	KeyInput  = "input"  // Input path
	KeyOutput = "output" // Output path
	KeySize   = "size"   // File size in bytes

	// ========================================================================
	// Pipeline
	// ========================================================================
	KeyCodec     = "codec"      // Codec name: gzip, zstd
	KeyLevel     = "level"      // Codec level
	KeyWorkers   = "workers"    // Number of worker slots
	KeyChunkSize = "chunk_size" // Configured chunk size in bytes
	KeyWait      = "wait"       // Gate wait strategy: cond, poll

	// ========================================================================
	// Turns
	// ========================================================================
	KeySlot       = "slot"        // Worker slot identity
	KeyGate       = "gate"        // Gate name: read, write
	KeyTurn       = "turn"        // Turn number granted
	KeyChunkBytes = "chunk_bytes" // Bytes read for one chunk
	KeyFrameBytes = "frame_bytes" // Compressed bytes for one chunk
	KeyLast       = "last"        // Whether the turn exhausted the gate

	// ========================================================================
	// Outcome
	// ========================================================================
	KeyChunks     = "chunks"      // Chunks processed
	KeyBytesIn    = "bytes_in"    // Uncompressed bytes
	KeyBytesOut   = "bytes_out"   // Compressed bytes
	KeyRatio      = "ratio"       // bytes_out / bytes_in
	KeyDurationMs = "duration_ms" // Duration in milliseconds
	KeyError      = "error"       // Error message
)

// RunID returns a slog.Attr for the run identifier
func RunID(id string) slog.Attr {
	return slog.String(KeyRunID, id)
}

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// Input returns a slog.Attr for the input path
func Input(p string) slog.Attr {
	return slog.String(KeyInput, p)
}

// Output returns a slog.Attr for the output path
func Output(p string) slog.Attr {
	return slog.String(KeyOutput, p)
}

// Size returns a slog.Attr for a file size
func Size(n int64) slog.Attr {
	return slog.Int64(KeySize, n)
}

// Codec returns a slog.Attr for the codec name
func Codec(name string) slog.Attr {
	return slog.String(KeyCodec, name)
}

// CodecLevel returns a slog.Attr for the codec level
func CodecLevel(level int) slog.Attr {
	return slog.Int(KeyLevel, level)
}

// Workers returns a slog.Attr for the worker count
func Workers(n int) slog.Attr {
	return slog.Int(KeyWorkers, n)
}

// ChunkSize returns a slog.Attr for the configured chunk size
func ChunkSize(n int) slog.Attr {
	return slog.Int(KeyChunkSize, n)
}

// Wait returns a slog.Attr for the gate wait strategy
func Wait(strategy string) slog.Attr {
	return slog.String(KeyWait, strategy)
}

// Slot returns a slog.Attr for a worker slot
func Slot(slot int) slog.Attr {
	return slog.Int(KeySlot, slot)
}

// Gate returns a slog.Attr for a gate name
func Gate(name string) slog.Attr {
	return slog.String(KeyGate, name)
}

// Turn returns a slog.Attr for a turn number
func Turn(t uint64) slog.Attr {
	return slog.Uint64(KeyTurn, t)
}

// ChunkBytes returns a slog.Attr for the bytes read in one chunk
func ChunkBytes(n int) slog.Attr {
	return slog.Int(KeyChunkBytes, n)
}

// FrameBytes returns a slog.Attr for the compressed size of one chunk
func FrameBytes(n int) slog.Attr {
	return slog.Int(KeyFrameBytes, n)
}

// Last returns a slog.Attr marking an exhausting turn
func Last(last bool) slog.Attr {
	return slog.Bool(KeyLast, last)
}

// Chunks returns a slog.Attr for a chunk count
func Chunks(n uint64) slog.Attr {
	return slog.Uint64(KeyChunks, n)
}

// BytesIn returns a slog.Attr for uncompressed bytes
func BytesIn(n int64) slog.Attr {
	return slog.Int64(KeyBytesIn, n)
}

// BytesOut returns a slog.Attr for compressed bytes
func BytesOut(n int64) slog.Attr {
	return slog.Int64(KeyBytesOut, n)
}

// Ratio returns a slog.Attr for the compression ratio
func Ratio(r float64) slog.Attr {
	return slog.Float64(KeyRatio, r)
}

// DurationMs returns a slog.Attr for a duration in milliseconds
func DurationMs(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMs, float64(d.Microseconds())/1000.0)
}

// Err returns a slog.Attr for an error. A nil error yields an empty attr,
// which handlers drop.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
