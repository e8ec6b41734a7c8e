package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Test Helper Functions
// ============================================================================

// captureOutput redirects logger output to a buffer for testing and restores
// the previous output, level and format on cleanup.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)

	mu.Lock()
	originalOutput := output
	originalColor := useColor
	output = buf
	useColor = false
	mu.Unlock()
	originalLevel := GetLevel()
	originalFormat, _ := currentFormat.Load().(string)
	reconfigure()

	t.Cleanup(func() {
		mu.Lock()
		output = originalOutput
		useColor = originalColor
		mu.Unlock()
		SetLevel(originalLevel.String())
		SetFormat(originalFormat)
	})
	return buf
}

func decodeJSONLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	return entry
}

// ============================================================================
// Level Filtering Tests
// ============================================================================

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		level   string
		visible []string
		hidden  []string
	}{
		{"DEBUG", []string{"debug message", "info message", "warn message", "error message"}, nil},
		{"INFO", []string{"info message", "warn message", "error message"}, []string{"debug message"}},
		{"WARN", []string{"warn message", "error message"}, []string{"debug message", "info message"}},
		{"ERROR", []string{"error message"}, []string{"debug message", "info message", "warn message"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf := captureOutput(t)
			SetLevel(tt.level)

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")

			out := buf.String()
			for _, s := range tt.visible {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.hidden {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("warning")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, l)

	l, err = ParseLevel(" debug ")
	require.NoError(t, err)
	assert.Equal(t, LevelDebug, l)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestSetLevel_IgnoresUnknown(t *testing.T) {
	captureOutput(t)
	SetLevel("ERROR")
	SetLevel("LOUD")
	assert.Equal(t, LevelError, GetLevel())
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(99).String())
}

// ============================================================================
// Text Handler Tests
// ============================================================================

func TestTextFormat(t *testing.T) {
	t.Run("FieldsAreKeyValue", func(t *testing.T) {
		buf := captureOutput(t)
		SetLevel("INFO")
		SetFormat("text")

		Info("turn granted", Gate("read"), Slot(2), Turn(7))

		out := buf.String()
		assert.Contains(t, out, "[INFO] turn granted")
		assert.Contains(t, out, "gate=read")
		assert.Contains(t, out, "slot=2")
		assert.Contains(t, out, "turn=7")
	})

	t.Run("QuotesValuesWithSpaces", func(t *testing.T) {
		buf := captureOutput(t)
		SetLevel("INFO")
		SetFormat("text")

		Info("failed", "error", "disk on fire", "path", "a=b")

		out := buf.String()
		assert.Contains(t, out, `error="disk on fire"`)
		assert.Contains(t, out, "path=a=b")
	})

	t.Run("GroupsQualifyKeys", func(t *testing.T) {
		buf := captureOutput(t)
		SetLevel("INFO")
		SetFormat("text")

		With(Codec("zstd")).WithGroup("stats").Info("done", "chunks", 3)

		out := buf.String()
		assert.Contains(t, out, "codec=zstd")
		assert.Contains(t, out, "stats.chunks=3")
	})

	t.Run("NilErrorIsDropped", func(t *testing.T) {
		buf := captureOutput(t)
		SetLevel("INFO")
		SetFormat("text")

		Info("ok", Err(nil))
		assert.NotContains(t, buf.String(), "error=")
	})

	t.Run("ColorsWhenEnabled", func(t *testing.T) {
		buf := new(bytes.Buffer)
		h := NewColorTextHandler(buf, nil, true)
		slog.New(h).Warn("careful", "k", "v")

		assert.Contains(t, buf.String(), colorYellow+"WARN"+colorReset)
		assert.Contains(t, buf.String(), colorCyan+"k"+colorReset+"=v")
	})
}

// ============================================================================
// JSON Format Tests
// ============================================================================

func TestJSONFormat(t *testing.T) {
	buf := captureOutput(t)
	SetLevel("INFO")
	SetFormat("json")

	Info("run finished", Chunks(2), BytesIn(300000), Ratio(0.5))

	entry := decodeJSONLine(t, buf)
	assert.Equal(t, "run finished", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, float64(2), entry[KeyChunks])
	assert.Equal(t, float64(300000), entry[KeyBytesIn])
}

func TestSetFormat_IgnoresUnknown(t *testing.T) {
	buf := captureOutput(t)
	SetLevel("INFO")
	SetFormat("text")
	SetFormat("xml")

	Info("test message")
	assert.Contains(t, buf.String(), "[INFO]")
}

// ============================================================================
// Context Logging Tests
// ============================================================================

func TestContextLogging(t *testing.T) {
	t.Run("LogContextInjectsFields", func(t *testing.T) {
		buf := captureOutput(t)
		SetLevel("INFO")
		SetFormat("json")

		lc := NewLogContext("/data/in.bin", "gzip").WithTrace("abc123", "xyz789")
		ctx := WithContext(context.Background(), lc)

		InfoCtx(ctx, "run started", "extra_field", "value")

		entry := decodeJSONLine(t, buf)
		assert.Equal(t, lc.RunID, entry[KeyRunID])
		assert.Equal(t, "abc123", entry[KeyTraceID])
		assert.Equal(t, "xyz789", entry[KeySpanID])
		assert.Equal(t, "/data/in.bin", entry[KeyInput])
		assert.Equal(t, "gzip", entry[KeyCodec])
		assert.Equal(t, "value", entry["extra_field"])
	})

	t.Run("NilContextHandled", func(t *testing.T) {
		buf := captureOutput(t)
		SetLevel("INFO")

		//nolint:staticcheck // a nil context must not panic
		require.NotPanics(t, func() { InfoCtx(nil, "test message") })
		assert.Contains(t, buf.String(), "test message")
	})

	t.Run("ContextWithoutLogContextHandled", func(t *testing.T) {
		buf := captureOutput(t)
		SetLevel("INFO")

		WarnCtx(context.Background(), "test message")
		assert.Contains(t, buf.String(), "test message")
	})

	t.Run("DebugCtxFiltered", func(t *testing.T) {
		buf := captureOutput(t)
		SetLevel("INFO")

		DebugCtx(context.Background(), "hidden")
		assert.Empty(t, buf.String())
	})
}

func TestLogContext(t *testing.T) {
	t.Run("NewLogContextAssignsRunID", func(t *testing.T) {
		a := NewLogContext("in", "zstd")
		b := NewLogContext("in", "zstd")
		assert.NotEmpty(t, a.RunID)
		assert.NotEqual(t, a.RunID, b.RunID)
		assert.False(t, a.StartTime.IsZero())
		assert.GreaterOrEqual(t, a.DurationMs(), 0.0)
	})

	t.Run("WithTraceLeavesOriginal", func(t *testing.T) {
		lc := NewLogContext("in", "gzip")
		traced := lc.WithTrace("t", "s")
		assert.Equal(t, "t", traced.TraceID)
		assert.Empty(t, lc.TraceID)
		assert.Equal(t, lc.RunID, traced.RunID)
	})

	t.Run("NilSafe", func(t *testing.T) {
		var lc *LogContext
		assert.Nil(t, lc.Clone())
		assert.Nil(t, lc.WithTrace("t", "s"))
		assert.Zero(t, lc.DurationMs())
	})
}

// ============================================================================
// Concurrency Tests
// ============================================================================

func TestConcurrentLogging(t *testing.T) {
	buf := captureOutput(t)
	SetLevel("INFO")
	SetFormat("text")

	var wg sync.WaitGroup
	for slot := 0; slot < 8; slot++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				Info("turn", Slot(slot))
			}
		}(slot)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 400)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "["), "interleaved line: %q", line)
	}
}

// ============================================================================
// Init Tests
// ============================================================================

func TestInit(t *testing.T) {
	t.Run("FileOutput", func(t *testing.T) {
		captureOutput(t)
		path := filepath.Join(t.TempDir(), "pzip.log")

		require.NoError(t, Init(Config{Level: "DEBUG", Format: "json", Output: path}))
		Debug("to file", Err(errors.New("boom")))
		require.NoError(t, Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"error":"boom"`)
	})

	t.Run("UnopenableFile", func(t *testing.T) {
		err := Init(Config{Output: filepath.Join(t.TempDir(), "missing", "x.log")})
		assert.Error(t, err)
	})

	t.Run("InvalidLevel", func(t *testing.T) {
		assert.Error(t, Init(Config{Level: "chatty"}))
	})

	t.Run("EmptyConfig", func(t *testing.T) {
		require.NoError(t, Init(Config{}))
		require.NoError(t, Close())
	})
}

// ============================================================================
// Benchmark Tests
// ============================================================================

func BenchmarkLogDisabled(b *testing.B) {
	InitWithWriter(new(bytes.Buffer), "ERROR", "text", false)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Debug("turn granted", Slot(1), Turn(uint64(i)))
	}
}

func BenchmarkLogText(b *testing.B) {
	InitWithWriter(new(bytes.Buffer), "DEBUG", "text", false)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Info("turn granted", Slot(1), Turn(uint64(i)))
	}
}

func BenchmarkLogJSON(b *testing.B) {
	InitWithWriter(new(bytes.Buffer), "DEBUG", "json", false)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Info("turn granted", Slot(1), Turn(uint64(i)))
	}
}
