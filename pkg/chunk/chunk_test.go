package chunk

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/marmos91/pzip/pkg/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Source
// ============================================================================

func TestSource_ReadChunk(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		chunk     int
		wantSizes []int
	}{
		{"Empty", 0, 4, []int{0}},
		{"SmallerThanChunk", 3, 4, []int{3}},
		{"ExactMultiple", 8, 4, []int{4, 4, 0}},
		{"PartialTail", 10, 4, []int{4, 4, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := bytes.Repeat([]byte{'x'}, tt.size)
			src := NewSource(bytes.NewReader(data))
			buf := make([]byte, tt.chunk)

			var sizes []int
			for {
				n, last, err := src.ReadChunk(buf)
				require.NoError(t, err)
				sizes = append(sizes, n)
				if last {
					break
				}
			}

			assert.Equal(t, tt.wantSizes, sizes)
			assert.Equal(t, uint64(len(tt.wantSizes)), src.Chunks())
			assert.Equal(t, int64(tt.size), src.Bytes())
			assert.True(t, src.Done())

			n, last, err := src.ReadChunk(buf)
			require.NoError(t, err)
			assert.Zero(t, n)
			assert.True(t, last, "a drained source stays drained")
		})
	}
}

func TestSource_ShortReadsAreNotEndOfStream(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789"), 10)
	src := NewSource(iotest.OneByteReader(bytes.NewReader(data)))
	buf := make([]byte, 25)

	for i := 0; i < 4; i++ {
		n, last, err := src.ReadChunk(buf)
		require.NoError(t, err)
		assert.Equal(t, 25, n)
		assert.False(t, last)
	}

	n, last, err := src.ReadChunk(buf)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, last)
}

func TestSource_ReadError(t *testing.T) {
	boom := errors.New("device unplugged")
	src := NewSource(iotest.ErrReader(boom))

	_, _, err := src.ReadChunk(make([]byte, 8))
	assert.ErrorIs(t, err, boom)
	assert.False(t, src.Done())
}

func TestSource_ZeroBuffer(t *testing.T) {
	src := NewSource(bytes.NewReader([]byte("abc")))
	_, _, err := src.ReadChunk(nil)
	assert.ErrorIs(t, err, ErrZeroChunk)
}

// ============================================================================
// Sink
// ============================================================================

func TestSink_AppendAndFinish(t *testing.T) {
	c, err := codec.New("gzip", codec.DefaultLevel)
	require.NoError(t, err)

	sink := NewSink(c)
	for _, part := range []string{"hello ", "", "world"} {
		unit, err := c.Compress(nil, []byte(part))
		require.NoError(t, err)
		require.NoError(t, sink.Append(unit))
	}
	require.NoError(t, sink.Append(nil))
	assert.Equal(t, uint64(3), sink.Units())

	stream, err := sink.Finish()
	require.NoError(t, err)
	assert.Equal(t, len(stream), sink.Len())

	r, err := c.NewReader(bytes.NewReader(stream))
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))
}

func TestSink_FinishEmptyStream(t *testing.T) {
	for _, name := range codec.Names() {
		t.Run(name, func(t *testing.T) {
			c, err := codec.New(name, codec.DefaultLevel)
			require.NoError(t, err)

			stream, err := NewSink(c).Finish()
			require.NoError(t, err)
			require.NotEmpty(t, stream)

			r, err := c.NewReader(bytes.NewReader(stream))
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestSink_FinishOnce(t *testing.T) {
	c, err := codec.New("zstd", codec.DefaultLevel)
	require.NoError(t, err)

	sink := NewSink(c)
	_, err = sink.Finish()
	require.NoError(t, err)

	_, err = sink.Finish()
	assert.ErrorIs(t, err, ErrFinished)
	assert.ErrorIs(t, sink.Append([]byte{1}), ErrFinished)
}
