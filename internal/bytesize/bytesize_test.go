package bytesize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		input   string
		want    ByteSize
		wantErr bool
	}{
		{"1024", 1024, false},
		{"256KiB", 256 * KiB, false},
		{"256Ki", 256 * KiB, false},
		{"1MiB", MiB, false},
		{"4mb", 4 * MB, false},
		{"1.5MiB", MiB + MiB/2, false},
		{" 64 KiB ", 64 * KiB, false},
		{"", 0, true},
		{"lots", 0, true},
		{"12 parsecs", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseByteSize(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestByteSize_TextRoundTrip(t *testing.T) {
	for _, size := range []ByteSize{0, 1000, 256 * KiB, 3 * MiB, 2 * GiB, 300000} {
		text, err := size.MarshalText()
		require.NoError(t, err)

		var back ByteSize
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, size, back, "text %q", text)
	}
}

func TestByteSize_Exact(t *testing.T) {
	assert.Equal(t, "256KiB", (256 * KiB).Exact())
	assert.Equal(t, "3MiB", (3 * MiB).Exact())
	assert.Equal(t, "1000", KB.Exact())
	assert.Equal(t, "0", ByteSize(0).Exact())
}

func TestByteSize_String(t *testing.T) {
	assert.Equal(t, "256 KiB", (256 * KiB).String())
	assert.Equal(t, "10 B", ByteSize(10).String())
}

func TestByteSize_Conversions(t *testing.T) {
	b := 4 * KiB
	assert.Equal(t, 4096, b.Int())
	assert.Equal(t, int64(4096), b.Int64())
}
