package codec

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// zstdCodec writes every chunk as its own zstd frame. EncodeAll is safe for
// concurrent use and runs up to GOMAXPROCS calls at once, so one encoder
// serves every worker.
type zstdCodec struct {
	level   int
	encoder *zstd.Encoder
}

const zstdDefaultLevel = 3

func newZstd(level int) (Codec, error) {
	if level == DefaultLevel {
		level = zstdDefaultLevel
	}
	if level < 1 || level > 22 {
		return nil, fmt.Errorf("%w: zstd accepts 1..22, got %d", ErrInvalidLevel, level)
	}

	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
		zstd.WithZeroFrames(true),
	)
	if err != nil {
		return nil, fmt.Errorf("zstd: create encoder: %w", err)
	}
	return &zstdCodec{level: level, encoder: enc}, nil
}

func (c *zstdCodec) Name() string      { return "zstd" }
func (c *zstdCodec) Extension() string { return ".zst" }
func (c *zstdCodec) Level() int        { return c.level }

func (c *zstdCodec) Compress(dst, src []byte) ([]byte, error) {
	return c.encoder.EncodeAll(src, dst), nil
}

func (c *zstdCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("zstd: open stream: %w", err)
	}
	return dec.IOReadCloser(), nil
}
