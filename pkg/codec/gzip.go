package codec

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// gzipCodec writes every chunk as its own gzip member.
type gzipCodec struct {
	level   int
	writers sync.Pool
}

func newGzip(level int) (Codec, error) {
	if level == DefaultLevel {
		level = gzip.DefaultCompression
	}
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		return nil, fmt.Errorf("%w: gzip accepts %d..%d, got %d",
			ErrInvalidLevel, gzip.HuffmanOnly, gzip.BestCompression, level)
	}

	c := &gzipCodec{level: level}
	c.writers.New = func() any {
		// Level was validated above, so NewWriterLevel cannot fail here.
		w, _ := gzip.NewWriterLevel(io.Discard, c.level)
		return w
	}
	return c, nil
}

func (c *gzipCodec) Name() string      { return "gzip" }
func (c *gzipCodec) Extension() string { return ".gz" }
func (c *gzipCodec) Level() int        { return c.level }

func (c *gzipCodec) Compress(dst, src []byte) ([]byte, error) {
	buf := bytes.NewBuffer(dst)
	w := c.writers.Get().(*gzip.Writer)
	defer c.writers.Put(w)

	w.Reset(buf)
	if _, err := w.Write(src); err != nil {
		return dst, fmt.Errorf("gzip: compress chunk: %w", err)
	}
	if err := w.Close(); err != nil {
		return dst, fmt.Errorf("gzip: close member: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *gzipCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("gzip: open stream: %w", err)
	}
	zr.Multistream(true)
	return zr, nil
}
