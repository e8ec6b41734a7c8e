package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/marmos91/pzip/pkg/bufpool"
	"github.com/marmos91/pzip/pkg/codec"
)

// Verify decodes compressedPath and compares it with originalPath byte for
// byte. It returns ErrMismatch, with the offset of the first difference, if
// the decoded stream is not exactly the original.
func Verify(ctx context.Context, originalPath, compressedPath string) error {
	c, err := codec.ForPath(compressedPath)
	if err != nil {
		return err
	}

	orig, err := openInput(originalPath)
	if err != nil {
		return err
	}
	defer func() { _ = orig.Close() }()

	comp, err := openInput(compressedPath)
	if err != nil {
		return err
	}
	defer func() { _ = comp.Close() }()

	r, err := c.NewReader(comp)
	if err != nil {
		return fmt.Errorf("open %s stream: %w", c.Name(), err)
	}
	defer func() { _ = r.Close() }()

	return compareStreams(ctx, orig, &ctxReader{ctx: ctx, r: r})
}

func compareStreams(ctx context.Context, want, got io.Reader) error {
	wantBuf := bufpool.Get(DefaultChunkSize)
	defer bufpool.Put(wantBuf)
	gotBuf := bufpool.Get(DefaultChunkSize)
	defer bufpool.Put(gotBuf)

	var offset int64
	for {
		if err := context.Cause(ctx); err != nil {
			return err
		}

		wn, werr := io.ReadFull(want, wantBuf)
		if werr != nil && werr != io.EOF && werr != io.ErrUnexpectedEOF {
			return fmt.Errorf("read original: %w", werr)
		}
		gn, gerr := io.ReadFull(got, gotBuf)
		if gerr != nil && gerr != io.EOF && gerr != io.ErrUnexpectedEOF {
			return fmt.Errorf("read decoded: %w", gerr)
		}

		n := min(wn, gn)
		if i := firstDiff(wantBuf[:n], gotBuf[:n]); i >= 0 {
			return fmt.Errorf("%w at offset %d", ErrMismatch, offset+int64(i))
		}
		if wn != gn {
			return fmt.Errorf("%w: length differs after offset %d", ErrMismatch, offset+int64(n))
		}
		offset += int64(n)
		if werr != nil {
			return nil
		}
	}
}

func firstDiff(a, b []byte) int {
	if bytes.Equal(a, b) {
		return -1
	}
	for i := range a {
		if a[i] != b[i] {
			return i
		}
	}
	return -1
}
