package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/marmos91/pzip/internal/logger"
	"github.com/marmos91/pzip/internal/telemetry"
	"github.com/marmos91/pzip/pkg/bufpool"
	"github.com/marmos91/pzip/pkg/codec"
)

// DecompressOptions configures DecompressFile.
type DecompressOptions struct {
	// Output overrides the destination. Empty strips the codec extension
	// from the input path.
	Output string

	// Force replaces an existing destination.
	Force bool
}

// DecompressFile expands a .gz or .zst file written by CompressFile (or any
// standard encoder) and returns the path it wrote. The codec is chosen by
// extension. The stream is expanded into a temporary file next to the
// destination and renamed over it only once fully decoded, so a failed run
// leaves no partial output and never touches an existing destination.
func DecompressFile(ctx context.Context, path string, opts DecompressOptions) (_ string, err error) {
	c, err := codec.ForPath(path)
	if err != nil {
		return "", err
	}

	outputPath := opts.Output
	if outputPath == "" {
		base, ok := codec.TrimExtension(c, path)
		if !ok {
			return "", fmt.Errorf("%w: cannot derive output name from %s", ErrOutputUnavailable, path)
		}
		outputPath = base
	}

	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanDecompress)
	defer span.End()
	telemetry.SetAttributes(ctx, telemetry.Codec(c.Name()), telemetry.Input(path), telemetry.Output(outputPath))
	defer func() {
		if err != nil {
			telemetry.RecordError(ctx, err)
		}
	}()

	in, err := openInput(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = in.Close() }()

	if _, statErr := os.Stat(outputPath); statErr == nil && !opts.Force {
		return "", fmt.Errorf("%w: %s", ErrOutputExists, outputPath)
	}

	r, err := c.NewReader(in)
	if err != nil {
		return "", fmt.Errorf("open %s stream: %w", c.Name(), err)
	}
	defer func() { _ = r.Close() }()

	tmp, err := createTemp(outputPath)
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				logger.WarnCtx(ctx, "failed to remove partial output", logger.Output(tmpPath), logger.Err(rmErr))
			}
		}
	}()

	buf := bufpool.Get(DefaultChunkSize)
	defer bufpool.Put(buf)

	n, err := io.CopyBuffer(tmp, &ctxReader{ctx: ctx, r: r}, buf)
	if err != nil {
		return "", fmt.Errorf("decompress %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrOutputUnavailable, err)
	}
	if err = os.Rename(tmpPath, outputPath); err != nil {
		return "", fmt.Errorf("%w: %w", ErrOutputUnavailable, err)
	}

	logger.InfoCtx(ctx, "decompressed",
		logger.Input(path), logger.Output(outputPath), logger.Codec(c.Name()), logger.BytesOut(n))
	return outputPath, nil
}

// createTemp opens a hidden scratch file in the destination's directory so
// the final rename stays on one filesystem.
func createTemp(outputPath string) (*os.File, error) {
	f, err := os.CreateTemp(filepath.Dir(outputPath), "."+filepath.Base(outputPath)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutputUnavailable, err)
	}
	if err := f.Chmod(0o644); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("%w: %w", ErrOutputUnavailable, err)
	}
	return f, nil
}

// ctxReader stops a long copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := context.Cause(c.ctx); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
