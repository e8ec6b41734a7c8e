package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/marmos91/pzip/internal/logger"
	"github.com/marmos91/pzip/internal/telemetry"
)

// Result describes a compressed file.
type Result struct {
	Input  string
	Output string
	Stats  *Stats
}

// OutputPath returns the path CompressFile writes for input.
func OutputPath(input string, opts Options) (string, error) {
	opts, err := opts.normalize()
	if err != nil {
		return "", err
	}
	return input + opts.Codec.Extension(), nil
}

// CompressFile compresses inputPath into inputPath plus the codec extension.
//
// An existing output file is replaced. The compressed stream is written in a
// single write once every worker has finished; if anything fails the output
// file is removed, so a partial output is never left behind.
func CompressFile(ctx context.Context, inputPath string, opts Options) (res *Result, err error) {
	opts, err = opts.normalize()
	if err != nil {
		return nil, err
	}
	outputPath := inputPath + opts.Codec.Extension()

	lc := logger.NewLogContext(inputPath, opts.Codec.Name())
	ctx = logger.WithContext(ctx, lc)

	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanCompressFile)
	defer span.End()
	telemetry.SetAttributes(ctx, telemetry.RunID(lc.RunID), telemetry.Input(inputPath), telemetry.Output(outputPath))

	in, err := openInput(inputPath)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}
	defer func() { _ = in.Close() }()

	out, err := createOutput(outputPath)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = out.Close()
			if rmErr := os.Remove(outputPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				logger.WarnCtx(ctx, "failed to remove partial output", logger.Output(outputPath), logger.Err(rmErr))
			}
			telemetry.RecordError(ctx, err)
		}
	}()

	logger.InfoCtx(ctx, "compressing", logger.Input(inputPath), logger.Output(outputPath), logger.Workers(opts.Threads))

	data, stats, err := Run(ctx, in, opts)
	if err != nil {
		return nil, err
	}

	if err := persist(ctx, out, data); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOutputUnavailable, outputPath, err)
	}

	logger.InfoCtx(ctx, "compressed",
		logger.Output(outputPath),
		logger.BytesIn(stats.BytesIn),
		logger.BytesOut(stats.BytesOut),
		logger.Ratio(stats.Ratio()),
		logger.Chunks(stats.Chunks),
		logger.DurationMs(stats.Duration),
	)
	return &Result{Input: inputPath, Output: outputPath, Stats: stats}, nil
}

func openInput(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputUnavailable, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %w", ErrInputUnavailable, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", ErrInputUnavailable, path)
	}
	return f, nil
}

// createOutput removes any existing file at path and creates it exclusively.
func createOutput(path string) (*os.File, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: remove existing %s: %w", ErrOutputUnavailable, path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutputUnavailable, err)
	}
	return f, nil
}

func persist(ctx context.Context, f *os.File, data []byte) error {
	_, span := telemetry.StartSpan(ctx, telemetry.SpanPersist)
	defer span.End()

	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Close()
}
