package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/marmos91/pzip/internal/bytesize"
	"github.com/marmos91/pzip/internal/cli/output"
	"github.com/marmos91/pzip/pkg/config"
	"github.com/marmos91/pzip/pkg/pipeline"
	"github.com/spf13/cobra"
)

// errMissingInput is returned when no input path was given.
var errMissingInput = errors.New("missing input path")

type compressFlags struct {
	threads     int
	chunkSize   string
	codec       string
	level       int
	wait        string
	metricsFile string
	format      string
}

var cflags compressFlags

var compressCmd = &cobra.Command{
	Use:   "compress <input-path> [thread-count]",
	Short: "Compress a file",
	Long: `Compress a file into <input-path>.gz (or .zst with --codec zstd).

An existing output file is replaced. If anything fails, including an
interrupt, the partial output is removed.

Examples:
  # Compress with one worker per CPU
  pzip compress data.bin

  # Compress with 8 workers
  pzip compress data.bin 8

  # zstd, 1MiB chunks, JSON summary
  pzip compress data.bin --codec zstd --chunk-size 1MiB -o json

  # Override configuration through the environment
  PZIP_PIPELINE_CODEC=zstd pzip compress data.bin`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCompress,
}

func init() {
	addCompressFlags(compressCmd)
}

func addCompressFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&cflags.threads, "threads", "t", 0, "number of workers (default: one per CPU)")
	cmd.Flags().StringVar(&cflags.chunkSize, "chunk-size", "", "bytes read per turn, e.g. 256KiB or 1MiB")
	cmd.Flags().StringVar(&cflags.codec, "codec", "", "compression format: gzip or zstd")
	cmd.Flags().IntVar(&cflags.level, "level", 0, "codec compression level (0: codec default)")
	cmd.Flags().StringVar(&cflags.wait, "wait", "", "how workers wait for their turn: cond or poll")
	cmd.Flags().StringVar(&cflags.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")
	cmd.Flags().StringVarP(&cflags.format, "output", "o", "table", "summary format: table, json or yaml")
}

func runCompress(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		_ = cmd.Usage()
		return errMissingInput
	}
	input := args[0]

	format, err := output.ParseFormat(cflags.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyCompressFlags(cmd, cfg, args[1:]); err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	env, err := setup(ctx, cfg, cflags.metricsFile)
	if err != nil {
		return err
	}
	defer env.close(ctx)

	opts, err := pipelineOptions(cfg)
	if err != nil {
		return err
	}

	res, err := pipeline.CompressFile(ctx, input, opts)
	if err != nil {
		return err
	}

	if quiet {
		return nil
	}
	return output.NewPrinter(cmd.OutOrStdout(), format).Print(output.NewSummary(res))
}

// applyCompressFlags overlays explicitly set flags, and the optional
// positional thread count, on the loaded configuration.
func applyCompressFlags(cmd *cobra.Command, cfg *config.Config, rest []string) error {
	flags := cmd.Flags()

	if flags.Changed("threads") {
		cfg.Pipeline.Threads = cflags.threads
	}
	if len(rest) > 0 {
		n, err := parseThreads(rest[0])
		if err != nil {
			return err
		}
		cfg.Pipeline.Threads = n
	}
	if flags.Changed("chunk-size") {
		size, err := bytesize.ParseByteSize(cflags.chunkSize)
		if err != nil {
			return fmt.Errorf("invalid --chunk-size: %w", err)
		}
		cfg.Pipeline.ChunkSize = size
	}
	if flags.Changed("codec") {
		cfg.Pipeline.Codec = strings.ToLower(cflags.codec)
	}
	if flags.Changed("level") {
		cfg.Pipeline.Level = cflags.level
	}
	if flags.Changed("wait") {
		cfg.Pipeline.Wait = strings.ToLower(cflags.wait)
	}
	return nil
}

func parseThreads(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid thread count %q: must be a positive integer", s)
	}
	return n, nil
}
