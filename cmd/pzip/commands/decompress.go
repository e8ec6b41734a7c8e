package commands

import (
	"fmt"

	"github.com/marmos91/pzip/pkg/pipeline"
	"github.com/spf13/cobra"
)

var (
	decompressForce  bool
	decompressOutput string
)

var decompressCmd = &cobra.Command{
	Use:   "decompress <file.gz|file.zst>",
	Short: "Decompress a .gz or .zst file",
	Long: `Decompress a file produced by pzip, or by any standard gzip or zstd
encoder. The codec is chosen from the file extension and the output is the
input path without it.

Examples:
  pzip decompress data.bin.gz
  pzip decompress data.bin.zst --output restored.bin
  pzip decompress data.bin.gz --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDecompress,
}

func init() {
	decompressCmd.Flags().BoolVarP(&decompressForce, "force", "f", false, "overwrite an existing output file")
	decompressCmd.Flags().StringVar(&decompressOutput, "output", "", "output path (default: input without its extension)")
}

func runDecompress(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	env, err := setup(ctx, cfg, "")
	if err != nil {
		return err
	}
	defer env.close(ctx)

	out, err := pipeline.DecompressFile(ctx, args[0], pipeline.DecompressOptions{
		Output: decompressOutput,
		Force:  decompressForce,
	})
	if err != nil {
		return err
	}
	if !quiet {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
	}
	return nil
}
