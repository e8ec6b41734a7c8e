package commands

import (
	"fmt"

	"github.com/marmos91/pzip/pkg/codec"
	"github.com/marmos91/pzip/pkg/pipeline"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <input-path> [compressed-path]",
	Short: "Check that a compressed file decodes to its input",
	Long: `Decode a compressed file and compare it with the original byte for byte.

Without a compressed path, <input-path>.gz is checked, falling back to
<input-path>.zst.

Examples:
  pzip verify data.bin
  pzip verify data.bin /backups/data.bin.zst`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
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

	input := args[0]
	compressed := ""
	if len(args) > 1 {
		compressed = args[1]
	} else {
		compressed, err = findCompressed(input)
		if err != nil {
			return err
		}
	}

	if err := pipeline.Verify(ctx, input, compressed); err != nil {
		return err
	}
	if !quiet {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: OK\n", compressed)
	}
	return nil
}

func findCompressed(input string) (string, error) {
	for _, name := range codec.Names() {
		c, err := codec.New(name, codec.DefaultLevel)
		if err != nil {
			return "", err
		}
		candidate := input + c.Extension()
		if fileExists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no compressed file found for %s", input)
}
