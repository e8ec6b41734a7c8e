package config

import (
	"fmt"

	"github.com/marmos91/pzip/internal/cli/output"
	"github.com/marmos91/pzip/pkg/config"
	"github.com/spf13/cobra"
)

var showFormat string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration pzip would run with: defaults, overlaid by the
configuration file, overlaid by PZIP_* environment variables.

Examples:
  pzip config show
  PZIP_PIPELINE_THREADS=4 pzip config show -o json`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showFormat, "output", "o", "yaml", "output format: yaml or json")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	format, err := output.ParseFormat(showFormat)
	if err != nil {
		return err
	}
	if format == output.FormatTable {
		return fmt.Errorf("config show supports yaml or json, not %s", format)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	return output.NewPrinter(cmd.OutOrStdout(), format).Print(cfg)
}
