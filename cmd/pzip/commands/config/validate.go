package config

import (
	"fmt"

	"github.com/marmos91/pzip/pkg/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the pzip configuration file.

Checks for syntax errors and invalid values, including compression levels
the selected codec does not support.

Examples:
  # Validate default config
  pzip config validate

  # Validate specific config file
  pzip config validate --config /etc/pzip/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
		if !config.DefaultConfigExists() {
			displayPath += " (not found, using defaults)"
		}
	}

	var warnings []string
	if cfg.Pipeline.Wait == "poll" {
		warnings = append(warnings, "wait strategy \"poll\" burns CPU while workers wait; \"cond\" is recommended")
	}
	if cfg.Metrics.Enabled && cfg.Telemetry.Enabled {
		warnings = append(warnings, "both metrics and tracing are enabled; runs will be slower")
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", displayPath)
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	_, _ = fmt.Fprintf(out, "\nConfiguration summary:\n")
	_, _ = fmt.Fprintf(out, "  Codec:       %s (level %d)\n", cfg.Pipeline.Codec, cfg.Pipeline.Level)
	_, _ = fmt.Fprintf(out, "  Threads:     %d\n", cfg.Pipeline.Threads)
	_, _ = fmt.Fprintf(out, "  Chunk size:  %s\n", cfg.Pipeline.ChunkSize)
	_, _ = fmt.Fprintf(out, "  Wait:        %s\n", cfg.Pipeline.Wait)
	_, _ = fmt.Fprintf(out, "  Log level:   %s\n", cfg.Logging.Level)

	return nil
}
