// Package commands implements the pzip command line.
package commands

import (
	"github.com/marmos91/pzip/cmd/pzip/commands/config"
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile string
	quiet   bool
)

// rootCmd compresses its argument when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "pzip <input-path> [thread-count]",
	Short: "pzip - parallel chunked compression",
	Long: `pzip compresses a file with several workers at once.

The input is read in fixed-size chunks. Workers take turns reading a chunk,
compress it concurrently, and take turns again to append the result, so the
output is a standard multi-member gzip (or multi-frame zstd) file that any
decoder expands back to the exact input.

Running "pzip <file>" is the same as "pzip compress <file>".

Use "pzip [command] --help" for more information about a command.`,
	Args:          cobra.MaximumNArgs(2),
	RunE:          runCompress,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/pzip/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "do not print the run summary")

	addCompressFlags(rootCmd)

	rootCmd.AddCommand(compressCmd)
	rootCmd.AddCommand(decompressCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(config.Cmd)
	rootCmd.AddCommand(completionCmd)

	// Hide the default completion command (we provide our own)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
