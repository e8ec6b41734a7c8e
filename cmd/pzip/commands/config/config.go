// Package config implements the "pzip config" commands.
package config

import "github.com/spf13/cobra"

// Cmd is the parent command for configuration management.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the pzip configuration file",
	Long: `Create, inspect and validate the pzip configuration file.

The default location is $XDG_CONFIG_HOME/pzip/config.yaml. Every setting can
also be overridden with a PZIP_* environment variable, for example
PZIP_PIPELINE_CHUNK_SIZE=1MiB.`,
}

func init() {
	Cmd.AddCommand(initCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(validateCmd)
}
