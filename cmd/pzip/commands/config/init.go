package config

import (
	"fmt"

	"github.com/marmos91/pzip/pkg/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a configuration file holding every default value.

Without --config the file is created at the default location.

Examples:
  pzip config init
  pzip config init --config ./pzip.yaml --force`,
	RunE: runConfigInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	if configPath == "" {
		path, err := config.InitConfig(initForce)
		if err != nil {
			return err
		}
		configPath = path
	} else if err := config.InitConfigToPath(configPath, initForce); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", configPath)
	return nil
}
