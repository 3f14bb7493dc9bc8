package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jlink-update/internal/config"
	"jlink-update/internal/ui"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	Long: `Show the configuration in effect or write a starting config file.

Examples:
  jlink-update config show            # Print the effective configuration
  jlink-update config init            # Write the defaults to the config file
  jlink-update config path            # Print the config file location`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration, including flag overrides",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cfg.Encode(cmd.OutOrStdout())
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), configPathForDisplay())
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

// writeDefaultConfig writes the defaults to path, refusing to replace an
// existing file unless force is set.
func writeDefaultConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	def := config.Default()
	if path == config.ConfigPath() {
		return def.Save()
	}
	return def.SaveTo(path)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPathForDisplay()
	if cfg.General.DryRun {
		ui.Println("[dry-run] Would write default configuration to %s", path)
		return nil
	}

	if err := writeDefaultConfig(path, configForce); err != nil {
		return err
	}
	ui.SuccessMsg("Wrote %s", path)
	return nil
}
