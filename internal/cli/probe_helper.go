package cli

import (
	"os"

	"github.com/spf13/cobra"

	"jlink-update/pkg/probe"
)

// probeHelperCmd is run by probe.SubprocessLoader in a child process. It
// bypasses initializeApp so that nothing but the JSON report is written.
var probeHelperCmd = &cobra.Command{
	Use:    probe.HelperCommand + " <library>",
	Short:  "Query a J-Link library for its version (internal)",
	Hidden: true,
	Args:   cobra.ExactArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(probe.HelperMain(cmd.Context(), args, os.Stdout))
	},
}
