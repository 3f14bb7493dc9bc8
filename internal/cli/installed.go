package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"jlink-update/internal/ui"
)

var installedCmd = &cobra.Command{
	Use:   "installed",
	Short: "Show the installed J-Link version",
	Long: `Search the standard install locations for the J-Link driver library
and print the version it reports.

Examples:
  jlink-update installed
  jlink-update installed --debug`,
	Args: cobra.NoArgs,
	RunE: runInstalled,
}

func runInstalled(cmd *cobra.Command, args []string) error {
	info, err := resolveSystem(cfg)
	if err != nil {
		return err
	}

	prober, err := newProber(cfg)
	if err != nil {
		return err
	}

	sp := ui.NewSpinner("Checking installed version")
	sp.Start()
	res := prober.Probe(cmd.Context(), info.Family)
	sp.Stop()
	if err := cmd.Context().Err(); err != nil {
		return err
	}

	if !res.Found {
		ui.PrintField("Installed Version", ui.Missing.Sprint("None"))
		return nil
	}

	ui.PrintField("Installed Version", fmt.Sprintf("%s (%d)", ui.Installed.Sprint(res.Code.String()), res.Code))
	ui.PrintField("Library", res.Path)
	return nil
}
