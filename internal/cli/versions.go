package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"jlink-update/internal/ui"
	"jlink-update/pkg/segger"
	"jlink-update/pkg/sysinfo"
)

var versionsLimit int

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List releases published on the download page",
	Long: `List the J-Link releases offered on the SEGGER download page, newest
first, with the package file that would be downloaded for this platform.

Examples:
  jlink-update versions
  jlink-update versions -l 0           # Show all releases`,
	Args: cobra.NoArgs,
	RunE: runVersions,
}

func init() {
	versionsCmd.Flags().IntVarP(&versionsLimit, "limit", "l", 10, "number of releases to show, 0 for all")
}

func runVersions(cmd *cobra.Command, args []string) error {
	info, err := resolveSystem(cfg)
	if err != nil {
		return err
	}

	client := newClient(cfg)

	var page *segger.Page
	err = ui.WithSpinner("Fetching release list", func() error {
		var fetchErr error
		page, fetchErr = client.FetchPage(cmd.Context())
		return fetchErr
	})
	if err != nil {
		return err
	}
	releases := page.Releases

	shown := releases
	if versionsLimit > 0 && len(shown) > versionsLimit {
		shown = shown[:versionsLimit]
	}

	table := ui.NewTable([]string{"version", "code", "package", "offered"})
	for _, r := range shown {
		code := "-"
		if c, err := r.Code(); err == nil {
			code = strconv.Itoa(int(c))
		} else {
			logger.Debug().Err(err).Str("name", r.Name).Msg("unparseable release name")
		}
		table.AddRow([]string{r.Name, code, segger.PackageFileName(info, r.Name), offered(page, r, info)})
	}
	table.Render()

	if len(shown) < len(releases) {
		ui.MutedMsg("\nShowing %d of %d releases", len(shown), len(releases))
	}
	fmt.Println()
	return nil
}

// offered reports whether the page lists the platform's package for r:
// "yes", "no", or "-" when the page has no download list for it.
func offered(page *segger.Page, r segger.Release, info sysinfo.SystemInfo) string {
	links := page.Packages(r.Index)
	if len(links) == 0 {
		return "-"
	}
	if _, err := segger.FindPackage(links, info, r.Name); err != nil {
		return "no"
	}
	return "yes"
}
