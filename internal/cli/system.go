package cli

import (
	"github.com/spf13/cobra"

	"jlink-update/internal/ui"
	"jlink-update/pkg/probe"
	"jlink-update/pkg/sysinfo"
)

var systemCmd = &cobra.Command{
	Use:   "system",
	Short: "Show the resolved platform",
	Long: `Display the platform values used to select and install the J-Link
package, after applying --arch, --system, --package-type and
--package-install-cmd.

Examples:
  jlink-update system
  jlink-update system --system MacOSX`,
	Args: cobra.NoArgs,
	RunE: runSystem,
}

func runSystem(cmd *cobra.Command, args []string) error {
	info, err := resolveSystem(cfg)
	if err != nil {
		return err
	}

	ui.HeaderMsg("System Information")
	printSystemInfo(info)

	host := sysinfo.Host()
	if distro := sysinfo.DetectDistribution(); distro.PrettyName != "" {
		ui.PrintField("Host", distro.PrettyName+" ("+host.OS+"/"+host.Arch+")")
		if info.IsLinux() && info.PackageType == "deb" && distro.PrefersRPM() {
			ui.MutedMsg("  This distribution uses RPM; consider --package-type rpm --package-install-cmd \"sudo rpm -U\"")
		}
	} else {
		ui.PrintField("Host", host.OS+"/"+host.Arch)
	}

	if info.IsMacOSX() && info.Architecture == "universal" {
		ui.MutedMsg("  The universal package runs on Apple and Intel silicon")
	}

	for _, pattern := range append(probe.Patterns(info.Family), cfg.Probe.ExtraPatterns...) {
		ui.PrintField("Search Path", pattern)
	}

	return nil
}
