// Package cli implements the command-line interface for jlink-update.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"jlink-update/internal/config"
	"jlink-update/internal/logging"
	"jlink-update/internal/ui"
	"jlink-update/pkg/probe"
	"jlink-update/pkg/segger"
	"jlink-update/pkg/sysinfo"
)

var (
	// Global flags
	cfgFile string
	dryRun  bool
	yes     bool
	verbose bool
	debug   bool
	noColor bool

	// Platform flags, shared by the root and the system/installed commands
	archFlag       string
	systemFlag     string
	pkgTypeFlag    string
	installCmdFlag string

	// Global state
	cfg    *config.Config
	logger zerolog.Logger
)

// Build metadata - set at build time via ldflags
var (
	Version   = "0.1.0-dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "jlink-update",
	Short: "Keep the SEGGER J-Link software package up to date",
	Long: `jlink-update detects the platform, reads the version of the installed
J-Link driver library, compares it with the newest release on the SEGGER
download page and, when outdated, downloads and installs the new package.

Examples:
  jlink-update                        # Update to the latest release
  jlink-update --install=false        # Only download the package
  jlink-update --version V7.94a       # Install a specific release
  jlink-update --package-type rpm     # Use the RPM package on Linux
  jlink-update -n                     # Show what would happen`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeApp(cmd)
	},
	RunE: runUpdate,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "show what would happen without executing")
	rootCmd.PersistentFlags().BoolVarP(&yes, "yes", "y", false, "assume yes to all prompts")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.PersistentFlags().StringVar(&archFlag, "arch", sysinfo.Auto,
		fmt.Sprintf("system architecture %v, 'auto' to autodetect", sysinfo.Architectures))
	rootCmd.PersistentFlags().StringVar(&systemFlag, "system", sysinfo.Auto,
		fmt.Sprintf("OS type %v, 'auto' to autodetect", sysinfo.Systems))
	rootCmd.PersistentFlags().StringVar(&pkgTypeFlag, "package-type", sysinfo.Auto,
		fmt.Sprintf("package type to download %v, 'auto' to autodetect", sysinfo.PackageTypes))
	rootCmd.PersistentFlags().StringVar(&installCmdFlag, "package-install-cmd", sysinfo.Auto,
		"command that installs the package, 'auto' to autodetect")

	registerUpdateFlags(rootCmd)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(systemCmd)
	rootCmd.AddCommand(installedCmd)
	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(probeHelperCmd)
}

// Execute runs the root command. Interrupts cancel the running operation.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// initializeApp sets up the application state.
func initializeApp(cmd *cobra.Command) error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	// Apply global flag overrides
	if yes {
		cfg.General.AutoConfirm = true
	}
	if dryRun {
		cfg.General.DryRun = true
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	if noColor {
		cfg.Output.Color = false
	}
	applyPlatformFlags(cmd, cfg)

	ui.Init(cfg.ShouldUseColor(), cfg.Output.Unicode)
	logger = logging.NewStderr(cfg.LogLevel(debug), !cfg.ShouldUseColor())

	return nil
}

// applyPlatformFlags copies explicitly set platform flags over the config.
func applyPlatformFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("arch") {
		c.System.Arch = archFlag
	}
	if flags.Changed("system") {
		c.System.System = systemFlag
	}
	if flags.Changed("package-type") {
		c.System.PackageType = pkgTypeFlag
	}
	if flags.Changed("package-install-cmd") {
		c.System.PackageInstallCmd = installCmdFlag
	}
}

// resolveSystem validates the platform settings and resolves them against
// the running host.
func resolveSystem(c *config.Config) (sysinfo.SystemInfo, error) {
	if !sysinfo.IsValidChoice(sysinfo.NormalizeArch(c.System.Arch), sysinfo.Architectures) {
		return sysinfo.SystemInfo{}, fmt.Errorf("%w: --arch %q (choose from %v)",
			ErrInvalidChoice, c.System.Arch, sysinfo.Architectures)
	}
	if !sysinfo.IsValidChoice(c.System.PackageType, sysinfo.PackageTypes) {
		return sysinfo.SystemInfo{}, fmt.Errorf("%w: --package-type %q (choose from %v)",
			ErrInvalidChoice, c.System.PackageType, sysinfo.PackageTypes)
	}

	return sysinfo.Resolve(sysinfo.Overrides{
		Arch:              c.System.Arch,
		System:            c.System.System,
		PackageType:       c.System.PackageType,
		PackageInstallCmd: c.System.PackageInstallCmd,
	})
}

// newProber builds the prober configured for this run.
func newProber(c *config.Config) (*probe.Prober, error) {
	var loader probe.Loader = probe.NativeLoader{}
	if !c.Probe.InProcess {
		sub, err := probe.NewSubprocessLoader(c.Probe.Timeout.Duration)
		if err != nil {
			return nil, err
		}
		loader = sub
	}

	p := probe.New(loader, logger)
	p.ExtraPatterns = c.Probe.ExtraPatterns
	return p, nil
}

// newClient builds the vendor client configured for this run.
func newClient(c *config.Config) *segger.Client {
	return segger.NewClient(segger.ClientOptions{
		BaseURL:   c.Vendor.URL,
		Timeout:   c.Vendor.Timeout.Duration,
		UserAgent: c.Vendor.UserAgent,
	})
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print jlink-update version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ui.InfoMsg("jlink-update version %s", Version)
		if Commit != "unknown" {
			ui.MutedMsg("  Commit: %s", Commit)
		}
		if BuildTime != "unknown" {
			ui.MutedMsg("  Built:  %s", BuildTime)
		}
	},
}

// configPathForDisplay returns the config file in effect.
func configPathForDisplay() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.ConfigPath()
}
