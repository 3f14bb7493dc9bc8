package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"jlink-update/internal/config"
	"jlink-update/internal/executor"
	"jlink-update/internal/history"
	"jlink-update/internal/ui"
	"jlink-update/pkg/probe"
	"jlink-update/pkg/segger"
	"jlink-update/pkg/sysinfo"
	"jlink-update/pkg/version"
)

const (
	targetLatest = "latest"
	targetPick   = "pick"

	// actionDownload records a run that only saved the package.
	actionDownload = "download"
)

var (
	installFlag  bool
	targetFlag   string
	downloadDir  string
	force        bool
	keepDownload bool
)

func registerUpdateFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&installFlag, "install", true, "install the package with the system's package manager")
	cmd.Flags().StringVar(&targetFlag, "version", targetLatest,
		"release to install: 'latest', 'pick' to choose interactively, or a version such as V7.94a")
	cmd.Flags().StringVar(&downloadDir, "download-dir", "", "directory to save the package in")
	cmd.Flags().BoolVar(&force, "force", false, "download and install even when already up to date")
	cmd.Flags().BoolVar(&keepDownload, "keep", false, "keep the package file after installing")
}

// pickRelease asks the user to choose a release. Replaced in tests.
var pickRelease = func(releases []segger.Release) (segger.Release, error) {
	options := make([]ui.SelectOption, len(releases))
	for i, r := range releases {
		options[i] = ui.SelectOption{Label: r.Name}
		if i == 0 {
			options[i].Detail = "(latest)"
		}
	}
	idx, err := ui.Select("Select J-Link release", options)
	if err != nil {
		return segger.Release{}, err
	}
	return releases[idx], nil
}

// updatePlan is what a run intends to do, before any side effect.
type updatePlan struct {
	Target     segger.Release
	TargetCode version.Code
	Pinned     bool
	Installed  probe.Result
	Decision   version.Decision
	FileName   string
}

// InstalledName renders the installed version, or "" when none was found.
func (p *updatePlan) InstalledName() string {
	if !p.Installed.Found {
		return ""
	}
	return p.Installed.Code.String()
}

// updater carries the collaborators of one update run.
type updater struct {
	info   sysinfo.SystemInfo
	client *segger.Client
	prober *probe.Prober
	exec   *executor.Executor
	log    zerolog.Logger
}

// selectRelease resolves the --version query against the published releases.
func selectRelease(releases []segger.Release, query string) (segger.Release, bool, error) {
	switch strings.ToLower(strings.TrimSpace(query)) {
	case "", targetLatest:
		r, err := segger.Latest(releases)
		return r, false, err
	case targetPick:
		r, err := pickRelease(releases)
		return r, true, err
	}
	r, err := segger.FindRelease(releases, query)
	return r, true, err
}

// plan selects the target release, checks that the page offers its
// package for this platform, probes the installed library and decides what
// to do. It downloads and installs nothing. Only the probe runs under a
// spinner since selecting may prompt.
func (u *updater) plan(ctx context.Context, page *segger.Page, query string, force bool) (*updatePlan, error) {
	target, pinned, err := selectRelease(page.Releases, query)
	if err != nil {
		return nil, err
	}

	code, err := target.Code()
	if err != nil {
		return nil, fmt.Errorf("could not parse version %q from download page: %w", target.Name, err)
	}

	fileName := segger.PackageFileName(u.info, target.Name)
	if links := page.Packages(target.Index); len(links) > 0 {
		if _, err := segger.FindPackage(links, u.info, target.Name); err != nil {
			return nil, err
		}
	} else {
		u.log.Debug().Str("release", target.Name).Msg("page lists no packages for release; not checking availability")
	}

	sp := ui.NewSpinner("Checking installed version")
	sp.Start()
	installed := u.prober.Probe(ctx, u.info.Family)
	sp.Stop()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	decision := version.Decide(installed.Code, installed.Found, code, pinned)
	if decision == version.DecisionSkip && force {
		decision = version.DecisionReplace
	}

	return &updatePlan{
		Target:     target,
		TargetCode: code,
		Pinned:     pinned,
		Installed:  installed,
		Decision:   decision,
		FileName:   fileName,
	}, nil
}

// download saves the plan's package into dir and returns its path. The
// file is written under a temporary name and renamed once complete.
func (u *updater) download(ctx context.Context, p *updatePlan, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	dest := filepath.Join(dir, p.FileName)
	part := dest + ".part"

	f, err := os.Create(part)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", part, err)
	}
	defer os.Remove(part) // no-op after the rename

	pkg, err := u.client.OpenPackage(ctx, p.FileName)
	if err != nil {
		f.Close()
		return "", err
	}
	defer pkg.Close()

	u.log.Info().Str("url", u.client.FileURL(p.FileName)).Int64("size", pkg.Size).Msg("downloading package")

	var n int64
	if ui.ShowProgress() {
		bar := ui.NewProgress(f, pkg.Size, os.Stderr)
		n, err = segger.CopyPackage(bar, pkg)
		bar.Finish()
	} else {
		n, err = segger.CopyPackage(f, pkg)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", err
	}

	if err := os.Rename(part, dest); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", dest, err)
	}

	u.log.Debug().Str("path", dest).Int64("bytes", n).Msg("package saved")
	return dest, nil
}

// install runs the package installer.
func (u *updater) install(ctx context.Context, pkgPath string) error {
	if err := u.exec.InstallPackage(ctx, u.info.PackageInstallCommand, pkgPath); err != nil {
		return fmt.Errorf("%w: %v", ErrInstallFailed, err)
	}
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	info, err := resolveSystem(cfg)
	if err != nil {
		return err
	}
	printSystemInfo(info)

	install := cfg.General.Install
	if cmd.Flags().Changed("install") {
		install = installFlag
	}
	keep := cfg.General.KeepDownload || keepDownload

	if install && executor.NeedsElevation(info.PackageInstallCommand) && !cfg.General.DryRun {
		if err := executor.CheckPrivileges(true); err != nil {
			return err
		}
	}

	prober, err := newProber(cfg)
	if err != nil {
		return err
	}
	u := &updater{
		info:   info,
		client: newClient(cfg),
		prober: prober,
		exec:   executor.New(cfg.General.DryRun, cfg.Output.Verbose),
		log:    logger,
	}

	var page *segger.Page
	err = ui.WithSpinner("Fetching release list from "+u.client.BaseURL(), func() error {
		var fetchErr error
		page, fetchErr = u.client.FetchPage(ctx)
		return fetchErr
	})
	if err != nil {
		return err
	}

	p, err := u.plan(ctx, page, targetFlag, force)
	if err != nil {
		return err
	}

	label := "Latest Version"
	if p.Pinned {
		label = "Requested Version"
	}
	ui.PrintField(label, fmt.Sprintf("%s (%d)", ui.VersionName.Sprint(p.Target.Name), p.TargetCode))
	if p.Installed.Found {
		ui.PrintField("Installed Version", fmt.Sprintf("%s (%d)", p.Installed.Code, p.Installed.Code))
		ui.MutedMsg("  %s", p.Installed.Path)
	} else {
		ui.PrintField("Installed Version", ui.Missing.Sprint("None"))
	}

	if !p.Decision.NeedsDownload() {
		if p.Pinned {
			ui.SuccessMsg("Already on version %s.", p.Target.Name)
		} else {
			ui.SuccessMsg("Already on latest version.")
		}
		return nil
	}
	ui.InfoMsg("%s: %s", p.Decision.Describe(), p.Target.Name)

	dir := downloadDir
	if dir == "" {
		dir = cfg.General.DownloadDir
	}
	tempDir := dir == ""
	if tempDir {
		if install {
			dir = config.DownloadDir()
		} else {
			dir = "."
		}
	}

	action := string(p.Decision)
	if !install {
		action = actionDownload
	}
	entry := history.NewEntry(action, p.InstalledName(), p.Target.Name, p.FileName,
		string(info.Family)+"/"+info.Architecture)
	entry.DryRun = cfg.General.DryRun

	if cfg.General.DryRun {
		ui.Println("[dry-run] Would download: %s", u.client.FileURL(p.FileName))
		if install {
			if err := u.exec.InstallPackage(ctx, info.PackageInstallCommand, filepath.Join(dir, p.FileName)); err != nil {
				return err
			}
		}
		recordHistory(entry)
		return nil
	}

	pkgPath, err := u.download(ctx, p, dir)
	if err != nil {
		entry.MarkFailed(err)
		recordHistory(entry)
		return err
	}
	ui.SuccessMsg("Downloaded %s", pkgPath)

	if !install {
		entry.MarkSuccess()
		recordHistory(entry)
		ui.SuccessMsg("Success")
		return nil
	}

	if !cfg.General.AutoConfirm {
		ok, err := ui.Confirm(fmt.Sprintf("Install %s now", p.Target.Name), true)
		if err != nil {
			return ErrAborted
		}
		if !ok {
			ui.MutedMsg("Installation skipped; package kept at %s", pkgPath)
			return nil
		}
	}

	if err := u.install(ctx, pkgPath); err != nil {
		entry.MarkFailed(err)
		recordHistory(entry)
		return err
	}
	entry.MarkSuccess()
	recordHistory(entry)

	if tempDir && !keep {
		if err := os.Remove(pkgPath); err != nil {
			logger.Debug().Err(err).Str("path", pkgPath).Msg("could not remove package")
		}
	}

	ui.SuccessMsg("Success")
	return nil
}

// printSystemInfo prints the resolved platform.
func printSystemInfo(info sysinfo.SystemInfo) {
	ui.PrintField("Architecture", info.Architecture)
	ui.PrintField("System", string(info.Family))
	ui.PrintField("Package Type", info.PackageType)
	cmdline := info.PackageInstallCommand
	if cmdline == "" {
		cmdline = ui.Missing.Sprint("(run package)")
		if info.IsWindows() {
			cmdline = ui.Missing.Sprint("(run installer)")
		}
	}
	ui.PrintField("Package Install Command", cmdline)
}

// recordHistory stores the entry when history is enabled. Failures are
// logged and otherwise ignored.
func recordHistory(entry *history.Entry) {
	if !cfg.General.History {
		return
	}

	store, err := history.Open()
	if err != nil {
		logger.Warn().Err(err).Msg("could not open history")
		return
	}
	defer store.Close()

	if err := store.Record(entry); err != nil {
		logger.Warn().Err(err).Msg("could not record history")
	}
}
