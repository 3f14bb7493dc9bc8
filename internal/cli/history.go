package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"jlink-update/internal/history"
	"jlink-update/internal/ui"
)

var (
	historyLimit   int
	historyClear   bool
	historyPrune   time.Duration
	historyLast    bool
	historyVersion string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show install history",
	Long: `Display the installer runs recorded by jlink-update. Recording is off
unless history = true is set in the [general] section of the config file.

Examples:
  jlink-update history              # Show recent runs
  jlink-update history -l 20        # Show last 20 runs
  jlink-update history --last       # Show the most recent run
  jlink-update history --version V7.94a # Show runs towards one release
  jlink-update history --prune 720h # Forget runs older than 30 days
  jlink-update history --clear      # Forget everything`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 10, "number of entries to show")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "remove all entries")
	historyCmd.Flags().DurationVar(&historyPrune, "prune", 0, "remove entries older than this age")
	historyCmd.Flags().BoolVar(&historyLast, "last", false, "show only the most recent run")
	historyCmd.Flags().StringVar(&historyVersion, "version", "", "show only runs towards this release")
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := history.Open()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	if historyClear {
		if !cfg.General.AutoConfirm {
			ok, err := ui.Confirm("Remove all history entries", false)
			if err != nil || !ok {
				return ErrAborted
			}
		}
		if err := store.Clear(); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		ui.SuccessMsg("History cleared")
		return nil
	}

	if historyPrune > 0 {
		n, err := store.Prune(historyPrune)
		if err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}
		ui.SuccessMsg("Removed %d entries", n)
		return nil
	}

	if historyLast {
		entry, err := store.Last()
		if errors.Is(err, history.ErrNotFound) {
			ui.MutedMsg("No history entries found")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read history: %w", err)
		}
		ui.Println("%s", entry.Summary())
		if entry.Package != "" {
			ui.MutedMsg("    Package: %s", entry.Package)
		}
		if entry.Error != "" {
			ui.MutedMsg("    Error: %s", entry.Error)
		}
		return nil
	}

	var entries []history.Entry
	if historyVersion != "" {
		entries, err = store.ForTarget(historyVersion, historyLimit)
	} else {
		entries, err = store.List(historyLimit)
	}
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if len(entries) == 0 {
		ui.MutedMsg("No history entries found")
		if !cfg.General.History {
			ui.MutedMsg("Recording is disabled; set history = true under [general] in %s", configPathForDisplay())
		}
		return nil
	}

	ui.HeaderMsg("Install History")

	for i, entry := range entries {
		fmt.Printf("%2d. %s %s %s [%s] (%s)\n",
			i+1,
			ui.Muted.Sprint(entry.FormatTime()),
			ui.Bold(entry.Action),
			entry.Transition(),
			ui.Cyan(entry.Platform),
			ui.StatusText(entry.Status()),
		)

		if entry.Error != "" {
			ui.MutedMsg("    Error: %s", entry.Error)
		}
	}

	total, _ := store.Count()
	ui.MutedMsg("\nShowing %d of %d total entries", len(entries), total)

	return nil
}
