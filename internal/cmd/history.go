package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/scour/internal/config"
	"github.com/harrison/scour/internal/history"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	var (
		limit  int
		dbPath string
	)

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent cleanup runs",
		Long: `List the cleanup runs recorded in the history ledger, most recent first.

Given a run id (a unique prefix is enough), show that run's matched folders
and their outcomes instead.

Examples:
  # The last 20 runs
  scour history

  # The last 5 runs
  scour history -n 5

  # Every folder one run touched
  scour history 9f86d081`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, args, limit, dbPath)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	cmd.Flags().StringVar(&dbPath, "db-path", "", "Path to history database (for testing)")

	return cmd
}

// runHistory executes the history command
func runHistory(cmd *cobra.Command, args []string, limit int, dbPathOverride string) error {
	output := cmd.OutOrStdout()

	dbPath := dbPathOverride
	if dbPath == "" {
		cfg, err := loadConfig("")
		if err != nil {
			return err
		}
		dbPath, err = config.HistoryDBPath(cfg.History.DBPath)
		if err != nil {
			return fmt.Errorf("resolve history database path: %w", err)
		}
	}

	// A ledger that was never written to is not an error.
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(output, "No history recorded yet.\n")
		return nil
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()

	if len(args) == 1 {
		run, err := store.RunByPrefix(ctx, args[0])
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("no run matches %q", args[0])
			}
			return fmt.Errorf("load run: %w", err)
		}
		printRun(output, run)
		return nil
	}

	runs, err := store.RecentRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintf(output, "No history recorded yet.\n")
		return nil
	}
	printRunList(output, runs)
	return nil
}

// printRunList formats and prints one line pair per recorded run
func printRunList(w io.Writer, runs []*history.Run) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	cyan.Fprintf(w, "Recent cleanup runs:\n\n")
	for _, run := range runs {
		fmt.Fprintf(w, "%s  %s  %-7s  %s\n",
			shortID(run.ID), run.StartedAt.Local().Format("2006-01-02 15:04:05"), runMode(run), run.Root)
		fmt.Fprintf(w, "          matched %d", run.Matched)
		if run.Force {
			fmt.Fprintf(w, ", removed ")
			green.Fprintf(w, "%d", run.Removed)
			if run.Failed > 0 {
				fmt.Fprintf(w, ", failed ")
				red.Fprintf(w, "%d", run.Failed)
			}
			fmt.Fprintf(w, ", freed %s", humanize.Bytes(uint64(run.BytesFreed)))
		} else {
			fmt.Fprintf(w, ", reclaimable %s", humanize.Bytes(uint64(run.BytesMatched)))
		}
		fmt.Fprintf(w, "\n\n")
	}
}

// printRun formats and prints a single run with its per-folder outcomes
func printRun(w io.Writer, run *history.Run) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	gray := color.New(color.FgHiBlack)

	cyan.Fprintf(w, "Run %s\n", run.ID)
	fmt.Fprintf(w, "  Root: %s\n", run.Root)
	fmt.Fprintf(w, "  Mode: %s\n", runMode(run))
	fmt.Fprintf(w, "  Started: %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  Duration: %s\n", run.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  Matched: %d (%s)\n", run.Matched, humanize.Bytes(uint64(run.BytesMatched)))
	if run.Force {
		fmt.Fprintf(w, "  Removed: %d (%s freed)\n", run.Removed, humanize.Bytes(uint64(run.BytesFreed)))
		if run.Failed > 0 {
			fmt.Fprintf(w, "  Failed: %d\n", run.Failed)
		}
	}

	if len(run.Folders) == 0 {
		return
	}

	fmt.Fprintln(w)
	for _, folder := range run.Folders {
		switch {
		case folder.Removed:
			green.Fprintf(w, "  removed ")
		case folder.Error != "":
			red.Fprintf(w, "  failed  ")
		default:
			fmt.Fprintf(w, "  found   ")
		}
		fmt.Fprintf(w, "%s (%s, %s)\n", folder.Path, folder.Description, humanize.Bytes(uint64(folder.Size)))
		if folder.Error != "" {
			gray.Fprintf(w, "          %s\n", folder.Error)
		}
	}
}

// runMode names the mode a run was executed in
func runMode(run *history.Run) string {
	if run.Force {
		return "force"
	}
	return "dry-run"
}

// shortID abbreviates a run id for the listing view
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
