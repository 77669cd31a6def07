package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/scour/internal/cleaner"
	"github.com/harrison/scour/internal/config"
	"github.com/harrison/scour/internal/filelock"
	"github.com/harrison/scour/internal/history"
	"github.com/harrison/scour/internal/logger"
)

// NewCleanCommand creates the clean command
func NewCleanCommand() *cobra.Command {
	var (
		path       string
		force      bool
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Scan and clean up dependency folders (node_modules, target, vendor, etc.)",
		Long: `Scan a directory tree for dependency and build-artifact folders that a
build can regenerate, and report how much disk space each one holds.

By default nothing is deleted; pass --force to remove the matched folders.
A folder only matches when it looks like part of a real project: node_modules
needs a package.json next to it, target needs a Cargo.toml, and so on, so a
directory that merely shares the name is left alone.

Extra rules can be added in the config file under clean.rules.

Examples:
  # Report what could be removed under the current directory
  scour clean

  # Clean a specific tree
  scour clean -p ~/src/monorepo --force

  # Use a custom config file
  scour clean --config custom.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, path, force, configPath)
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", ".", "Root path to start scanning from")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Actually delete the folders (default is dry-run)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file (default: $SCOUR_HOME/config.yaml)")

	return cmd
}

// runClean executes the clean command
func runClean(cmd *cobra.Command, path string, force bool, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	log := logger.NewStderr(cfg.LogLevel)

	// Deleting runs are serialized per root so two scour processes never
	// race over the same tree. Dry runs don't mutate anything and skip the
	// lock.
	if force {
		locksDir, err := config.LocksDir()
		if err != nil {
			return fmt.Errorf("resolve locks directory: %w", err)
		}
		lock, err := filelock.Acquire(locksDir, path)
		if err != nil {
			return err
		}
		defer lock.Release()
	}

	started := time.Now().UTC()
	summary, err := cleaner.Run(path, cleaner.Options{
		Force: force,
		Rules: cfg.CleanRules(),
		Out:   cmd.OutOrStdout(),
		Log:   log,
	})
	if err != nil {
		return err
	}

	// History failures must never fail a cleanup that already ran.
	if cfg.History.Enabled {
		if err := recordRun(cfg, path, force, started, summary); err != nil {
			log.Warnf("recording run history: %v", err)
		}
	}

	return nil
}

// recordRun persists a completed cleanup scan in the history ledger.
func recordRun(cfg *config.Config, root string, force bool, started time.Time, summary *cleaner.Summary) error {
	dbPath, err := config.HistoryDBPath(cfg.History.DBPath)
	if err != nil {
		return err
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	// Record the absolute root so listings stay meaningful regardless of
	// the working directory the scan was launched from.
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	run := &history.Run{
		Root:         root,
		Force:        force,
		StartedAt:    started,
		Duration:     summary.Duration,
		Matched:      summary.Matched(),
		Removed:      summary.Removed,
		Failed:       summary.Failed,
		BytesMatched: summary.BytesMatched,
		BytesFreed:   summary.BytesFreed,
		Folders:      make([]history.Folder, 0, len(summary.Candidates)),
	}
	for _, cand := range summary.Candidates {
		folder := history.Folder{
			Path:        cand.Path,
			Folder:      cand.Rule.Folder,
			Description: cand.Rule.Description,
			Size:        cand.Size,
			Removed:     cand.Removed,
		}
		if cand.Err != nil {
			folder.Error = cand.Err.Error()
		}
		run.Folders = append(run.Folders, folder)
	}

	return store.RecordRun(context.Background(), run)
}
