package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ScourHome returns the scour home directory.
// Priority order:
//  1. SCOUR_HOME environment variable (if set)
//  2. ~/.scour under the user's home directory
//
// The directory is created if it doesn't exist. Scour state lives here,
// away from the trees being scanned, so a scan never picks up its own
// database or lock files.
func ScourHome() (string, error) {
	home := os.Getenv("SCOUR_HOME")
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve user home directory: %w", err)
		}
		home = filepath.Join(userHome, ".scour")
	}

	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create scour home directory: %w", err)
	}
	return home, nil
}

// DefaultConfigPath returns the path of the config file under the scour home.
func DefaultConfigPath() (string, error) {
	home, err := ScourHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "config.yaml"), nil
}

// HistoryDBPath returns the absolute path to the run history database.
// An empty override selects the default $SCOUR_HOME/history/runs.db.
// The parent directory is created if it doesn't exist.
func HistoryDBPath(override string) (string, error) {
	if override != "" {
		if err := os.MkdirAll(filepath.Dir(override), 0755); err != nil {
			return "", fmt.Errorf("create history directory: %w", err)
		}
		return override, nil
	}

	home, err := ScourHome()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, "history")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create history directory: %w", err)
	}
	return filepath.Join(dir, "runs.db"), nil
}

// LocksDir returns the directory holding per-path run locks.
// The directory is created if it doesn't exist.
func LocksDir() (string, error) {
	home, err := ScourHome()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, "locks")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create locks directory: %w", err)
	}
	return dir, nil
}
