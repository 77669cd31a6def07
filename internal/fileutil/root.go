package fileutil

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrNotFound reports a scan root that does not exist.
	ErrNotFound = errors.New("path does not exist")
	// ErrNotDir reports a scan root that is not a directory.
	ErrNotDir = errors.New("not a directory")
)

// ValidateRoot checks that root names an existing directory. Scans call it
// before walking; Walk itself treats a bad root as a per-entry error and
// would silently visit nothing.
func ValidateRoot(root string) error {
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return fmt.Errorf("%q: %w", root, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("stat %q: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%q: %w", root, ErrNotDir)
	}
	return nil
}
