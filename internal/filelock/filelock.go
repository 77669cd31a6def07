// Package filelock serializes destructive scans. Each scan root maps to a
// lock file, and an exclusive flock on it guarantees that at most one
// deleting run works on that root at a time across processes.
package filelock

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrHeld reports that another process already holds the run lock.
var ErrHeld = errors.New("lock already held")

// RunLock is an exclusive, per-root lock backed by a file in the lock
// directory. The zero value is not usable; obtain one via Acquire.
type RunLock struct {
	flock *flock.Flock
	path  string
}

// LockPath returns the lock file path for the given scan root. Roots are
// keyed by the hash of their absolute path, so "./src" and "src" contend
// for the same lock.
func LockPath(dir, root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", root, err)
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(dir, hex.EncodeToString(sum[:])+".lock"), nil
}

// Acquire takes the exclusive run lock for root without blocking.
// It returns an error wrapping ErrHeld when another process holds the lock.
func Acquire(dir, root string) (*RunLock, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create lock directory %s: %w", dir, err)
	}

	path, err := LockPath(dir, root)
	if err != nil {
		return nil, err
	}

	fl := flock.New(path)
	acquired, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to try lock on %s: %w", path, err)
	}
	if !acquired {
		abs, _ := filepath.Abs(root)
		return nil, fmt.Errorf("another scour clean is already running on %s: %w", abs, ErrHeld)
	}

	return &RunLock{flock: fl, path: path}, nil
}

// Path returns the lock file path.
func (l *RunLock) Path() string {
	return l.path
}

// Release drops the lock.
// Returns an error if the unlock operation fails.
func (l *RunLock) Release() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	return nil
}
