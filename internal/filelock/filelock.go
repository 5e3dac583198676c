// Package filelock guards an output directory against concurrent retrieval
// runs. Two processes linking into the same directory would race on the
// skip-if-exists check, so the retrieve command takes an exclusive lock on
// the directory before delivering any files.
package filelock

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// lockFileName is the lock file created inside the output directory.
const lockFileName = ".nastools.lock"

// OutputLock is an advisory exclusive lock on an output directory.
type OutputLock struct {
	flock *flock.Flock
	dir   string
}

// NewOutputLock creates a lock for the given output directory. The lock file
// lives inside the directory, so the directory must exist before locking.
func NewOutputLock(dir string) *OutputLock {
	return &OutputLock{
		flock: flock.New(filepath.Join(dir, lockFileName)),
		dir:   dir,
	}
}

// TryLock attempts to acquire the lock without blocking.
// Returns true if the lock was acquired, false if another retrieval holds it.
func (l *OutputLock) TryLock() (bool, error) {
	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to lock output directory %s: %w", l.dir, err)
	}
	return acquired, nil
}

// Unlock releases the lock.
func (l *OutputLock) Unlock() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to unlock output directory %s: %w", l.dir, err)
	}
	return nil
}

// Path returns the lock file path, useful in diagnostics.
func (l *OutputLock) Path() string {
	return l.flock.Path()
}
