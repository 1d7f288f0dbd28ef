// Package filelock serializes pipeline runs that share a working directory.
// The build artifact is created and deleted by name in the working
// directory, so two concurrent runs would race on the same file; a
// directory-scoped advisory lock removes that race across both goroutines
// and processes.
package filelock

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is the advisory lock file doccheck maintains per working
// directory.
const LockFileName = ".doccheck.lock"

// WorkDirLock guards a working directory against concurrent pipeline runs.
type WorkDirLock struct {
	flock *flock.Flock
	path  string
}

// New creates a lock for the given working directory. The lock file is
// created inside the directory itself so the scope is exactly one artifact
// namespace.
func New(workDir string) *WorkDirLock {
	path := filepath.Join(workDir, LockFileName)
	return &WorkDirLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Path returns the location of the underlying lock file.
func (l *WorkDirLock) Path() string {
	return l.path
}

// Lock acquires the exclusive lock, blocking until it is available.
func (l *WorkDirLock) Lock() error {
	if err := l.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", l.path, err)
	}
	return nil
}

// TryLock attempts to acquire the exclusive lock without blocking.
// Returns true if the lock was acquired, false if another run holds it.
func (l *WorkDirLock) TryLock() (bool, error) {
	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", l.path, err)
	}
	return acquired, nil
}

// Unlock releases the lock.
func (l *WorkDirLock) Unlock() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	return nil
}
