package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// lockDirPermissions matches the state directory permissions.
const lockDirPermissions = 0o700

// errAlreadyRunning is returned when another process holds the lock for the
// same resource and mode.
var errAlreadyRunning = errors.New("another syncpaste is already running for this resource and mode")

// acquireLock takes a non-blocking exclusive lock on path. The returned
// function releases the lock and removes the file.
func acquireLock(path string) (release func(), err error) {
	if path == "" {
		return nil, errors.New("lock file path is empty; cannot determine state directory")
	}

	if err := os.MkdirAll(filepath.Dir(path), lockDirPermissions); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	fl := flock.New(path)

	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}

	if !locked {
		return nil, fmt.Errorf("%w (lock held on %s)", errAlreadyRunning, path)
	}

	return func() {
		fl.Unlock()
		os.Remove(path)
	}, nil
}

// lockHeld reports whether another process currently holds the lock at path.
// It never creates the lock file.
func lockHeld(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}

	fl := flock.New(path)

	locked, err := fl.TryLock()
	if err != nil {
		return false
	}

	if locked {
		fl.Unlock()
		return false
	}

	return true
}
