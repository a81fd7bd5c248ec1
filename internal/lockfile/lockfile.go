// Package lockfile provides a cross-process advisory lock guarding an
// index folder against concurrent writers (§5.1), using gofrs/flock the
// same way the teacher guards a concurrent model download.
package lockfile

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/vectra-go/vectra/internal/vecerr"
)

const lockFileName = ".vectra.lock"

// FileLock is an exclusive, cross-process lock over one index folder.
type FileLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// New returns a lock bound to <dir>/.vectra.lock. dir need not exist yet.
func New(dir string) *FileLock {
	path := filepath.Join(dir, lockFileName)
	return &FileLock{path: path, flock: flock.New(path)}
}

// Lock acquires the lock, blocking until it is available. Only one
// writer may hold a folder's lock at a time; readers are expected to
// coordinate externally (§5.1 scopes this to single-writer, not
// multi-reader isolation).
func (l *FileLock) Lock() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return vecerr.Wrap(vecerr.IOError, err, "creating lock directory")
	}
	if err := l.flock.Lock(); err != nil {
		return vecerr.Wrap(vecerr.IOError, err, "acquiring lock at %s", l.path)
	}
	l.locked = true
	return nil
}

// TryLock attempts to acquire the lock without blocking.
func (l *FileLock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, vecerr.Wrap(vecerr.IOError, err, "creating lock directory")
	}
	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, vecerr.Wrap(vecerr.IOError, err, "acquiring lock at %s", l.path)
	}
	l.locked = acquired
	return acquired, nil
}

// Unlock releases the lock. Safe to call multiple times or when unlocked.
func (l *FileLock) Unlock() error {
	if !l.locked {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return vecerr.Wrap(vecerr.IOError, err, "releasing lock at %s", l.path)
	}
	l.locked = false
	return nil
}

// Path returns the lock file's path.
func (l *FileLock) Path() string { return l.path }

// IsLocked reports whether this handle currently holds the lock.
func (l *FileLock) IsLocked() bool { return l.locked }
