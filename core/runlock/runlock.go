package runlock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Lock is an advisory file lock that keeps two processes from reconciling the
// same server at once.
type Lock struct {
	path string
	lock *flock.Flock
}

// New prepares a lock at path, creating the parent directory.
func New(path string) (*Lock, error) {
	if path == "" {
		return nil, fmt.Errorf("lock path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	return &Lock{path: path, lock: flock.New(path)}, nil
}

// TryLock acquires the lock without blocking. It returns false when another
// process holds it.
func (l *Lock) TryLock() (bool, error) {
	ok, err := l.lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", l.path, err)
	}
	return ok, nil
}

// Unlock releases the lock.
func (l *Lock) Unlock() error {
	return l.lock.Unlock()
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}
