// Package lock provides file-based locking for stevedore operations.
package lock

import (
	"os"
	"path/filepath"
)

// Lock represents a file-based lock scoped to one operation.
type Lock struct {
	path      string
	operation string
	file      *os.File
}

// New creates a new lock for the given operation in the project root.
func New(root, operation string) *Lock {
	lockDir := filepath.Join(root, ".stevedore", "locks")
	return &Lock{
		path:      filepath.Join(lockDir, operation+".lock"),
		operation: operation,
	}
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// WithLock executes a function while holding the lock.
// The lock is automatically released when the function returns.
func WithLock(root, operation string, fn func() error) error {
	lock := New(root, operation)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	return fn()
}
