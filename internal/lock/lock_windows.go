//go:build windows

package lock

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"
)

// Acquire attempts to acquire the lock.
// On Windows, this uses LockFileEx with LOCKFILE_FAIL_IMMEDIATELY, so
// an error means the lock is held by another process.
func (l *Lock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}

	overlapped := &windows.Overlapped{}
	err = windows.LockFileEx(
		windows.Handle(f.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0,          // reserved
		1,          // lock 1 byte
		0,          // high-order size (0 for small files)
		overlapped, // overlapped structure
	)
	if err != nil {
		f.Close()
		l.file = nil
		if err == windows.ERROR_LOCK_VIOLATION {
			return fmt.Errorf("another %s operation is already running", l.operation)
		}
		return fmt.Errorf("acquire lock: %w", err)
	}

	// Write PID to lock file for debugging
	f.Truncate(0)
	f.Seek(0, 0)
	fmt.Fprintf(f, "%d\n", os.Getpid())

	l.file = f
	return nil
}

// Release releases the lock and removes the lock file.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}

	overlapped := &windows.Overlapped{}
	if err := windows.UnlockFileEx(
		windows.Handle(l.file.Fd()),
		0,          // reserved
		1,          // unlock 1 byte
		0,          // high-order size
		overlapped, // overlapped structure
	); err != nil {
		l.file.Close()
		return fmt.Errorf("release lock: %w", err)
	}

	l.file.Close()
	os.Remove(l.path)
	l.file = nil

	return nil
}
