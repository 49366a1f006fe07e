package lock

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	lock := New(filepath.Join("/", "tmp", "project"), "stage")
	assert.Equal(t, filepath.Join("/", "tmp", "project", ".stevedore", "locks", "stage.lock"), lock.Path())
}

func TestLock_AcquireRelease(t *testing.T) {
	tmpDir := t.TempDir()
	lock := New(tmpDir, "stage")

	err := lock.Acquire()
	require.NoError(t, err)

	// Lock file should exist and carry the holder's PID
	_, err = os.Stat(lock.Path())
	require.NoError(t, err)

	err = lock.Release()
	require.NoError(t, err)

	// Lock file should be removed
	_, err = os.Stat(lock.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestLock_DoubleAcquire(t *testing.T) {
	tmpDir := t.TempDir()
	lock1 := New(tmpDir, "stage")
	lock2 := New(tmpDir, "stage")

	err := lock1.Acquire()
	require.NoError(t, err)
	defer lock1.Release()

	err = lock2.Acquire()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "another stage operation is already running")
}

func TestLock_IndependentOperations(t *testing.T) {
	tmpDir := t.TempDir()
	stageLock := New(tmpDir, "stage")
	generateLock := New(tmpDir, "generate")

	require.NoError(t, stageLock.Acquire())
	defer stageLock.Release()

	// A different operation uses a different lock file
	require.NoError(t, generateLock.Acquire())
	require.NoError(t, generateLock.Release())
}

func TestLock_ReleaseWithoutAcquire(t *testing.T) {
	tmpDir := t.TempDir()
	lock := New(tmpDir, "stage")

	err := lock.Release()
	require.NoError(t, err)
}

func TestWithLock(t *testing.T) {
	tmpDir := t.TempDir()

	executed := false
	err := WithLock(tmpDir, "stage", func() error {
		executed = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, executed)
}

func TestWithLock_PropagatesError(t *testing.T) {
	tmpDir := t.TempDir()
	boom := errors.New("stage failed")

	err := WithLock(tmpDir, "stage", func() error {
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// Lock must be free again afterwards
	lock := New(tmpDir, "stage")
	require.NoError(t, lock.Acquire())
	require.NoError(t, lock.Release())
}

func TestWithLock_Blocked(t *testing.T) {
	tmpDir := t.TempDir()
	lock := New(tmpDir, "stage")

	err := lock.Acquire()
	require.NoError(t, err)
	defer lock.Release()

	err = WithLock(tmpDir, "stage", func() error {
		return nil
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "another stage operation is already running")
}
