package pidfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.pid")

	require.NoError(t, Acquire(path))

	pid, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	// A second acquire against our own live PID must fail
	assert.Error(t, Acquire(path))

	require.NoError(t, Release(path))
	_, err = Read(path)
	assert.True(t, os.IsNotExist(err))
}

func TestAcquireCleansStalePid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.pid")

	// PID 99999999 is well beyond pid_max on any reasonable system
	require.NoError(t, os.WriteFile(path, []byte("99999999"), 0644))

	require.NoError(t, Acquire(path))
	pid, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestIsRunning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.pid")

	running, _, err := IsRunning(path)
	require.NoError(t, err)
	assert.False(t, running)

	require.NoError(t, Acquire(path))
	defer Release(path)

	running, pid, err := IsRunning(path)
	require.NoError(t, err)
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), pid)
}
