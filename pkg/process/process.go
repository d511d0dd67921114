// Package process provides process liveness checks for daemon management.
package process

import (
	"os"
	"syscall"
)

// IsProcessAlive checks if a process with the given PID is still running.
// It uses the signal-0 probe, which works on Unix-like systems.
func IsProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}

	// FindProcess never fails on Unix
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// EPERM means the process exists but belongs to someone else; it is
	// still alive. ESRCH means it is gone.
	err = process.Signal(syscall.Signal(0))
	return err == nil || os.IsPermission(err)
}
