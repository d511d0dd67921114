package errors

import (
	"fmt"
	"os/exec"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *LookoutError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *LookoutError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// RootNotRepo creates an error for a watched root that is not a git repository
func RootNotRepo(root string) *LookoutError {
	return New(ErrCodeRootNotRepo, fmt.Sprintf("no git repository maps to root: %s", root)).
		WithDetail("root", root)
}

// WatchInit creates a watcher initialization error
func WatchInit(root string, err error) *LookoutError {
	return Wrap(err, ErrCodeWatchInit, fmt.Sprintf("failed to initialize watcher for %s", root)).
		WithDetail("root", root)
}

// DiffFailed creates a diff computation failure error
func DiffFailed(path string, err error) *LookoutError {
	return Wrap(err, ErrCodeDiffFailed, fmt.Sprintf("failed to compute diff for %s", path)).
		WithDetail("path", path)
}

// CommandFailed creates a command execution failure error
func CommandFailed(cmd string, err error) *LookoutError {
	lerr := Wrap(err, ErrCodeCommandFailed, fmt.Sprintf("command failed: %s", cmd)).
		WithDetail("command", cmd)

	// Extract exit code if available
	if exitErr, ok := err.(*exec.ExitError); ok {
		lerr = lerr.WithDetail("exitCode", exitErr.ExitCode())
	}

	return lerr
}
