package command

import (
	"context"
	"os/exec"
)

// Executor is the seam between the builder and os/exec. Everything the
// pipeline shells out to git goes through it, so tests can point command
// creation at stub binaries without touching the call sites.
type Executor interface {
	// Command builds an exec.Cmd for the given binary and arguments.
	Command(name string, args ...string) *exec.Cmd

	// CommandContext builds an exec.Cmd bound to the given context, so a
	// cancelled watch or a timed-out status poll kills its subprocess.
	CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd
}

// RealExecutor runs commands through os/exec unchanged.
type RealExecutor struct{}

func (e *RealExecutor) Command(name string, args ...string) *exec.Cmd {
	return exec.Command(name, args...)
}

func (e *RealExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, args...)
}
