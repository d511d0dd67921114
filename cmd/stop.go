package cmd

import (
	"fmt"
	"path/filepath"
	"syscall"

	"github.com/grovetools/lookout/internal/daemon"
	"github.com/grovetools/lookout/internal/daemon/pidfile"
	"github.com/spf13/cobra"
)

// NewStopCmd returns the stop command, which signals the running daemon.
func NewStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop [root]",
		Short: "Stop the running daemon",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveRoot(args)
			if err != nil {
				return err
			}
			pidPath := filepath.Join(root, daemon.StateDirName, "daemon.pid")

			running, pid, err := pidfile.IsRunning(pidPath)
			if err != nil {
				return fmt.Errorf("error checking status: %w", err)
			}
			if !running {
				fmt.Println("Daemon is not running")
				return nil
			}

			if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
				return fmt.Errorf("failed to signal daemon (pid %d): %w", pid, err)
			}
			fmt.Printf("Sent stop signal to daemon (pid %d)\n", pid)
			return nil
		},
	}
}
