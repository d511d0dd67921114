package main

import (
	"os"

	"github.com/grovetools/lookout/cli"
	"github.com/grovetools/lookout/cmd"
)

func main() {
	rootCmd := cli.NewStandardCommand(
		"lookout",
		"File-change detection and review-session notifications for git worktrees",
	)

	rootCmd.AddCommand(cmd.NewWatchCmd())
	rootCmd.AddCommand(cmd.NewStatusCmd())
	rootCmd.AddCommand(cmd.NewStopCmd())
	rootCmd.AddCommand(cmd.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
