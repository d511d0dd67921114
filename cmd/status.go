package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/grovetools/lookout/cli"
	"github.com/grovetools/lookout/internal/daemon"
	"github.com/grovetools/lookout/pkg/client"
	"github.com/spf13/cobra"
)

// NewStatusCmd returns the status command, which queries the running daemon.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [root]",
		Short: "Show the state of the running daemon",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)

			root, err := resolveRoot(args)
			if err != nil {
				return err
			}

			c := client.New(filepath.Join(root, daemon.StateDirName, "daemon.sock"))
			defer c.Close()

			if !c.IsRunning() {
				fmt.Println("Daemon is not running")
				return nil
			}

			state, err := c.GetState(cmd.Context())
			if err != nil {
				return err
			}

			if opts.JSONOutput {
				return json.NewEncoder(os.Stdout).Encode(state)
			}

			fmt.Printf("Daemon running since %s\n\n", state.StartedAt.Format("2006-01-02 15:04:05"))

			fmt.Println("Watched roots:")
			roots := make([]string, 0, len(state.Roots))
			for r := range state.Roots {
				roots = append(roots, r)
			}
			sort.Strings(roots)
			for _, r := range roots {
				fmt.Printf("  %s  (%s)\n", r, state.Roots[r])
			}

			fmt.Printf("\nSessions: %d\n", len(state.Sessions))
			ids := make([]string, 0, len(state.Sessions))
			for id := range state.Sessions {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				info := state.Sessions[id]
				fmt.Printf("  %s: %d tracked, %d baseline", id, info.TrackedCount, info.BaselineCount)
				if info.WorktreeRoot != "" {
					fmt.Printf("  [%s]", info.WorktreeRoot)
				}
				fmt.Println()
			}

			fmt.Printf("\nEvents (last 10s): %d  pending: %d  peak pending: %d\n",
				state.Metrics.EventsLast10s, state.Metrics.PendingEvents, state.Metrics.PeakPending)
			return nil
		},
	}
}
