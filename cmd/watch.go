package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/grovetools/lookout/cli"
	"github.com/grovetools/lookout/config"
	"github.com/grovetools/lookout/git"
	"github.com/grovetools/lookout/internal/daemon"
	"github.com/grovetools/lookout/logging"
	"github.com/grovetools/lookout/util/pathutil"
	"github.com/spf13/cobra"
)

// NewWatchCmd returns the watch command, which runs the change-detection
// daemon in the foreground.
func NewWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [root]",
		Short: "Watch a repository for file changes",
		Long: `Run the lookout daemon in the foreground, watching the given root
(or the enclosing repository of the working directory) for file changes
and serving session state over a unix socket.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewLogger("watch-cmd")
			opts := cli.GetOptions(cmd)
			handler := cli.NewErrorHandler(opts.Verbose)

			root, err := resolveRoot(args)
			if err != nil {
				return handler.Handle(err)
			}

			configFile, err := cli.InitConfig(opts.ConfigFile)
			if err != nil {
				return handler.Handle(err)
			}
			cfg, err := loadConfig(configFile, root)
			if err != nil {
				return handler.Handle(err)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-stop
				logger.Info("Received stop signal")
				cancel()
			}()

			d := daemon.New(root, cfg, configFile)
			logger.WithField("root", root).Info("Starting lookout")
			if err := d.Run(ctx); err != nil && err != context.Canceled {
				return handler.Handle(err)
			}
			return nil
		},
	}
}

// resolveRoot picks the watch root: the positional argument if given,
// otherwise the enclosing repository of the working directory, otherwise the
// working directory itself. The result is normalized so a symlinked path and
// its target name the same root.
func resolveRoot(args []string) (string, error) {
	if len(args) == 1 {
		expanded, err := pathutil.Expand(args[0])
		if err != nil {
			return "", err
		}
		return pathutil.NormalizeForLookup(expanded)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if root, err := git.GetGitRoot(cwd); err == nil {
		return pathutil.NormalizeForLookup(root)
	}
	return pathutil.NormalizeForLookup(cwd)
}

func loadConfig(configFile, root string) (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	return config.LoadFromDir(root)
}
