package cmd

import (
	"github.com/grovetools/lookout/cli"
	"github.com/grovetools/lookout/version"
	"github.com/spf13/cobra"
)

// NewVersionCmd returns the version command.
func NewVersionCmd() *cobra.Command {
	return cli.NewVersionCommand("lookout", cli.VersionInfo{
		Version:   version.Version,
		Commit:    version.Commit,
		BuildDate: version.BuildDate,
		BuildArch: version.Arch(),
	})
}
