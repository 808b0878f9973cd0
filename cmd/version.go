package cmd

import (
	"runtime"

	"github.com/grovetools/spellsync/cli"
	"github.com/spf13/cobra"
)

// Build-time variables, set via -ldflags.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return cli.NewVersionCommand("spellsync", cli.VersionInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		BuildArch: runtime.GOOS + "/" + runtime.GOARCH,
	})
}
