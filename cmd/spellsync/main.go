package main

import (
	"os"

	"github.com/grovetools/spellsync/cli"
	"github.com/grovetools/spellsync/cmd"
)

func main() {
	rootCmd := cli.NewStandardCommand(
		"spellsync",
		"Keep spelling-dictionary word lists consistent across projects",
	)

	rootCmd.AddCommand(cmd.NewSyncCmd())
	rootCmd.AddCommand(cmd.NewResyncCmd())
	rootCmd.AddCommand(cmd.NewWatchCmd())
	rootCmd.AddCommand(cmd.NewVersionCmd())

	cli.ApplyStyledHelpRecursive(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
