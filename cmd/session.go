package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/grovetools/spellsync/cli"
	"github.com/grovetools/spellsync/config"
	syncer "github.com/grovetools/spellsync/internal/sync"
	"github.com/grovetools/spellsync/logging"
	"github.com/grovetools/spellsync/pkg/store"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// newSession assembles a reconciliation session from command flags: config
// cache, file-backed store, console notifier, and (for interactive
// commands on a terminal) the inbox prompter.
func newSession(cmd *cobra.Command, interactive bool) (*syncer.Session, *store.FileStore, string, error) {
	opts := cli.GetOptions(cmd)

	configPath, err := cli.InitConfig(opts.ConfigFile)
	if err != nil {
		return nil, nil, "", err
	}

	loader := func() (*config.Config, error) {
		if configPath != "" {
			return config.Load(configPath)
		}
		return config.LoadDefault()
	}
	cache := config.NewCache(loader, config.CacheTTL)

	logger := logging.NewLogger("sync")
	if opts.Verbose {
		logger.Logger.SetLevel(logrus.DebugLevel)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil, "", err
	}

	fileStore := store.NewFileStore(store.DefaultGlobalPath(), store.WorkspacePathIn(cwd), logger)

	sessionOpts := []syncer.Option{syncer.WithWorkingDir(cwd)}
	if !opts.JSONOutput {
		sessionOpts = append(sessionOpts, syncer.WithNotifier(cli.NewConsoleNotifier()))
	}
	if interactive && isatty.IsTerminal(os.Stdin.Fd()) {
		sessionOpts = append(sessionOpts, syncer.WithPrompter(cli.NewInboxPrompter()))
	}

	session := syncer.NewSession(cache, fileStore, logger, sessionOpts...)
	return session, fileStore, configPath, nil
}

// printResult writes a machine-readable summary when --json is set.
func printResult(cmd *cobra.Command, result interface{}) error {
	if !cli.GetOptions(cmd).JSONOutput {
		return nil
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
