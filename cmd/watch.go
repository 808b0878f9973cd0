package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/grovetools/spellsync/cli"
	"github.com/grovetools/spellsync/internal/watch"
	"github.com/grovetools/spellsync/logging"
	"github.com/spf13/cobra"
)

// NewWatchCmd creates the long-running watch command.
func NewWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch folders and the global word list, syncing continuously",
		Long: `Runs an initial collection pass after the configured startup delay,
then watches every configured folder for settings changes and inbox
files, and the global word list for external changes. Runs until
interrupted.`,
		Example: `  spellsync watch
  # with a specific configuration file
  spellsync watch -c ./spellsync.yml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, fileStore, configPath, err := newSession(cmd, true)
			if err != nil {
				return err
			}
			defer session.Close()

			handler := cli.NewErrorHandler(cli.GetOptions(cmd).Verbose)
			logger := logging.NewLogger("watch")

			cfg, err := session.Config()
			if err != nil {
				return handler.Handle(err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			startup := time.Duration(cfg.Delays.StartupMs) * time.Millisecond
			if startup > 0 {
				logger.WithField("delay", startup.String()).Debug("Waiting before initial pass")
				select {
				case <-time.After(startup):
				case <-ctx.Done():
					return nil
				}
			}

			if _, err := session.SyncToGlobal(ctx); err != nil {
				logger.WithError(err).Error("Initial collection pass failed")
			}

			watcher, err := watch.New(session, fileStore, logger,
				watch.WithStoreWatch(fileStore.Watch),
				watch.WithConfigPath(configPath),
			)
			if err != nil {
				return handler.Handle(err)
			}

			if err := watcher.Start(ctx); err != nil && err != context.Canceled {
				return handler.Handle(err)
			}
			logger.Info("Shutting down")
			return nil
		},
	}
}
