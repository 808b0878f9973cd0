package cmd

import (
	"github.com/grovetools/spellsync/cli"
	"github.com/grovetools/spellsync/config"
	syncer "github.com/grovetools/spellsync/internal/sync"
	"github.com/spf13/cobra"
)

// NewSyncCmd creates the sync command group.
func NewSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "One-shot synchronization between folders and the global word list",
	}

	cmd.AddCommand(newSyncToGlobalCmd())
	cmd.AddCommand(newSyncFromGlobalCmd())
	cmd.AddCommand(newSyncDictionariesCmd())
	return cmd
}

func newSyncToGlobalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "to-global",
		Short: "Collect words from every folder into the global word list",
		Long: `Reads each configured folder's spell-checker settings, custom
dictionary files, language-specific word lists, and combined.txt inbox
file, and merges every word into the global word list.`,
		Example: `  # Collect from the folders listed in spellsync.yml
  spellsync sync to-global`,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _, _, err := newSession(cmd, true)
			if err != nil {
				return err
			}
			defer session.Close()

			handler := cli.NewErrorHandler(cli.GetOptions(cmd).Verbose)
			result, err := session.SyncToGlobal(cmd.Context())
			if err != nil {
				return handler.Handle(err)
			}
			return printResult(cmd, result)
		},
	}
}

func newSyncFromGlobalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "from-global",
		Short: "Distribute the global word list into every folder's targets",
		Long: `Merges the global word list into the enabled targets of every
configured folder: the settings file, a registered custom dictionary, a
created-on-demand dictionary file, and the workspace store. Folders can
opt out via spellsync.enableBidirectionalSync in their settings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _, _, err := newSession(cmd, false)
			if err != nil {
				return err
			}
			defer session.Close()

			handler := cli.NewErrorHandler(cli.GetOptions(cmd).Verbose)
			result, err := session.SyncFromGlobal(cmd.Context(), syncer.TriggerManual)
			if err != nil {
				return handler.Handle(err)
			}
			return printResult(cmd, result)
		},
	}
}

func newSyncDictionariesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dictionaries",
		Short: "Merge every registered custom dictionary into the global word list",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _, _, err := newSession(cmd, false)
			if err != nil {
				return err
			}
			defer session.Close()

			handler := cli.NewErrorHandler(cli.GetOptions(cmd).Verbose)
			result, err := session.SyncDictionariesToGlobal(cmd.Context())
			if err != nil {
				return handler.Handle(err)
			}
			return printResult(cmd, result)
		},
	}
}

// NewResyncCmd creates the full-resync command: session state is cleared
// and both directions run from scratch.
func NewResyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resync",
		Short: "Clear session state and run a full two-way synchronization",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, _, _, err := newSession(cmd, true)
			if err != nil {
				return err
			}
			defer session.Close()
			session.Reset()

			handler := cli.NewErrorHandler(cli.GetOptions(cmd).Verbose)
			if _, err := session.SyncToGlobal(cmd.Context()); err != nil {
				return handler.Handle(err)
			}

			cfg, err := session.Config()
			if err != nil {
				return handler.Handle(err)
			}
			if cfg.Bidirectional.Mode == config.ModeDisabled {
				return nil
			}
			if _, err := session.SyncFromGlobal(cmd.Context(), syncer.TriggerManual); err != nil {
				return handler.Handle(err)
			}
			return nil
		},
	}
}
