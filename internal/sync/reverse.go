package sync

import (
	"context"
	stdsync "sync"

	"github.com/grovetools/spellsync/config"
	"github.com/grovetools/spellsync/errors"
	"github.com/grovetools/spellsync/pkg/settings"
	"github.com/grovetools/spellsync/pkg/store"
	"golang.org/x/sync/errgroup"
)

// Trigger distinguishes manual reverse-sync invocations from the
// automatic path taken when the global list changes externally.
type Trigger string

const (
	TriggerManual    Trigger = "manual"
	TriggerAutomatic Trigger = "automatic"
)

// ReverseResult summarizes a reverse pass.
type ReverseResult struct {
	WordsAdded     int `json:"words_added"`
	FoldersUpdated int `json:"folders_updated"`
	// StoreAdded counts words merged into the workspace store target.
	StoreAdded int  `json:"store_added,omitempty"`
	UpToDate   bool `json:"up_to_date"`
}

// SyncFromGlobal runs the reverse direction: the global word list is
// merged into every enabled target of every opted-in folder. Mode
// disabled refuses with a typed error; an automatic trigger additionally
// requires automatic mode. Folders fail independently.
func (s *Session) SyncFromGlobal(ctx context.Context, trigger Trigger) (*ReverseResult, error) {
	cfg, err := s.Config()
	if err != nil {
		return nil, err
	}

	switch cfg.Bidirectional.Mode {
	case config.ModeDisabled:
		s.notify("Bidirectional sync is disabled in the configuration")
		return nil, errors.ModeDisabled("reverse sync")
	case config.ModeShortcut:
		if trigger == TriggerAutomatic {
			s.logger.Debug("Automatic reverse sync skipped in shortcut mode")
			return &ReverseResult{UpToDate: true}, nil
		}
	}

	global, err := store.GetStringSlice(s.store, store.KeyWords, store.ScopeGlobal)
	if err != nil {
		return nil, errors.StoreFailed(store.KeyWords, err)
	}
	if len(global) == 0 {
		s.notify("Global word list is empty; nothing to sync")
		return &ReverseResult{UpToDate: true}, nil
	}

	result := &ReverseResult{}

	if cfg.Bidirectional.WorkspaceStore.Enabled {
		added, err := s.applyWorkspaceStore(cfg, global)
		if err != nil {
			s.logger.WithError(err).Error("Failed to merge into workspace store")
		} else {
			result.StoreAdded = added
			result.WordsAdded += added
		}
	}

	folders, err := s.Folders()
	if err != nil {
		return nil, err
	}

	var mu stdsync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, folder := range folders {
		folder := folder
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			added, updated := s.syncFolderFromGlobal(cfg, folder, global)
			if updated {
				mu.Lock()
				result.WordsAdded += added
				result.FoldersUpdated++
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	if result.WordsAdded == 0 {
		result.UpToDate = true
		s.notify("All folders are up to date with the global word list")
	} else {
		s.notify("Merged %d word(s) from the global word list into %d folder(s)",
			result.WordsAdded, result.FoldersUpdated)
	}
	return result, nil
}

// syncFolderFromGlobal applies every enabled target to one folder.
// Folders can opt out via their settings file; target errors are logged
// and do not stop the remaining targets.
func (s *Session) syncFolderFromGlobal(cfg *config.Config, folder string, global []string) (int, bool) {
	if doc := s.settings.Get(folder); doc != nil {
		if v, ok := doc.Bool(settings.KeyBidirectionalSync); ok && !v {
			s.logger.WithField("folder", folder).Debug("Folder opted out of reverse sync")
			return 0, false
		}
	}

	total := 0
	updated := false

	if cfg.ProjectSettingsTargetEnabled() {
		added, err := s.applyProjectSettings(cfg, folder, global)
		if err != nil {
			s.logger.WithField("folder", folder).WithError(err).Error("Failed to update project settings")
		} else if added > 0 {
			total += added
			updated = true
		}
	}

	if cfg.Bidirectional.CustomDictionary.Enabled {
		added, err := s.applyCustomDictionary(cfg, folder, global)
		if err != nil {
			s.logger.WithField("folder", folder).WithError(err).Error("Failed to update custom dictionary")
		} else if added > 0 {
			total += added
			updated = true
		}
	}

	if cfg.Bidirectional.NewDictionary.Enabled {
		added, err := s.applyNewDictionary(cfg, folder, global)
		if err != nil {
			s.logger.WithField("folder", folder).WithError(err).Error("Failed to update dictionary file")
		} else if added > 0 {
			total += added
			updated = true
		}
	}

	if total > 0 {
		s.logger.WithField("folder", folder).WithField("added", total).
			Info("Merged global words into folder targets")
	}
	return total, updated
}
