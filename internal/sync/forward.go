package sync

import (
	"context"
	"os"
	stdsync "sync"

	"github.com/grovetools/spellsync/config"
	"github.com/grovetools/spellsync/pkg/settings"
	"golang.org/x/sync/errgroup"
)

// FolderResult is one folder's contribution to a forward pass.
type FolderResult struct {
	Folder string             `json:"folder"`
	Added  map[SourceKind]int `json:"added,omitempty"`
	Total  int                `json:"total"`
}

// ForwardResult summarizes a forward pass across all folders.
type ForwardResult struct {
	WordsAdded       int            `json:"words_added"`
	FoldersProcessed int            `json:"folders_processed"`
	Folders          []FolderResult `json:"folders,omitempty"`
}

// SyncToGlobal runs the forward direction: every enabled source in every
// configured folder contributes candidates to the global word list. Each
// folder is reconciled at most once per session; folders already processed
// are skipped. When the dictionaries-to-global path is enabled it runs as
// part of the same pass.
func (s *Session) SyncToGlobal(ctx context.Context) (*ForwardResult, error) {
	cfg, err := s.Config()
	if err != nil {
		return nil, err
	}

	folders, err := s.Folders()
	if err != nil {
		return nil, err
	}

	result := &ForwardResult{}
	for _, folder := range folders {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if s.markProcessed(folder) {
			s.logger.WithField("folder", folder).Debug("Folder already reconciled this session")
			continue
		}

		fr := s.syncFolder(ctx, cfg, folder, sourceKinds(cfg))
		result.Folders = append(result.Folders, fr)
		result.WordsAdded += fr.Total
		result.FoldersProcessed++
	}

	if result.WordsAdded > 0 {
		s.notify("Added %d word(s) to the global word list from %d folder(s)",
			result.WordsAdded, result.FoldersProcessed)
	} else {
		s.logger.Debug("Global word list already up to date")
	}
	return result, nil
}

// ResyncFolder re-runs the forward direction for a single folder,
// bypassing the once-per-session guard. The watcher uses this after a
// settings change.
func (s *Session) ResyncFolder(ctx context.Context, folder string, kinds ...SourceKind) (FolderResult, error) {
	cfg, err := s.Config()
	if err != nil {
		return FolderResult{Folder: folder}, err
	}

	s.forgetProcessed(folder)
	s.markProcessed(folder)

	enabled := sourceKinds(cfg)
	if len(kinds) == 0 {
		kinds = enabled
	} else {
		var filtered []SourceKind
		for _, kind := range kinds {
			for _, e := range enabled {
				if kind == e {
					filtered = append(filtered, kind)
					break
				}
			}
		}
		kinds = filtered
	}
	return s.syncFolder(ctx, cfg, folder, kinds), nil
}

// SyncDictionariesToGlobal merges every registered custom dictionary of
// every folder into the global word list. Runs standalone (the
// `sync dictionaries` command) regardless of the dictionaries_to_global
// flag, which only gates its inclusion in the main pass.
func (s *Session) SyncDictionariesToGlobal(ctx context.Context) (*ForwardResult, error) {
	folders, err := s.Folders()
	if err != nil {
		return nil, err
	}

	result := &ForwardResult{}
	for _, folder := range folders {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		added, err := s.mergeGlobal(s.extractCustomDictionaries(folder))
		if err != nil {
			s.logger.WithField("folder", folder).WithError(err).Error("Failed to merge dictionaries")
			continue
		}
		if added > 0 {
			result.Folders = append(result.Folders, FolderResult{
				Folder: folder,
				Added:  map[SourceKind]int{SourceCustomDictionaries: added},
				Total:  added,
			})
			result.WordsAdded += added
		}
		result.FoldersProcessed++
	}

	if result.WordsAdded > 0 {
		s.notify("Added %d word(s) to the global word list from custom dictionaries", result.WordsAdded)
	}
	return result, nil
}

// sourceKinds returns the sources enabled by the configuration, in merge
// order.
func sourceKinds(cfg *config.Config) []SourceKind {
	var kinds []SourceKind
	if cfg.ProjectSettingsEnabled() {
		kinds = append(kinds, SourceProjectSettings)
	}
	if cfg.CustomDictionariesEnabled() || cfg.DictionariesToGlobalEnabled() {
		kinds = append(kinds, SourceCustomDictionaries)
	}
	if cfg.LanguageSettingsEnabled() {
		kinds = append(kinds, SourceLanguageSettings)
	}
	if cfg.CombinedInboxEnabled() {
		kinds = append(kinds, SourceCombinedInbox)
	}
	return kinds
}

// syncFolder extracts the requested sources concurrently, then merges each
// candidate set into the global list in deterministic source order. A
// failing source is logged and contributes nothing; the folder's other
// sources still merge.
func (s *Session) syncFolder(ctx context.Context, cfg *config.Config, folder string, kinds []SourceKind) FolderResult {
	fr := FolderResult{Folder: folder, Added: make(map[SourceKind]int)}

	inboxRead := false
	candidates := make(map[SourceKind][]string, len(kinds))
	var mu stdsync.Mutex

	g, _ := errgroup.WithContext(ctx)
	for _, kind := range kinds {
		kind := kind
		g.Go(func() error {
			var list []string
			ok := true
			if kind == SourceCombinedInbox {
				list, ok = s.readInbox(folder)
			} else {
				list = s.extract(kind, folder)
			}
			mu.Lock()
			candidates[kind] = list
			if kind == SourceCombinedInbox {
				inboxRead = ok
			}
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	// The inbox file may only be consumed once its words are safely in
	// the global list. A failed read or merge leaves the file and the
	// session mark untouched so a later pass retries it.
	inboxMerged := inboxRead
	for _, kind := range sourceOrder {
		list, ok := candidates[kind]
		if !ok || len(list) == 0 {
			continue
		}
		added, err := s.mergeGlobal(list)
		if err != nil {
			s.logger.WithField("folder", folder).WithField("source", string(kind)).
				WithError(err).Error("Failed to merge words into global list")
			if kind == SourceCombinedInbox {
				inboxMerged = false
			}
			continue
		}
		if added > 0 {
			fr.Added[kind] = added
			fr.Total += added
		}
	}

	if inboxMerged {
		s.finishInbox(folder, fr.Added[SourceCombinedInbox])
	}

	if fr.Total > 0 {
		s.logger.WithField("folder", folder).WithField("added", fr.Total).
			Info("Merged new words into global word list")
	}
	return fr
}

// finishInbox decides the fate of a consumed inbox file: the per-folder
// auto-remove override wins; otherwise an interactive prompter (when
// installed) is asked once per file, and a remembered answer is written
// back to the folder's settings. Default is removal.
func (s *Session) finishInbox(folder string, added int) {
	path := InboxPath(folder)

	s.mu.Lock()
	s.inboxProcessed[path] = true
	alreadyPrompted := s.prompted[path]
	s.mu.Unlock()

	remove := true
	overridden := false
	doc := s.settings.Get(folder)
	if doc != nil {
		if v, ok := doc.Bool(settings.KeyCombinedAutoRemove); ok {
			remove = v
			overridden = true
		}
	}

	if !overridden && s.prompter != nil && !alreadyPrompted {
		s.mu.Lock()
		s.prompted[path] = true
		s.mu.Unlock()

		choice, err := s.prompter.ConfirmInboxRemoval(folder, path)
		if err != nil {
			s.logger.WithField("path", path).WithError(err).Warn("Inbox prompt failed; keeping file")
			return
		}
		remove = choice.Remove
		if choice.Remember {
			s.rememberInboxChoice(folder, choice.Remove)
		}
	}

	if added > 0 {
		s.logger.WithField("path", path).WithField("added", added).Info("Processed inbox file")
	}
	if remove {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.WithField("path", path).WithError(err).Warn("Failed to remove inbox file")
			return
		}
		s.ForgetInbox(path)
	}
}

// rememberInboxChoice persists the auto-remove override in the folder's
// settings file.
func (s *Session) rememberInboxChoice(folder string, remove bool) {
	doc, err := settings.LoadOrCreate(settings.PathIn(folder))
	if err != nil {
		s.logger.WithField("folder", folder).WithError(err).Warn("Failed to load settings for inbox override")
		return
	}
	doc.Set(settings.KeyCombinedAutoRemove, remove)
	if err := doc.Save(); err != nil {
		s.logger.WithField("folder", folder).WithError(err).Warn("Failed to save inbox override")
		return
	}
	s.settings.Put(doc)
}
