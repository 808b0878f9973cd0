package sync

import (
	"os"
	"path/filepath"

	"github.com/grovetools/spellsync/config"
	"github.com/grovetools/spellsync/errors"
	"github.com/grovetools/spellsync/pkg/dictfile"
	"github.com/grovetools/spellsync/pkg/settings"
	"github.com/grovetools/spellsync/pkg/store"
	"github.com/grovetools/spellsync/pkg/words"
)

// settingsKeyFor maps the configured target key onto the settings-file key.
func settingsKeyFor(key config.SettingsKey) string {
	switch key {
	case config.SettingsKeyUserWords:
		return settings.KeyUserWords
	case config.SettingsKeyIgnoreWords:
		return settings.KeyIgnoreWords
	default:
		return settings.KeyWords
	}
}

// applyWorkspaceStore merges the global list into the workspace-scoped
// store key. Returns the number of words added.
func (s *Session) applyWorkspaceStore(cfg *config.Config, global []string) (int, error) {
	key := cfg.Bidirectional.WorkspaceStore.Key

	existing, err := store.GetStringSlice(s.store, key, store.ScopeWorkspace)
	if err != nil {
		return 0, err
	}

	merged, added := words.Merge(existing, global)
	if added == 0 {
		return 0, nil
	}
	if err := s.store.Set(key, merged, store.ScopeWorkspace); err != nil {
		return 0, err
	}
	return added, nil
}

// applyProjectSettings merges the global list into one folder's settings
// file under the configured key, creating the file if needed.
func (s *Session) applyProjectSettings(cfg *config.Config, folder string, global []string) (int, error) {
	key := settingsKeyFor(cfg.Bidirectional.ProjectSettings.Key)

	doc, err := settings.LoadOrCreate(settings.PathIn(folder))
	if err != nil {
		return 0, err
	}

	existing, _ := doc.StringSlice(key)
	merged, added := words.Merge(existing, global)
	if added == 0 {
		return 0, nil
	}

	doc.Set(key, merged)
	if err := doc.Save(); err != nil {
		return 0, err
	}
	s.settings.Put(doc)
	return added, nil
}

// applyCustomDictionary merges the global list into the dictionary file
// registered under the configured name in the folder's settings. A folder
// without that registration is skipped.
func (s *Session) applyCustomDictionary(cfg *config.Config, folder string, global []string) (int, error) {
	name := cfg.Bidirectional.CustomDictionary.Name
	if name == "" {
		return 0, nil
	}

	doc := s.settings.Get(folder)
	if doc == nil {
		return 0, nil
	}

	ref, ok := doc.CustomDictionaries()[name]
	if !ok || ref.Path == "" {
		s.logger.WithField("folder", folder).
			WithError(errors.DictionaryNotFound(name)).
			Debug("Dictionary not registered in folder; skipping")
		return 0, nil
	}

	path := settings.ExpandWorkspaceFolder(ref.Path, folder)
	existing, format, err := dictfile.Load(path)
	if err != nil {
		return 0, err
	}

	merged, added := words.Merge(existing, global)
	if added == 0 {
		return 0, nil
	}
	if err := dictfile.Save(path, merged, format); err != nil {
		return 0, err
	}
	return added, nil
}

// applyNewDictionary merges the global list into a dictionary file under
// the folder's dictionaries/ directory, creating and registering it in the
// folder's settings on first write. Returns the number of words actually
// added to the file.
func (s *Session) applyNewDictionary(cfg *config.Config, folder string, global []string) (int, error) {
	name := cfg.Bidirectional.NewDictionary.Name
	if name == "" {
		return 0, nil
	}

	ext := ".txt"
	if cfg.Bidirectional.NewDictionary.Format == "json" {
		ext = ".json"
	}
	file := name + ext
	path := filepath.Join(folder, "dictionaries", file)

	_, statErr := os.Stat(path)
	existed := statErr == nil

	existing, format, err := dictfile.Load(path)
	if err != nil {
		return 0, err
	}

	merged, added := words.Merge(existing, global)
	if added == 0 && existed {
		return 0, nil
	}
	if err := dictfile.Save(path, merged, format); err != nil {
		return 0, err
	}

	if !existed {
		if err := s.registerNewDictionary(folder, name, file); err != nil {
			s.logger.WithField("folder", folder).WithError(err).
				Warn("Failed to register dictionary in settings")
		}
	}
	return added, nil
}

// registerNewDictionary adds the created dictionary to the folder's
// customDictionaries map and dictionaries list so the spell checker picks
// it up.
func (s *Session) registerNewDictionary(folder, name, file string) error {
	doc, err := settings.LoadOrCreate(settings.PathIn(folder))
	if err != nil {
		return err
	}

	doc.RegisterDictionary(name, settings.DictionaryRef{
		Path:     "${workspaceFolder}/dictionaries/" + file,
		Name:     name,
		AddWords: true,
		Scope:    "workspace",
	})

	active, _ := doc.StringSlice(settings.KeyDictionaries)
	found := false
	for _, d := range active {
		if d == name {
			found = true
			break
		}
	}
	if !found {
		doc.Set(settings.KeyDictionaries, append(active, name))
	}

	if err := doc.Save(); err != nil {
		return err
	}
	s.settings.Put(doc)
	return nil
}
