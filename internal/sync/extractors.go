package sync

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/grovetools/spellsync/pkg/dictfile"
	"github.com/grovetools/spellsync/pkg/settings"
)

// SourceKind identifies one forward-direction candidate source.
type SourceKind string

const (
	SourceProjectSettings    SourceKind = "project-settings"
	SourceCustomDictionaries SourceKind = "custom-dictionaries"
	SourceLanguageSettings   SourceKind = "language-settings"
	SourceCombinedInbox      SourceKind = "combined-inbox"
)

// sourceOrder is the deterministic merge order for per-folder sources.
var sourceOrder = []SourceKind{
	SourceProjectSettings,
	SourceCustomDictionaries,
	SourceLanguageSettings,
	SourceCombinedInbox,
}

// InboxFileName is the drop-in word list picked up from each folder root.
const InboxFileName = "combined.txt"

// InboxPath returns the folder's inbox file location.
func InboxPath(folder string) string {
	return filepath.Join(folder, InboxFileName)
}

var inboxSplit = regexp.MustCompile(`[\s,]+`)

// extract collects candidate words from one source in one folder. Sources
// are failure-isolated: any error is logged and yields an empty candidate
// set so the remaining sources still contribute.
func (s *Session) extract(kind SourceKind, folder string) []string {
	switch kind {
	case SourceProjectSettings:
		return s.extractProjectSettings(folder)
	case SourceCustomDictionaries:
		return s.extractCustomDictionaries(folder)
	case SourceLanguageSettings:
		return s.extractLanguageSettings(folder)
	case SourceCombinedInbox:
		return s.extractInbox(folder)
	}
	return nil
}

// extractProjectSettings reads the spell-checker word array from the
// folder's settings document.
func (s *Session) extractProjectSettings(folder string) []string {
	doc := s.settings.Get(folder)
	if doc == nil {
		return nil
	}
	list, ok := doc.StringSlice(settings.KeyWords)
	if !ok {
		return nil
	}
	return list
}

// extractCustomDictionaries reads every registered custom dictionary file
// in the folder. Unreadable or unparseable files are skipped individually.
func (s *Session) extractCustomDictionaries(folder string) []string {
	doc := s.settings.Get(folder)
	if doc == nil {
		return nil
	}

	var out []string
	for name, ref := range doc.CustomDictionaries() {
		if ref.Path == "" {
			continue
		}
		path := settings.ExpandWorkspaceFolder(ref.Path, folder)
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				s.logger.WithField("dictionary", name).WithError(err).Warn("Failed to read custom dictionary")
			}
			continue
		}
		list, _, err := dictfile.Parse(data, path)
		if err != nil {
			s.logger.WithField("dictionary", name).WithError(err).Warn("Failed to parse custom dictionary")
			continue
		}
		out = append(out, list...)
	}
	return out
}

// extractLanguageSettings flattens the per-language word arrays from the
// folder's settings document.
func (s *Session) extractLanguageSettings(folder string) []string {
	doc := s.settings.Get(folder)
	if doc == nil {
		return nil
	}

	var out []string
	for _, ls := range doc.LanguageSettings() {
		out = append(out, ls.Words...)
	}
	return out
}

// extractInbox reads the folder's drop-in inbox file, splitting on any mix
// of whitespace and commas. A missing file is the common case and yields
// nothing; an inbox already handled this session is skipped.
func (s *Session) extractInbox(folder string) []string {
	list, _ := s.readInbox(folder)
	return list
}

// readInbox reads the inbox file and reports whether the read succeeded.
// ok is false for a missing file, a read error, or an inbox already
// handled this session; the file must never be consumed in those cases.
func (s *Session) readInbox(folder string) ([]string, bool) {
	path := InboxPath(folder)
	if !s.inboxPending(path) {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WithField("path", path).WithError(err).Warn("Failed to read inbox file")
		}
		return nil, false
	}

	var out []string
	for _, w := range inboxSplit.Split(string(data), -1) {
		if w != "" {
			out = append(out, w)
		}
	}
	return out, true
}
