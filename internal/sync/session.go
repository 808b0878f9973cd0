// Package sync implements the reconciliation core: the forward direction
// collects candidate words from per-folder sources into the global word
// list, and the reverse direction distributes the global list back into
// per-folder targets. All mutable session state (caches, the processed
// folder set, the inbox bookkeeping) lives on the Session so lifecycle and
// teardown stay auditable.
package sync

import (
	"fmt"
	"os"
	stdsync "sync"

	"github.com/grovetools/spellsync/config"
	"github.com/grovetools/spellsync/pkg/settings"
	"github.com/grovetools/spellsync/pkg/store"
	"github.com/grovetools/spellsync/pkg/words"
	"github.com/sirupsen/logrus"
)

// Notifier delivers user-facing summaries. The CLI installs a styled
// console notifier; tests install a recorder.
type Notifier interface {
	Notify(format string, args ...interface{})
}

// InboxChoice is the answer to the interactive inbox prompt.
type InboxChoice struct {
	// Remove deletes the inbox file after processing.
	Remove bool
	// Remember persists the choice as the folder's auto-remove override.
	Remember bool
}

// Prompter asks the user what to do with a freshly created inbox file.
// A nil Prompter means non-interactive operation.
type Prompter interface {
	ConfirmInboxRemoval(folder, path string) (InboxChoice, error)
}

// Session is the reconciliation-session context: created at activation,
// reset on explicit full resync, torn down at deactivation.
type Session struct {
	cfg      *config.Cache
	store    store.Store
	settings *settings.Cache
	logger   *logrus.Entry
	notifier Notifier
	prompter Prompter
	cwd      string

	// mergeMu serializes every read-modify-write of the global word list
	// so concurrent extractors cannot interleave between read and write.
	mergeMu stdsync.Mutex

	mu             stdsync.Mutex
	processed      map[string]bool
	inboxProcessed map[string]bool
	prompted       map[string]bool
}

// Option configures a Session.
type Option func(*Session)

// WithNotifier installs a user-facing notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

// WithPrompter installs the interactive inbox prompter.
func WithPrompter(p Prompter) Option {
	return func(s *Session) { s.prompter = p }
}

// WithWorkingDir overrides the directory used to resolve relative folders.
func WithWorkingDir(dir string) Option {
	return func(s *Session) { s.cwd = dir }
}

// WithSettingsCache overrides the settings cache (tests inject one with a
// fake clock).
func WithSettingsCache(c *settings.Cache) Option {
	return func(s *Session) { s.settings = c }
}

// NewSession creates a reconciliation session over the given configuration
// cache and settings store.
func NewSession(cfg *config.Cache, st store.Store, logger *logrus.Entry, opts ...Option) *Session {
	s := &Session{
		cfg:            cfg,
		store:          st,
		logger:         logger,
		processed:      make(map[string]bool),
		inboxProcessed: make(map[string]bool),
		prompted:       make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.settings == nil {
		s.settings = settings.NewCache(settings.DefaultTTL, logger)
	}
	if s.cwd == "" {
		if cwd, err := os.Getwd(); err == nil {
			s.cwd = cwd
		}
	}
	return s
}

// Config returns the current configuration through the memoizing cache.
func (s *Session) Config() (*config.Config, error) {
	return s.cfg.Get()
}

// Settings exposes the per-folder settings cache (the watcher invalidates
// entries on observed file changes).
func (s *Session) Settings() *settings.Cache {
	return s.settings
}

// Folders resolves the configured workspace folders.
func (s *Session) Folders() ([]string, error) {
	cfg, err := s.Config()
	if err != nil {
		return nil, err
	}
	return cfg.EffectiveFolders(s.cwd), nil
}

// Reset clears all per-session state: the processed-folder guard, inbox
// bookkeeping, and both caches. Used by the full-resync command.
func (s *Session) Reset() {
	s.mu.Lock()
	s.processed = make(map[string]bool)
	s.inboxProcessed = make(map[string]bool)
	s.prompted = make(map[string]bool)
	s.mu.Unlock()

	s.settings.Clear()
	s.cfg.Invalidate()
	s.logger.Debug("Session state cleared")
}

// Close tears the session down. Pending debounce timers are owned by the
// watcher; the session itself only drops its state.
func (s *Session) Close() {
	s.Reset()
}

// markProcessed records the forward-direction per-folder guard; reports
// whether the folder was already processed this session.
func (s *Session) markProcessed(folder string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processed[folder] {
		return true
	}
	s.processed[folder] = true
	return false
}

// inboxPending reports whether an inbox path has not yet been handled
// this session.
func (s *Session) inboxPending(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.inboxProcessed[path]
}

// ForgetInbox clears the processed mark for an inbox path so a re-created
// file is picked up as new.
func (s *Session) ForgetInbox(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inboxProcessed, path)
	delete(s.prompted, path)
}

// forgetProcessed lets a watcher-triggered change re-reconcile one folder
// without a full session reset.
func (s *Session) forgetProcessed(folder string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.processed, folder)
}

func (s *Session) notify(format string, args ...interface{}) {
	cfg, err := s.Config()
	if err == nil && !cfg.NotificationsEnabled() {
		return
	}
	if s.notifier != nil {
		s.notifier.Notify(format, args...)
		return
	}
	s.logger.Info(fmt.Sprintf(format, args...))
}

// mergeGlobal merges candidates into the global word list through the
// store. The whole read-modify-write runs under the merge mutex: global
// merges are single-writer, so two sources can never both observe the same
// pre-update list.
func (s *Session) mergeGlobal(candidates []string) (int, error) {
	if len(candidates) == 0 {
		return 0, nil
	}

	s.mergeMu.Lock()
	defer s.mergeMu.Unlock()

	existing, err := store.GetStringSlice(s.store, store.KeyWords, store.ScopeGlobal)
	if err != nil {
		return 0, err
	}

	merged, added := words.Merge(existing, candidates)
	if added == 0 {
		return 0, nil
	}

	if err := s.store.Set(store.KeyWords, merged, store.ScopeGlobal); err != nil {
		return 0, err
	}
	return added, nil
}
