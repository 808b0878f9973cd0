// Package watch wires filesystem events into reconciliation: settings
// changes re-collect a folder's sources after a quiet window, inbox files
// are picked up shortly after they appear, and external global-list
// changes trigger the automatic reverse direction.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/grovetools/spellsync/config"
	"github.com/grovetools/spellsync/internal/sync"
	"github.com/grovetools/spellsync/pkg/settings"
	"github.com/grovetools/spellsync/pkg/store"
	"github.com/moby/patternmatcher"
	"github.com/sirupsen/logrus"
)

// settingsSources are the sources re-collected after a settings change.
var settingsSources = []sync.SourceKind{
	sync.SourceProjectSettings,
	sync.SourceCustomDictionaries,
	sync.SourceLanguageSettings,
}

// Watcher observes the configured folders and the settings store and
// drives the session in response.
type Watcher struct {
	session *sync.Session
	store   store.Store
	logger  *logrus.Entry
	clock   Clock

	fs          *fsnotify.Watcher
	settingsPat *patternmatcher.PatternMatcher
	inboxPat    *patternmatcher.PatternMatcher

	settingsDebounce *Debouncer
	inboxDebounce    *Debouncer

	// folders maps each watched root to itself for prefix resolution.
	folders []string

	configPath string
	storeWatch func(ctx context.Context) error
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithClock substitutes the clock (tests use a fake).
func WithClock(c Clock) WatcherOption {
	return func(w *Watcher) { w.clock = c }
}

// WithStoreWatch runs the given blocking store watcher alongside the
// filesystem loop (used with a file-backed store).
func WithStoreWatch(fn func(ctx context.Context) error) WatcherOption {
	return func(w *Watcher) { w.storeWatch = fn }
}

// WithConfigPath watches the given configuration file for changes.
func WithConfigPath(path string) WatcherOption {
	return func(w *Watcher) { w.configPath = path }
}

// New creates a watcher over the session's configured folders.
func New(session *sync.Session, st store.Store, logger *logrus.Entry, opts ...WatcherOption) (*Watcher, error) {
	settingsPat, err := patternmatcher.New([]string{"**/.vscode/settings.json"})
	if err != nil {
		return nil, err
	}
	inboxPat, err := patternmatcher.New([]string{sync.InboxFileName, "**/" + sync.InboxFileName})
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		session:     session,
		store:       st,
		logger:      logger,
		clock:       realClock{},
		settingsPat: settingsPat,
		inboxPat:    inboxPat,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. It blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	cfg, err := w.session.Config()
	if err != nil {
		return err
	}
	w.settingsDebounce = NewDebouncer(w.clock, time.Duration(cfg.Delays.DebounceMs)*time.Millisecond)
	w.inboxDebounce = NewDebouncer(w.clock, time.Duration(cfg.Delays.InboxWaitMs)*time.Millisecond)
	defer w.settingsDebounce.StopAll()
	defer w.inboxDebounce.StopAll()

	w.fs, err = fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.fs.Close()

	w.folders, err = w.session.Folders()
	if err != nil {
		return err
	}
	for _, folder := range w.folders {
		if err := w.addRecursive(folder); err != nil {
			w.logger.WithField("folder", folder).WithError(err).Warn("Failed to watch folder")
		}
	}
	if w.configPath != "" {
		if err := w.fs.Add(filepath.Dir(w.configPath)); err != nil {
			w.logger.WithField("path", w.configPath).WithError(err).Warn("Failed to watch config file")
		}
	}

	unsubscribe := w.store.OnChange(func(ev store.Event) { w.handleStoreEvent(ctx, ev) })
	defer unsubscribe()

	if w.storeWatch != nil {
		go func() {
			if err := w.storeWatch(ctx); err != nil && ctx.Err() == nil {
				w.logger.WithError(err).Error("Store watcher stopped")
			}
		}()
	}

	w.logger.WithField("folders", len(w.folders)).Info("Watching for changes")

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).Error("Watcher error")
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// addRecursive watches a directory tree, skipping VCS and dependency
// directories. The .vscode directory is watched even though it is hidden.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && strings.HasPrefix(name, ".") && name != ".vscode" {
			return filepath.SkipDir
		}
		if name == "node_modules" || name == "vendor" {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			w.logger.WithField("path", path).WithError(err).Debug("Failed to add watch")
		}
		return nil
	})
}

// folderOf maps an event path back to its workspace folder.
func (w *Watcher) folderOf(path string) (string, bool) {
	for _, folder := range w.folders {
		if path == folder || strings.HasPrefix(path, folder+string(filepath.Separator)) {
			return folder, true
		}
	}
	return "", false
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.logger.WithField("path", event.Name).WithField("op", event.Op.String()).Debug("Filesystem event")

	if w.configPath != "" && event.Name == w.configPath {
		w.logger.Info("Configuration file changed; reloading")
		w.session.Reset()
		return
	}

	folder, ok := w.folderOf(event.Name)
	if !ok {
		return
	}
	rel, err := filepath.Rel(folder, event.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	// New directories join the watch set.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.WithField("path", event.Name).WithError(err).Debug("Failed to watch new directory")
			}
			return
		}
	}

	if matched, _ := w.settingsPat.MatchesOrParentMatches(rel); matched {
		w.onSettingsChange(ctx, folder, event.Name, event.Op&fsnotify.Create != 0)
		return
	}
	if matched, _ := w.inboxPat.MatchesOrParentMatches(rel); matched && rel == sync.InboxFileName {
		w.onInboxChange(ctx, folder, event)
	}
}

// onSettingsChange invalidates the cached document and re-collects the
// folder's settings-backed sources. Writes wait out the quiet window; a
// freshly created file syncs immediately.
func (w *Watcher) onSettingsChange(ctx context.Context, folder, path string, created bool) {
	resync := func() {
		if ctx.Err() != nil {
			return
		}
		w.session.Settings().Invalidate(settings.PathIn(folder))
		if _, err := w.session.ResyncFolder(ctx, folder, settingsSources...); err != nil {
			w.logger.WithField("folder", folder).WithError(err).Error("Failed to re-collect folder sources")
		}
	}
	if created {
		w.settingsDebounce.Stop(path)
		resync()
		return
	}
	w.settingsDebounce.Trigger(path, resync)
}

// onInboxChange waits for the drop-in file to settle, then runs the inbox
// source for its folder. Removal cancels a pending pickup.
func (w *Watcher) onInboxChange(ctx context.Context, folder string, event fsnotify.Event) {
	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		w.inboxDebounce.Stop(event.Name)
		w.session.ForgetInbox(event.Name)
		return
	}
	w.inboxDebounce.Trigger(event.Name, func() {
		if ctx.Err() != nil {
			return
		}
		if _, err := w.session.ResyncFolder(ctx, folder, sync.SourceCombinedInbox); err != nil {
			w.logger.WithField("folder", folder).WithError(err).Error("Failed to process inbox file")
		}
	})
}

// handleStoreEvent reacts to external changes of the global word list by
// running the reverse direction when the mode allows it.
func (w *Watcher) handleStoreEvent(ctx context.Context, ev store.Event) {
	if ev.Key != store.KeyWords || ev.Scope != store.ScopeGlobal {
		return
	}

	cfg, err := w.session.Config()
	if err != nil {
		w.logger.WithError(err).Error("Failed to load configuration")
		return
	}
	if cfg.Bidirectional.Mode != config.ModeAutomatic {
		w.logger.Debug("Global word list changed externally; automatic sync not enabled")
		return
	}

	w.logger.Info("Global word list changed externally; syncing to folders")
	if _, err := w.session.SyncFromGlobal(ctx, sync.TriggerAutomatic); err != nil {
		w.logger.WithError(err).Error("Automatic reverse sync failed")
	}
}
