package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/grovetools/spellsync/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultGlobalPath returns the per-user store file, honoring
// XDG_CONFIG_HOME.
func DefaultGlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "spellsync", "store.yml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "spellsync", "store.yml")
}

// WorkspacePathIn returns the workspace-scope store file under a workspace
// root.
func WorkspacePathIn(root string) string {
	return filepath.Join(root, ".spellsync", "store.yml")
}

// FileStore persists each scope as a YAML key-value document. Change
// notifications fire only for externally observed file changes (see Watch);
// the store's own writes are recognized and suppressed.
type FileStore struct {
	paths  map[Scope]string
	logger *logrus.Entry

	mu        sync.Mutex
	lastWrite map[string][]byte

	subsMu  sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// NewFileStore creates a FileStore over the two scope files.
func NewFileStore(globalPath, workspacePath string, logger *logrus.Entry) *FileStore {
	return &FileStore{
		paths: map[Scope]string{
			ScopeGlobal:    globalPath,
			ScopeWorkspace: workspacePath,
		},
		logger:    logger,
		lastWrite: make(map[string][]byte),
		subs:      make(map[int]func(Event)),
	}
}

func (s *FileStore) load(scope Scope) (map[string]interface{}, error) {
	path := s.paths[scope]
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]interface{}), nil
		}
		return nil, errors.ReadFailed(path, err)
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.ParseFailed(path, err)
	}
	if doc == nil {
		doc = make(map[string]interface{})
	}
	return doc, nil
}

// Get returns the raw value for a key and whether it was present.
func (s *FileStore) Get(key string, scope Scope) (interface{}, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(scope)
	if err != nil {
		return nil, false, err
	}
	val, ok := doc[key]
	return val, ok, nil
}

// Set persists a value for a key via read-modify-write of the scope file.
func (s *FileStore) Set(key string, value interface{}, scope Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(scope)
	if err != nil {
		return err
	}
	doc[key] = value

	path := s.paths[scope]
	data, err := yaml.Marshal(doc)
	if err != nil {
		return errors.WriteFailed(path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WriteFailed(path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.WriteFailed(path, err)
	}
	s.lastWrite[path] = data
	return nil
}

// OnChange subscribes to externally observed changes.
func (s *FileStore) OnChange(fn func(Event)) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *FileStore) notify(ev Event) {
	s.subsMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Watch observes the two backing files with fsnotify and emits a change
// event per key whose value differs from the last observed snapshot. It
// blocks until the context is cancelled.
func (s *FileStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	pathScope := make(map[string]Scope)
	snapshots := make(map[string]map[string]interface{})
	for scope, path := range s.paths {
		if path == "" {
			continue
		}
		// Watch the parent directory; the file itself may not exist yet.
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		if err := watcher.Add(dir); err != nil {
			return err
		}
		pathScope[path] = scope
		if doc, err := s.load(scope); err == nil {
			snapshots[path] = doc
		} else {
			snapshots[path] = make(map[string]interface{})
		}
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			scope, watched := pathScope[filepath.Clean(event.Name)]
			if !watched || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			s.handleFileChange(event.Name, scope, snapshots)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.WithError(err).Error("Store watcher error")
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *FileStore) handleFileChange(name string, scope Scope, snapshots map[string]map[string]interface{}) {
	path := filepath.Clean(name)

	s.mu.Lock()
	data, err := os.ReadFile(path)
	selfWrite := err == nil && bytes.Equal(data, s.lastWrite[path])
	s.mu.Unlock()
	if err != nil {
		return
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		s.logger.WithError(err).WithField("path", path).Warn("Ignoring malformed store file")
		return
	}
	if doc == nil {
		doc = make(map[string]interface{})
	}

	prev := snapshots[path]
	snapshots[path] = doc
	if selfWrite {
		return
	}

	for key, val := range doc {
		if old, ok := prev[key]; !ok || !reflect.DeepEqual(old, val) {
			s.notify(Event{Key: key, Scope: scope})
		}
	}
	for key := range prev {
		if _, ok := doc[key]; !ok {
			s.notify(Event{Key: key, Scope: scope})
		}
	}
}
