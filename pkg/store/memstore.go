package store

import (
	"sync"
)

// MemStore is an in-memory Store used by tests. Set does not emit change
// events; SimulateExternalChange stands in for another process touching the
// store.
type MemStore struct {
	mu   sync.Mutex
	data map[Scope]map[string]interface{}

	subsMu  sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		data: map[Scope]map[string]interface{}{
			ScopeGlobal:    {},
			ScopeWorkspace: {},
		},
		subs: make(map[int]func(Event)),
	}
}

// Get returns the raw value for a key and whether it was present.
func (s *MemStore) Get(key string, scope Scope) (interface{}, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.data[scope][key]
	return val, ok, nil
}

// Set stores a value for a key.
func (s *MemStore) Set(key string, value interface{}, scope Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[scope][key] = value
	return nil
}

// OnChange subscribes to simulated external changes.
func (s *MemStore) OnChange(fn func(Event)) func() {
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

// SimulateExternalChange stores a value and synchronously notifies
// subscribers, as if another writer had modified the backing store.
func (s *MemStore) SimulateExternalChange(key string, value interface{}, scope Scope) {
	s.mu.Lock()
	s.data[scope][key] = value
	s.mu.Unlock()

	s.subsMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(Event{Key: key, Scope: scope})
	}
}
