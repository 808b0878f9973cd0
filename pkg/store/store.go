// Package store defines the settings-store capability the reconciliation
// core depends on: a key-value store with global and workspace scopes and a
// change-notification stream. The file-backed implementation persists each
// scope as a YAML document; tests inject the in-memory fake.
package store

// Scope selects which backing document a key lives in.
type Scope string

const (
	// ScopeGlobal is the per-user store shared by every workspace.
	ScopeGlobal Scope = "global"
	// ScopeWorkspace is the per-workspace store.
	ScopeWorkspace Scope = "workspace"
)

// KeyWords is the key of the global word list.
const KeyWords = "words"

// Event describes an externally observed change to a stored key.
type Event struct {
	Key   string
	Scope Scope
}

// Store is the capability interface for the host settings store.
type Store interface {
	// Get returns the raw value for a key and whether it was present.
	Get(key string, scope Scope) (interface{}, bool, error)
	// Set persists a value for a key.
	Set(key string, value interface{}, scope Scope) error
	// OnChange subscribes to externally observed changes. The returned
	// function removes the subscription.
	OnChange(fn func(Event)) (unsubscribe func())
}

// GetStringSlice reads a key holding a list of words. Absent keys yield an
// empty list; non-string entries are dropped.
func GetStringSlice(s Store, key string, scope Scope) ([]string, error) {
	raw, ok, err := s.Get(key, scope)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	switch v := raw.(type) {
	case []string:
		return append([]string(nil), v...), nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out, nil
	default:
		return nil, nil
	}
}
