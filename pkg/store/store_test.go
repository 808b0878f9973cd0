package store

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l.WithField("component", "test")
}

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	dir := t.TempDir()
	return NewFileStore(
		filepath.Join(dir, "global", "store.yml"),
		filepath.Join(dir, "workspace", "store.yml"),
		testLogger(),
	)
}

func TestFileStoreRoundTrip(t *testing.T) {
	s := newTestFileStore(t)

	_, ok, err := s.Get(KeyWords, ScopeGlobal)
	require.NoError(t, err)
	assert.False(t, ok, "empty store has no keys")

	require.NoError(t, s.Set(KeyWords, []string{"alpha", "beta"}, ScopeGlobal))

	list, err := GetStringSlice(s, KeyWords, ScopeGlobal)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, list)
}

func TestFileStoreScopesAreIndependent(t *testing.T) {
	s := newTestFileStore(t)

	require.NoError(t, s.Set(KeyWords, []string{"global"}, ScopeGlobal))
	require.NoError(t, s.Set(KeyWords, []string{"workspace"}, ScopeWorkspace))

	g, err := GetStringSlice(s, KeyWords, ScopeGlobal)
	require.NoError(t, err)
	w, err := GetStringSlice(s, KeyWords, ScopeWorkspace)
	require.NoError(t, err)
	assert.Equal(t, []string{"global"}, g)
	assert.Equal(t, []string{"workspace"}, w)
}

func TestFileStorePreservesOtherKeys(t *testing.T) {
	s := newTestFileStore(t)

	require.NoError(t, s.Set("words", []string{"alpha"}, ScopeGlobal))
	require.NoError(t, s.Set("userWords", []string{"beta"}, ScopeGlobal))
	require.NoError(t, s.Set("words", []string{"alpha", "gamma"}, ScopeGlobal))

	list, err := GetStringSlice(s, "userWords", ScopeGlobal)
	require.NoError(t, err)
	assert.Equal(t, []string{"beta"}, list)
}

func TestGetStringSliceNonList(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.Set(KeyWords, "not-a-list", ScopeGlobal))

	list, err := GetStringSlice(s, KeyWords, ScopeGlobal)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemStoreChangeNotification(t *testing.T) {
	s := NewMemStore()

	var events []Event
	unsubscribe := s.OnChange(func(ev Event) {
		events = append(events, ev)
	})

	// plain Set is a self-write: no event
	require.NoError(t, s.Set(KeyWords, []string{"alpha"}, ScopeGlobal))
	assert.Empty(t, events)

	s.SimulateExternalChange(KeyWords, []string{"alpha", "beta"}, ScopeGlobal)
	require.Len(t, events, 1)
	assert.Equal(t, Event{Key: KeyWords, Scope: ScopeGlobal}, events[0])

	unsubscribe()
	s.SimulateExternalChange(KeyWords, []string{"gamma"}, ScopeGlobal)
	assert.Len(t, events, 1)
}
