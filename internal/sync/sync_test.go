package sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/grovetools/spellsync/config"
	syncerrors "github.com/grovetools/spellsync/errors"
	"github.com/grovetools/spellsync/pkg/settings"
	"github.com/grovetools/spellsync/pkg/store"
	"github.com/grovetools/spellsync/testutil"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }

func testConfig(folders ...string) *config.Config {
	cfg := config.Default()
	cfg.Folders = folders
	return cfg
}

func newTestSession(t *testing.T, cfg *config.Config, opts ...Option) (*Session, *store.MemStore) {
	t.Helper()

	st := store.NewMemStore()
	cache := config.NewCache(func() (*config.Config, error) { return cfg, nil }, time.Minute)
	opts = append([]Option{WithWorkingDir(t.TempDir())}, opts...)
	return NewSession(cache, st, testutil.NewTestLogger(), opts...), st
}

func globalWords(t *testing.T, st store.Store) []string {
	t.Helper()

	list, err := store.GetStringSlice(st, store.KeyWords, store.ScopeGlobal)
	require.NoError(t, err)
	return list
}

func TestSyncToGlobalFromProjectSettings(t *testing.T) {
	folder := t.TempDir()
	testutil.WriteSettings(t, folder, map[string]interface{}{
		"cSpell.words":  []string{"Banana", "apple"},
		"editor.rulers": []interface{}{float64(80)},
	})

	session, st := newTestSession(t, testConfig(folder))
	result, err := session.SyncToGlobal(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.WordsAdded)
	assert.Equal(t, []string{"apple", "Banana"}, globalWords(t, st))
}

func TestSyncToGlobalOncePerSession(t *testing.T) {
	folder := t.TempDir()
	testutil.WriteSettings(t, folder, map[string]interface{}{
		"cSpell.words": []string{"alpha"},
	})

	session, _ := newTestSession(t, testConfig(folder))
	first, err := session.SyncToGlobal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.WordsAdded)
	assert.Equal(t, 1, first.FoldersProcessed)

	second, err := session.SyncToGlobal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.FoldersProcessed)

	session.Reset()
	third, err := session.SyncToGlobal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, third.FoldersProcessed)
	assert.Equal(t, 0, third.WordsAdded)
}

func TestSyncToGlobalSourceFailureIsolation(t *testing.T) {
	folder := t.TempDir()
	dictPath := filepath.Join(folder, "bad.json")
	testutil.WriteFile(t, dictPath, "{not json")
	testutil.WriteSettings(t, folder, map[string]interface{}{
		"cSpell.words": []string{"survivor"},
		"cSpell.customDictionaries": map[string]interface{}{
			"bad": map[string]interface{}{"path": "${workspaceFolder}/bad.json"},
		},
	})

	cfg := testConfig(folder)
	cfg.Sources.DictionariesToGlobal = boolPtr(true)

	session, st := newTestSession(t, cfg)
	result, err := session.SyncToGlobal(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.WordsAdded)
	assert.Equal(t, []string{"survivor"}, globalWords(t, st))
}

func TestSyncToGlobalLanguageSettings(t *testing.T) {
	folder := t.TempDir()
	testutil.WriteSettings(t, folder, map[string]interface{}{
		"cSpell.languageSettings": []interface{}{
			map[string]interface{}{"languageId": "go", "words": []string{"goroutine"}},
			map[string]interface{}{"languageId": "markdown", "words": []string{"frontmatter"}},
		},
	})

	session, st := newTestSession(t, testConfig(folder))
	_, err := session.SyncToGlobal(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"frontmatter", "goroutine"}, globalWords(t, st))
}

func TestDisabledSourceNotInvoked(t *testing.T) {
	folder := t.TempDir()
	// A dictionary registration pointing at a directory: any attempt to
	// read it surfaces as a warning, so a quiet run shows the extractor
	// never ran. The inbox file doubles as a second witness, since a
	// consumed inbox is removed.
	require.NoError(t, os.Mkdir(filepath.Join(folder, "terms.d"), 0o755))
	testutil.WriteSettings(t, folder, map[string]interface{}{
		"cSpell.customDictionaries": map[string]interface{}{
			"terms": map[string]interface{}{"path": "${workspaceFolder}/terms.d"},
		},
	})
	inbox := InboxPath(folder)
	testutil.WriteFile(t, inbox, "alpha")

	sessionWithHook := func(cfg *config.Config) (*Session, *store.MemStore, *logtest.Hook) {
		logger, hook := logtest.NewNullLogger()
		st := store.NewMemStore()
		cache := config.NewCache(func() (*config.Config, error) { return cfg, nil }, time.Minute)
		return NewSession(cache, st, logger.WithField("component", "sync"), WithWorkingDir(t.TempDir())), st, hook
	}
	dictionaryReads := func(hook *logtest.Hook) int {
		n := 0
		for _, e := range hook.AllEntries() {
			if e.Message == "Failed to read custom dictionary" {
				n++
			}
		}
		return n
	}

	disabled := testConfig(folder)
	disabled.Sources.CustomDictionaries = boolPtr(false)
	disabled.Sources.CombinedInbox = boolPtr(false)

	session, st, hook := sessionWithHook(disabled)
	result, err := session.SyncToGlobal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.WordsAdded)
	assert.Empty(t, globalWords(t, st))
	assert.Equal(t, 0, dictionaryReads(hook))
	_, statErr := os.Stat(inbox)
	assert.NoError(t, statErr)

	// Control: with the sources enabled the same layout is read.
	session, st, hook = sessionWithHook(testConfig(folder))
	result, err = session.SyncToGlobal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.WordsAdded)
	assert.Equal(t, []string{"alpha"}, globalWords(t, st))
	assert.Equal(t, 1, dictionaryReads(hook))
}

func TestInboxConsumedAndRemovedByDefault(t *testing.T) {
	folder := t.TempDir()
	inbox := InboxPath(folder)
	testutil.WriteFile(t, inbox, "alpha, beta\ngamma")

	session, st := newTestSession(t, testConfig(folder))
	result, err := session.SyncToGlobal(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.WordsAdded)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, globalWords(t, st))
	_, statErr := os.Stat(inbox)
	assert.True(t, os.IsNotExist(statErr))
}

func TestInboxKeptWithAutoRemoveOff(t *testing.T) {
	folder := t.TempDir()
	inbox := InboxPath(folder)
	testutil.WriteFile(t, inbox, "alpha")
	testutil.WriteSettings(t, folder, map[string]interface{}{
		"spellsync.combinedAutoRemove": false,
	})

	session, st := newTestSession(t, testConfig(folder))
	_, err := session.SyncToGlobal(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha"}, globalWords(t, st))
	_, statErr := os.Stat(inbox)
	assert.NoError(t, statErr)

	// Kept inboxes are not reprocessed within the session.
	_, err = session.ResyncFolder(context.Background(), folder, SourceCombinedInbox)
	require.NoError(t, err)
	_, statErr = os.Stat(inbox)
	assert.NoError(t, statErr)
}

type faultyStore struct {
	*store.MemStore
	failSet bool
}

func (s *faultyStore) Set(key string, value interface{}, scope store.Scope) error {
	if s.failSet {
		return fmt.Errorf("settings store unavailable")
	}
	return s.MemStore.Set(key, value, scope)
}

func TestInboxKeptWhenMergeFails(t *testing.T) {
	folder := t.TempDir()
	inbox := InboxPath(folder)
	testutil.WriteFile(t, inbox, "alpha beta")

	st := &faultyStore{MemStore: store.NewMemStore(), failSet: true}
	cfg := testConfig(folder)
	cache := config.NewCache(func() (*config.Config, error) { return cfg, nil }, time.Minute)
	session := NewSession(cache, st, testutil.NewTestLogger(), WithWorkingDir(t.TempDir()))

	result, err := session.SyncToGlobal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.WordsAdded)

	// The words never reached the global list, so the file must survive.
	_, statErr := os.Stat(inbox)
	assert.NoError(t, statErr)

	// Once the store recovers, a later pass picks the inbox up again.
	st.failSet = false
	fr, err := session.ResyncFolder(context.Background(), folder, SourceCombinedInbox)
	require.NoError(t, err)
	assert.Equal(t, 2, fr.Total)
	assert.Equal(t, []string{"alpha", "beta"}, globalWords(t, st))
	_, statErr = os.Stat(inbox)
	assert.True(t, os.IsNotExist(statErr))
}

type fakePrompter struct {
	choice InboxChoice
	calls  int
}

func (p *fakePrompter) ConfirmInboxRemoval(folder, path string) (InboxChoice, error) {
	p.calls++
	return p.choice, nil
}

func TestInboxPromptRemembersChoice(t *testing.T) {
	folder := t.TempDir()
	testutil.WriteFile(t, InboxPath(folder), "alpha")

	prompter := &fakePrompter{choice: InboxChoice{Remove: false, Remember: true}}
	session, _ := newTestSession(t, testConfig(folder), WithPrompter(prompter))
	_, err := session.SyncToGlobal(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, prompter.calls)
	_, statErr := os.Stat(InboxPath(folder))
	assert.NoError(t, statErr)

	saved := testutil.ReadSettings(t, folder)
	assert.Equal(t, false, saved["spellsync.combinedAutoRemove"])
}

func TestInboxPromptRemove(t *testing.T) {
	folder := t.TempDir()
	testutil.WriteFile(t, InboxPath(folder), "alpha")

	prompter := &fakePrompter{choice: InboxChoice{Remove: true}}
	session, _ := newTestSession(t, testConfig(folder), WithPrompter(prompter))
	_, err := session.SyncToGlobal(context.Background())
	require.NoError(t, err)

	_, statErr := os.Stat(InboxPath(folder))
	assert.True(t, os.IsNotExist(statErr))
}

func TestConcurrentMergesAllCounted(t *testing.T) {
	var folders []string
	for i := 0; i < 8; i++ {
		folder := t.TempDir()
		testutil.WriteSettings(t, folder, map[string]interface{}{
			"cSpell.words": []string{fmt.Sprintf("word%d", i), "shared"},
		})
		folders = append(folders, folder)
	}

	session, st := newTestSession(t, testConfig(folders...))
	result, err := session.SyncToGlobal(context.Background())
	require.NoError(t, err)

	// 8 unique words plus "shared" exactly once.
	assert.Equal(t, 9, result.WordsAdded)
	assert.Len(t, globalWords(t, st), 9)
}

func TestSyncDictionariesToGlobal(t *testing.T) {
	folder := t.TempDir()
	testutil.WriteFile(t, filepath.Join(folder, "terms.txt"), "kubectl\nkustomize\n")
	testutil.WriteSettings(t, folder, map[string]interface{}{
		"cSpell.customDictionaries": map[string]interface{}{
			"project-terms": map[string]interface{}{
				"path": "${workspaceFolder}/terms.txt",
			},
		},
	})

	session, st := newTestSession(t, testConfig(folder))
	result, err := session.SyncDictionariesToGlobal(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.WordsAdded)
	assert.Equal(t, []string{"kubectl", "kustomize"}, globalWords(t, st))
}

func TestSyncFromGlobalDisabled(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Bidirectional.Mode = config.ModeDisabled

	session, _ := newTestSession(t, cfg)
	_, err := session.SyncFromGlobal(context.Background(), TriggerManual)
	require.Error(t, err)
	assert.Equal(t, syncerrors.ErrCodeModeDisabled, syncerrors.GetCode(err))
}

func TestSyncFromGlobalEmptyGlobalList(t *testing.T) {
	session, _ := newTestSession(t, testConfig(t.TempDir()))
	result, err := session.SyncFromGlobal(context.Background(), TriggerManual)
	require.NoError(t, err)
	assert.True(t, result.UpToDate)
}

func TestSyncFromGlobalProjectSettings(t *testing.T) {
	folder := t.TempDir()
	testutil.WriteSettings(t, folder, map[string]interface{}{
		"cSpell.words":  []string{"local"},
		"editor.rulers": []interface{}{float64(100)},
	})

	session, st := newTestSession(t, testConfig(folder))
	require.NoError(t, st.Set(store.KeyWords, []string{"global", "local"}, store.ScopeGlobal))

	result, err := session.SyncFromGlobal(context.Background(), TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 1, result.WordsAdded)
	assert.Equal(t, 1, result.FoldersUpdated)

	saved := testutil.ReadSettings(t, folder)
	assert.Equal(t, []interface{}{"global", "local"}, saved["cSpell.words"])
	assert.Equal(t, []interface{}{float64(100)}, saved["editor.rulers"])
}

func TestSyncFromGlobalUpToDate(t *testing.T) {
	folder := t.TempDir()
	testutil.WriteSettings(t, folder, map[string]interface{}{
		"cSpell.words": []string{"alpha"},
	})

	session, st := newTestSession(t, testConfig(folder))
	require.NoError(t, st.Set(store.KeyWords, []string{"alpha"}, store.ScopeGlobal))

	result, err := session.SyncFromGlobal(context.Background(), TriggerManual)
	require.NoError(t, err)
	assert.True(t, result.UpToDate)
	assert.Equal(t, 0, result.FoldersUpdated)
}

func TestSyncFromGlobalFolderOptOut(t *testing.T) {
	optedOut := t.TempDir()
	regular := t.TempDir()
	testutil.WriteSettings(t, optedOut, map[string]interface{}{
		"spellsync.enableBidirectionalSync": false,
	})

	session, st := newTestSession(t, testConfig(optedOut, regular))
	require.NoError(t, st.Set(store.KeyWords, []string{"alpha"}, store.ScopeGlobal))

	result, err := session.SyncFromGlobal(context.Background(), TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 1, result.FoldersUpdated)

	saved := testutil.ReadSettings(t, optedOut)
	_, hasWords := saved["cSpell.words"]
	assert.False(t, hasWords)

	saved = testutil.ReadSettings(t, regular)
	assert.Equal(t, []interface{}{"alpha"}, saved["cSpell.words"])
}

func TestSyncFromGlobalAutomaticTriggerInShortcutMode(t *testing.T) {
	folder := t.TempDir()
	session, st := newTestSession(t, testConfig(folder))
	require.NoError(t, st.Set(store.KeyWords, []string{"alpha"}, store.ScopeGlobal))

	result, err := session.SyncFromGlobal(context.Background(), TriggerAutomatic)
	require.NoError(t, err)
	assert.True(t, result.UpToDate)
	_, statErr := os.Stat(settings.PathIn(folder))
	assert.True(t, os.IsNotExist(statErr))
}

func TestSyncFromGlobalCustomDictionaryTarget(t *testing.T) {
	registered := t.TempDir()
	unregistered := t.TempDir()
	testutil.WriteFile(t, filepath.Join(registered, "dict.txt"), "existing\n")
	testutil.WriteSettings(t, registered, map[string]interface{}{
		"cSpell.customDictionaries": map[string]interface{}{
			"team": map[string]interface{}{"path": "${workspaceFolder}/dict.txt", "addWords": true},
		},
	})

	cfg := testConfig(registered, unregistered)
	cfg.Bidirectional.ProjectSettings.Enabled = boolPtr(false)
	cfg.Bidirectional.CustomDictionary.Enabled = true
	cfg.Bidirectional.CustomDictionary.Name = "team"

	session, st := newTestSession(t, cfg)
	require.NoError(t, st.Set(store.KeyWords, []string{"added"}, store.ScopeGlobal))

	result, err := session.SyncFromGlobal(context.Background(), TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 1, result.FoldersUpdated)

	data, err := os.ReadFile(filepath.Join(registered, "dict.txt"))
	require.NoError(t, err)
	assert.Equal(t, "added\nexisting\n", string(data))
}

func TestSyncFromGlobalNewDictionaryTarget(t *testing.T) {
	folder := t.TempDir()
	cfg := testConfig(folder)
	cfg.Bidirectional.ProjectSettings.Enabled = boolPtr(false)
	cfg.Bidirectional.NewDictionary.Enabled = true
	cfg.Bidirectional.NewDictionary.Name = "synced"

	session, st := newTestSession(t, cfg)
	require.NoError(t, st.Set(store.KeyWords, []string{"beta", "alpha"}, store.ScopeGlobal))

	result, err := session.SyncFromGlobal(context.Background(), TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 2, result.WordsAdded)

	dictPath := filepath.Join(folder, "dictionaries", "synced.txt")
	data, err := os.ReadFile(dictPath)
	require.NoError(t, err)
	assert.Equal(t, "alpha\nbeta\n", string(data))

	saved := testutil.ReadSettings(t, folder)
	dicts, ok := saved["cSpell.customDictionaries"].(map[string]interface{})
	require.True(t, ok)
	require.Contains(t, dicts, "synced")
	assert.Equal(t, []interface{}{"synced"}, saved["cSpell.dictionaries"])

	// A second pass reports the true delta, not the list size.
	session.Reset()
	again, err := session.SyncFromGlobal(context.Background(), TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 0, again.WordsAdded)
	assert.True(t, again.UpToDate)
}

func TestSyncFromGlobalWorkspaceStoreTarget(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Bidirectional.ProjectSettings.Enabled = boolPtr(false)
	cfg.Bidirectional.WorkspaceStore.Enabled = true

	session, st := newTestSession(t, cfg)
	require.NoError(t, st.Set(store.KeyWords, []string{"alpha"}, store.ScopeGlobal))

	result, err := session.SyncFromGlobal(context.Background(), TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 1, result.StoreAdded)

	list, err := store.GetStringSlice(st, "words", store.ScopeWorkspace)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, list)
}
