package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromBytes(t *testing.T) {
	data := `
version: "1.0"
folders:
  - /ws/alpha
  - /ws/beta
sources:
  combined_inbox: false
bidirectional:
  mode: automatic
  project_settings:
    key: user_words
delays:
  debounce_ms: 250

logging:
  level: debug
`
	cfg, err := LoadFromBytes([]byte(data))
	if err != nil {
		t.Fatal(err)
	}

	if len(cfg.Folders) != 2 {
		t.Errorf("expected 2 folders, got %d", len(cfg.Folders))
	}
	if cfg.CombinedInboxEnabled() {
		t.Error("combined_inbox should be disabled")
	}
	if !cfg.ProjectSettingsEnabled() {
		t.Error("project_settings source should default to enabled")
	}
	if cfg.Bidirectional.Mode != ModeAutomatic {
		t.Errorf("expected automatic mode, got %s", cfg.Bidirectional.Mode)
	}
	if cfg.Bidirectional.ProjectSettings.Key != SettingsKeyUserWords {
		t.Errorf("expected user_words key, got %s", cfg.Bidirectional.ProjectSettings.Key)
	}
	if cfg.Delays.DebounceMs != 250 {
		t.Errorf("expected debounce 250, got %d", cfg.Delays.DebounceMs)
	}
	// defaults fill the rest
	if cfg.Delays.InboxWaitMs != 2000 {
		t.Errorf("expected default inbox wait 2000, got %d", cfg.Delays.InboxWaitMs)
	}
}

func TestUnmarshalExtension(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`
logging:
  level: warn
  file:
    enabled: true
`))
	if err != nil {
		t.Fatal(err)
	}

	var logCfg struct {
		Level string `yaml:"level"`
		File  struct {
			Enabled bool `yaml:"enabled"`
		} `yaml:"file"`
	}
	if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
		t.Fatal(err)
	}
	if logCfg.Level != "warn" {
		t.Errorf("expected level warn, got %q", logCfg.Level)
	}
	if !logCfg.File.Enabled {
		t.Error("expected file sink enabled")
	}

	// missing extension leaves the target zero-valued
	var missing struct {
		Level string `yaml:"level"`
	}
	if err := cfg.UnmarshalExtension("nope", &missing); err != nil {
		t.Fatal(err)
	}
	if missing.Level != "" {
		t.Error("missing extension must not populate target")
	}
}

func TestValidateRejectsBadEnums(t *testing.T) {
	cases := []string{
		"bidirectional:\n  mode: sometimes\n",
		"bidirectional:\n  project_settings:\n    key: all_words\n",
		"bidirectional:\n  new_dictionary:\n    format: xml\n",
	}
	for _, data := range cases {
		if _, err := LoadFromBytes([]byte(data)); err == nil {
			t.Errorf("expected validation error for:\n%s", data)
		}
	}
}

func TestEnvVarExpansion(t *testing.T) {
	os.Setenv("SPELLSYNC_TEST_DIR", "/ws/fromenv")
	defer os.Unsetenv("SPELLSYNC_TEST_DIR")

	cfg, err := LoadFromBytes([]byte("folders:\n  - ${SPELLSYNC_TEST_DIR}\n  - ${SPELLSYNC_TEST_UNSET:-/ws/fallback}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Folders[0] != "/ws/fromenv" {
		t.Errorf("expected env expansion, got %q", cfg.Folders[0])
	}
	if cfg.Folders[1] != "/ws/fallback" {
		t.Errorf("expected default value, got %q", cfg.Folders[1])
	}
}

func TestFindConfigFileWalksUp(t *testing.T) {
	tmpDir := t.TempDir()
	nested := filepath.Join(tmpDir, "a", "b", "c")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(tmpDir, "spellsync.yml")
	if err := os.WriteFile(configPath, []byte("version: \"1.0\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	found, err := FindConfigFile(nested)
	if err != nil {
		t.Fatal(err)
	}
	if found != configPath {
		t.Errorf("expected %s, got %s", configPath, found)
	}
}

func TestEffectiveFolders(t *testing.T) {
	cfg := Default()
	folders := cfg.EffectiveFolders("/cwd")
	if len(folders) != 1 || folders[0] != "/cwd" {
		t.Errorf("expected [/cwd], got %v", folders)
	}

	cfg.Folders = []string{"/abs/ws", "rel/ws"}
	folders = cfg.EffectiveFolders("/cwd")
	if folders[0] != "/abs/ws" {
		t.Errorf("expected /abs/ws, got %s", folders[0])
	}
	if folders[1] != "/cwd/rel/ws" {
		t.Errorf("expected /cwd/rel/ws, got %s", folders[1])
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Bidirectional.Mode != ModeShortcut {
		t.Errorf("expected shortcut mode default, got %s", cfg.Bidirectional.Mode)
	}
	if !cfg.NotificationsEnabled() {
		t.Error("notifications should default to enabled")
	}
	if cfg.DictionariesToGlobalEnabled() {
		t.Error("dictionaries_to_global should default to disabled")
	}
	if cfg.Bidirectional.NewDictionary.Format != "txt" {
		t.Errorf("expected txt format default, got %s", cfg.Bidirectional.NewDictionary.Format)
	}
}
