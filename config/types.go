package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

//go:generate sh -c "cd .. && go run ./tools/schema-generator/"

// Mode selects how the reverse (global -> projects) direction may run.
type Mode string

const (
	// ModeDisabled refuses reverse sync entirely.
	ModeDisabled Mode = "disabled"
	// ModeShortcut runs reverse sync only on explicit manual invocation.
	ModeShortcut Mode = "shortcut"
	// ModeAutomatic additionally runs reverse sync whenever the global
	// word list changes externally.
	ModeAutomatic Mode = "automatic"
)

// SettingsKey selects which settings-file key the project-settings target
// writes to.
type SettingsKey string

const (
	SettingsKeyWords       SettingsKey = "words"
	SettingsKeyUserWords   SettingsKey = "user_words"
	SettingsKeyIgnoreWords SettingsKey = "ignore_words"
)

// SourcesConfig holds the enable flags for the forward sources.
type SourcesConfig struct {
	ProjectSettings    *bool `yaml:"project_settings,omitempty" json:"project_settings,omitempty" jsonschema:"description=Collect words from cSpell.words in project settings (default true)"`
	CustomDictionaries *bool `yaml:"custom_dictionaries,omitempty" json:"custom_dictionaries,omitempty" jsonschema:"description=Collect words from files registered in cSpell.customDictionaries (default true)"`
	LanguageSettings   *bool `yaml:"language_settings,omitempty" json:"language_settings,omitempty" jsonschema:"description=Collect words from cSpell.languageSettings entries (default true)"`
	CombinedInbox      *bool `yaml:"combined_inbox,omitempty" json:"combined_inbox,omitempty" jsonschema:"description=Collect and consume the per-folder combined.txt inbox file (default true)"`

	// DictionariesToGlobal gates the independent custom-dictionaries ->
	// global path (default false).
	DictionariesToGlobal *bool `yaml:"dictionaries_to_global,omitempty" json:"dictionaries_to_global,omitempty" jsonschema:"description=Also merge every custom dictionary into the global list (default false)"`
}

// WorkspaceStoreTarget configures the workspace-scoped store target.
type WorkspaceStoreTarget struct {
	Enabled bool   `yaml:"enabled" json:"enabled" jsonschema:"description=Merge the global list into a workspace-scoped store key"`
	Key     string `yaml:"key,omitempty" json:"key,omitempty" jsonschema:"description=Store key to merge into (default 'words')"`
}

// ProjectSettingsTarget configures the per-folder settings-file target.
type ProjectSettingsTarget struct {
	Enabled *bool       `yaml:"enabled,omitempty" json:"enabled,omitempty" jsonschema:"description=Merge the global list into each folder's settings file (default true)"`
	Key     SettingsKey `yaml:"key,omitempty" json:"key,omitempty" jsonschema:"description=Settings key to merge into: words | user_words | ignore_words"`
}

// CustomDictionaryTarget configures the named-dictionary target.
type CustomDictionaryTarget struct {
	Enabled bool   `yaml:"enabled" json:"enabled" jsonschema:"description=Merge the global list into a registered custom dictionary"`
	Name    string `yaml:"name,omitempty" json:"name,omitempty" jsonschema:"description=Name of the registered dictionary to merge into"`
}

// NewDictionaryTarget configures the created-on-demand dictionary target.
type NewDictionaryTarget struct {
	Enabled bool   `yaml:"enabled" json:"enabled" jsonschema:"description=Create (or append to) a dictionary file under dictionaries/"`
	Name    string `yaml:"name,omitempty" json:"name,omitempty" jsonschema:"description=Base name of the dictionary file"`
	Format  string `yaml:"format,omitempty" json:"format,omitempty" jsonschema:"description=File format: txt | json (default txt)"`
}

// BidirectionalConfig groups the reverse-direction mode and targets.
type BidirectionalConfig struct {
	Mode             Mode                   `yaml:"mode,omitempty" json:"mode,omitempty" jsonschema:"description=Reverse sync mode: disabled | shortcut | automatic (default shortcut)"`
	WorkspaceStore   WorkspaceStoreTarget   `yaml:"workspace_store,omitempty" json:"workspace_store,omitempty"`
	ProjectSettings  ProjectSettingsTarget  `yaml:"project_settings,omitempty" json:"project_settings,omitempty"`
	CustomDictionary CustomDictionaryTarget `yaml:"custom_dictionary,omitempty" json:"custom_dictionary,omitempty"`
	NewDictionary    NewDictionaryTarget    `yaml:"new_dictionary,omitempty" json:"new_dictionary,omitempty"`
}

// DelaysConfig holds the timing tunables in milliseconds.
type DelaysConfig struct {
	StartupMs   int `yaml:"startup_ms,omitempty" json:"startup_ms,omitempty" jsonschema:"description=Delay before the initial pass when watching (default 3000)"`
	InboxWaitMs int `yaml:"inbox_wait_ms,omitempty" json:"inbox_wait_ms,omitempty" jsonschema:"description=Wait after inbox file creation before processing (default 2000)"`
	DebounceMs  int `yaml:"debounce_ms,omitempty" json:"debounce_ms,omitempty" jsonschema:"description=Per-path debounce window for settings changes (default 1000)"`
}

// Config is the spellsync.yml document.
type Config struct {
	Version       string              `yaml:"version,omitempty" json:"version,omitempty" jsonschema:"description=Configuration version (e.g. '1.0')"`
	Folders       []string            `yaml:"folders,omitempty" json:"folders,omitempty" jsonschema:"description=Workspace folders to reconcile; defaults to the working directory"`
	Sources       SourcesConfig       `yaml:"sources,omitempty" json:"sources,omitempty"`
	Bidirectional BidirectionalConfig `yaml:"bidirectional,omitempty" json:"bidirectional,omitempty"`
	Delays        DelaysConfig        `yaml:"delays,omitempty" json:"delays,omitempty"`
	Notifications *bool               `yaml:"notifications,omitempty" json:"notifications,omitempty" jsonschema:"description=Show user-facing summaries (default true)"`

	// Extensions captures all other top-level keys (e.g. "logging").
	Extensions map[string]interface{} `yaml:",inline" json:"-" jsonschema:"-"`
}

// Default returns the configuration used when no spellsync.yml exists.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills unset fields with their documented defaults.
func (c *Config) SetDefaults() {
	if c.Bidirectional.Mode == "" {
		c.Bidirectional.Mode = ModeShortcut
	}
	if c.Bidirectional.WorkspaceStore.Key == "" {
		c.Bidirectional.WorkspaceStore.Key = "words"
	}
	if c.Bidirectional.ProjectSettings.Key == "" {
		c.Bidirectional.ProjectSettings.Key = SettingsKeyWords
	}
	if c.Bidirectional.NewDictionary.Format == "" {
		c.Bidirectional.NewDictionary.Format = "txt"
	}
	if c.Delays.StartupMs == 0 {
		c.Delays.StartupMs = 3000
	}
	if c.Delays.InboxWaitMs == 0 {
		c.Delays.InboxWaitMs = 2000
	}
	if c.Delays.DebounceMs == 0 {
		c.Delays.DebounceMs = 1000
	}
}

// Validate checks enum fields and timing values.
func (c *Config) Validate() error {
	switch c.Bidirectional.Mode {
	case "", ModeDisabled, ModeShortcut, ModeAutomatic:
	default:
		return fmt.Errorf("bidirectional.mode must be disabled, shortcut, or automatic (got %q)", c.Bidirectional.Mode)
	}

	switch c.Bidirectional.ProjectSettings.Key {
	case "", SettingsKeyWords, SettingsKeyUserWords, SettingsKeyIgnoreWords:
	default:
		return fmt.Errorf("bidirectional.project_settings.key must be words, user_words, or ignore_words (got %q)", c.Bidirectional.ProjectSettings.Key)
	}

	switch c.Bidirectional.NewDictionary.Format {
	case "", "txt", "json":
	default:
		return fmt.Errorf("bidirectional.new_dictionary.format must be txt or json (got %q)", c.Bidirectional.NewDictionary.Format)
	}

	if c.Delays.StartupMs < 0 || c.Delays.InboxWaitMs < 0 || c.Delays.DebounceMs < 0 {
		return fmt.Errorf("delay values must not be negative")
	}

	return nil
}

// enabled resolves a tri-state flag against its default.
func enabled(flag *bool, def bool) bool {
	if flag == nil {
		return def
	}
	return *flag
}

// ProjectSettingsEnabled reports whether the project-settings source is on.
func (c *Config) ProjectSettingsEnabled() bool { return enabled(c.Sources.ProjectSettings, true) }

// CustomDictionariesEnabled reports whether the custom-dictionaries source is on.
func (c *Config) CustomDictionariesEnabled() bool { return enabled(c.Sources.CustomDictionaries, true) }

// LanguageSettingsEnabled reports whether the language-settings source is on.
func (c *Config) LanguageSettingsEnabled() bool { return enabled(c.Sources.LanguageSettings, true) }

// CombinedInboxEnabled reports whether the inbox source is on.
func (c *Config) CombinedInboxEnabled() bool { return enabled(c.Sources.CombinedInbox, true) }

// DictionariesToGlobalEnabled reports whether the custom-dictionaries ->
// global path is on.
func (c *Config) DictionariesToGlobalEnabled() bool {
	return enabled(c.Sources.DictionariesToGlobal, false)
}

// ProjectSettingsTargetEnabled reports whether the settings-file target is on.
func (c *Config) ProjectSettingsTargetEnabled() bool {
	return enabled(c.Bidirectional.ProjectSettings.Enabled, true)
}

// NotificationsEnabled reports whether user-facing summaries are on.
func (c *Config) NotificationsEnabled() bool { return enabled(c.Notifications, true) }

// UnmarshalExtension decodes a top-level extension section (such as
// "logging") into a strongly-typed struct. A missing key leaves the target
// zero-valued.
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
