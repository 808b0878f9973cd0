// Package settings reads and writes per-folder editor settings files
// (.vscode/settings.json). Documents are flat JSON objects keyed by dotted
// setting names; read-modify-write preserves every key the syncer does not
// own.
package settings

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/grovetools/spellsync/errors"
	"github.com/mitchellh/mapstructure"
)

// Setting keys owned or read by the syncer.
const (
	KeyWords              = "cSpell.words"
	KeyUserWords          = "cSpell.userWords"
	KeyIgnoreWords        = "cSpell.ignoreWords"
	KeyCustomDictionaries = "cSpell.customDictionaries"
	KeyLanguageSettings   = "cSpell.languageSettings"
	KeyDictionaries       = "cSpell.dictionaries"

	// Per-folder overrides under the syncer's own namespace.
	KeyCombinedAutoRemove = "spellsync.combinedAutoRemove"
	KeyBidirectionalSync  = "spellsync.enableBidirectionalSync"
)

// PathIn returns the settings file path for a workspace folder.
func PathIn(folder string) string {
	return filepath.Join(folder, ".vscode", "settings.json")
}

// DictionaryRef is one entry of the cSpell.customDictionaries map.
type DictionaryRef struct {
	Path     string `mapstructure:"path" json:"path"`
	Name     string `mapstructure:"name,omitempty" json:"name,omitempty"`
	AddWords bool   `mapstructure:"addWords,omitempty" json:"addWords,omitempty"`
	Scope    string `mapstructure:"scope,omitempty" json:"scope,omitempty"`
}

// LanguageSetting is one entry of the cSpell.languageSettings array.
type LanguageSetting struct {
	LanguageID string   `mapstructure:"languageId"`
	Words      []string `mapstructure:"words"`
}

// Document is a parsed settings file. The underlying map holds every key
// found on disk so unrelated settings survive a save untouched.
type Document struct {
	Path string
	data map[string]interface{}
}

// New returns an empty document that will be written to path on Save.
func New(path string) *Document {
	return &Document{Path: path, data: make(map[string]interface{})}
}

// Load reads and parses a settings file. The caller distinguishes a missing
// file (os.IsNotExist on the unwrapped cause) from a malformed one.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, errors.ReadFailed(path, err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.ParseFailed(path, err)
	}
	if raw == nil {
		raw = make(map[string]interface{})
	}
	return &Document{Path: path, data: raw}, nil
}

// LoadOrCreate reads a settings file, returning an empty document when the
// file does not exist yet.
func LoadOrCreate(path string) (*Document, error) {
	doc, err := Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(path), nil
		}
		return nil, err
	}
	return doc, nil
}

// Save writes the document with 4-space indentation, creating the .vscode
// directory when needed.
func (d *Document) Save() error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(d.data); err != nil {
		return errors.WriteFailed(d.Path, err)
	}
	if err := os.MkdirAll(filepath.Dir(d.Path), 0755); err != nil {
		return errors.WriteFailed(d.Path, err)
	}
	if err := os.WriteFile(d.Path, buf.Bytes(), 0644); err != nil {
		return errors.WriteFailed(d.Path, err)
	}
	return nil
}

// Has reports whether the key exists in the document.
func (d *Document) Has(key string) bool {
	_, ok := d.data[key]
	return ok
}

// Set stores a value under the key.
func (d *Document) Set(key string, value interface{}) {
	d.data[key] = value
}

// Bool returns the boolean value for key and whether it was present as a bool.
func (d *Document) Bool(key string) (bool, bool) {
	v, ok := d.data[key].(bool)
	return v, ok
}

// StringSlice returns the array of strings stored under key. Non-string
// entries are dropped. ok is false when the key is absent or not an array.
func (d *Document) StringSlice(key string) ([]string, bool) {
	if typed, ok := d.data[key].([]string); ok {
		return append([]string(nil), typed...), true
	}
	raw, ok := d.data[key].([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}

// CustomDictionaries decodes the cSpell.customDictionaries map. Entries
// that fail to decode are skipped.
func (d *Document) CustomDictionaries() map[string]DictionaryRef {
	raw, ok := d.data[KeyCustomDictionaries].(map[string]interface{})
	if !ok {
		return nil
	}
	out := make(map[string]DictionaryRef, len(raw))
	for name, entry := range raw {
		var ref DictionaryRef
		if err := mapstructure.Decode(entry, &ref); err != nil {
			continue
		}
		out[name] = ref
	}
	return out
}

// RegisterDictionary adds or replaces an entry in cSpell.customDictionaries,
// preserving unrelated entries.
func (d *Document) RegisterDictionary(name string, ref DictionaryRef) {
	raw, ok := d.data[KeyCustomDictionaries].(map[string]interface{})
	if !ok {
		raw = make(map[string]interface{})
	}
	raw[name] = map[string]interface{}{
		"name":     ref.Name,
		"path":     ref.Path,
		"addWords": ref.AddWords,
		"scope":    ref.Scope,
	}
	d.data[KeyCustomDictionaries] = raw
}

// LanguageSettings decodes the cSpell.languageSettings array. Entries that
// fail to decode are skipped.
func (d *Document) LanguageSettings() []LanguageSetting {
	raw, ok := d.data[KeyLanguageSettings].([]interface{})
	if !ok {
		return nil
	}
	var out []LanguageSetting
	for _, entry := range raw {
		var ls LanguageSetting
		if err := mapstructure.Decode(entry, &ls); err != nil {
			continue
		}
		out = append(out, ls)
	}
	return out
}

// ExpandWorkspaceFolder substitutes the workspace-folder placeholder tokens
// in a dictionary path and anchors relative paths at the folder.
func ExpandWorkspaceFolder(path, folder string) string {
	path = strings.ReplaceAll(path, "${workspaceFolder}", folder)
	path = strings.ReplaceAll(path, "${workspaceRoot}", folder)
	if !filepath.IsAbs(path) {
		path = filepath.Join(folder, path)
	}
	return filepath.Clean(path)
}
