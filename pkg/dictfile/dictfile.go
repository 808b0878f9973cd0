// Package dictfile reads and writes custom dictionary files. A dictionary is
// either newline-delimited text (blank lines and #-comments ignored) or a
// JSON document holding a bare array of strings or an object with a "words"
// array. Loading remembers which shape was found so a merge-and-save round
// trip preserves the on-disk format.
package dictfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/grovetools/spellsync/errors"
)

// Format identifies the on-disk shape of a dictionary file.
type Format string

const (
	// FormatText is one word per line; blank lines and lines starting
	// with '#' are ignored.
	FormatText Format = "text"
	// FormatJSONArray is a bare JSON array of strings.
	FormatJSONArray Format = "json-array"
	// FormatJSONWords is a JSON object with a "words" array.
	FormatJSONWords Format = "json-words"
)

// jsonWordsDoc is the {"words": [...]} dictionary shape.
type jsonWordsDoc struct {
	Words []string `json:"words"`
}

// DefaultFormat maps a configured file extension ("txt" or "json") to the
// format used when creating a new dictionary file. New JSON dictionaries
// are written in the {"words": [...]} shape.
func DefaultFormat(ext string) Format {
	if strings.EqualFold(strings.TrimPrefix(ext, "."), "json") {
		return FormatJSONWords
	}
	return FormatText
}

// ParseText extracts words from newline-delimited dictionary content.
func ParseText(data []byte) []string {
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		w := strings.TrimSpace(line)
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		out = append(out, w)
	}
	return out
}

// ParseJSON extracts words from JSON dictionary content, accepting either a
// bare array of strings or an object with a "words" array. Non-string array
// entries are rejected.
func ParseJSON(data []byte) ([]string, Format, error) {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		return arr, FormatJSONArray, nil
	}

	var doc jsonWordsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, "", err
	}
	return doc.Words, FormatJSONWords, nil
}

// Parse chooses the parse rule from the file extension of path.
func Parse(data []byte, path string) ([]string, Format, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(data)
	}
	return ParseText(data), FormatText, nil
}

// Load reads a dictionary file and returns its words plus the detected
// format. A missing file is not an error: it returns an empty list and the
// default format for the extension so the caller can create it.
func Load(path string) ([]string, Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, DefaultFormat(filepath.Ext(path)), nil
		}
		return nil, "", errors.ReadFailed(path, err)
	}

	list, format, err := Parse(data, path)
	if err != nil {
		return nil, "", errors.ParseFailed(path, err)
	}
	return list, format, nil
}

// Serialize renders a word list in the given format. Only string entries
// ever reach the output.
func Serialize(list []string, format Format) ([]byte, error) {
	if list == nil {
		list = []string{}
	}
	switch format {
	case FormatJSONArray:
		data, err := json.MarshalIndent(list, "", "    ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatJSONWords:
		data, err := json.MarshalIndent(jsonWordsDoc{Words: list}, "", "    ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		if len(list) == 0 {
			return []byte{}, nil
		}
		return []byte(strings.Join(list, "\n") + "\n"), nil
	}
}

// Save writes a word list to path in the given format, creating parent
// directories as needed.
func Save(path string, list []string, format Format) error {
	data, err := Serialize(list, format)
	if err != nil {
		return errors.WriteFailed(path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WriteFailed(path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.WriteFailed(path, err)
	}
	return nil
}
