package testutil

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// NewTestLogger returns a silent component logger for tests.
func NewTestLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger.WithField("component", "test")
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// WriteSettings writes a .vscode/settings.json document for a workspace
// folder and returns its path.
func WriteSettings(t *testing.T, folder string, data map[string]interface{}) string {
	t.Helper()

	path := filepath.Join(folder, ".vscode", "settings.json")
	content, err := json.MarshalIndent(data, "", "    ")
	require.NoError(t, err)
	WriteFile(t, path, string(content)+"\n")
	return path
}

// ReadSettings reads a folder's settings document back as a generic map.
func ReadSettings(t *testing.T, folder string) map[string]interface{} {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(folder, ".vscode", "settings.json"))
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}
