package dictfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseText(t *testing.T) {
	data := []byte("alpha\n\n# a comment\n  beta  \n#another\ngamma\n")
	got := ParseText(data)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, got)
}

func TestParseJSONShapes(t *testing.T) {
	list, format, err := ParseJSON([]byte(`["alpha", "beta"]`))
	require.NoError(t, err)
	assert.Equal(t, FormatJSONArray, format)
	assert.Equal(t, []string{"alpha", "beta"}, list)

	list, format, err = ParseJSON([]byte(`{"words": ["gamma"]}`))
	require.NoError(t, err)
	assert.Equal(t, FormatJSONWords, format)
	assert.Equal(t, []string{"gamma"}, list)

	_, _, err = ParseJSON([]byte(`{"words": "not-an-array"}`))
	assert.Error(t, err)

	_, _, err = ParseJSON([]byte(`[1, 2, 3]`))
	assert.Error(t, err, "non-string entries must be rejected")
}

func TestTextRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "terms.txt")

	require.NoError(t, Save(path, []string{"alpha", "beta"}, FormatText))

	list, format, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, FormatText, format)
	assert.Equal(t, []string{"alpha", "beta"}, list)
}

func TestJSONRoundTripPreservesShape(t *testing.T) {
	dir := t.TempDir()

	// bare array stays a bare array
	arrPath := filepath.Join(dir, "arr.json")
	require.NoError(t, os.WriteFile(arrPath, []byte(`["alpha"]`), 0644))
	list, format, err := Load(arrPath)
	require.NoError(t, err)
	assert.Equal(t, FormatJSONArray, format)
	require.NoError(t, Save(arrPath, append(list, "beta"), format))
	list, format, err = Load(arrPath)
	require.NoError(t, err)
	assert.Equal(t, FormatJSONArray, format)
	assert.Equal(t, []string{"alpha", "beta"}, list)

	// {words: [...]} stays an object
	objPath := filepath.Join(dir, "obj.json")
	require.NoError(t, os.WriteFile(objPath, []byte(`{"words": ["alpha"]}`), 0644))
	list, format, err = Load(objPath)
	require.NoError(t, err)
	assert.Equal(t, FormatJSONWords, format)
	require.NoError(t, Save(objPath, append(list, "beta"), format))
	list, format, err = Load(objPath)
	require.NoError(t, err)
	assert.Equal(t, FormatJSONWords, format)
	assert.Equal(t, []string{"alpha", "beta"}, list)
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()

	list, format, err := Load(filepath.Join(dir, "missing.txt"))
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, FormatText, format)

	list, format, err = Load(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, FormatJSONWords, format)
}

func TestDefaultFormat(t *testing.T) {
	assert.Equal(t, FormatText, DefaultFormat("txt"))
	assert.Equal(t, FormatJSONWords, DefaultFormat("json"))
	assert.Equal(t, FormatJSONWords, DefaultFormat(".json"))
	assert.Equal(t, FormatText, DefaultFormat(""))
}
