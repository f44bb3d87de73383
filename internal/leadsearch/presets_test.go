package leadsearch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePresets(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPresets(t *testing.T) {
	t.Parallel()

	path := writePresets(t, `
presets:
  - name: restaurants
    query: restaurants
    location: Jakarta
    count: 15
  - name: dentists
    query: dental clinics
    location: Singapore
`)

	presets, err := LoadPresets(path)
	require.NoError(t, err)
	require.Len(t, presets, 2)

	r := presets["restaurants"]
	assert.Equal(t, "restaurants", r.Query)
	assert.Equal(t, "Jakarta", r.Location)
	assert.Equal(t, 15, r.Count)

	d := presets["dentists"]
	assert.Equal(t, "dental clinics", d.Query)
	assert.Zero(t, d.Count)
}

func TestLoadPresets_Errors(t *testing.T) {
	t.Parallel()

	_, err := LoadPresets(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = LoadPresets(writePresets(t, "presets: [not valid"))
	require.Error(t, err)

	_, err = LoadPresets(writePresets(t, "presets:\n  - query: q\n    location: l\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing name")
}
