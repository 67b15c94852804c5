package diagnostics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadRoundtrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "instance.json")

	bc := Breadcrumb{InstanceID: "abc-123", StartupVersion: "v1.0.0"}
	require.NoError(t, save(path, bc))

	got, err := load(path)
	require.NoError(t, err)
	assert.Equal(t, bc.InstanceID, got.InstanceID)
	assert.Equal(t, bc.StartupVersion, got.StartupVersion)
}

func TestLoad_MissingFileReturnsZeroValue(t *testing.T) {
	t.Parallel()
	got, err := load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, got.InstanceID)
}

func TestLoad_CorruptFileReturnsError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "instance.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := load(path)
	assert.Error(t, err)
}

func TestSave_WritesReadableJSON(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "instance.json")

	require.NoError(t, save(path, Breadcrumb{InstanceID: "xyz"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "xyz", decoded["instance_id"])
}
