package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{"IdPs": ["http://idp"], "CouchDBservers": ["http://db"]}`)

	t.Setenv("COUCHDB_USER", "admin")
	t.Setenv("COUCHDB_PWD", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultUpdateInterval, cfg.UpdateInterval())
	assert.Equal(t, DefaultListenAddress, cfg.ListenAddress)
	assert.True(t, cfg.MetricsEnabled)
	assert.True(t, cfg.HasCredentials())
}

func TestLoad_PasswordAlias(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{"IdPs": [], "CouchDBservers": []}`)

	t.Setenv("COUCHDB_USER", "admin")
	t.Setenv("COUCHDB_PASSWORD", "via-alias")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "via-alias", cfg.CouchDBPassword)
}

func TestLoad_PwdWinsOverAlias(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{}`)

	t.Setenv("COUCHDB_USER", "admin")
	t.Setenv("COUCHDB_PWD", "canonical")
	t.Setenv("COUCHDB_PASSWORD", "alias")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "canonical", cfg.CouchDBPassword)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	assert.Error(t, err)
}

func TestLoad_TrailingSlashRejected(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{"CouchDBservers": ["http://db/"]}`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_NegativeInterval(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `{"UpdateIntervalSeconds": -1}`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestUpdateInterval_Explicit(t *testing.T) {
	c := &Config{UpdateIntervalSeconds: 30}
	assert.Equal(t, int64(30*1e9), c.UpdateInterval().Nanoseconds())
}
