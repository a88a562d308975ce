package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), dataDir)
	require.NoError(t, err)

	want := DefaultConfig()
	want.DataDir = dataDir
	assert.Equal(t, &want, cfg)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Cleaning.DeepThreshold)
	assert.Equal(t, 50, cfg.History.PageSize)
	assert.Equal(t, 1000, cfg.History.ExportLimit)
}

func TestLoad_OverridesAndDefaults(t *testing.T) {
	path := writeConfig(t, `
cleaning:
  deep_threshold: 3
  pace: 150ms
history:
  page_size: 20
catalog:
  disabled: [homebrew-cache, vscode-cache]
  projects: ["~/code"]
docker:
  enabled: false
`)

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Cleaning.DeepThreshold)
	assert.Equal(t, 150*time.Millisecond, cfg.Cleaning.Pace)
	assert.Equal(t, 5, cfg.Cleaning.RecentLimit, "unset values keep defaults")
	assert.Equal(t, 20, cfg.History.PageSize)
	assert.Equal(t, 1000, cfg.History.ExportLimit)
	assert.Equal(t, []string{"homebrew-cache", "vscode-cache"}, cfg.Catalog.Disabled)
	assert.Equal(t, "docker", cfg.Docker.Binary)

	enabled, explicit := cfg.DockerMode()
	assert.False(t, enabled)
	assert.True(t, explicit)
}

func TestLoad_ParseError(t *testing.T) {
	path := writeConfig(t, "cleaning: [not, a, map")

	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "negative threshold", body: "cleaning: {deep_threshold: -1}", want: "deep_threshold"},
		{name: "negative pace", body: "cleaning: {pace: -1s}", want: "pace"},
		{name: "export below page", body: "history: {page_size: 100, export_limit: 10}", want: "export_limit"},
		{name: "duplicate disabled", body: "catalog: {disabled: [a, a]}", want: "twice"},
		{name: "idle above open", body: "database: {max_open_conns: 1, max_idle_conns: 3}", want: "max_idle_conns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body), t.TempDir())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_EmptyDataDir(t *testing.T) {
	cfg := DefaultConfig()
	require.Error(t, cfg.Validate())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "code"), ExpandHome("~/code"))
	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, "/abs", ExpandHome("/abs"))
	assert.Equal(t, "~other", ExpandHome("~other"))
}
