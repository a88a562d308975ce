package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	return &cfg
}

func TestValidateDeep_ValidConfig(t *testing.T) {
	cfg := validConfig(t)
	cfg.Catalog.Projects = []string{t.TempDir()}
	cfg.Catalog.CustomFolders = []string{t.TempDir()}

	assert.NoError(t, cfg.ValidateDeep(""))
}

func TestValidateDeep_MissingCatalogPaths(t *testing.T) {
	cfg := validConfig(t)
	cfg.Catalog.Projects = []string{filepath.Join(t.TempDir(), "missing")}
	cfg.Catalog.CustomFolders = []string{t.TempDir(), filepath.Join(t.TempDir(), "gone")}

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 2)
	assert.Equal(t, "catalog.projects[0]", fieldErrs[0].Field)
	assert.Equal(t, "catalog.custom_folders[1]", fieldErrs[1].Field)
}

func TestValidateDeep_DataDirIsFile(t *testing.T) {
	cfg := validConfig(t)
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	cfg.DataDir = file

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "data_dir", fieldErrs[0].Field)
}

func TestValidateDeep_ConfigPathIsDirectory(t *testing.T) {
	cfg := validConfig(t)

	err := cfg.ValidateDeep(t.TempDir())

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "config_file", fieldErrs[0].Field)
}

func TestValidateDeep_ExplicitDockerMissing(t *testing.T) {
	cfg := validConfig(t)
	enabled := true
	cfg.Docker.Enabled = &enabled
	cfg.Docker.Binary = "definitely-not-docker-12345"

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "docker.binary", fieldErrs[0].Field)
}

func TestWarnings(t *testing.T) {
	cfg := validConfig(t)
	cfg.Catalog.Disabled = []string{"npm-cache", "bogus"}
	cfg.Docker.Binary = "definitely-not-docker-12345"

	warnings := cfg.Warnings([]string{"npm-cache", "metro-cache"})

	require.Len(t, warnings, 2)
	assert.Equal(t, "Catalog", warnings[0].Category)
	assert.Equal(t, "bogus", warnings[0].Item)
	assert.Equal(t, "Docker", warnings[1].Category)
}
