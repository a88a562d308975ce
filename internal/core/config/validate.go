package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hay-kot/criterio"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// file accessibility of every configured path. The configPath argument
// specifies the config file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validateCatalogPaths(),
	)
}

// Warnings returns non-fatal configuration issues. knownTasks is the full
// catalog before anything is disabled.
func (c *Config) Warnings(knownTasks []string) []ValidationWarning {
	var warnings []ValidationWarning

	for _, id := range c.Catalog.Disabled {
		if !slices.Contains(knownTasks, id) {
			warnings = append(warnings, ValidationWarning{
				Category: "Catalog",
				Item:     id,
				Message:  "disabled task id does not match any task",
			})
		}
	}

	if enabled, explicit := c.DockerMode(); enabled && !explicit {
		if _, err := exec.LookPath(c.Docker.Binary); err != nil {
			warnings = append(warnings, ValidationWarning{
				Category: "Docker",
				Item:     c.Docker.Binary,
				Message:  "not found on PATH, container tasks will report nothing",
			})
		}
	}

	return warnings
}

// validateFileAccess checks config file, data directory, and docker executable.
func (c *Config) validateFileAccess(configPath string) error {
	errs := []error{
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	}

	// Only an explicit opt-in makes a missing binary an error.
	if enabled, explicit := c.DockerMode(); enabled && explicit {
		errs = append(errs, criterio.Run("docker.binary", c.Docker.Binary, executableExists))
	}

	return criterio.ValidateStruct(errs...)
}

func (c *Config) validateCatalogPaths() error {
	var errs criterio.FieldErrorsBuilder

	for i, p := range c.Catalog.Projects {
		if err := isExistingDirectory(p); err != nil {
			errs = errs.Append(fmt.Sprintf("catalog.projects[%d]", i), err)
		}
	}

	for i, p := range c.Catalog.CustomFolders {
		if err := isExistingDirectory(p); err != nil {
			errs = errs.Append(fmt.Sprintf("catalog.custom_folders[%d]", i), err)
		}
	}

	return errs.ToError()
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// executableExists validates that the path resolves to an executable.
func executableExists(path string) error {
	if path == "" {
		return nil
	}
	if _, err := exec.LookPath(path); err != nil {
		return fmt.Errorf("executable not found: %s", path)
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

// isExistingDirectory validates that path, after ~ expansion, is a directory.
func isExistingDirectory(path string) error {
	info, err := os.Stat(ExpandHome(path))
	if os.IsNotExist(err) {
		return fmt.Errorf("does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
