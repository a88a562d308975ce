// Package config handles configuration loading and validation for rnclean.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Cleaning CleaningConfig `yaml:"cleaning"`
	History  HistoryConfig  `yaml:"history"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Docker   DockerConfig   `yaml:"docker"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// DatabaseConfig tunes the SQLite connection pool.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// CleaningConfig tunes scan and clean sessions.
type CleaningConfig struct {
	// DeepThreshold is the number of cleaned tasks above which a session is
	// recorded as deep.
	DeepThreshold int `yaml:"deep_threshold"`
	// Pace is the minimum time the progress view lingers on each task.
	Pace time.Duration `yaml:"pace"`
	// RecentLimit is the size of the recent-history view.
	RecentLimit int `yaml:"recent_limit"`
	// SizeWorkers bounds concurrent directory sizing inside one probe.
	SizeWorkers int `yaml:"size_workers"`
}

// HistoryConfig bounds history reads.
type HistoryConfig struct {
	PageSize    int `yaml:"page_size"`
	ExportLimit int `yaml:"export_limit"`
}

// CatalogConfig adjusts the task catalog.
type CatalogConfig struct {
	// Disabled lists task IDs removed from the catalog.
	Disabled []string `yaml:"disabled"`
	// Projects are roots searched for node_modules directories.
	Projects []string `yaml:"projects"`
	// CustomFolders are user-chosen directories cleaned as one task.
	CustomFolders []string `yaml:"custom_folders"`
}

// DockerConfig controls the container resource tasks.
type DockerConfig struct {
	// Enabled: nil auto-detects the binary, false disables the tasks.
	Enabled *bool  `yaml:"enabled"`
	Binary  string `yaml:"binary"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			MaxOpenConns: 4,
			MaxIdleConns: 2,
			BusyTimeout:  5000,
		},
		Cleaning: CleaningConfig{
			DeepThreshold: 5,
			RecentLimit:   5,
			SizeWorkers:   4,
		},
		History: HistoryConfig{
			PageSize:    50,
			ExportLimit: 1000,
		},
		Docker: DockerConfig{
			Binary: "docker",
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.DataDir = dataDir
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
// DeepThreshold is left alone since zero is meaningful.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.Cleaning.RecentLimit == 0 {
		c.Cleaning.RecentLimit = defaults.Cleaning.RecentLimit
	}
	if c.Cleaning.SizeWorkers == 0 {
		c.Cleaning.SizeWorkers = defaults.Cleaning.SizeWorkers
	}
	if c.History.PageSize == 0 {
		c.History.PageSize = defaults.History.PageSize
	}
	if c.History.ExportLimit == 0 {
		c.History.ExportLimit = defaults.History.ExportLimit
	}
	if c.Docker.Binary == "" {
		c.Docker.Binary = defaults.Docker.Binary
	}
}

// DockerMode reports whether docker tasks are forced on, forced off, or
// auto-detected.
func (c *Config) DockerMode() (enabled, explicit bool) {
	if c.Docker.Enabled == nil {
		return true, false
	}
	return *c.Docker.Enabled, true
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}
	if c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns must be between 0 and max_open_conns")
	}
	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("database.busy_timeout cannot be negative")
	}

	if c.Cleaning.DeepThreshold < 0 {
		return fmt.Errorf("cleaning.deep_threshold cannot be negative")
	}
	if c.Cleaning.Pace < 0 {
		return fmt.Errorf("cleaning.pace cannot be negative")
	}
	if c.Cleaning.RecentLimit < 1 {
		return fmt.Errorf("cleaning.recent_limit must be at least 1")
	}
	if c.Cleaning.SizeWorkers < 1 {
		return fmt.Errorf("cleaning.size_workers must be at least 1")
	}

	if c.History.PageSize < 1 {
		return fmt.Errorf("history.page_size must be at least 1")
	}
	if c.History.ExportLimit < c.History.PageSize {
		return fmt.Errorf("history.export_limit must be at least history.page_size")
	}

	if c.Docker.Binary == "" {
		return fmt.Errorf("docker.binary cannot be empty")
	}

	seen := make(map[string]bool, len(c.Catalog.Disabled))
	for _, id := range c.Catalog.Disabled {
		if id == "" {
			return fmt.Errorf("catalog.disabled cannot contain empty ids")
		}
		if seen[id] {
			return fmt.Errorf("catalog.disabled lists %q twice", id)
		}
		seen[id] = true
	}

	return nil
}
