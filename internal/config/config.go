// Package config loads tool configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Config holds the settings shared by the CLI commands.
type Config struct {
	// CacheDir is the directory holding the env-org-app.zip archives.
	CacheDir string `yaml:"cache_dir"`
	// InventoryPath is the SQLite inventory database. Empty means the
	// cache directory is scanned instead.
	InventoryPath string `yaml:"inventory_path"`
	// Environments restricts loading; empty means all environments.
	Environments []string `yaml:"environments"`
	// MaxParallel bounds concurrent archive loads.
	MaxParallel int `yaml:"max_parallel"`
	// RepoBaseURL is the source-hosting base for derived repository URLs.
	RepoBaseURL string `yaml:"repo_base_url"`
	// AppDomain is the domain suffix for derived application URLs.
	AppDomain string `yaml:"app_domain"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		CacheDir:    ".appsight-cache",
		MaxParallel: 8,
	}
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.CacheDir == "" {
		return nil, fmt.Errorf("config %s: cache_dir must be set", path)
	}
	if cfg.MaxParallel < 0 {
		return nil, fmt.Errorf("config %s: max_parallel must not be negative", path)
	}
	return cfg, nil
}
