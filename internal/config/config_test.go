package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "appsight.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
cache_dir: /var/cache/apps
inventory_path: /var/cache/apps/inventory.db
environments:
  - prod
  - tt02
max_parallel: 4
`))
	require.NoError(t, err)
	assert.Equal(t, "/var/cache/apps", cfg.CacheDir)
	assert.Equal(t, "/var/cache/apps/inventory.db", cfg.InventoryPath)
	assert.Equal(t, []string{"prod", "tt02"}, cfg.Environments)
	assert.Equal(t, 4, cfg.MaxParallel)
}

func TestLoadKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `cache_dir: cache`))
	require.NoError(t, err)
	assert.Equal(t, "cache", cfg.CacheDir)
	assert.Equal(t, Default().MaxParallel, cfg.MaxParallel)
	assert.Empty(t, cfg.Environments)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `cache_dir: [`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `cache_dir: ""`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "cache_dir: c\nmax_parallel: -1"))
	assert.Error(t, err)
}
