package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.workers())
	assert.Equal(t, ".", cfg.storeDir())
	assert.Equal(t, "localhost:8080", cfg.listenAddr())
}

func TestLoadConfig_ParsesFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wdlanalyze.toml")
	content := "workers = 8\nstore_dir = \"/var/wdl\"\nlisten_addr = \":9090\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.workers())
	assert.Equal(t, "/var/wdl", cfg.storeDir())
	assert.Equal(t, ":9090", cfg.listenAddr())
}
