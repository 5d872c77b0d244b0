package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_HasSaneDefaults(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "data", cfg.Build.DataDir)
	assert.True(t, cfg.Build.RejectOnMismatch)
	assert.Greater(t, cfg.Build.MaxRecords, 0)

	assert.Greater(t, cfg.Server.MaxPrefixLen, 0)
	assert.True(t, cfg.Server.EnableCache)
	assert.Greater(t, cfg.Server.CacheSize, 0)

	assert.True(t, cfg.CLI.WarnOnRepetitive)
}

func TestSaveAndLoadConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ampidx.toml")

	original := DefaultConfig()
	original.Server.CacheSize = 8192
	original.Build.DataDir = "/srv/amp-data"

	require.NoError(t, SaveConfig(original, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, original.Server.CacheSize, loaded.Server.CacheSize)
	assert.Equal(t, original.Build.DataDir, loaded.Build.DataDir)
}

func TestInitConfig_CreatesDefaultWhenMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ampidx.toml")

	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server.MaxPrefixLen, cfg.Server.MaxPrefixLen)

	_, err = os.Stat(path)
	assert.NoError(t, err, "InitConfig should have written the default config to disk")
}

func TestInitConfig_LoadsExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ampidx.toml")

	cfg := DefaultConfig()
	cfg.Server.CacheSize = 123
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 123, loaded.Server.CacheSize)
}

func TestUpdate_ChangesOnlyGivenFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ampidx.toml")

	cfg := DefaultConfig()
	require.NoError(t, SaveConfig(cfg, path))

	newCacheSize := 999
	require.NoError(t, cfg.Update(path, nil, &newCacheSize, nil))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 999, loaded.Server.CacheSize)
	assert.Equal(t, DefaultConfig().Server.MaxPrefixLen, loaded.Server.MaxPrefixLen)
}

func TestLoadConfigWithPriority_ExplicitPathWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "explicit.toml")

	cfg, usedPath, err := LoadConfigWithPriority(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, path, usedPath)
}

func TestLoadConfigWithPriority_EnvVarFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "env.toml")
	t.Setenv("AMPIDX_CONFIG", path)

	cfg, usedPath, err := LoadConfigWithPriority("")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, path, usedPath)
}
