package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "0.0.0.0", cfg.Server.Bind)
	assert.Equal(t, 3030, cfg.Server.Port)
	assert.Equal(t, "tickit-sync.sqlite", cfg.Database.Path)
	assert.Empty(t, cfg.Tokens)
	assert.Equal(t, "0.0.0.0:3030", cfg.Addr())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Server.Port = 4040
	cfg.Database.Path = "/data/sync.sqlite"
	require.NoError(t, cfg.AddToken("laptop", "$2a$10$fakehashfakehashfakehash"))
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 4040, loaded.Server.Port)
	assert.Equal(t, "0.0.0.0", loaded.Server.Bind)
	assert.Equal(t, "/data/sync.sqlite", loaded.Database.Path)
	require.Len(t, loaded.Tokens, 1)
	assert.Equal(t, "laptop", loaded.Tokens[0].Name)
	assert.Equal(t, "$2a$10$fakehashfakehashfakehash", loaded.Tokens[0].TokenHash)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestPartialConfigGetsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, writeFile(t, path, "[server]\nport = 9999\n"))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Bind)
	assert.Equal(t, "tickit-sync.sqlite", cfg.Database.Path)
}
