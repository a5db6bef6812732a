package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)
	cfg := DefaultConfig()
	cfg.API.AppID = 7001
	cfg.Registry.Path = "/tmp/hub.json"

	require.NoError(t, Write(path, cfg, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# hublink configuration"))
	assert.Contains(t, string(data), "bridge: 12s")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestWrite_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

	err := Write(path, DefaultConfig(), false)
	assert.ErrorContains(t, err, "already exists")

	require.NoError(t, Write(path, DefaultConfig(), true))
}

func TestSetValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	original := "# keep me\napi:\n  base_url: https://api.example.com # endpoint\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0o644))

	require.NoError(t, SetValue(path, "api.base_url", "https://other.example.com"))
	require.NoError(t, SetValue(path, "Registry.Backend", "sqlite"))
	require.NoError(t, SetValue(path, "progress.thresholds.finalize", "93"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# keep me")
	assert.Contains(t, string(data), "# endpoint")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://other.example.com", cfg.API.BaseURL)
	assert.Equal(t, "sqlite", cfg.Registry.Backend)
	assert.Equal(t, 93.0, cfg.Progress.Thresholds.Finalize)
}

func TestSetValue_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	require.NoError(t, SetValue(path, "output.color", "never"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "never", cfg.Output.Color)
}

func TestSetValue_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("api: plain\n"), 0o644))

	assert.ErrorContains(t, SetValue(path, "api.nope", "x"), "unknown config key")
	assert.ErrorContains(t, SetValue(path, "api.base_url", "x"), "not a mapping")
	assert.Error(t, SetValue(filepath.Join(t.TempDir(), "missing.yaml"), "api.scope", "x"))
}

func TestKeys(t *testing.T) {
	keys := Keys()
	assert.Contains(t, keys, "api.base_url")
	assert.Contains(t, keys, "registry.max_records")
	assert.Contains(t, keys, "progress.thresholds.finalize")
	assert.IsIncreasing(t, keys)
}
