package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rileyhilliard/hublink/internal/errors"
	"github.com/rileyhilliard/hublink/internal/progress"
	"github.com/rileyhilliard/hublink/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.Equal(t, "messages,manage", cfg.API.Scope)
	assert.Equal(t, "5.131", cfg.API.Version)
	assert.Equal(t, 12*time.Second, cfg.Timeouts.Bridge)
	assert.Equal(t, 14*time.Second, cfg.Timeouts.API)
	assert.Equal(t, "file", cfg.Registry.Backend)
	assert.Equal(t, "hub_connect_data", cfg.Registry.Key)
	assert.Equal(t, 2, cfg.Registry.MaxRecords)
	assert.Equal(t, 1400*time.Millisecond, cfg.Progress.FinishDuration)
	assert.True(t, cfg.Consent.Prompt)
	assert.Equal(t, "auto", cfg.Output.Color)

	require.NoError(t, Validate(cfg))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)

	content := `
version: 1
api:
  base_url: https://api.example.com
  app_id: 7001
timeouts:
  bridge: 5s
registry:
  backend: sqlite
  path: ${HUBLINK_TEST_DIR}/hub.db
  max_records: 3
progress:
  finish_duration: 900ms
  thresholds:
    secondary_config: 80
consent:
  prompt: false
output:
  color: never
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))
	t.Setenv("HUBLINK_TEST_DIR", dir)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
	assert.Equal(t, int64(7001), cfg.API.AppID)
	assert.Equal(t, "messages,manage", cfg.API.Scope, "unset keys keep defaults")
	assert.Equal(t, 5*time.Second, cfg.Timeouts.Bridge)
	assert.Equal(t, 14*time.Second, cfg.Timeouts.API)
	assert.Equal(t, "sqlite", cfg.Registry.Backend)
	assert.Equal(t, filepath.Join(dir, "hub.db"), cfg.Registry.Path)
	assert.Equal(t, 3, cfg.Registry.MaxRecords)
	assert.Equal(t, 900*time.Millisecond, cfg.Progress.FinishDuration)
	assert.Equal(t, 80.0, cfg.Progress.Thresholds.SecondaryConfig)
	assert.Equal(t, 55.0, cfg.Progress.Thresholds.PrimaryConfig)
	assert.False(t, cfg.Consent.Prompt)
	assert.Equal(t, "never", cfg.Output.Color)
	require.NoError(t, Validate(cfg))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("registry:\n  backend: file\n"), 0o644))

	t.Setenv("HUBLINK_REGISTRY_BACKEND", "memory")
	t.Setenv("HUBLINK_API_APP_ID", "42")

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Registry.Backend)
	assert.Equal(t, int64(42), cfg.API.AppID)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoadInvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(configPath, []byte("api: [unclosed"), 0o644))

	_, err := Load(configPath)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestFind(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.yaml")
		require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

		found, err := Find(path)
		require.NoError(t, err)
		assert.Equal(t, path, found)
	})

	t.Run("explicit path missing", func(t *testing.T) {
		_, err := Find(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
	})

	t.Run("parent directory up to git root", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("version: 1\n"), 0o644))
		nested := filepath.Join(root, "a", "b")
		require.NoError(t, os.MkdirAll(nested, 0o755))
		t.Chdir(nested)

		found, err := Find("")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, ConfigFileName), found)
	})

	t.Run("stops at git root", func(t *testing.T) {
		outer := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(outer, ConfigFileName), []byte("version: 1\n"), 0o644))
		repo := filepath.Join(outer, "repo")
		require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0o755))
		t.Chdir(repo)
		t.Setenv("HOME", t.TempDir())

		found, err := Find("")
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("global config", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		global := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		require.NoError(t, os.MkdirAll(filepath.Dir(global), 0o755))
		require.NoError(t, os.WriteFile(global, []byte("version: 1\n"), 0o644))

		work := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(work, ".git"), 0o755))
		t.Chdir(work)

		found, err := Find("")
		require.NoError(t, err)
		assert.Equal(t, global, found)
	})
}

func TestLoadOrDefault(t *testing.T) {
	work := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(work, ".git"), 0o755))
	t.Chdir(work)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("HUBLINK_OUTPUT_COLOR", "always")

	cfg, path, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, "always", cfg.Output.Color)
	assert.Equal(t, 2, cfg.Registry.MaxRecords)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("HUBLINK_X", "/data")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandTilde("~"))
	assert.Equal(t, filepath.Join(home, "a/b"), ExpandPath("~/a/b"))
	assert.Equal(t, "/data/hub.db", ExpandPath("$HUBLINK_X/hub.db"))
	assert.Equal(t, "/data/hub.db", ExpandPath("${HUBLINK_X}/hub.db"))
	assert.Equal(t, "~user/x", ExpandTilde("~user/x"))
}

func TestConversions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Registry.Backend = "redis"
	cfg.Registry.RedisAddr = "10.0.0.1:6379"
	cfg.API.AppID = 9

	store := cfg.StoreOptions()
	assert.Equal(t, registry.StoreOptions{Backend: "redis", Path: cfg.Registry.Path, RedisAddr: "10.0.0.1:6379", Namespace: "hublink"}, store)

	client := cfg.ClientOptions()
	assert.Equal(t, int64(9), client.AppID)
	assert.Equal(t, "5.131", client.Version)

	wf := cfg.WorkflowOptions()
	assert.Equal(t, "messages,manage", wf.Scope)
	assert.Equal(t, 12*time.Second, wf.Timeouts.Bridge)

	anim := cfg.AnimationOptions()
	assert.Equal(t, progress.DefaultOptions(), anim)
}
