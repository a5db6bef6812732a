package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/hublink/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".hublink.yaml"
	// GlobalConfigDir is the directory for global config, relative to home.
	GlobalConfigDir = ".config/hublink"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. HUBLINK_API_BASE_URL.
	EnvPrefix = "HUBLINK"
)

// Load reads config from the specified path. Environment overrides apply on
// top of the file.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'hublink init' to create a config file, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .hublink.yaml in the current directory
// 3. .hublink.yaml in parent directories (stops at git root or home)
// 4. ~/.config/hublink/config.yaml
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	home, _ := os.UserHomeDir()
	dir := cwd
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		if isGitRoot(dir) || (home != "" && dir == home) {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if home != "" {
		global := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(global); err == nil {
			return global, nil
		}
	}

	return "", nil
}

// LoadOrDefault loads the config found for explicit, or the defaults plus
// environment overrides when there is none. The returned path is empty when
// no file was read.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		cfg, err := parseConfig(newViper(), "environment")
		return cfg, "", err
	}

	cfg, err := Load(path)
	return cfg, path, err
}

// DefaultPath is where 'hublink init' writes when no path is given.
func DefaultPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ConfigFileName
	}
	return filepath.Join(cwd, ConfigFileName)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, source string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+source)
	}

	cfg.Registry.Path = ExpandPath(cfg.Registry.Path)
	return cfg, nil
}

// setDefaults registers every key so environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.app_id", d.API.AppID)
	v.SetDefault("api.scope", d.API.Scope)
	v.SetDefault("api.version", d.API.Version)
	v.SetDefault("timeouts.bridge", d.Timeouts.Bridge)
	v.SetDefault("timeouts.api", d.Timeouts.API)
	v.SetDefault("registry.backend", d.Registry.Backend)
	v.SetDefault("registry.path", d.Registry.Path)
	v.SetDefault("registry.key", d.Registry.Key)
	v.SetDefault("registry.redis_addr", d.Registry.RedisAddr)
	v.SetDefault("registry.max_records", d.Registry.MaxRecords)
	v.SetDefault("progress.frame_interval", d.Progress.FrameInterval)
	v.SetDefault("progress.finish_duration", d.Progress.FinishDuration)
	v.SetDefault("progress.speed", d.Progress.Speed)
	v.SetDefault("progress.reserve", d.Progress.Reserve)
	v.SetDefault("progress.initial_ceiling", d.Progress.InitialCeiling)
	v.SetDefault("progress.thresholds.primary_config", d.Progress.Thresholds.PrimaryConfig)
	v.SetDefault("progress.thresholds.secondary_config", d.Progress.Thresholds.SecondaryConfig)
	v.SetDefault("progress.thresholds.finalize", d.Progress.Thresholds.Finalize)
	v.SetDefault("consent.prompt", d.Consent.Prompt)
	v.SetDefault("output.color", d.Output.Color)
}

// isGitRoot checks if a directory is a git repository root.
func isGitRoot(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	if err != nil {
		return false
	}
	return info.IsDir()
}
