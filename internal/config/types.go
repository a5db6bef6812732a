package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .hublink.yaml configuration file.
type Config struct {
	Version  int            `yaml:"version" mapstructure:"version"`
	API      APIConfig      `yaml:"api" mapstructure:"api"`
	Timeouts TimeoutsConfig `yaml:"timeouts" mapstructure:"timeouts"`
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`
	Progress ProgressConfig `yaml:"progress" mapstructure:"progress"`
	Consent  ConsentConfig  `yaml:"consent" mapstructure:"consent"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
}

// APIConfig points hublink at the platform API.
type APIConfig struct {
	// BaseURL is the API root, e.g. https://api.example.com.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// AppID identifies the bot application being installed in communities.
	AppID int64 `yaml:"app_id" mapstructure:"app_id"`

	// Scope is the comma separated permission list requested per community.
	Scope string `yaml:"scope" mapstructure:"scope"`

	// Version is sent with every method call as "v".
	Version string `yaml:"version" mapstructure:"version"`
}

// TimeoutsConfig bounds each remote call.
type TimeoutsConfig struct {
	// Bridge covers credential requests, provisioning and registry access.
	Bridge time.Duration `yaml:"bridge" mapstructure:"bridge"`

	// API covers the configuration calls.
	API time.Duration `yaml:"api" mapstructure:"api"`
}

// RegistryConfig selects where saved connections live.
type RegistryConfig struct {
	// Backend is one of file, sqlite, redis or memory.
	Backend string `yaml:"backend" mapstructure:"backend"`

	// Path is the file or sqlite database path. Supports ~ and $VARS.
	Path string `yaml:"path" mapstructure:"path"`

	// Key is the storage key holding the connection list.
	Key string `yaml:"key" mapstructure:"key"`

	// RedisAddr is a comma separated list of redis addresses.
	RedisAddr string `yaml:"redis_addr" mapstructure:"redis_addr"`

	// MaxRecords caps the saved list and the number of enabled connections.
	MaxRecords int `yaml:"max_records" mapstructure:"max_records"`
}

// ProgressConfig tunes the progress animation.
type ProgressConfig struct {
	FrameInterval  time.Duration    `yaml:"frame_interval" mapstructure:"frame_interval"`
	FinishDuration time.Duration    `yaml:"finish_duration" mapstructure:"finish_duration"`
	Speed          float64          `yaml:"speed" mapstructure:"speed"`
	Reserve        float64          `yaml:"reserve" mapstructure:"reserve"`
	InitialCeiling float64          `yaml:"initial_ceiling" mapstructure:"initial_ceiling"`
	Thresholds     ThresholdsConfig `yaml:"thresholds" mapstructure:"thresholds"`
}

// ThresholdsConfig is the percent at which each later step may be shown.
type ThresholdsConfig struct {
	PrimaryConfig   float64 `yaml:"primary_config" mapstructure:"primary_config"`
	SecondaryConfig float64 `yaml:"secondary_config" mapstructure:"secondary_config"`
	Finalize        float64 `yaml:"finalize" mapstructure:"finalize"`
}

// ConsentConfig controls the authorization prompt.
type ConsentConfig struct {
	// Prompt asks before requesting a credential when running on a terminal.
	Prompt bool `yaml:"prompt" mapstructure:"prompt"`
}

// OutputConfig controls terminal output formatting.
type OutputConfig struct {
	// Color mode: "auto", "always", or "never".
	// "auto" disables color when output is piped.
	Color string `yaml:"color" mapstructure:"color"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		API: APIConfig{
			BaseURL: "http://127.0.0.1:8765",
			Scope:   "messages,manage",
			Version: "5.131",
		},
		Timeouts: TimeoutsConfig{
			Bridge: 12 * time.Second,
			API:    14 * time.Second,
		},
		Registry: RegistryConfig{
			Backend:    "file",
			Path:       "~/.config/hublink/connections.json",
			Key:        "hub_connect_data",
			MaxRecords: 2,
		},
		Progress: ProgressConfig{
			FrameInterval:  20 * time.Millisecond,
			FinishDuration: 1400 * time.Millisecond,
			Speed:          22,
			Reserve:        97,
			InitialCeiling: 20,
			Thresholds: ThresholdsConfig{
				PrimaryConfig:   55,
				SecondaryConfig: 78,
				Finalize:        94,
			},
		},
		Consent: ConsentConfig{Prompt: true},
		Output:  OutputConfig{Color: "auto"},
	}
}
