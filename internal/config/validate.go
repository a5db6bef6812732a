package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rileyhilliard/hublink/internal/errors"
	"github.com/rileyhilliard/hublink/internal/registry"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but hublink only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade hublink to the latest release.")
	}

	if err := validateAPI(cfg.API); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'api' section in your .hublink.yaml.")
	}

	if err := validateTimeouts(cfg.Timeouts); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'timeouts' section in your .hublink.yaml.")
	}

	if err := validateRegistry(cfg.Registry); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'registry' section in your .hublink.yaml.")
	}

	if err := validateProgress(cfg.Progress); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'progress' section in your .hublink.yaml.")
	}

	if err := validateOutput(cfg.Output); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'output' section in your .hublink.yaml.")
	}

	return nil
}

func validateAPI(api APIConfig) error {
	if api.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	u, err := url.Parse(api.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url %q must be an absolute http or https URL", api.BaseURL)
	}
	if api.AppID < 0 {
		return fmt.Errorf("api.app_id must not be negative, got %d", api.AppID)
	}
	if strings.TrimSpace(api.Scope) == "" {
		return fmt.Errorf("api.scope must name at least one permission")
	}
	return nil
}

func validateTimeouts(t TimeoutsConfig) error {
	if t.Bridge <= 0 {
		return fmt.Errorf("timeouts.bridge must be positive, got %s", t.Bridge)
	}
	if t.API <= 0 {
		return fmt.Errorf("timeouts.api must be positive, got %s", t.API)
	}
	return nil
}

func validateRegistry(r RegistryConfig) error {
	backend := strings.ToLower(r.Backend)
	known := false
	for _, b := range registry.Backends {
		if backend == b {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("registry.backend %q is not one of %s", r.Backend, strings.Join(registry.Backends, ", "))
	}

	switch backend {
	case registry.BackendFile, registry.BackendSQLite:
		if r.Path == "" {
			return fmt.Errorf("registry.path is required for the %s backend", backend)
		}
	case registry.BackendRedis:
		if r.RedisAddr == "" {
			return fmt.Errorf("registry.redis_addr is required for the redis backend")
		}
	}

	if r.Key == "" {
		return fmt.Errorf("registry.key must not be empty")
	}
	if r.MaxRecords < 1 {
		return fmt.Errorf("registry.max_records must be at least 1, got %d", r.MaxRecords)
	}
	return nil
}

func validateProgress(p ProgressConfig) error {
	if p.FrameInterval <= 0 {
		return fmt.Errorf("progress.frame_interval must be positive, got %s", p.FrameInterval)
	}
	if p.FinishDuration <= 0 {
		return fmt.Errorf("progress.finish_duration must be positive, got %s", p.FinishDuration)
	}
	if p.Speed <= 0 {
		return fmt.Errorf("progress.speed must be positive, got %v", p.Speed)
	}
	if p.Reserve <= 0 || p.Reserve > 100 {
		return fmt.Errorf("progress.reserve must be in (0, 100], got %v", p.Reserve)
	}
	if p.InitialCeiling < 0 || p.InitialCeiling >= p.Reserve {
		return fmt.Errorf("progress.initial_ceiling must be in [0, reserve), got %v", p.InitialCeiling)
	}
	if err := p.Thresholds.toThresholds().Validate(); err != nil {
		return fmt.Errorf("progress.thresholds: %w", err)
	}
	return nil
}

// validateOutput checks output configuration values.
func validateOutput(output OutputConfig) error {
	switch output.Color {
	case "", "auto", "always", "never":
		return nil
	default:
		return fmt.Errorf("output.color must be auto, always, or never, got %q", output.Color)
	}
}
