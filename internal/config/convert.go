package config

import (
	"github.com/rileyhilliard/hublink/internal/progress"
	"github.com/rileyhilliard/hublink/internal/registry"
	"github.com/rileyhilliard/hublink/internal/remote/httpapi"
	"github.com/rileyhilliard/hublink/internal/workflow"
)

// StoreOptions returns the registry store settings.
func (c *Config) StoreOptions() registry.StoreOptions {
	return registry.StoreOptions{
		Backend:   c.Registry.Backend,
		Path:      c.Registry.Path,
		RedisAddr: c.Registry.RedisAddr,
		Namespace: "hublink",
	}
}

// ClientOptions returns the API client settings. Logger and HTTP client are
// left for the caller.
func (c *Config) ClientOptions() httpapi.Options {
	return httpapi.Options{
		BaseURL: c.API.BaseURL,
		AppID:   c.API.AppID,
		Version: c.API.Version,
	}
}

// WorkflowOptions returns the scope and timeouts of a run. Guard, observer
// and logger are left for the caller.
func (c *Config) WorkflowOptions() workflow.Options {
	return workflow.Options{
		Scope: c.API.Scope,
		Timeouts: workflow.Timeouts{
			Bridge: c.Timeouts.Bridge,
			API:    c.Timeouts.API,
		},
	}
}

// AnimationOptions returns the progress animation settings.
func (c *Config) AnimationOptions() progress.Options {
	opts := progress.DefaultOptions()
	p := c.Progress
	opts.FrameInterval = p.FrameInterval
	opts.FinishDuration = p.FinishDuration
	opts.Speed = p.Speed
	opts.Reserve = p.Reserve
	opts.InitialCeiling = p.InitialCeiling
	opts.Thresholds = p.Thresholds.toThresholds()
	return opts
}

func (t ThresholdsConfig) toThresholds() progress.Thresholds {
	return progress.Thresholds{
		progress.StepAccess:          0,
		progress.StepPrimaryConfig:   t.PrimaryConfig,
		progress.StepSecondaryConfig: t.SecondaryConfig,
		progress.StepFinalize:        t.Finalize,
	}
}
