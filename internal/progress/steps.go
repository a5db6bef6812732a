package progress

import (
	"fmt"
	"math"
)

// Step is one of the four ordered phases of a connection run.
type Step int

const (
	StepAccess          Step = 1
	StepPrimaryConfig   Step = 2
	StepSecondaryConfig Step = 3
	StepFinalize        Step = 4
)

// Steps lists every step in execution order.
var Steps = []Step{StepAccess, StepPrimaryConfig, StepSecondaryConfig, StepFinalize}

// String returns a short machine-friendly name.
func (s Step) String() string {
	switch s {
	case StepAccess:
		return "access"
	case StepPrimaryConfig:
		return "primary-config"
	case StepSecondaryConfig:
		return "secondary-config"
	case StepFinalize:
		return "finalize"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Label returns the fixed display label for the step.
func (s Step) Label() string {
	switch s {
	case StepAccess:
		return "Starting…"
	case StepPrimaryConfig:
		return "Connecting chat bot…"
	case StepSecondaryConfig:
		return "Enabling message delivery…"
	case StepFinalize:
		return "Done"
	default:
		return ""
	}
}

// clampStep forces s into the valid 1..4 range.
func clampStep(s Step) Step {
	if s < StepAccess {
		return StepAccess
	}
	if s > StepFinalize {
		return StepFinalize
	}
	return s
}

// Thresholds maps each step to the minimum percent at which it may become the
// visible step. Missing steps default to 0.
type Thresholds map[Step]float64

// DefaultThresholds returns the stock gating percentages.
func DefaultThresholds() Thresholds {
	return Thresholds{
		StepAccess:          0,
		StepPrimaryConfig:   55,
		StepSecondaryConfig: 78,
		StepFinalize:        94,
	}
}

// For returns the threshold of s.
func (t Thresholds) For(s Step) float64 {
	return t[s]
}

// Validate checks every threshold lies in [0,100] and that they never decrease
// in step order.
func (t Thresholds) Validate() error {
	prev := 0.0
	for _, s := range Steps {
		v := t.For(s)
		if math.IsNaN(v) || v < 0 || v > 100 {
			return fmt.Errorf("threshold for %s must be between 0 and 100, got %v", s, v)
		}
		if v < prev {
			return fmt.Errorf("threshold for %s (%v) is below the previous step's (%v)", s, v, prev)
		}
		prev = v
	}
	return nil
}

// State is the snapshot handed to presentation.
type State struct {
	Step    Step
	Label   string
	Percent float64
}

// Rounded returns the percent as a whole number for display.
func (s State) Rounded() int {
	return int(math.Round(s.Percent))
}

// Sink receives step announcements from the workflow.
type Sink interface {
	SetStep(step Step, label string, ceiling float64)
}

// SinkFunc is a function adapter for Sink.
type SinkFunc func(step Step, label string, ceiling float64)

// SetStep implements Sink.
func (f SinkFunc) SetStep(step Step, label string, ceiling float64) {
	if f != nil {
		f(step, label, ceiling)
	}
}

// NopSink discards every announcement.
var NopSink Sink = SinkFunc(nil)
