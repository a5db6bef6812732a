package workflow

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/hublink/internal/progress"
)

// State is the run's position in the connection state machine.
type State int

const (
	StateIdle State = iota
	StateRequestingAccess
	StateProvisioning
	StateConfiguringPrimary
	StateConfiguringSecondary
	StatePersisting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequestingAccess:
		return "requesting-access"
	case StateProvisioning:
		return "provisioning"
	case StateConfiguringPrimary:
		return "configuring-primary"
	case StateConfiguringSecondary:
		return "configuring-secondary"
	case StatePersisting:
		return "persisting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transition can follow.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// EventType distinguishes observer events.
type EventType int

const (
	// EventTransition reports a state change.
	EventTransition EventType = iota
	// EventWarning reports a best-effort step that failed and was skipped.
	EventWarning
)

// Event is delivered to an Observer.
type Event struct {
	Type     EventType
	From     State
	To       State
	Step     progress.Step
	TargetID int64
	Err      error
	Time     time.Time
}

// Observer receives every transition and absorbed failure of a run,
// synchronously and in order.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// OnEvent implements Observer.
func (f ObserverFunc) OnEvent(e Event) {
	if f != nil {
		f(e)
	}
}

// NopObserver discards every event.
var NopObserver Observer = ObserverFunc(nil)
