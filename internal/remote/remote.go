// Package remote defines the platform operations the connection workflow
// depends on: credential acquisition, provisioning, bot configuration and
// target listing. Concrete clients live in subpackages.
package remote

import (
	"context"
	"errors"
	"fmt"
)

const (
	// DefaultScope is the minimal permission set requested for a target.
	DefaultScope = "messages,manage"

	// DefaultAPIVersion is sent with every API method call.
	DefaultAPIVersion = "5.131"
)

// Sentinel errors returned by providers. Callers test them with errors.Is.
var (
	// ErrDenied means the user or platform refused access.
	ErrDenied = errors.New("access denied")

	// ErrNotProvisioned means the app is not installed for the target yet.
	ErrNotProvisioned = errors.New("app not provisioned for target")

	// ErrTimeout means the platform did not answer in time.
	ErrTimeout = errors.New("remote call timed out")
)

// Target is a community the user administers.
type Target struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Photo string `json:"photo,omitempty"`
}

// DisplayName returns Name, falling back to the numeric id.
func (t Target) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return fmt.Sprintf("community %d", t.ID)
}

// AuthProvider issues scoped credentials for a target.
type AuthProvider interface {
	// ScopedCredential returns a credential for targetID limited to scope.
	// It fails with ErrDenied, ErrNotProvisioned, ErrTimeout or another error.
	ScopedCredential(ctx context.Context, targetID int64, scope string) (string, error)

	// Provision installs the app for targetID and returns the id to use from
	// now on, which may differ from the input.
	Provision(ctx context.Context, targetID int64) (int64, error)
}

// ConfigurationProvider applies bot settings to a target.
type ConfigurationProvider interface {
	// ApplyPrimaryConfig enables messages and bot capabilities.
	ApplyPrimaryConfig(ctx context.Context, targetID int64, credential string) error

	// ApplySecondaryConfig enables durable long-poll delivery of message events.
	ApplySecondaryConfig(ctx context.Context, targetID int64, credential string) error
}

// TargetLister lists the targets the current user administers.
type TargetLister interface {
	ListTargets(ctx context.Context) ([]Target, error)
}

// Platform error codes carried in API error envelopes.
const (
	CodeAuthFailed     = 5
	CodeTooManyCalls   = 6
	CodeAccessDenied   = 15
	CodeUserCancelled  = 24
	CodeNotProvisioned = 203
)

// APIError is an error envelope returned by the platform.
type APIError struct {
	Method  string `json:"-"`
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

func (e *APIError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: api error %d: %s", e.Method, e.Code, e.Message)
}

// Unwrap maps well-known codes onto the package sentinels.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case CodeAccessDenied, CodeUserCancelled:
		return ErrDenied
	case CodeNotProvisioned:
		return ErrNotProvisioned
	default:
		return nil
	}
}
