// Package testing provides test doubles for the remote package.
package testing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rileyhilliard/hublink/internal/remote"
)

// Method names recorded in Calls.
const (
	MethodCredential = "ScopedCredential"
	MethodProvision  = "Provision"
	MethodPrimary    = "ApplyPrimaryConfig"
	MethodSecondary  = "ApplySecondaryConfig"
	MethodList       = "ListTargets"
)

// Call records one provider call.
type Call struct {
	Method   string
	TargetID int64
	Scope    string
}

// CredentialResult is one scripted ScopedCredential answer.
type CredentialResult struct {
	Credential string
	Err        error
}

// FakeProvider implements every remote interface with scripted results.
// It succeeds by default.
type FakeProvider struct {
	mu sync.Mutex

	// Configuration
	Credential        string             // Returned once CredentialResults is exhausted
	CredentialResults []CredentialResult // Consumed in order
	ProvisionID       int64              // 0 keeps the input id
	ProvisionErr      error
	PrimaryErr        error
	SecondaryErr      error
	Targets           []remote.Target
	ListErrs          []error // Consumed in order by ListTargets
	Delay             time.Duration

	// OnCall runs before each call returns, outside the fake's lock.
	OnCall func(method string)

	// Call tracking
	Calls []Call
}

// NewFakeProvider creates a provider that succeeds by default.
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{Credential: "fake-credential-token"}
}

// QueueCredential appends scripted ScopedCredential results.
func (f *FakeProvider) QueueCredential(results ...CredentialResult) *FakeProvider {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CredentialResults = append(f.CredentialResults, results...)
	return f
}

// FailCredential makes the next n ScopedCredential calls fail with err.
func (f *FakeProvider) FailCredential(err error, n int) *FakeProvider {
	for i := 0; i < n; i++ {
		f.QueueCredential(CredentialResult{Err: err})
	}
	return f
}

func (f *FakeProvider) record(ctx context.Context, c Call) error {
	f.mu.Lock()
	f.Calls = append(f.Calls, c)
	delay, hook := f.Delay, f.OnCall
	f.mu.Unlock()

	if delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if hook != nil {
		hook(c.Method)
	}
	return nil
}

// ScopedCredential implements remote.AuthProvider.
func (f *FakeProvider) ScopedCredential(ctx context.Context, targetID int64, scope string) (string, error) {
	if err := f.record(ctx, Call{Method: MethodCredential, TargetID: targetID, Scope: scope}); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.CredentialResults) > 0 {
		r := f.CredentialResults[0]
		f.CredentialResults = f.CredentialResults[1:]
		return r.Credential, r.Err
	}
	return f.Credential, nil
}

// Provision implements remote.AuthProvider.
func (f *FakeProvider) Provision(ctx context.Context, targetID int64) (int64, error) {
	if err := f.record(ctx, Call{Method: MethodProvision, TargetID: targetID}); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ProvisionErr != nil {
		return 0, f.ProvisionErr
	}
	if f.ProvisionID != 0 {
		return f.ProvisionID, nil
	}
	return targetID, nil
}

// ApplyPrimaryConfig implements remote.ConfigurationProvider.
func (f *FakeProvider) ApplyPrimaryConfig(ctx context.Context, targetID int64, _ string) error {
	if err := f.record(ctx, Call{Method: MethodPrimary, TargetID: targetID}); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.PrimaryErr
}

// ApplySecondaryConfig implements remote.ConfigurationProvider.
func (f *FakeProvider) ApplySecondaryConfig(ctx context.Context, targetID int64, _ string) error {
	if err := f.record(ctx, Call{Method: MethodSecondary, TargetID: targetID}); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.SecondaryErr
}

// ListTargets implements remote.TargetLister.
func (f *FakeProvider) ListTargets(ctx context.Context) ([]remote.Target, error) {
	if err := f.record(ctx, Call{Method: MethodList}); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.ListErrs) > 0 {
		err := f.ListErrs[0]
		f.ListErrs = f.ListErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	out := make([]remote.Target, len(f.Targets))
	copy(out, f.Targets)
	return out, nil
}

// Count returns how many times method was called.
func (f *FakeProvider) Count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Methods returns the called method names in order.
func (f *FakeProvider) Methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		out[i] = c.Method
	}
	return out
}

// LastCall returns the most recent call, or nil if none.
func (f *FakeProvider) LastCall() *Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Calls) == 0 {
		return nil
	}
	c := f.Calls[len(f.Calls)-1]
	return &c
}

// Reset clears recorded calls.
func (f *FakeProvider) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = nil
}

// String summarizes the calls for test failure messages.
func (f *FakeProvider) String() string {
	return fmt.Sprintf("FakeProvider%v", f.Methods())
}

var (
	_ remote.AuthProvider          = (*FakeProvider)(nil)
	_ remote.ConfigurationProvider = (*FakeProvider)(nil)
	_ remote.TargetLister          = (*FakeProvider)(nil)
)
