// Package workflow runs the four-step connection of a target: acquire a
// scoped credential (provisioning once if needed), apply the primary and
// secondary bot configuration, and persist the connection.
//
// Only one run may be in flight per Workflow. Progress is announced to a
// progress.Sink at every step boundary with a strictly increasing ceiling.
package workflow

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rileyhilliard/hublink/internal/errors"
	"github.com/rileyhilliard/hublink/internal/lock"
	"github.com/rileyhilliard/hublink/internal/logger"
	"github.com/rileyhilliard/hublink/internal/progress"
	"github.com/rileyhilliard/hublink/internal/registry"
	"github.com/rileyhilliard/hublink/internal/remote"
)

// Registry is the persistence the FINALIZE step writes through.
type Registry interface {
	List(ctx context.Context) ([]registry.Record, error)
	Save(ctx context.Context, list []registry.Record) error
}

// Timeouts bound each remote call.
type Timeouts struct {
	Bridge time.Duration // credential, provisioning and registry calls
	API    time.Duration // configuration calls
}

// DefaultTimeouts returns the stock call timeouts.
func DefaultTimeouts() Timeouts {
	return Timeouts{Bridge: 12 * time.Second, API: 14 * time.Second}
}

// Ceilings are the progress ceilings announced at each boundary.
type Ceilings struct {
	Access       float64
	Provisioning float64
	AccessRetry  float64
	Primary      float64
	Secondary    float64
	Finalize     float64
}

// DefaultCeilings returns the stock ceilings.
func DefaultCeilings() Ceilings {
	return Ceilings{
		Access:       30,
		Provisioning: 36,
		AccessRetry:  42,
		Primary:      70,
		Secondary:    90,
		Finalize:     96,
	}
}

// Validate checks the ceilings increase strictly, in announcement order, and
// stay within (0,100].
func (c Ceilings) Validate() error {
	ordered := []struct {
		name  string
		value float64
	}{
		{"access", c.Access},
		{"provisioning", c.Provisioning},
		{"access retry", c.AccessRetry},
		{"primary", c.Primary},
		{"secondary", c.Secondary},
		{"finalize", c.Finalize},
	}
	prev := 0.0
	for _, o := range ordered {
		if o.value <= prev {
			return fmt.Errorf("%s ceiling %v must be greater than %v", o.name, o.value, prev)
		}
		if o.value > 100 {
			return fmt.Errorf("%s ceiling %v exceeds 100", o.name, o.value)
		}
		prev = o.value
	}
	return nil
}

// Options configures a Workflow. Zero fields take defaults.
type Options struct {
	Scope    string
	Timeouts Timeouts
	Ceilings Ceilings
	Guard    *lock.Guard
	Observer Observer
	Logger   logger.Logger
	Clock    func() time.Time
}

// Workflow connects targets. It is safe for concurrent use; concurrent Start
// calls beyond the first fail with ErrAlreadyRunning.
type Workflow struct {
	auth     remote.AuthProvider
	config   remote.ConfigurationProvider
	registry Registry

	scope    string
	timeouts Timeouts
	ceilings Ceilings
	guard    *lock.Guard
	observer Observer
	log      logger.Logger
	now      func() time.Time
}

// New creates a Workflow. Invalid ceilings are replaced by the defaults.
func New(auth remote.AuthProvider, config remote.ConfigurationProvider, reg Registry, opts Options) *Workflow {
	w := &Workflow{
		auth:     auth,
		config:   config,
		registry: reg,
		scope:    opts.Scope,
		timeouts: opts.Timeouts,
		ceilings: opts.Ceilings,
		guard:    opts.Guard,
		observer: opts.Observer,
		log:      opts.Logger,
		now:      opts.Clock,
	}
	if w.log == nil {
		w.log = logger.Noop()
	}
	if w.scope == "" {
		w.scope = remote.DefaultScope
	}
	def := DefaultTimeouts()
	if w.timeouts.Bridge <= 0 {
		w.timeouts.Bridge = def.Bridge
	}
	if w.timeouts.API <= 0 {
		w.timeouts.API = def.API
	}
	if w.ceilings == (Ceilings{}) {
		w.ceilings = DefaultCeilings()
	} else if err := w.ceilings.Validate(); err != nil {
		w.log.Warn("ignoring progress ceilings: %v", err)
		w.ceilings = DefaultCeilings()
	}
	if w.guard == nil {
		w.guard = lock.NewGuard()
	}
	if w.observer == nil {
		w.observer = NopObserver
	}
	if w.now == nil {
		w.now = time.Now
	}
	return w
}

// Running reports whether a run is in flight.
func (w *Workflow) Running() bool {
	return w.guard.Held()
}

// Ceilings returns the ceilings in effect.
func (w *Workflow) Ceilings() Ceilings {
	return w.ceilings
}

// Start runs the workflow for target, announcing progress to sink.
//
// It returns the persisted record on success. Failures are *errors.Error
// with one of the codes ErrPermissionDenied, ErrAlreadyRunning,
// ErrAcquisitionTimeout, ErrAcquisitionFailure or ErrPersistence.
// A call made while another run is in flight fails with ErrAlreadyRunning
// before touching sink, providers or registry.
func (w *Workflow) Start(ctx context.Context, target remote.Target, sink progress.Sink) (*registry.Record, error) {
	session, err := w.guard.TryAcquire(strconv.FormatInt(target.ID, 10))
	if err != nil {
		holder := "another connection"
		if h := w.guard.Holder(); h != nil {
			holder = h.String()
		}
		return nil, errors.WrapWithCode(err, errors.ErrAlreadyRunning,
			"A connection is already in progress",
			fmt.Sprintf("Wait for %s to finish", holder))
	}
	defer session.Release()

	if sink == nil {
		sink = progress.NopSink
	}
	r := &run{
		Workflow: w,
		session:  session,
		sink:     sink,
		target:   target,
		targetID: target.ID,
		state:    StateIdle,
	}
	w.log.Debug("starting connection of %s (%d)", target.DisplayName(), target.ID)

	rec, err := r.execute(ctx)
	if err != nil {
		r.transition(StateFailed)
		w.log.Debug("connection of %d failed: %v", target.ID, errors.CodeOf(err))
		return nil, err
	}
	r.transition(StateDone)
	return rec, nil
}

// run is the state of one Start call. It is only touched by the goroutine
// that called Start.
type run struct {
	*Workflow
	session  *lock.Session
	sink     progress.Sink
	target   remote.Target
	targetID int64
	state    State
}

func (r *run) execute(ctx context.Context) (*registry.Record, error) {
	credential, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.configure(ctx, StateConfiguringPrimary, progress.StepPrimaryConfig,
		"Setting up the chat bot", r.ceilings.Primary, r.config.ApplyPrimaryConfig, credential); err != nil {
		return nil, err
	}
	if err := r.configure(ctx, StateConfiguringSecondary, progress.StepSecondaryConfig,
		"Enabling reliable message delivery", r.ceilings.Secondary, r.config.ApplySecondaryConfig, credential); err != nil {
		return nil, err
	}

	return r.persist(ctx, credential)
}

// acquire runs the ACCESS step: one credential request, plus one provision
// and one retry when the app is not installed for the target.
func (r *run) acquire(ctx context.Context) (string, error) {
	if err := r.checkSession(); err != nil {
		return "", err
	}
	r.transition(StateRequestingAccess)
	r.announce(progress.StepAccess, r.accessLabel(), r.ceilings.Access)

	credential, err := r.credential(ctx)
	if err == nil {
		return credential, nil
	}
	if errors.Is(err, remote.ErrDenied) {
		return "", deniedError(err)
	}
	if !errors.Is(err, remote.ErrNotProvisioned) {
		return "", acquisitionError(err)
	}

	r.transition(StateProvisioning)
	r.announce(progress.StepAccess, fmt.Sprintf("Installing the app in %q", r.target.DisplayName()), r.ceilings.Provisioning)

	pctx, cancel := context.WithTimeout(ctx, r.timeouts.Bridge)
	newID, err := r.auth.Provision(pctx, r.targetID)
	cancel()
	if err != nil {
		if errors.Is(err, remote.ErrDenied) {
			return "", deniedError(err)
		}
		return "", acquisitionError(err)
	}
	if newID > 0 && newID != r.targetID {
		r.log.Info("target %d was provisioned as %d", r.targetID, newID)
		r.targetID = newID
	}

	if err := r.checkSession(); err != nil {
		return "", err
	}
	r.transition(StateRequestingAccess)
	r.announce(progress.StepAccess, r.accessLabel(), r.ceilings.AccessRetry)

	credential, err = r.credential(ctx)
	if err != nil {
		if errors.Is(err, remote.ErrDenied) {
			return "", deniedError(err)
		}
		return "", acquisitionError(err)
	}
	return credential, nil
}

// credential requests a scoped credential. One the registry would refuse to
// store is an acquisition failure.
func (r *run) credential(ctx context.Context) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, r.timeouts.Bridge)
	defer cancel()
	credential, err := r.auth.ScopedCredential(cctx, r.targetID, r.scope)
	if err != nil {
		return "", err
	}
	if len(credential) < registry.MinCredentialLength {
		return "", fmt.Errorf("credential for target %d is %d characters, want at least %d",
			r.targetID, len(credential), registry.MinCredentialLength)
	}
	return credential, nil
}

type configFunc func(ctx context.Context, targetID int64, credential string) error

// configure runs a best-effort configuration step. A failure is logged and
// reported to the observer, and the run carries on.
func (r *run) configure(ctx context.Context, state State, step progress.Step, label string, ceiling float64, apply configFunc, credential string) error {
	if err := r.checkSession(); err != nil {
		return err
	}
	r.transition(state)
	r.announce(step, label, ceiling)

	cctx, cancel := context.WithTimeout(ctx, r.timeouts.API)
	err := apply(cctx, r.targetID, credential)
	cancel()
	if err == nil {
		return nil
	}

	warning := errors.WrapWithCode(err, errors.ErrTransientConfig,
		fmt.Sprintf("%s step did not complete", step),
		"The connection is kept; the setting can be enabled later in the community's settings")
	r.log.Warn("%s for target %d failed, continuing: %v", step, r.targetID, err)
	r.observer.OnEvent(Event{
		Type:     EventWarning,
		From:     r.state,
		To:       r.state,
		Step:     step,
		TargetID: r.targetID,
		Err:      warning,
		Time:     r.now(),
	})
	return nil
}

// persist runs the FINALIZE step.
func (r *run) persist(ctx context.Context, credential string) (*registry.Record, error) {
	if err := r.checkSession(); err != nil {
		return nil, err
	}
	r.transition(StatePersisting)
	r.announce(progress.StepFinalize, "Saving the connection", r.ceilings.Finalize)

	pctx, cancel := context.WithTimeout(ctx, r.timeouts.Bridge)
	defer cancel()

	list, err := r.registry.List(pctx)
	if err != nil {
		return nil, persistenceError(err)
	}

	now := r.now()
	rec := registry.Record{
		TargetID:   r.targetID,
		Credential: credential,
		CreatedAt:  now,
		Enabled:    true,
	}
	if !rec.Valid() {
		return nil, persistenceError(fmt.Errorf("record for target %d cannot be stored", r.targetID))
	}

	if err := r.registry.Save(pctx, registry.Upsert(list, rec, now)); err != nil {
		return nil, persistenceError(err)
	}

	// Save normalizes and caps the list, so read back what was kept.
	stored, err := r.registry.List(pctx)
	if err != nil {
		return nil, persistenceError(err)
	}
	saved, ok := registry.Find(stored, r.targetID)
	if !ok {
		return nil, persistenceError(fmt.Errorf("record for target %d was not kept by the registry", r.targetID))
	}
	return &saved, nil
}

func (r *run) accessLabel() string {
	return fmt.Sprintf("Requesting access for %q", r.target.DisplayName())
}

func (r *run) announce(step progress.Step, label string, ceiling float64) {
	r.sink.SetStep(step, label, ceiling)
}

func (r *run) transition(to State) {
	if r.state == to {
		return
	}
	from := r.state
	r.state = to
	r.log.Debug("target %d: %s -> %s", r.targetID, from, to)
	r.observer.OnEvent(Event{
		Type:     EventTransition,
		From:     from,
		To:       to,
		TargetID: r.targetID,
		Time:     r.now(),
	})
}

// checkSession refuses to continue once the run no longer owns the guard.
func (r *run) checkSession() error {
	if err := r.session.Check(); err != nil {
		return errors.WrapWithCode(err, errors.ErrAlreadyRunning,
			"Connection session is no longer active",
			"Start the connection again")
	}
	return nil
}

func deniedError(err error) error {
	return errors.WrapWithCode(err, errors.ErrPermissionDenied,
		"Access was not granted",
		"Approve the access request to connect the community")
}

func acquisitionError(err error) error {
	if errors.Is(err, remote.ErrTimeout) || errors.IsTimeout(err) {
		return errors.WrapWithCode(err, errors.ErrAcquisitionTimeout,
			"Timed out waiting for access",
			"Check your connection and try again")
	}
	return errors.WrapWithCode(err, errors.ErrAcquisitionFailure,
		"Could not get access to the community",
		"Make sure you administer the community, then try again")
}

func persistenceError(err error) error {
	return errors.WrapWithCode(err, errors.ErrPersistence,
		"Could not save the connection",
		"Check the registry settings in your hublink config")
}
