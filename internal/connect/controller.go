// Package connect ties a connection run together: it checks the registry
// before starting, drives a progress animator for the length of the run, and
// reports the terminal outcome to a Notifier.
package connect

import (
	"context"
	"fmt"
	"time"

	"github.com/rileyhilliard/hublink/internal/errors"
	"github.com/rileyhilliard/hublink/internal/logger"
	"github.com/rileyhilliard/hublink/internal/progress"
	"github.com/rileyhilliard/hublink/internal/registry"
	"github.com/rileyhilliard/hublink/internal/remote"
	"github.com/rileyhilliard/hublink/internal/workflow"
)

// Outcome is the terminal result of a Connect call.
type Outcome struct {
	Target remote.Target
	Record *registry.Record
	Err    error

	// AlreadyConnected is set when the target was found enabled in the
	// registry and no run was started.
	AlreadyConnected bool
}

// Code returns the error classification, or "" on success.
func (o Outcome) Code() errors.Code {
	return errors.CodeOf(o.Err)
}

// Succeeded reports whether the target ended up connected.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// Notifier receives the outcome of every Connect call exactly once.
type Notifier interface {
	Notify(o Outcome)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(o Outcome)

// Notify implements Notifier.
func (f NotifierFunc) Notify(o Outcome) {
	if f != nil {
		f(o)
	}
}

// View renders animator frames. Begin is called when a run takes the
// workflow guard, Render from the scheduler goroutine, and Clear once that
// run is over. A run rejected by the guard never touches the view.
type View interface {
	Begin()
	Render(st progress.State)
	Clear()
}

// Registry is the registry surface the controller reads before a run.
type Registry interface {
	workflow.Registry
	MaxRecords() int
}

// Options configures a Controller.
type Options struct {
	Animation progress.Options
	Scheduler progress.Scheduler
	View      View
	Notifier  Notifier
	Logger    logger.Logger

	// FinishGrace is how long Connect waits past the finish animation for
	// its completion callback before giving up.
	FinishGrace time.Duration
}

// Controller runs connections one at a time through a Workflow.
type Controller struct {
	wf   *workflow.Workflow
	reg  Registry
	opts Options
	log  logger.Logger
}

// New creates a Controller.
func New(wf *workflow.Workflow, reg Registry, opts Options) *Controller {
	if opts.Scheduler == nil {
		opts.Scheduler = progress.RealScheduler{}
	}
	if opts.Notifier == nil {
		opts.Notifier = NotifierFunc(nil)
	}
	if opts.FinishGrace <= 0 {
		opts.FinishGrace = 2 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}
	return &Controller{wf: wf, reg: reg, opts: opts, log: log}
}

// Connect connects target and notifies the outcome. The animator is stopped
// and reset on every path before Connect returns.
func (c *Controller) Connect(ctx context.Context, target remote.Target) Outcome {
	out := c.connect(ctx, target)
	c.opts.Notifier.Notify(out)
	return out
}

func (c *Controller) connect(ctx context.Context, target remote.Target) Outcome {
	out := Outcome{Target: target}

	if c.wf.Running() {
		out.Err = errors.New(errors.ErrAlreadyRunning,
			"A connection is already in progress",
			"Wait for it to finish before starting another one")
		return out
	}

	if err := c.precheck(ctx, &out); err != nil || out.AlreadyConnected {
		out.Err = err
		return out
	}

	anim := progress.New(c.opts.Scheduler, c.opts.Animation)
	if c.opts.View != nil {
		anim.OnFrame(c.opts.View.Render)
	}
	sink := &runSink{anim: anim, view: c.opts.View}
	defer func() {
		anim.Stop()
		anim.Reset()
		if sink.started && c.opts.View != nil {
			c.opts.View.Clear()
		}
	}()

	rec, err := c.wf.Start(ctx, target, sink)
	if err != nil {
		c.log.Debug("connection of %d ended with %s", target.ID, errors.CodeOf(err))
		out.Err = err
		return out
	}
	out.Record = rec
	c.finish(anim)
	return out
}

// runSink starts the animator and opens the view on the first announced
// step. The workflow announces only after it holds the guard.
type runSink struct {
	anim    *progress.Animator
	view    View
	started bool
}

func (s *runSink) SetStep(step progress.Step, label string, ceiling float64) {
	if !s.started {
		s.started = true
		if s.view != nil {
			s.view.Begin()
		}
		s.anim.Start()
	}
	s.anim.SetStep(step, label, ceiling)
}

// precheck reads the registry. It marks out as already connected when the
// target is enabled there, and fails with ErrLimit when no slot is free.
func (c *Controller) precheck(ctx context.Context, out *Outcome) error {
	records, err := c.reg.List(ctx)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrPersistence,
			"Could not read saved connections",
			"Check the registry settings in your config file")
	}

	if rec, ok := registry.Find(records, out.Target.ID); ok && rec.Enabled {
		out.Record = &rec
		out.AlreadyConnected = true
		return nil
	}

	limit := c.reg.MaxRecords()
	if limit > 0 && registry.CountEnabled(records) >= limit {
		return errors.New(errors.ErrLimit,
			fmt.Sprintf("Connection limit reached (%d of %d)", registry.CountEnabled(records), limit),
			"Disconnect a community with 'hublink disconnect <id>' first")
	}
	return nil
}

// finish runs the animator to 100 and waits for it to land.
func (c *Controller) finish(anim *progress.Animator) {
	done := make(chan struct{})
	anim.FinishTo100(func() { close(done) })

	wait := c.opts.Animation.FinishDuration
	if wait <= 0 {
		wait = progress.DefaultOptions().FinishDuration
	}
	timer := time.NewTimer(wait + c.opts.FinishGrace)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		c.log.Warn("progress finish did not complete within %s", wait+c.opts.FinishGrace)
	}
}
