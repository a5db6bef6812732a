// Package progress turns irregular workflow step events into a smooth,
// monotonic percentage that always finishes at exactly 100.
//
// The Animator owns two ratchets: a ceiling the bar may approach, and the
// highest step the workflow has announced. Frames from a Scheduler move the
// percent toward the ceiling; the visible step is derived from the percent so
// the label never runs ahead of the bar.
package progress

import (
	"math"
	"sync"
	"time"
)

// Options tunes the animation. Zero fields take the DefaultOptions value.
type Options struct {
	FrameInterval  time.Duration // Time between frames
	FinishDuration time.Duration // Length of the final run to 100%
	Speed          float64       // Base velocity in percent per second
	EaseDistance   float64       // Distance below which velocity is damped
	MinEase        float64       // Lower bound of the damping factor
	MaxFrameDelta  time.Duration // Largest dt a single frame may apply
	Reserve        float64       // Highest percent reachable before FinishTo100
	InitialCeiling float64       // Ceiling before any step is announced
	Thresholds     Thresholds
}

// DefaultOptions returns the stock animation settings.
func DefaultOptions() Options {
	return Options{
		FrameInterval:  20 * time.Millisecond,
		FinishDuration: 1400 * time.Millisecond,
		Speed:          22,
		EaseDistance:   22,
		MinEase:        0.22,
		MaxFrameDelta:  50 * time.Millisecond,
		Reserve:        97,
		InitialCeiling: 20,
		Thresholds:     DefaultThresholds(),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.FrameInterval <= 0 {
		o.FrameInterval = d.FrameInterval
	}
	if o.FinishDuration <= 0 {
		o.FinishDuration = d.FinishDuration
	}
	if o.Speed <= 0 {
		o.Speed = d.Speed
	}
	if o.EaseDistance <= 0 {
		o.EaseDistance = d.EaseDistance
	}
	if o.MinEase <= 0 || o.MinEase > 1 {
		o.MinEase = d.MinEase
	}
	if o.MaxFrameDelta <= 0 {
		o.MaxFrameDelta = d.MaxFrameDelta
	}
	if o.Reserve <= 0 || o.Reserve > 100 {
		o.Reserve = d.Reserve
	}
	if o.InitialCeiling < 0 {
		o.InitialCeiling = 0
	}
	if o.Thresholds == nil {
		o.Thresholds = d.Thresholds
	}
	return o
}

// thresholdSlack lets a step light up when the rounded display reaches its
// threshold.
const thresholdSlack = 0.5

type phase int

const (
	phaseIdle phase = iota
	phaseRunning
	phaseFinishing
	phaseStopped
)

// Animator renders workflow progress as a function of time.
type Animator struct {
	mu sync.Mutex
	// emitMu is held while a frame is delivered to emit.
	emitMu sync.Mutex
	opts  Options
	sched Scheduler
	emit  func(State)

	percent float64
	ceiling float64
	maxStep Step
	shown   Step
	labels  map[Step]string

	phase      phase
	gen        uint64
	epoch      uint64
	stopFrames func()
	last       time.Time

	finishStart time.Time
	finishFrom  float64
	onDone      func()
}

// New creates an idle animator. Call Start to begin animating.
func New(sched Scheduler, opts Options) *Animator {
	if sched == nil {
		sched = RealScheduler{}
	}
	a := &Animator{
		opts:  opts.withDefaults(),
		sched: sched,
	}
	a.resetLocked()
	return a
}

// OnFrame registers fn to receive the state after every frame. fn runs outside
// the animator's lock and must not call Stop or Reset, which wait for it.
func (a *Animator) OnFrame(fn func(State)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.emit = fn
}

// Start begins the frame loop. It is a no-op while running or finishing.
func (a *Animator) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.phase == phaseRunning || a.phase == phaseFinishing {
		return
	}
	a.phase = phaseRunning
	a.last = a.sched.Now()
	a.scheduleLocked()
}

// SetStep ratchets the reached step and the ceiling. Neither value is ever
// lowered. Calls outside a running loop are ignored.
func (a *Animator) SetStep(step Step, label string, ceiling float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.phase != phaseRunning {
		return
	}

	s := clampStep(step)
	if s > a.maxStep {
		a.maxStep = s
	}
	if label != "" {
		a.labels[s] = label
	}

	next := a.ceiling
	if !math.IsNaN(ceiling) && !math.IsInf(ceiling, 0) && ceiling > next {
		next = ceiling
	}
	if minC := a.opts.Thresholds.For(s); minC > next {
		next = minC
	}
	a.ceiling = math.Min(next, 100)
}

// FinishTo100 stops the normal loop and animates to exactly 100 over
// FinishDuration with a quartic ease-out. onDone runs once when 100 is reached,
// unless a later Stop, Reset or FinishTo100 cancels this finish first.
func (a *Animator) FinishTo100(onDone func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.haltLocked()
	if a.maxStep < StepFinalize {
		a.maxStep = StepFinalize
	}
	a.labels[StepFinalize] = StepFinalize.Label()
	a.finishFrom = a.percent
	a.finishStart = a.sched.Now()
	a.onDone = onDone
	a.phase = phaseFinishing
	a.scheduleLocked()
}

// Stop halts any active loop or finish. Safe in any state. Once Stop returns
// no further frame reaches the OnFrame callback.
func (a *Animator) Stop() {
	a.mu.Lock()
	a.epoch++
	a.haltLocked()
	a.onDone = nil
	if a.phase != phaseIdle {
		a.phase = phaseStopped
	}
	a.mu.Unlock()

	a.waitEmit()
}

// Reset stops the animator and returns it to its initial state. Like Stop,
// it returns only after any frame being delivered has finished.
func (a *Animator) Reset() {
	a.mu.Lock()
	a.epoch++
	a.haltLocked()
	a.resetLocked()
	a.mu.Unlock()

	a.waitEmit()
}

// waitEmit blocks until a frame in delivery, if any, has returned.
func (a *Animator) waitEmit() {
	a.emitMu.Lock()
	a.emitMu.Unlock()
}

// State returns the current snapshot.
func (a *Animator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stateLocked()
}

// Ceiling returns the effective ceiling.
func (a *Animator) Ceiling() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ceiling
}

// MaxStep returns the highest step announced so far.
func (a *Animator) MaxStep() Step {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.maxStep
}

// Running reports whether a normal loop or finish is active.
func (a *Animator) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase == phaseRunning || a.phase == phaseFinishing
}

func (a *Animator) resetLocked() {
	a.percent = 0
	a.ceiling = a.opts.InitialCeiling
	a.maxStep = StepAccess
	a.shown = StepAccess
	a.labels = make(map[Step]string, len(Steps))
	for _, s := range Steps {
		a.labels[s] = s.Label()
	}
	a.onDone = nil
	a.phase = phaseIdle
}

// scheduleLocked registers a frame callback bound to a fresh generation.
func (a *Animator) scheduleLocked() {
	a.gen++
	gen := a.gen
	a.stopFrames = a.sched.Every(a.opts.FrameInterval, func(now time.Time) {
		a.frame(gen, now)
	})
}

// haltLocked cancels the current frame callback. Bumping the generation makes
// any frame already in flight a no-op.
func (a *Animator) haltLocked() {
	a.gen++
	if a.stopFrames != nil {
		a.stopFrames()
		a.stopFrames = nil
	}
}

func (a *Animator) frame(gen uint64, now time.Time) {
	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		return
	}

	var cb func()
	switch a.phase {
	case phaseRunning:
		a.advanceLocked(now)
	case phaseFinishing:
		if a.advanceFinishLocked(now) {
			a.completeFinishLocked()
			cb = a.takeDoneLocked()
		}
	default:
		a.mu.Unlock()
		return
	}

	st, emit, epoch := a.stateLocked(), a.emit, a.epoch
	a.mu.Unlock()

	if emit != nil {
		a.deliver(epoch, st, emit)
	}
	if cb != nil {
		cb()
	}
}

// deliver hands st to emit unless Stop or Reset ran after st was taken.
func (a *Animator) deliver(epoch uint64, st State, emit func(State)) {
	a.emitMu.Lock()
	defer a.emitMu.Unlock()

	a.mu.Lock()
	current := epoch == a.epoch
	a.mu.Unlock()
	if current {
		emit(st)
	}
}

func (a *Animator) advanceLocked(now time.Time) {
	dt := now.Sub(a.last)
	a.last = now
	if dt < 0 {
		dt = 0
	}
	if dt > a.opts.MaxFrameDelta {
		dt = a.opts.MaxFrameDelta
	}

	target := math.Min(a.ceiling, a.opts.Reserve)
	if a.percent < target {
		distance := target - a.percent
		ease := math.Max(a.opts.MinEase, math.Min(1, distance/a.opts.EaseDistance))
		a.percent += a.opts.Speed * ease * dt.Seconds()
		a.percent = math.Min(a.percent, target)
	}
	a.updateShownLocked()
}

// advanceFinishLocked reports whether the finish has reached 100.
func (a *Animator) advanceFinishLocked(now time.Time) bool {
	t := float64(now.Sub(a.finishStart)) / float64(a.opts.FinishDuration)
	if t >= 1 {
		return true
	}
	if t < 0 {
		t = 0
	}
	eased := 1 - math.Pow(1-t, 4)
	p := a.finishFrom + (100-a.finishFrom)*eased
	if p > a.percent {
		a.percent = p
	}
	a.updateShownLocked()
	return false
}

func (a *Animator) completeFinishLocked() {
	a.percent = 100
	a.updateShownLocked()
	a.haltLocked()
	a.phase = phaseStopped
}

func (a *Animator) takeDoneLocked() func() {
	cb := a.onDone
	a.onDone = nil
	return cb
}

// updateShownLocked picks the largest step not beyond maxStep whose threshold
// the percent has met. Intermediate steps light up in turn as the bar passes
// their thresholds.
func (a *Animator) updateShownLocked() {
	s := StepAccess
	for i := StepPrimaryConfig; i <= a.maxStep; i++ {
		if a.percent >= a.opts.Thresholds.For(i)-thresholdSlack {
			s = i
		}
	}
	if s > a.shown {
		a.shown = s
	}
}

func (a *Animator) stateLocked() State {
	return State{
		Step:    a.shown,
		Label:   a.labels[a.shown],
		Percent: a.percent,
	}
}
