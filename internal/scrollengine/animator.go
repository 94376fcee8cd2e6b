package scrollengine

import (
	"math"
	"sync"
	"time"
)

// Phase is the animator's three-state machine (spec.md §4.3's
// Idle/Animating/Momentum). Guarded by Animator.mu, same discipline the
// teacher's coast.go uses for its own velocity state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAnimating
	PhaseMomentum
)

type axisState struct {
	target         float64
	alreadyScrolled float64
	velocity       float64
}

// FrameAction is what one Advance call decided to emit. Animator computes
// this under its mutex (prepare) and returns; the caller performs any
// cgo/event-posting work afterward, outside the lock (execute) — mirroring
// prepareCoastFrame/executeCoastFrame.
type FrameAction struct {
	Active bool // false: nothing to do this frame, animator is idle

	NeedsBegan       bool // emit scroll-began before anything else
	SendGestureEnded bool // emit scroll-ended (separates gesture from momentum)

	HasDelta      bool // emit a scroll/momentum-scroll event this frame
	DeltaY, DeltaX float64
	Momentum      bool // true: this delta is a momentum tick, false: animating tick
	MomentumBegan bool // true on the first momentum delta of the gesture

	MomentumEnded bool // emit momentum-end then gesture-end, then teardown
	TearDown      bool // animator returned to Idle; caller may stop the frame clock
}

// Animator runs the Idle → Animating → Momentum state machine described in
// spec.md §4.3. The Y axis drives phase transitions; X mirrors it using
// the same eased-time curve so both axes settle together.
type Animator struct {
	mu sync.Mutex

	phase Phase

	y, x axisState

	animStart time.Time
	duration  time.Duration
	lastInput time.Time
	lastFrame time.Time

	needsBegan    bool
	momentumBegan bool

	preset Preset
}

// Feed records one wheel tick's contribution. tickDeltaY/X are the raw
// per-tick deltas (already through the modifier pipeline); preset selects
// the active smooth-scroll level.
func (a *Animator) Feed(tickDeltaY, tickDeltaX float64, now time.Time, preset Preset) {
	a.mu.Lock()
	defer a.mu.Unlock()

	pxY := tickDeltaY * preset.PxPerTick
	pxX := tickDeltaX * preset.PxPerTick

	if a.phase == PhaseIdle || a.phase == PhaseMomentum {
		a.y = axisState{target: pxY}
		a.x = axisState{target: pxX}
		a.needsBegan = true
		a.momentumBegan = false
	} else {
		a.y.target = (a.y.target - a.y.alreadyScrolled) + pxY
		a.y.alreadyScrolled = 0
		a.x.target = (a.x.target - a.x.alreadyScrolled) + pxX
		a.x.alreadyScrolled = 0
	}

	a.animStart = now
	a.duration = preset.Duration
	a.preset = preset
	a.lastInput = now
	a.phase = PhaseAnimating
}

// Running reports whether the animator currently needs frame callbacks.
func (a *Animator) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase != PhaseIdle
}

// Advance computes one frame's worth of state transition and emission
// decisions. Safe to call even when idle (returns a zero FrameAction).
func (a *Animator) Advance(now time.Time) FrameAction {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.phase == PhaseIdle {
		return FrameAction{}
	}

	if a.lastFrame.IsZero() {
		a.lastFrame = now
	}
	dt := now.Sub(a.lastFrame).Seconds()
	a.lastFrame = now

	action := FrameAction{Active: true}
	if a.needsBegan {
		action.NeedsBegan = true
		a.needsBegan = false
	}

	if a.phase == PhaseAnimating {
		elapsed := now.Sub(a.animStart)
		t := elapsed.Seconds() / a.duration.Seconds()

		switch {
		case now.Sub(a.lastInput) > a.preset.InputTimeout:
			a.enterMomentumFromTimeout(t)
			action.SendGestureEnded = true
			return action

		case t >= 1:
			deltaY := a.y.target - a.y.alreadyScrolled
			deltaX := a.x.target - a.x.alreadyScrolled
			a.y.alreadyScrolled = a.y.target
			a.x.alreadyScrolled = a.x.target
			a.enterMomentumFromDuration(deltaY, deltaX, dt)
			action.SendGestureEnded = true
			action.HasDelta = true
			action.DeltaY, action.DeltaX = deltaY, deltaX
			return action

		default:
			eased := 1 - (1-t)*(1-t)
			newY := a.y.target * eased
			newX := a.x.target * eased
			action.HasDelta = true
			action.DeltaY = newY - a.y.alreadyScrolled
			action.DeltaX = newX - a.x.alreadyScrolled
			a.y.alreadyScrolled = newY
			a.x.alreadyScrolled = newX
			return action
		}
	}

	// PhaseMomentum: frame delta from current velocity, then drag.
	action.Momentum = true
	action.HasDelta = true
	action.DeltaY = a.y.velocity * dt
	action.DeltaX = a.x.velocity * dt
	a.y.velocity = applyDrag(a.y.velocity, a.preset.DragCoeff, a.preset.DragExponent, dt)
	a.x.velocity = applyDrag(a.x.velocity, a.preset.DragCoeff, a.preset.DragExponent, dt)

	if math.Abs(a.y.velocity) < a.preset.StopSpeed && math.Abs(a.x.velocity) < a.preset.StopSpeed {
		action.HasDelta = false
		action.MomentumEnded = true
		action.TearDown = true
		a.reset()
		return action
	}

	if !a.momentumBegan {
		action.MomentumBegan = true
		a.momentumBegan = true
	}
	return action
}

// enterMomentumFromTimeout converts the in-flight ease-out curve's
// instantaneous derivative into an exit velocity when input goes idle
// before the animation's base duration elapses. Must be called with mu
// held.
func (a *Animator) enterMomentumFromTimeout(t float64) {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	durSec := a.duration.Seconds()
	capV := 0.7 * a.preset.MaxVelocity

	a.y.velocity = clampAbs(2*(1-t)*(a.y.target/durSec), capV)
	a.x.velocity = clampAbs(2*(1-t)*(a.x.target/durSec), capV)
	a.phase = PhaseMomentum
	a.momentumBegan = false
}

// enterMomentumFromDuration derives exit velocity from the final frame's
// catch-up delta (proportional to last delta, spec.md §4.3) when the
// animation runs to completion uninterrupted. Must be called with mu held.
func (a *Animator) enterMomentumFromDuration(lastDeltaY, lastDeltaX, dt float64) {
	capV := 0.5 * a.preset.MaxVelocity
	if dt <= 0 {
		dt = a.duration.Seconds()
	}

	a.y.velocity = clampAbs(lastDeltaY/dt, capV)
	a.x.velocity = clampAbs(lastDeltaX/dt, capV)
	a.phase = PhaseMomentum
	a.momentumBegan = false
}

// reset returns the animator to Idle. Must be called with mu held.
func (a *Animator) reset() {
	a.phase = PhaseIdle
	a.y = axisState{}
	a.x = axisState{}
	a.needsBegan = false
	a.momentumBegan = false
	a.lastFrame = time.Time{}
}

func applyDrag(v, dragCoeff, dragExponent, dt float64) float64 {
	if v == 0 {
		return 0
	}
	sign := 1.0
	mag := v
	if v < 0 {
		sign = -1
		mag = -v
	}
	mag -= math.Pow(mag, dragExponent) * dragCoeff * dt
	if mag < 0 {
		mag = 0
	}
	return sign * mag
}

func clampAbs(v, max float64) float64 {
	if v > max {
		return max
	}
	if v < -max {
		return -max
	}
	return v
}
