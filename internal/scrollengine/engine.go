// Package scrollengine implements spec.md §4.3: classifying wheel events
// as mouse- or trackpad-origin, running the modifier pipeline (zoom,
// horizontal swap, precision, fast, reversal), and driving the physics
// animator that produces flowmod's smooth-scroll output.
//
// Grounded on the teacher's coast.go prepare/execute split: Animator.Advance
// computes state transitions under the animator's lock and returns a
// FrameAction describing what to post; Engine.onFrame performs the Poster
// calls outside that lock, same discipline as
// prepareCoastFrame/executeCoastFrame.
package scrollengine

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sendmebits/flowmod/internal/model"
	"github.com/sendmebits/flowmod/internal/telemetry"
)

// Poster is the subset of internal/eventsource's API the scroll engine
// needs. Declared locally so engine.go stays portable (no cgo) and
// testable on any platform; poster_darwin.go supplies the real
// implementation.
type Poster interface {
	PostScroll(deltaY, deltaX float64, scrollPhase int32, momentumPhase int32)
	PostMagnify(phase int, magnification float64)
}

// WheelEvent is the subset of a CGEvent's scroll-wheel fields the engine
// reasons about, decoupled from cgo so the pipeline can be unit tested.
// The three delta pairs are independent CGEvent fields, not the same
// number in different units: DeltaAxis1/2 is the integer line/tick count
// the animator scales by PxPerTick, while PointDeltaAxis1/2 and
// FixedPtDeltaAxis1/2 carry the hardware's own pixel and fixed-point
// readings and must be carried through the modifier pipeline separately.
type WheelEvent struct {
	DeltaAxis1, DeltaAxis2               float64 // primary (Y) / secondary (X) integer tick deltas
	PointDeltaAxis1, PointDeltaAxis2     float64
	FixedPtDeltaAxis1, FixedPtDeltaAxis2 float64
	IsContinuous                         bool
	ScrollPhase                          int32
	MomentumPhase                        int32
	Modifiers                            model.Modifier
}

// Result tells the caller what to do with the original event.
type Result struct {
	// Suppress means return nil: the engine has taken over emission
	// (smooth-scroll animation or a zoom gesture) or swallowed the event.
	Suppress bool
	// Mutated, if non-nil, is the event to return in place of the
	// original (modifiers changed deltas but smooth-scroll did not run).
	// Both Suppress==false and Mutated==nil means: return the original
	// event completely unchanged.
	Mutated *MutatedWheelEvent
}

// MutatedWheelEvent carries the modifier-pipeline output for the
// non-smooth path, one value per source field (no broadcasting one
// number across all three). The real platform quirk (spec.md §4.3
// "Non-smooth path"): writing the integer delta field first causes the
// OS to recompute the fixed-point and point-delta fields from it, so
// callers must write DeltaAxis1/2 to the event first and only then
// overwrite PointDelta/FixedPtDelta with these values.
type MutatedWheelEvent struct {
	DeltaAxis1, DeltaAxis2               float64
	PointDeltaAxis1, PointDeltaAxis2     float64
	FixedPtDeltaAxis1, FixedPtDeltaAxis2 float64
}

const zoomDivisor = 50.0
const zoomTrailingTimeout = 300 * time.Millisecond

// gesture phase numbers shared with the DockSwipe/magnify vocabulary
// (spec.md §4.3/§4.4): begin=1, changed=2, ended=4.
const (
	gesturePhaseBegan   = 1
	gesturePhaseChanged = 2
	gesturePhaseEnded   = 4
)

// Scroll/momentum phase numbers mirror internal/eventsource's
// ScrollPhase/MomentumPhase constants. Declared again here as plain int32
// so engine.go (and its tests) stay free of the cgo-only eventsource
// import; poster_darwin.go is the only place these two vocabularies must
// agree, and it does so by construction (eventsource defines the same
// values).
const (
	scrollPhaseNone    int32 = 0
	scrollPhaseBegan   int32 = 1
	scrollPhaseChanged int32 = 2
	scrollPhaseEnded   int32 = 4

	momentumPhaseBegan   int32 = 1
	momentumPhaseChanged int32 = 2
	momentumPhaseEnded   int32 = 3
)

type zoomState struct {
	mu       sync.Mutex
	active   bool
	lastTick time.Time
}

// Engine runs the full mouse-origin wheel pipeline for one interceptor
// instance.
type Engine struct {
	poster   Poster
	settings func() *model.Settings
	clock    FrameClock

	anim Animator
	zoom zoomState

	log        *zap.Logger
	logLimiter *telemetry.RateLimiter
}

// frameLogInterval bounds how often onFrame may emit a debug line: the
// animator runs every display refresh, far above any sane log rate.
const frameLogInterval = 2 * time.Second

// New builds an Engine. settings is consulted on every event (typically
// a settingsbridge.Bridge.Get); clock drives the animator's per-frame
// callbacks and is started lazily on first use. log may be nil, in which
// case frame logging is a no-op.
func New(poster Poster, settings func() *model.Settings, clock FrameClock, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{poster: poster, settings: settings, clock: clock, log: log, logLimiter: telemetry.NewRateLimiter(frameLogInterval, 1)}
	return e
}

// HandleWheel runs the classification + modifier pipeline for one wheel
// event. now should be the event's timestamp (or time.Now() if unknown).
func (e *Engine) HandleWheel(ev WheelEvent, now time.Time) Result {
	if isTrackpadOrigin(ev) {
		return Result{}
	}
	if !isMouseOrigin(ev) {
		return Result{}
	}

	settings := e.settings()
	if settings == nil || !settings.MasterMouseEnabled {
		return Result{}
	}

	if settings.Modifiers.CommandZoom && ev.Modifiers&model.ModCommand != 0 {
		e.handleZoomTick(ev, now)
		return Result{Suppress: true}
	}

	deltaY, deltaX := ev.DeltaAxis1, ev.DeltaAxis2
	pointY, pointX := ev.PointDeltaAxis1, ev.PointDeltaAxis2
	fixedY, fixedX := ev.FixedPtDeltaAxis1, ev.FixedPtDeltaAxis2
	changed := false
	horizontalSwap := false
	optionHeld := false
	controlFast := false

	if settings.Modifiers.ShiftHorizontal && ev.Modifiers&model.ModShift != 0 {
		deltaX, deltaY = deltaY, 0
		pointX, pointY = pointY, 0
		fixedX, fixedY = fixedY, 0
		changed = true
		horizontalSwap = true
	}
	if settings.Modifiers.OptionPrecision && ev.Modifiers&model.ModOption != 0 {
		deltaY *= settings.Modifiers.PrecisionScale
		deltaX *= settings.Modifiers.PrecisionScale
		pointY *= settings.Modifiers.PrecisionScale
		pointX *= settings.Modifiers.PrecisionScale
		fixedY *= settings.Modifiers.PrecisionScale
		fixedX *= settings.Modifiers.PrecisionScale
		changed = true
		optionHeld = true
	}
	if settings.Modifiers.ControlFast && ev.Modifiers&model.ModControl != 0 {
		deltaY *= settings.Modifiers.FastScale
		deltaX *= settings.Modifiers.FastScale
		pointY *= settings.Modifiers.FastScale
		pointX *= settings.Modifiers.FastScale
		fixedY *= settings.Modifiers.FastScale
		fixedX *= settings.Modifiers.FastScale
		changed = true
		controlFast = true
	}
	if settings.ReverseScroll && settings.EffectiveExternalMouse() {
		deltaY, deltaX = -deltaY, -deltaX
		pointY, pointX = -pointY, -pointX
		fixedY, fixedX = -fixedY, -fixedX
		changed = true
	}

	smoothApplies := settings.SmoothScrollLevel != model.SmoothOff &&
		!horizontalSwap && !optionHeld && !controlFast

	if smoothApplies {
		preset := presetFor(settings.SmoothScrollLevel)
		e.anim.Feed(deltaY, deltaX, now, preset)
		e.ensureClockRunning()
		return Result{Suppress: true}
	}

	if !changed {
		return Result{}
	}
	return Result{Mutated: &MutatedWheelEvent{
		DeltaAxis1: deltaY, DeltaAxis2: deltaX,
		PointDeltaAxis1: pointY, PointDeltaAxis2: pointX,
		FixedPtDeltaAxis1: fixedY, FixedPtDeltaAxis2: fixedX,
	}}
}

// isTrackpadOrigin implements spec.md §8's exact invariant: isContinuous
// and at least one phase field set.
func isTrackpadOrigin(ev WheelEvent) bool {
	return ev.IsContinuous && (ev.ScrollPhase != 0 || ev.MomentumPhase != 0)
}

// isMouseOrigin implements spec.md §4.3's classification: both phase
// fields zero.
func isMouseOrigin(ev WheelEvent) bool {
	return ev.ScrollPhase == 0 && ev.MomentumPhase == 0
}

func presetFor(level model.SmoothLevel) Preset {
	if level == model.VerySmooth {
		return presetVerySmooth
	}
	return presetSmooth
}

// handleZoomTick advances the Command+wheel magnification gesture
// (spec.md §4.3 modifier pipeline step 1).
func (e *Engine) handleZoomTick(ev WheelEvent, now time.Time) {
	dominant := ev.DeltaAxis1
	if math.Abs(ev.DeltaAxis2) > math.Abs(ev.DeltaAxis1) {
		dominant = ev.DeltaAxis2
	}
	delta := dominant / zoomDivisor

	e.zoom.mu.Lock()
	justBegan := !e.zoom.active
	e.zoom.active = true
	e.zoom.lastTick = now
	e.zoom.mu.Unlock()

	if justBegan {
		e.poster.PostMagnify(gesturePhaseBegan, 0)
		e.ensureClockRunning()
	}
	e.poster.PostMagnify(gesturePhaseChanged, delta)
}

// CommandReleased ends an in-flight zoom gesture immediately. The
// interceptor calls this on a flagsChanged event that drops Command,
// ahead of the trailing timer.
func (e *Engine) CommandReleased(now time.Time) {
	e.endZoomIfActive()
}

func (e *Engine) endZoomIfActive() bool {
	e.zoom.mu.Lock()
	active := e.zoom.active
	e.zoom.active = false
	e.zoom.mu.Unlock()

	if active {
		e.poster.PostMagnify(gesturePhaseEnded, 0)
	}
	return active
}

func (e *Engine) zoomIdle(now time.Time) bool {
	e.zoom.mu.Lock()
	active := e.zoom.active
	idle := active && now.Sub(e.zoom.lastTick) >= zoomTrailingTimeout
	e.zoom.mu.Unlock()
	return idle
}

func (e *Engine) zoomActive() bool {
	e.zoom.mu.Lock()
	defer e.zoom.mu.Unlock()
	return e.zoom.active
}

// ensureClockRunning starts the frame clock if anything needs frame
// callbacks and it isn't already running. Safe to call repeatedly.
func (e *Engine) ensureClockRunning() {
	if e.clock == nil {
		return
	}
	e.clock.Ensure(e.onFrame)
}

// onFrame is the frame-clock callback: advance the animator, emit any
// scroll events it decided on, and check the zoom trailing timeout. All
// eventsource/Poster calls happen here, outside the animator's lock, per
// the prepare/execute split.
func (e *Engine) onFrame(now time.Time) {
	action := e.anim.Advance(now)

	if action.NeedsBegan {
		e.poster.PostScroll(0, 0, scrollPhaseBegan, 0)
	}
	if action.SendGestureEnded {
		e.poster.PostScroll(0, 0, scrollPhaseEnded, 0)
	}
	if action.HasDelta {
		if action.Momentum {
			mp := momentumPhaseChanged
			if action.MomentumBegan {
				mp = momentumPhaseBegan
			}
			e.poster.PostScroll(action.DeltaY, action.DeltaX, scrollPhaseNone, mp)
		} else {
			e.poster.PostScroll(action.DeltaY, action.DeltaX, scrollPhaseChanged, 0)
		}
		if e.logLimiter.Allow() {
			e.log.Debug("scroll frame",
				zap.Float64("delta_y", action.DeltaY),
				zap.Float64("delta_x", action.DeltaX),
				zap.Bool("momentum", action.Momentum))
		}
	}
	if action.MomentumEnded {
		e.poster.PostScroll(0, 0, scrollPhaseNone, momentumPhaseEnded)
		e.poster.PostScroll(0, 0, scrollPhaseEnded, 0)
	}

	if e.zoomIdle(now) {
		e.endZoomIfActive()
	}

	if e.clock != nil && !e.anim.Running() && !e.zoomActive() {
		e.clock.StopIfIdle()
	}
}
