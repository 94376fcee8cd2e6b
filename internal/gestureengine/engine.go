// Package gestureengine implements spec.md §4.4: middle-button (auxiliary
// button 2) drag tracking in both discrete (fire a mapped action once a
// threshold is crossed) and continuous (drive a DockSwipe gesture) modes.
//
// Grounded on the teacher's drag.go/touch.go dragPhase state machine
// (dragPhaseNone/Coasting/Following/PendingDecision), generalized here to
// phaseIdle/Tracking/DiscreteCommitted/Continuous; the
// onMouseDown/handleMouseUp pending-event idiom informs how down/up
// suppression decisions are cached across the gesture's lifetime.
package gestureengine

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sendmebits/flowmod/internal/model"
	"github.com/sendmebits/flowmod/internal/telemetry"
)

const middleButtonNumber = 2

// ActionExecutor runs a resolved Action (spec.md §4.5). Declared locally
// to avoid an import cycle with internal/dispatcher, which implements it.
type ActionExecutor interface {
	Execute(action model.Action)
}

// Poster is the subset of internal/eventsource's DockSwipe API the
// gesture engine needs, kept build-tag-free so engine.go is testable
// without cgo.
type Poster interface {
	PostGesturePair(fields DockSwipeFields)
}

// DockSwipeFields mirrors eventsource.GesturePairFields without requiring
// callers to depend on the cgo-only eventsource package.
type DockSwipeFields struct {
	Phase         int64
	DockSwipeType int64
	TypeConstant  float64
	OriginOffset  float64
	Inverted      bool
	HasExitSpeed  bool
	ExitSpeed     float64
}

// Platform is the set of platform facilities the continuous-gesture path
// needs beyond event posting: enabling the HID drag tap, freezing/
// restoring pointer association, and the two per-gesture cached queries
// (space count, screen size) spec.md §9 says must not be re-queried per
// event.
type Platform interface {
	EnableHIDDragTap()
	DisableHIDDragTap()
	FreezePointer()
	ThawPointer()
	SpaceCount() int
	ScreenSize() (width, height float64)
}

type gesturePhase int

const (
	phaseIdle gesturePhase = iota
	phaseTracking
	phaseDiscreteCommitted
	phaseContinuous
)

// Engine runs one middle-button gesture at a time.
type Engine struct {
	mu sync.Mutex

	settings func() *model.Settings
	executor ActionExecutor
	poster   Poster
	platform Platform

	phase         gesturePhase
	startX, startY float64
	lastX, lastY   float64
	suppressDrags  bool
	hasClickMapping bool
	clickAction    model.Action

	axisLockChecked bool

	dockSwipeType int64
	nSpaces       int
	screenW       float64
	screenH       float64
	cumulative    float64
	lastDelta     float64
	inverted      bool

	retransmits []*time.Timer

	log        *zap.Logger
	logLimiter *telemetry.RateLimiter
}

// gestureLogInterval bounds how often a continuous-gesture frame may log:
// OnMiddleDrag runs on every reported hardware sample.
const gestureLogInterval = 2 * time.Second

// New builds an Engine. settings is typically a settingsbridge.Bridge.Get
// closure; executor dispatches resolved button/direction actions; poster
// and platform are the cgo-backed adapters on darwin. log may be nil, in
// which case continuous-gesture frame logging is a no-op.
func New(settings func() *model.Settings, executor ActionExecutor, poster Poster, platform Platform, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{settings: settings, executor: executor, poster: poster, platform: platform, log: log, logLimiter: telemetry.NewRateLimiter(gestureLogInterval, 1)}
}

// OnMiddleDown records the gesture's origin. Returns whether the down
// event itself should be suppressed: spec.md §4.4 suppresses it unless
// button 2's configured action is pass-through.
func (e *Engine) OnMiddleDown(x, y float64, now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelRetransmitsLocked()

	settings := e.settings()
	e.startX, e.startY = x, y
	e.lastX, e.lastY = x, y
	e.phase = phaseTracking
	e.axisLockChecked = false
	e.cumulative = 0
	e.lastDelta = 0

	if settings == nil {
		e.hasClickMapping = false
		e.suppressDrags = false
		return false
	}

	action, ok := settings.ButtonMappings.Lookup(middleButtonNumber)
	e.hasClickMapping = ok
	e.clickAction = action
	e.suppressDrags = ok && !isPassthrough(action)
	return e.suppressDrags
}

func isPassthrough(a model.Action) bool {
	return a.Kind == model.ActionInert && a.Inert == model.InertPassThrough
}

// OnMiddleDrag processes one drag sample. Returns whether this drag event
// should be suppressed.
func (e *Engine) OnMiddleDrag(x, y float64, now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.phase {
	case phaseIdle:
		return false
	case phaseDiscreteCommitted:
		return true
	case phaseContinuous:
		e.continueContinuousLocked(x, y)
		return true
	}

	settings := e.settings()
	if settings == nil {
		return e.suppressDrags
	}

	dx, dy := x-e.startX, y-e.startY
	threshold := settings.DragThresholdPixels

	if settings.ContinuousGesture && !e.axisLockChecked &&
		(math.Abs(dx) >= threshold/2 || math.Abs(dy) >= threshold/2) {
		e.axisLockChecked = true
		dir := dominantDirection(dx, dy)
		if action, ok := settings.DirectionMapping.Lookup(dir); ok && action.ContinuousCapable() {
			e.beginContinuousLocked(action, x, y, settings)
			return true
		}
	}

	if math.Abs(dx) >= threshold || math.Abs(dy) >= threshold {
		dir := dominantDirection(dx, dy)
		if action, ok := settings.DirectionMapping.Lookup(dir); ok {
			e.executor.Execute(action)
		}
		e.phase = phaseDiscreteCommitted
		return true
	}

	return e.suppressDrags
}

// OnMiddleUp finalizes the gesture. Returns whether the up event should
// be suppressed.
func (e *Engine) OnMiddleUp(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.phase {
	case phaseDiscreteCommitted:
		e.resetLocked()
		return true
	case phaseContinuous:
		e.endContinuousLocked(now, false)
		e.resetLocked()
		return true
	default:
		if e.hasClickMapping {
			e.executor.Execute(e.clickAction)
			suppressed := e.suppressDrags
			e.resetLocked()
			return suppressed
		}
		e.resetLocked()
		return false
	}
}

// OnForceStop cancels an in-flight continuous gesture (spec.md §4.4's
// "forced stop" → cancelled phase), e.g. on daemon shutdown.
func (e *Engine) OnForceStop(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase == phaseContinuous {
		e.endContinuousLocked(now, true)
	}
	e.resetLocked()
}

func dominantDirection(dx, dy float64) model.Direction {
	if math.Abs(dx) >= math.Abs(dy) {
		if dx < 0 {
			return model.DirLeft
		}
		return model.DirRight
	}
	if dy < 0 {
		return model.DirUp
	}
	return model.DirDown
}

func (e *Engine) beginContinuousLocked(action model.Action, x, y float64, settings *model.Settings) {
	dockSwipeType, ok := dockSwipeTypeFor(action.System)
	if !ok {
		return
	}

	e.phase = phaseContinuous
	e.dockSwipeType = dockSwipeType
	e.nSpaces = e.platform.SpaceCount()
	e.screenW, e.screenH = e.platform.ScreenSize()
	e.inverted = settings.ReverseScroll
	e.lastX, e.lastY = x, y

	dx, dy := x-e.startX, y-e.startY
	lock := dx
	if dockSwipeType != dockSwipeHorizontal {
		lock = dy
	}
	initial := pixelsToDockSwipeUnits(dockSwipeType, lock, e.nSpaces, e.screenW, e.screenH)
	e.cumulative = initial
	e.lastDelta = initial

	e.platform.EnableHIDDragTap()
	e.platform.FreezePointer()
	e.emitLocked(phaseBegan, initial, false, 0)
}

func (e *Engine) continueContinuousLocked(x, y float64) {
	dx, dy := x-e.lastX, y-e.lastY
	e.lastX, e.lastY = x, y

	lock := dx
	if e.dockSwipeType != dockSwipeHorizontal {
		lock = dy
	}
	delta := pixelsToDockSwipeUnits(e.dockSwipeType, lock, e.nSpaces, e.screenW, e.screenH)
	e.cumulative += delta
	e.lastDelta = delta
	e.emitLocked(phaseChanged, e.cumulative, false, 0)

	if e.logLimiter.Allow() {
		e.log.Debug("dockswipe frame",
			zap.Float64("cumulative", e.cumulative),
			zap.Float64("delta", delta))
	}
}

func (e *Engine) endContinuousLocked(now time.Time, forced bool) {
	e.platform.DisableHIDDragTap()
	e.platform.ThawPointer()

	phase := phaseEnded
	if forced {
		phase = phaseCancelled
	}
	exitSpeed := e.lastDelta * 100
	e.emitLocked(phase, e.cumulative, true, exitSpeed)

	if !forced {
		e.scheduleRetransmitsLocked(e.cumulative, exitSpeed)
	}
}

// scheduleRetransmitsLocked defends against a known window-server bug
// that drops the terminal DockSwipe event: retransmit the same end event
// at +300ms and +500ms, bounded at two retries, cancelled on next begin
// (spec.md §9 "End-retransmit timers").
func (e *Engine) scheduleRetransmitsLocked(offset, exitSpeed float64) {
	dockSwipeType := e.dockSwipeType
	inverted := e.inverted
	poster := e.poster
	for _, delay := range []time.Duration{300 * time.Millisecond, 500 * time.Millisecond} {
		t := time.AfterFunc(delay, func() {
			poster.PostGesturePair(DockSwipeFields{
				Phase:         phaseEnded,
				DockSwipeType: dockSwipeType,
				TypeConstant:  perTypeConstant[dockSwipeType],
				OriginOffset:  offset,
				Inverted:      inverted,
				HasExitSpeed:  true,
				ExitSpeed:     exitSpeed,
			})
		})
		e.retransmits = append(e.retransmits, t)
	}
}

func (e *Engine) cancelRetransmitsLocked() {
	for _, t := range e.retransmits {
		t.Stop()
	}
	e.retransmits = nil
}

func (e *Engine) emitLocked(phase int64, offset float64, hasExitSpeed bool, exitSpeed float64) {
	e.poster.PostGesturePair(DockSwipeFields{
		Phase:         phase,
		DockSwipeType: e.dockSwipeType,
		TypeConstant:  perTypeConstant[e.dockSwipeType],
		OriginOffset:  offset,
		Inverted:      e.inverted,
		HasExitSpeed:  hasExitSpeed,
		ExitSpeed:     exitSpeed,
	})
}

func (e *Engine) resetLocked() {
	e.phase = phaseIdle
	e.hasClickMapping = false
	e.suppressDrags = false
	e.axisLockChecked = false
	e.cumulative = 0
	e.lastDelta = 0
}
