// Package interceptor owns the event-tap callback path (spec.md §4.1):
// it recognizes and passes through flowmod's own synthetic events, then
// routes genuine hardware events to the scroll engine, the gesture
// engine, or the dispatcher.
//
// Grounded on the teacher's eventtap.go/app.go: a package-level singleton
// recovered by the exported C callback, a dedicated runloop goroutine per
// tap, and reEnableEventTap's tap-timeout recovery, generalized here to a
// pair of taps (session-level for keys/buttons/scroll wheel, HID-level
// for raw-hardware drag deltas during a continuous gesture, created
// disabled and enabled only for the gesture's duration) instead of the
// teacher's single left-button tap.
package interceptor

import (
	"time"

	"github.com/sendmebits/flowmod/internal/dispatcher"
	"github.com/sendmebits/flowmod/internal/gestureengine"
	"github.com/sendmebits/flowmod/internal/model"
	"github.com/sendmebits/flowmod/internal/scrollengine"
)

const middleButtonNumber = 2

// Router carries out the non-cgo decision logic for every event the taps
// see, decoupled from cgo so it is unit-testable. interceptor_darwin.go
// is the only file that touches CGEventTap directly; it calls these
// methods from its exported callbacks.
type Router struct {
	settings func() *model.Settings
	scroll   *scrollengine.Engine
	gesture  *gestureengine.Engine
	dispatch *dispatcher.Dispatcher
}

// NewRouter builds a Router wiring the three engines together.
func NewRouter(settings func() *model.Settings, scroll *scrollengine.Engine, gesture *gestureengine.Engine, dispatch *dispatcher.Dispatcher) *Router {
	return &Router{settings: settings, scroll: scroll, gesture: gesture, dispatch: dispatch}
}

// SelfTaggedEvent carries the one field every tap callback must check
// first: whether this event originated from flowmod itself.
type SelfTaggedEvent struct {
	IsSelf bool
}

// HandleScrollWheel routes a wheel event through the scroll engine,
// unless it is self-tagged (flowmod's own synthetic scroll, which must
// never be reprocessed) or the master mouse switch is off.
func (r *Router) HandleScrollWheel(self SelfTaggedEvent, ev scrollengine.WheelEvent, now time.Time) scrollengine.Result {
	if self.IsSelf {
		return scrollengine.Result{}
	}
	return r.scroll.HandleWheel(ev, now)
}

// HandleFlagsChanged notifies the scroll engine's zoom state when Command
// is released, so a zoom gesture ends promptly rather than waiting out
// its trailing timeout.
func (r *Router) HandleFlagsChanged(self SelfTaggedEvent, modifiers model.Modifier, now time.Time) {
	if self.IsSelf {
		return
	}
	if modifiers&model.ModCommand == 0 {
		r.scroll.CommandReleased(now)
	}
}

// HandleOtherMouseDown/Drag/Up route auxiliary-button events. Button 2
// (middle) always goes through the gesture engine, which owns both the
// discrete-commit and continuous-DockSwipe state machines and executes
// button 2's own click mapping internally; buttons 3 and above go
// straight to the dispatcher.
func (r *Router) HandleOtherMouseDown(self SelfTaggedEvent, button int, x, y float64, now time.Time) bool {
	if self.IsSelf {
		return false
	}
	if button == middleButtonNumber {
		return r.gesture.OnMiddleDown(x, y, now)
	}
	return r.dispatch.DispatchButton(button, true)
}

func (r *Router) HandleOtherMouseDrag(self SelfTaggedEvent, button int, x, y float64, now time.Time) bool {
	if self.IsSelf {
		return false
	}
	if button == middleButtonNumber {
		return r.gesture.OnMiddleDrag(x, y, now)
	}
	return false
}

func (r *Router) HandleOtherMouseUp(self SelfTaggedEvent, button int, now time.Time) bool {
	if self.IsSelf {
		return false
	}
	if button == middleButtonNumber {
		return r.gesture.OnMiddleUp(now)
	}
	return r.dispatch.DispatchButton(button, false)
}

// HandleKeyDown routes a keyboard event through the remap pipeline.
func (r *Router) HandleKeyDown(self SelfTaggedEvent, combo model.KeyCombo) (model.Action, bool) {
	if self.IsSelf {
		return model.Action{}, false
	}
	return r.dispatch.DispatchKey(combo)
}

// ForceStop ends any in-flight continuous gesture, emitting a cancelled
// DockSwipe rather than leaving the window server mid-gesture. Called on
// daemon shutdown (Interceptor.Stop).
func (r *Router) ForceStop(now time.Time) {
	r.gesture.OnForceStop(now)
}
