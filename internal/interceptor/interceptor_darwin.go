//go:build darwin

package interceptor

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework ApplicationServices
#include <ApplicationServices/ApplicationServices.h>

extern CGEventRef bridge_session_tap_callback(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *refcon);
extern CGEventRef bridge_hid_tap_callback(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *refcon);

// flowmod_create_tap builds one CGEventTap at the given location, matching
// eventMask, dispatching to callback. location/tapHID mirror the teacher's
// startEventTap, generalized to a caller-chosen mask and location so both
// the session-level (keys, aux buttons, flagsChanged, scroll wheel) and
// HID-level (aux-button drag, raw hardware resolution) taps share one
// constructor.
static CFMachPortRef flowmod_create_tap(int tapHID, CGEventMask mask, CGEventTapCallBack callback) {
	CGEventTapLocation loc = tapHID ? kCGHIDEventTap : kCGSessionEventTap;
	return CGEventTapCreate(loc, kCGHeadInsertEventTap, kCGEventTapOptionDefault, mask, callback, NULL);
}

static CFRunLoopSourceRef flowmod_runloop_source(CFMachPortRef tap) {
	return CFMachPortCreateRunLoopSource(kCFAllocatorDefault, tap, 0);
}
*/
import "C"

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/sendmebits/flowmod/internal/eventsource"
	"github.com/sendmebits/flowmod/internal/model"
	"github.com/sendmebits/flowmod/internal/scrollengine"
)

// tap bundles one CGEventTap's mach port, owning runloop, and shutdown
// signal, mirroring the teacher's eventTapRef/eventTapRunLoop/eventTapDone
// trio but generalized into a reusable value rather than three App fields
// per tap.
type tap struct {
	ref     C.CFMachPortRef
	runLoop C.CFRunLoopRef
	done    chan struct{}
}

// Interceptor owns both CGEventTaps and the Router that decides what to
// do with each event. Only one Interceptor may run at a time per process
// (enforced by the package-level singleton the exported callbacks
// recover), matching the teacher's single-App-instance assumption.
type Interceptor struct {
	router *Router

	mu         sync.Mutex
	sessionTap tap
	hidTap     tap
	running    bool

	keyMu           sync.Mutex
	suppressedCodes map[uint16]bool

	// dragDeltaMode and the fields below support the continuous-gesture
	// handoff gestureengine.Platform's EnableHIDDragTap/DisableHIDDragTap
	// drive: while a continuous DockSwipe is tracking, the pointer is
	// frozen (gestureengine calls FreezePointer), so the session tap's
	// CGEventGetLocation on the middle button's drag events stops moving.
	// The HID tap reads the hardware's raw, unaccelerated delta fields
	// instead and accumulates them onto the last known location so the
	// gesture engine's position-delta math sees one continuous coordinate
	// space across the handoff.
	dragDeltaMode atomic.Bool
	dragMu        sync.Mutex
	dragAccumX    float64
	dragAccumY    float64
}

var (
	activeMu sync.Mutex
	active   *Interceptor
)

// New builds an Interceptor around router. router may be nil at
// construction time and supplied later via SetRouter — gestureengine's
// darwin Platform adapter needs this Interceptor's drag-delta hooks
// before the Router it will route through can be built, since the
// Router in turn depends on the gesture engine. Call Start to begin
// intercepting, after the router has been set.
func New(router *Router) *Interceptor {
	return &Interceptor{router: router, suppressedCodes: make(map[uint16]bool)}
}

// SetRouter assigns or replaces the Router. Must be called before Start;
// not safe to call concurrently with a running tap.
func (in *Interceptor) SetRouter(router *Router) {
	in.router = router
}

// Start creates both event taps and begins routing callbacks to router.
// Each tap runs its CFRunLoop on a dedicated, OS-thread-locked goroutine,
// exactly as the teacher's startEventTap does.
func (in *Interceptor) Start() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.running {
		return nil
	}

	activeMu.Lock()
	active = in
	activeMu.Unlock()

	sessionMask := C.CGEventMask(
		(1 << C.kCGEventKeyDown) |
			(1 << C.kCGEventKeyUp) |
			(1 << C.kCGEventFlagsChanged) |
			(1 << C.kCGEventOtherMouseDown) |
			(1 << C.kCGEventOtherMouseDragged) |
			(1 << C.kCGEventOtherMouseUp) |
			(1 << C.kCGEventScrollWheel))
	if err := startTap(&in.sessionTap, 0, sessionMask, C.CGEventTapCallBack(C.bridge_session_tap_callback), true); err != nil {
		return fmt.Errorf("session event tap: %w", err)
	}

	// The HID tap only ever carries aux-button drag events at raw-hardware
	// resolution, and only while a continuous gesture is tracking (see
	// EnableDragDeltaMode/DisableDragDeltaMode). It is created disabled so
	// it never sees ordinary pointer movement in between gestures.
	hidMask := C.CGEventMask(1 << C.kCGEventOtherMouseDragged)
	// Failing to create it is not fatal (model.ErrTapUnavailable): the
	// session tap keeps running. Without it a continuous gesture receives
	// no drag updates after it begins, because delta mode leaves middle
	// drags to this tap; Enable/DisableDragDeltaMode skip a zero ref.
	_ = startTap(&in.hidTap, 1, hidMask, C.CGEventTapCallBack(C.bridge_hid_tap_callback), false)

	in.running = true
	return nil
}

// Stop tears down both taps and force-stops any in-flight continuous
// gesture so the window server never ends up mid-DockSwipe.
func (in *Interceptor) Stop() {
	in.mu.Lock()
	defer in.mu.Unlock()
	if !in.running {
		return
	}
	in.router.ForceStop(time.Now())
	stopTap(&in.sessionTap)
	stopTap(&in.hidTap)
	in.running = false

	activeMu.Lock()
	if active == in {
		active = nil
	}
	activeMu.Unlock()
}

func startTap(t *tap, hid int, mask C.CGEventMask, callback C.CGEventTapCallBack, enable bool) error {
	ref := C.flowmod_create_tap(C.int(hid), mask, callback)
	if ref == 0 {
		return model.ErrPermissionDenied
	}

	source := C.flowmod_runloop_source(ref)
	if source == 0 {
		C.CFRelease(C.CFTypeRef(ref))
		return fmt.Errorf("failed to create run loop source")
	}

	started := make(chan struct{})
	t.done = make(chan struct{})
	t.ref = ref
	go func() {
		runtime.LockOSThread()
		rl := C.CFRunLoopGetCurrent()
		t.runLoop = rl

		C.CFRunLoopAddSource(rl, source, C.kCFRunLoopCommonModes)
		C.CFRelease(C.CFTypeRef(source))
		close(started)
		C.CFRunLoopRun()
		close(t.done)
	}()
	<-started

	if enable {
		C.CGEventTapEnable(ref, C.bool(true))
	}
	return nil
}

func stopTap(t *tap) {
	if t.runLoop != 0 {
		C.CFRunLoopStop(t.runLoop)
		if t.done != nil {
			<-t.done
		}
		t.runLoop = 0
	}
	if t.ref != 0 {
		C.CGEventTapEnable(t.ref, C.bool(false))
		C.CFRelease(C.CFTypeRef(t.ref))
		t.ref = 0
	}
}

// EnableDragDeltaMode is gestureengine.Platform's EnableHIDDragTap hook:
// it seeds the raw-delta accumulator from the last known middle-button
// location and switches the HID tap on to handle that button's drag
// events for the duration of a continuous gesture. The tap is otherwise
// left disabled so it never sees pointer drags outside a gesture.
func (in *Interceptor) EnableDragDeltaMode() {
	in.dragMu.Lock()
	// dragAccumX/Y already hold the last location-mode position, kept
	// current by setLastMiddleLocation on every normal-path drag event.
	in.dragMu.Unlock()
	in.dragDeltaMode.Store(true)
	in.mu.Lock()
	ref := in.hidTap.ref
	in.mu.Unlock()
	if ref != 0 {
		C.CGEventTapEnable(ref, C.bool(true))
	}
}

// DisableDragDeltaMode is gestureengine.Platform's DisableHIDDragTap hook.
func (in *Interceptor) DisableDragDeltaMode() {
	in.dragDeltaMode.Store(false)
	in.mu.Lock()
	ref := in.hidTap.ref
	in.mu.Unlock()
	if ref != 0 {
		C.CGEventTapEnable(ref, C.bool(false))
	}
}

func (in *Interceptor) setLastMiddleLocation(x, y float64) {
	in.dragMu.Lock()
	in.dragAccumX, in.dragAccumY = x, y
	in.dragMu.Unlock()
}

func (in *Interceptor) accumulateRawDelta(event C.CGEventRef) (float64, float64) {
	dx := float64(C.CGEventGetIntegerValueField(event, C.kCGMouseEventDeltaX))
	dy := float64(C.CGEventGetIntegerValueField(event, C.kCGMouseEventDeltaY))
	in.dragMu.Lock()
	in.dragAccumX += dx
	in.dragAccumY += dy
	x, y := in.dragAccumX, in.dragAccumY
	in.dragMu.Unlock()
	return x, y
}

func (in *Interceptor) markKeySuppressed(keyCode uint16) {
	in.keyMu.Lock()
	in.suppressedCodes[keyCode] = true
	in.keyMu.Unlock()
}

// takeKeySuppressed reports and clears whether keyCode's matching keyDown
// was suppressed, so its keyUp is suppressed too (a remapped key must
// never leak a down without an up, or vice versa).
func (in *Interceptor) takeKeySuppressed(keyCode uint16) bool {
	in.keyMu.Lock()
	defer in.keyMu.Unlock()
	if in.suppressedCodes[keyCode] {
		delete(in.suppressedCodes, keyCode)
		return true
	}
	return false
}

func isSelfTagged(event C.CGEventRef) SelfTaggedEvent {
	tag := int64(C.CGEventGetIntegerValueField(event, C.kCGEventSourceUserData))
	return SelfTaggedEvent{IsSelf: tag == eventsource.SelfTag}
}

func eventLocation(event C.CGEventRef) (float64, float64) {
	loc := C.CGEventGetLocation(event)
	return float64(loc.x), float64(loc.y)
}

func otherMouseButton(event C.CGEventRef) int {
	return int(C.CGEventGetIntegerValueField(event, C.kCGMouseEventButtonNumber))
}

//export bridge_session_tap_callback
func bridge_session_tap_callback(proxy C.CGEventTapProxy, eventType C.CGEventType, event C.CGEventRef, refcon unsafe.Pointer) C.CGEventRef {
	_ = proxy
	_ = refcon

	activeMu.Lock()
	in := active
	activeMu.Unlock()
	if in == nil {
		return event
	}

	self := isSelfTagged(event)
	now := time.Now()

	switch eventType {
	case C.kCGEventTapDisabledByTimeout:
		C.CGEventTapEnable(in.sessionTap.ref, C.bool(true))
		return event
	case C.kCGEventFlagsChanged:
		flags := uint64(C.CGEventGetFlags(event))
		in.router.HandleFlagsChanged(self, decodeModifiers(flags), now)
		return event
	case C.kCGEventKeyDown:
		keyCode := uint16(C.CGEventGetIntegerValueField(event, C.kCGKeyboardEventKeycode))
		flags := uint64(C.CGEventGetFlags(event))
		combo := model.KeyCombo{KeyCode: keyCode, Modifier: decodeModifiers(flags)}
		if _, suppress := in.router.HandleKeyDown(self, combo); suppress {
			in.markKeySuppressed(keyCode)
			return 0
		}
		return event
	case C.kCGEventKeyUp:
		keyCode := uint16(C.CGEventGetIntegerValueField(event, C.kCGKeyboardEventKeycode))
		if in.takeKeySuppressed(keyCode) {
			return 0
		}
		return event
	case C.kCGEventOtherMouseDown:
		button := otherMouseButton(event)
		x, y := eventLocation(event)
		if button == middleButtonNumber {
			in.setLastMiddleLocation(x, y)
		}
		if in.router.HandleOtherMouseDown(self, button, x, y, now) {
			return 0
		}
		return event
	case C.kCGEventOtherMouseDragged:
		button := otherMouseButton(event)
		if button == middleButtonNumber && in.dragDeltaMode.Load() {
			// The HID tap handles this button's drag events at raw-delta
			// resolution while a continuous gesture tracks; let it pass
			// through here unprocessed so the gesture engine never sees
			// the same movement twice.
			return event
		}
		x, y := eventLocation(event)
		if button == middleButtonNumber {
			in.setLastMiddleLocation(x, y)
		}
		if in.router.HandleOtherMouseDrag(self, button, x, y, now) {
			return 0
		}
		return event
	case C.kCGEventOtherMouseUp:
		if in.router.HandleOtherMouseUp(self, otherMouseButton(event), now) {
			return 0
		}
		return event
	case C.kCGEventScrollWheel:
		ev := scrollengine.WheelEvent{
			DeltaAxis1:        float64(C.CGEventGetIntegerValueField(event, C.kCGScrollWheelEventDeltaAxis1)),
			DeltaAxis2:        float64(C.CGEventGetIntegerValueField(event, C.kCGScrollWheelEventDeltaAxis2)),
			PointDeltaAxis1:   float64(C.CGEventGetDoubleValueField(event, C.kCGScrollWheelEventPointDeltaAxis1)),
			PointDeltaAxis2:   float64(C.CGEventGetDoubleValueField(event, C.kCGScrollWheelEventPointDeltaAxis2)),
			FixedPtDeltaAxis1: float64(C.CGEventGetDoubleValueField(event, C.kCGScrollWheelEventFixedPtDeltaAxis1)),
			FixedPtDeltaAxis2: float64(C.CGEventGetDoubleValueField(event, C.kCGScrollWheelEventFixedPtDeltaAxis2)),
			IsContinuous:      C.CGEventGetIntegerValueField(event, C.kCGScrollWheelEventIsContinuous) != 0,
			ScrollPhase:       int32(C.CGEventGetIntegerValueField(event, C.kCGScrollWheelEventScrollPhase)),
			MomentumPhase:     int32(C.CGEventGetIntegerValueField(event, C.kCGScrollWheelEventMomentumPhase)),
			Modifiers:         decodeModifiers(uint64(C.CGEventGetFlags(event))),
		}
		result := in.router.HandleScrollWheel(self, ev, now)
		if result.Suppress {
			return 0
		}
		if result.Mutated != nil {
			m := result.Mutated
			// Write the integer delta fields first; CGEventSetIntegerValueField
			// on the delta axes recomputes the fixed-point/point-delta fields
			// internally, so writing the precise values after guarantees they
			// stick (spec.md §4.3's "non-smooth path" platform quirk).
			C.CGEventSetIntegerValueField(event, C.kCGScrollWheelEventDeltaAxis1, C.int64_t(int64(m.DeltaAxis1)))
			C.CGEventSetIntegerValueField(event, C.kCGScrollWheelEventDeltaAxis2, C.int64_t(int64(m.DeltaAxis2)))
			C.CGEventSetDoubleValueField(event, C.kCGScrollWheelEventPointDeltaAxis1, C.double(m.PointDeltaAxis1))
			C.CGEventSetDoubleValueField(event, C.kCGScrollWheelEventPointDeltaAxis2, C.double(m.PointDeltaAxis2))
			C.CGEventSetDoubleValueField(event, C.kCGScrollWheelEventFixedPtDeltaAxis1, C.double(m.FixedPtDeltaAxis1))
			C.CGEventSetDoubleValueField(event, C.kCGScrollWheelEventFixedPtDeltaAxis2, C.double(m.FixedPtDeltaAxis2))
		}
		return event
	}
	return event
}

//export bridge_hid_tap_callback
func bridge_hid_tap_callback(proxy C.CGEventTapProxy, eventType C.CGEventType, event C.CGEventRef, refcon unsafe.Pointer) C.CGEventRef {
	_ = proxy
	_ = refcon

	activeMu.Lock()
	in := active
	activeMu.Unlock()
	if in == nil {
		return event
	}

	if eventType == C.kCGEventTapDisabledByTimeout {
		if in.dragDeltaMode.Load() {
			C.CGEventTapEnable(in.hidTap.ref, C.bool(true))
		}
		return event
	}

	// The HID tap only ever carries OtherMouseDragged, and only while
	// EnableDragDeltaMode has it switched on; anything else falls through.
	if eventType != C.kCGEventOtherMouseDragged {
		return event
	}
	if !in.dragDeltaMode.Load() || otherMouseButton(event) != middleButtonNumber {
		return event
	}
	self := isSelfTagged(event)
	x, y := in.accumulateRawDelta(event)
	if in.router.HandleOtherMouseDrag(self, middleButtonNumber, x, y, time.Now()) {
		return 0
	}
	return event
}

func decodeModifiers(flags uint64) model.Modifier {
	var m model.Modifier
	if flags&uint64(C.kCGEventFlagMaskControl) != 0 {
		m |= model.ModControl
	}
	if flags&uint64(C.kCGEventFlagMaskAlternate) != 0 {
		m |= model.ModOption
	}
	if flags&uint64(C.kCGEventFlagMaskShift) != 0 {
		m |= model.ModShift
	}
	if flags&uint64(C.kCGEventFlagMaskCommand) != 0 {
		m |= model.ModCommand
	}
	if flags&uint64(C.kCGEventFlagMaskSecondaryFn) != 0 {
		m |= model.ModFunction
	}
	return m
}
