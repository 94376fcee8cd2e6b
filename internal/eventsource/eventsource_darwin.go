//go:build darwin

// Package eventsource constructs and posts every synthetic event flowmod
// emits, tags each with SelfTag, and posts at the correct tap location.
// Grounded on the teacher's mouse.go dragPoster (CGEventSourceCreate +
// dual integer/double delta-field writes, CGEventPost at kCGHIDEventTap)
// and mj1618-desktop-cli's inputter.go (CGEventCreateKeyboardEvent with a
// private, session-scoped CGEventSource so synthetic key events never
// inherit stale modifier state; CGEventCreateScrollWheelEvent).
package eventsource

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework ApplicationServices -framework AppKit -framework Foundation
#include <CoreGraphics/CoreGraphics.h>
#import <AppKit/AppKit.h>

// Lazily-initialised private-state event source. kCGEventSourceStatePrivate
// keeps synthetic events from inheriting stale modifier flags left over
// from whatever the hardware keyboard last reported.
static CGEventSourceRef flowmod_source(void) {
	static CGEventSourceRef src = NULL;
	if (src == NULL) {
		src = CGEventSourceCreate(kCGEventSourceStatePrivate);
	}
	return src;
}

static void flowmod_tag(CGEventRef event, int64_t tag) {
	CGEventSetIntegerValueField(event, kCGEventSourceUserData, tag);
}

static void flowmod_post_key_combo(CGKeyCode keyCode, CGEventFlags modifiers, int64_t tag, int tapHID) {
	CGEventTapLocation loc = tapHID ? kCGHIDEventTap : kCGSessionEventTap;
	CGEventRef down = CGEventCreateKeyboardEvent(flowmod_source(), keyCode, true);
	CGEventRef up   = CGEventCreateKeyboardEvent(flowmod_source(), keyCode, false);
	if (!down || !up) {
		if (down) CFRelease(down);
		if (up)   CFRelease(up);
		return;
	}
	CGEventSetFlags(down, modifiers);
	CGEventSetFlags(up, modifiers);
	flowmod_tag(down, tag);
	flowmod_tag(up, tag);
	CGEventPost(loc, down);
	CGEventPost(loc, up);
	CFRelease(down);
	CFRelease(up);
}

// flowmod_post_middle_click synthesizes a centered middle-button
// down/up pair at the current cursor location, for button mappings that
// ask for a real middle-click (e.g. EditingMiddleClick) instead of a key
// combo.
static void flowmod_post_middle_click(int64_t tag) {
	CGEventRef probe = CGEventCreate(NULL);
	CGPoint loc = probe ? CGEventGetLocation(probe) : CGPointZero;
	if (probe) CFRelease(probe);

	CGEventRef down = CGEventCreateMouseEvent(flowmod_source(), kCGEventOtherMouseDown, loc, kCGMouseButtonCenter);
	CGEventRef up   = CGEventCreateMouseEvent(flowmod_source(), kCGEventOtherMouseUp, loc, kCGMouseButtonCenter);
	if (!down || !up) {
		if (down) CFRelease(down);
		if (up)   CFRelease(up);
		return;
	}
	flowmod_tag(down, tag);
	flowmod_tag(up, tag);
	CGEventPost(kCGHIDEventTap, down);
	CGEventPost(kCGHIDEventTap, up);
	CFRelease(down);
	CFRelease(up);
}

// flowmod_post_scroll builds a two-axis, pixel-unit, continuous scroll
// event and writes deltas to both the point-delta and fixed-point-delta
// fields (different consumers read one or the other).
static void flowmod_post_scroll(double deltaY, double deltaX, int32_t scrollPhase, int32_t momentumPhase, int64_t tag) {
	CGEventRef event = CGEventCreateScrollWheelEvent2(
		flowmod_source(), kCGScrollEventUnitPixel, 2, (int32_t)deltaY, (int32_t)deltaX, 0);
	if (!event) return;

	CGEventSetIntegerValueField(event, kCGScrollWheelEventIsContinuous, 1);
	CGEventSetDoubleValueField(event, kCGScrollWheelEventPointDeltaAxis1, deltaY);
	CGEventSetDoubleValueField(event, kCGScrollWheelEventPointDeltaAxis2, deltaX);
	CGEventSetDoubleValueField(event, kCGScrollWheelEventFixedPtDeltaAxis1, deltaY);
	CGEventSetDoubleValueField(event, kCGScrollWheelEventFixedPtDeltaAxis2, deltaX);
	CGEventSetIntegerValueField(event, kCGScrollWheelEventScrollPhase, scrollPhase);
	CGEventSetIntegerValueField(event, kCGScrollWheelEventMomentumPhase, momentumPhase);
	flowmod_tag(event, tag);
	CGEventPost(kCGHIDEventTap, event);
	CFRelease(event);
}

// flowmod_gesture_event builds a private NSEventTypeGesture event
// (type=29) carrying subtype+data1+data2 and tags it; caller posts and
// releases. NSEventSubtype and the data fields are the private vocabulary
// the window server's gesture-capture path reads; flowmod only ever
// writes values a real multitouch driver would also write.
static CGEventRef flowmod_gesture_event(short subtype, long data1, long data2, int64_t tag) {
	NSEvent *nsEvent = [NSEvent otherEventWithType:NSEventTypeGesture
	                                       location:NSZeroPoint
	                                  modifierFlags:0
	                                      timestamp:0
	                                   windowNumber:0
	                                        context:nil
	                                        subtype:subtype
	                                          data1:data1
	                                          data2:data2];
	CGEventRef event = nsEvent.CGEvent;
	if (event) {
		flowmod_tag(event, tag);
	}
	return event;
}

static void flowmod_post_gesture_event(short subtype, long data1, long data2, int64_t tag, int tapHID) {
	CGEventRef event = flowmod_gesture_event(subtype, data1, data2, tag);
	if (!event) return;
	CGEventPost(tapHID ? kCGHIDEventTap : kCGSessionEventTap, event);
}

// Private CGEventField IDs used to carry DockSwipe data-event payload
// beyond subtype/data1/data2. As with the subtype values above, the real
// field numbers are reverse-engineered platform internals this
// environment cannot recover; these stand in as named placeholders.
static const CGEventField flowmod_field_typeConstant = 200;
static const CGEventField flowmod_field_originOffset = 201;
static const CGEventField flowmod_field_inverted     = 202;
static const CGEventField flowmod_field_exitSpeed    = 203;
static const CGEventField flowmod_field_hasExitSpeed = 204;

static void flowmod_post_dockswipe_data(short subtype, long dockSwipeType, double typeConstant, double originOffset,
                                         int inverted, int hasExitSpeed, double exitSpeed, int64_t tag) {
	CGEventRef event = flowmod_gesture_event(subtype, dockSwipeType, dockSwipeType, tag);
	if (!event) return;
	CGEventSetDoubleValueField(event, flowmod_field_typeConstant, typeConstant);
	CGEventSetDoubleValueField(event, flowmod_field_originOffset, originOffset);
	CGEventSetIntegerValueField(event, flowmod_field_inverted, inverted ? 1 : 0);
	CGEventSetIntegerValueField(event, flowmod_field_hasExitSpeed, hasExitSpeed ? 1 : 0);
	if (hasExitSpeed) {
		CGEventSetDoubleValueField(event, flowmod_field_exitSpeed, exitSpeed);
	}
	// event.CGEvent is a borrowed reference owned by nsEvent (toll-free
	// bridged, autoreleased); it must not be CFRelease'd here.
	CGEventPost(kCGSessionEventTap, event);
}
*/
import "C"

import (
	"github.com/sendmebits/flowmod/internal/model"
)

// Gesture-event subtype values. NSEventTypeGesture's subtype field is part
// of the platform's private multitouch/gesture vocabulary; spec.md notes
// the exact field IDs are reverse-engineered and unavailable here, so
// these stand in as named placeholders used consistently everywhere a
// bit-exact value would otherwise appear.
const (
	gestureCompanionSubtype = 0
	dockSwipeDataSubtype    = 1
	zoomSubtype             = 2
)

// PostKeyCombo synthesizes a key-down/key-up pair for combo and posts it
// at the HID tap, tagged with SelfTag.
func PostKeyCombo(combo model.KeyCombo) {
	C.flowmod_post_key_combo(
		C.CGKeyCode(combo.KeyCode),
		C.CGEventFlags(modifierFlags(combo.Modifier)),
		C.int64_t(SelfTag),
		1,
	)
}

// PostMiddleClick synthesizes a middle-button down/up pair at the current
// cursor location, tagged with SelfTag.
func PostMiddleClick() {
	C.flowmod_post_middle_click(C.int64_t(SelfTag))
}

// ScrollPhase and MomentumPhase mirror the small closed set of values
// CGScrollWheelEvent's phase fields accept. These are not sequential: they
// are the platform's real kCGScrollPhase/kCGMomentumScrollPhase bit values,
// not an enum flowmod invents, so callers must use the named constants
// rather than assume adjacency.
type ScrollPhase int32

const (
	ScrollPhaseNone      ScrollPhase = 0
	ScrollPhaseBegan     ScrollPhase = 1
	ScrollPhaseChanged   ScrollPhase = 2
	ScrollPhaseEnded     ScrollPhase = 4
	ScrollPhaseCancelled ScrollPhase = 8
)

type MomentumPhase int32

const (
	MomentumPhaseNone    MomentumPhase = 0
	MomentumPhaseBegan   MomentumPhase = 1
	MomentumPhaseChanged MomentumPhase = 2
	MomentumPhaseEnded   MomentumPhase = 3
)

// PostScroll builds a two-axis pixel-unit continuous scroll event and
// posts it at the HID tap, per spec.md §9's postScroll contract.
func PostScroll(deltaY, deltaX float64, scrollPhase ScrollPhase, momentumPhase MomentumPhase) {
	C.flowmod_post_scroll(
		C.double(deltaY), C.double(deltaX),
		C.int32_t(scrollPhase), C.int32_t(momentumPhase),
		C.int64_t(SelfTag),
	)
}

// GesturePairFields carries the per-emission values for a DockSwipe
// companion+data event pair.
type GesturePairFields struct {
	// Phase is the gesture phase (begin=1, changed=2, ended=4,
	// cancelled=8 per spec.md §4.4) carried in the companion event.
	Phase int64
	// DockSwipeType is written into both data1 and data2 of the data
	// event, per spec.md §9's "two redundant fields" requirement.
	DockSwipeType int64
	// TypeConstant is the per-type denormal double (internal/gestureengine
	// owns the actual bit-exact values; this package only transports them).
	TypeConstant float64
	OriginOffset float64
	Inverted     bool
	HasExitSpeed bool
	ExitSpeed    float64
}

// PostGesturePair posts the companion event (subtype=gestureCompanion,
// phase in data1) followed by the data event (subtype=dockSwipeData) at
// the session tap, in that order, per spec.md §9's ordering guarantee.
func PostGesturePair(fields GesturePairFields) {
	C.flowmod_post_gesture_event(C.short(gestureCompanionSubtype), C.long(fields.Phase), 0, C.int64_t(SelfTag), 0)

	inverted := C.int(0)
	if fields.Inverted {
		inverted = 1
	}
	hasExitSpeed := C.int(0)
	if fields.HasExitSpeed {
		hasExitSpeed = 1
	}

	C.flowmod_post_dockswipe_data(
		C.short(dockSwipeDataSubtype),
		C.long(fields.DockSwipeType),
		C.double(fields.TypeConstant),
		C.double(fields.OriginOffset),
		inverted,
		hasExitSpeed,
		C.double(fields.ExitSpeed),
		C.int64_t(SelfTag),
	)
}

// PostMagnify posts a single zoom-subtype gesture event at the HID tap.
func PostMagnify(phase int, magnification float64) {
	// data1 carries phase, data2 the magnification scaled by 1e6 and
	// truncated to an integer field per the private zoom-gesture vocabulary.
	C.flowmod_post_gesture_event(C.short(zoomSubtype), C.long(phase), C.long(int64(magnification*1e6)), C.int64_t(SelfTag), 1)
}

func modifierFlags(m model.Modifier) uint64 {
	var flags uint64
	if m&model.ModControl != 0 {
		flags |= uint64(C.kCGEventFlagMaskControl)
	}
	if m&model.ModOption != 0 {
		flags |= uint64(C.kCGEventFlagMaskAlternate)
	}
	if m&model.ModShift != 0 {
		flags |= uint64(C.kCGEventFlagMaskShift)
	}
	if m&model.ModCommand != 0 {
		flags |= uint64(C.kCGEventFlagMaskCommand)
	}
	if m&model.ModFunction != 0 {
		flags |= uint64(C.kCGEventFlagMaskSecondaryFn)
	}
	return flags
}
