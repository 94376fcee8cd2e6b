//go:build darwin

package gestureengine

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework ApplicationServices
#include <CoreGraphics/CoreGraphics.h>
#import <AppKit/AppKit.h>

// CGSConnectionID / CGSCopyManagedDisplaySpaces are private SkyLight
// APIs with no public header; declaring them ourselves is the same
// category of private-surface usage as the gesture event construction in
// internal/eventsource.
typedef int CGSConnectionID;
extern CGSConnectionID CGSMainConnectionID(void);
extern CFArrayRef CGSCopyManagedDisplaySpaces(CGSConnectionID cid);

// flowmod_space_count sums the "Spaces" array length across every display
// entry CGSCopyManagedDisplaySpaces reports. Falls back to 1 if the
// private call is unavailable or returns nothing usable, so callers never
// divide by (nSpaces-1) with nSpaces==1.
static int flowmod_space_count(void) {
	CGSConnectionID cid = CGSMainConnectionID();
	CFArrayRef displays = CGSCopyManagedDisplaySpaces(cid);
	if (!displays) return 1;

	NSArray *arr = (__bridge NSArray *)displays;
	int total = 0;
	for (NSDictionary *display in arr) {
		NSArray *spaces = display[@"Spaces"];
		total += (int)spaces.count;
	}
	CFRelease(displays);
	if (total < 1) return 1;
	return total;
}

static void flowmod_screen_size(double *outW, double *outH) {
	CGDirectDisplayID main = CGMainDisplayID();
	CGRect bounds = CGDisplayBounds(main);
	*outW = bounds.size.width;
	*outH = bounds.size.height;
}

static void flowmod_freeze_pointer(int freeze) {
	CGAssociateMouseAndMouseCursorPosition(freeze ? false : true);
}
*/
import "C"

// darwinPlatform adapts the HID-level drag tap and pointer-association
// calls to the real CoreGraphics/SkyLight surface. enableDragTap/
// disableDragTap are supplied by the interceptor, which owns the actual
// CGEventTap lifecycle; darwinPlatform only forwards to them so
// gestureengine never imports the interceptor package directly.
type darwinPlatform struct {
	enableDragTap  func()
	disableDragTap func()
}

// NewPlatform builds the darwin Platform adapter. enableDragTap and
// disableDragTap are supplied by the interceptor that owns the HID tap
// used to track continuous-gesture drag samples at raw resolution.
func NewPlatform(enableDragTap, disableDragTap func()) Platform {
	return &darwinPlatform{enableDragTap: enableDragTap, disableDragTap: disableDragTap}
}

func (p *darwinPlatform) EnableHIDDragTap() {
	if p.enableDragTap != nil {
		p.enableDragTap()
	}
}

func (p *darwinPlatform) DisableHIDDragTap() {
	if p.disableDragTap != nil {
		p.disableDragTap()
	}
}

func (p *darwinPlatform) FreezePointer() {
	C.flowmod_freeze_pointer(1)
}

func (p *darwinPlatform) ThawPointer() {
	C.flowmod_freeze_pointer(0)
}

func (p *darwinPlatform) SpaceCount() int {
	return int(C.flowmod_space_count())
}

func (p *darwinPlatform) ScreenSize() (width, height float64) {
	var w, h C.double
	C.flowmod_screen_size(&w, &h)
	return float64(w), float64(h)
}
