//go:build darwin

package dispatcher

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework AppKit
#import <AppKit/AppKit.h>
#include <stdlib.h>

static char *flowmod_frontmost_bundle_id(void) {
	NSRunningApplication *app = [[NSWorkspace sharedWorkspace] frontmostApplication];
	if (!app || !app.bundleIdentifier) return NULL;
	return strdup(app.bundleIdentifier.UTF8String);
}
*/
import "C"
import "unsafe"

// Frontmost returns the bundle identifier of the frontmost application,
// queried fresh via NSWorkspace each call. The excluded-app check runs
// once per remapped key event, not per frame, so the query cost is
// acceptable (mirrors the teacher's own per-event, not per-frame,
// bookkeeping).
func Frontmost() string {
	cstr := C.flowmod_frontmost_bundle_id()
	if cstr == nil {
		return ""
	}
	defer C.free(unsafe.Pointer(cstr))
	return C.GoString(cstr)
}
