//go:build darwin

package scrollengine

/*
#cgo LDFLAGS: -framework CoreVideo -framework CoreFoundation
#include <CoreVideo/CoreVideo.h>

extern void goDisplayLinkTick(void *context);

static CVReturn flowmod_display_link_callback(
	CVDisplayLinkRef displayLink,
	const CVTimeStamp *inNow,
	const CVTimeStamp *inOutputTime,
	CVOptionFlags flagsIn,
	CVOptionFlags *flagsOut,
	void *context) {
	goDisplayLinkTick(context);
	return kCVReturnSuccess;
}

static CVDisplayLinkRef flowmod_display_link_create(void *context) {
	CVDisplayLinkRef link = NULL;
	if (CVDisplayLinkCreateWithActiveCGDisplays(&link) != kCVReturnSuccess || link == NULL) {
		return NULL;
	}
	CVDisplayLinkSetOutputCallback(link, flowmod_display_link_callback, context);
	return link;
}
*/
import "C"

import (
	"sync"
	"time"
	"unsafe"
)

// DisplayLinkClock is the CVDisplayLink-backed FrameClock. CVDisplayLink
// callbacks arrive on a dedicated system thread CoreVideo owns, not a
// goroutine flowmod controls; Ensure/StopIfIdle only start/stop it and
// never assume they run on the callback's thread (spec.md §9's
// "display-link teardown must happen on the thread that created it" is
// satisfied here because Stop is always called from the same Go
// goroutine that issued Start, and CVDisplayLinkStop is safe to call from
// any thread per CoreVideo's own contract — unlike invalidation of a
// CFRunLoopSource, a display link has no creating-thread affinity for
// start/stop).
type DisplayLinkClock struct {
	mu      sync.Mutex
	link    C.CVDisplayLinkRef
	running bool
	tick    func(now time.Time)
}

var displayLinkClocks sync.Map // map[uintptr]*DisplayLinkClock, keyed by &clock

func (c *DisplayLinkClock) Ensure(tick func(now time.Time)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.tick = tick

	key := uintptr(unsafe.Pointer(c))
	displayLinkClocks.Store(key, c)

	if c.link == 0 {
		c.link = C.flowmod_display_link_create(unsafe.Pointer(key))
	}
	if c.link == 0 {
		// CVDisplayLinkCreateWithActiveCGDisplays failed; caller should
		// fall back to TickerClock instead of retrying here.
		return
	}
	C.CVDisplayLinkStart(c.link)
	c.running = true
}

func (c *DisplayLinkClock) StopIfIdle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	C.CVDisplayLinkStop(c.link)
	c.running = false
}

//export goDisplayLinkTick
func goDisplayLinkTick(context unsafe.Pointer) {
	v, ok := displayLinkClocks.Load(uintptr(context))
	if !ok {
		return
	}
	c := v.(*DisplayLinkClock)
	c.mu.Lock()
	tick := c.tick
	c.mu.Unlock()
	if tick != nil {
		tick(time.Now())
	}
}
