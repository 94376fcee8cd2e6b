//go:build darwin

package devicereg

/*
#cgo LDFLAGS: -framework IOKit -framework CoreFoundation
#include <IOKit/hid/IOHIDManager.h>
#include <IOKit/hid/IOHIDKeys.h>
#include <CoreFoundation/CoreFoundation.h>

static IOHIDManagerRef flowmod_hid_manager_create(void) {
	return IOHIDManagerCreate(kCFAllocatorDefault, kIOHIDOptionsTypeNone);
}

static CFMutableDictionaryRef flowmod_usage_matcher(int usagePage, int usage) {
	CFMutableDictionaryRef dict = CFDictionaryCreateMutable(kCFAllocatorDefault, 0,
		&kCFTypeDictionaryKeyCallBacks, &kCFTypeDictionaryValueCallBacks);
	CFNumberRef pageNum = CFNumberCreate(kCFAllocatorDefault, kCFNumberIntType, &usagePage);
	CFNumberRef usageNum = CFNumberCreate(kCFAllocatorDefault, kCFNumberIntType, &usage);
	CFDictionarySetValue(dict, CFSTR(kIOHIDDeviceUsagePageKey), pageNum);
	CFDictionarySetValue(dict, CFSTR(kIOHIDDeviceUsageKey), usageNum);
	CFRelease(pageNum);
	CFRelease(usageNum);
	return dict;
}

extern void goHIDDeviceMatched(void *context, IOReturn result, void *sender, IOHIDDeviceRef device);
extern void goHIDDeviceRemoved(void *context, IOReturn result, void *sender, IOHIDDeviceRef device);

static void flowmod_hid_set_callbacks(IOHIDManagerRef mgr) {
	IOHIDManagerRegisterDeviceMatchingCallback(mgr, (IOHIDDeviceCallback)goHIDDeviceMatched, NULL);
	IOHIDManagerRegisterDeviceRemovalCallback(mgr, (IOHIDDeviceCallback)goHIDDeviceRemoved, NULL);
}

static int flowmod_hid_int_property(IOHIDDeviceRef device, CFStringRef key) {
	CFTypeRef ref = IOHIDDeviceGetProperty(device, key);
	if (ref == NULL || CFGetTypeID(ref) != CFNumberGetTypeID()) {
		return -1;
	}
	int value = 0;
	CFNumberGetValue((CFNumberRef)ref, kCFNumberIntType, &value);
	return value;
}

static const char *flowmod_hid_string_property(IOHIDDeviceRef device, CFStringRef key) {
	CFTypeRef ref = IOHIDDeviceGetProperty(device, key);
	if (ref == NULL || CFGetTypeID(ref) != CFStringGetTypeID()) {
		return NULL;
	}
	CFStringRef str = (CFStringRef)ref;
	CFIndex len = CFStringGetLength(str);
	CFIndex maxSize = CFStringGetMaximumSizeForEncoding(len, kCFStringEncodingUTF8) + 1;
	char *buf = (char *)malloc(maxSize);
	if (!CFStringGetCString(str, buf, maxSize, kCFStringEncodingUTF8)) {
		free(buf);
		return NULL;
	}
	return buf;
}
*/
import "C"

import (
	"fmt"
	"runtime"
	"sync"
	"time"
	"unsafe"
)

// Registry tracks attached mouse and keyboard HID devices, grounded on the
// teacher's DeviceNotifier/TouchDevices pairing: a dedicated OS-locked
// CFRunLoop goroutine owns the IOHIDManager, and a mutex-guarded device set
// is swapped on every match/removal callback. A 30s tick re-checks the
// presence booleans against the last notification; it does not
// re-enumerate devices, so it does not detect an add or removal whose
// callback never arrived.
type Registry struct {
	mu       sync.Mutex
	devices  map[uintptr]Device
	onChange func(externalMouse, externalKeyboard bool)

	lastMouse, lastKeyboard bool
	presenceKnown           bool

	manager C.IOHIDManagerRef
	runLoop C.CFRunLoopRef
	done    chan struct{}
	stop    chan struct{}
}

const safetyNetInterval = 30 * time.Second

var registries sync.Map // map[uintptr]*Registry, keyed by manager pointer

// Start creates the IOHIDManager, matches generic-desktop mouse and
// keyboard usages, and begins hot-plug notification. onChange is invoked
// (from the registry's internal goroutine) whenever the external-presence
// booleans change.
func Start(onChange func(externalMouse, externalKeyboard bool)) (*Registry, error) {
	r := &Registry{
		devices:  make(map[uintptr]Device),
		onChange: onChange,
		done:     make(chan struct{}),
		stop:     make(chan struct{}),
	}

	started := make(chan error, 1)
	go func() {
		runtime.LockOSThread()

		mgr := C.flowmod_hid_manager_create()
		if mgr == 0 {
			started <- fmt.Errorf("IOHIDManagerCreate failed")
			close(r.done)
			return
		}

		mouseMatch := C.flowmod_usage_matcher(1, 2)  // kHIDPage_GenericDesktop, kHIDUsage_GD_Mouse
		keyboardMatch := C.flowmod_usage_matcher(1, 6) // kHIDUsage_GD_Keyboard
		matches := []C.CFMutableDictionaryRef{mouseMatch, keyboardMatch}
		arr := C.CFArrayCreate(C.kCFAllocatorDefault,
			(*unsafe.Pointer)(unsafe.Pointer(&matches[0])), 2, nil)
		C.IOHIDManagerSetDeviceMatchingMultiple(mgr, C.CFArrayRef(arr))
		C.CFRelease(C.CFTypeRef(arr))
		C.CFRelease(C.CFTypeRef(mouseMatch))
		C.CFRelease(C.CFTypeRef(keyboardMatch))

		r.manager = mgr
		registries.Store(uintptr(unsafe.Pointer(mgr)), r)

		C.flowmod_hid_set_callbacks(mgr)

		rl := C.CFRunLoopGetCurrent()
		r.mu.Lock()
		r.runLoop = rl
		r.mu.Unlock()

		C.IOHIDManagerScheduleWithRunLoop(mgr, rl, C.kCFRunLoopDefaultMode)
		if C.IOHIDManagerOpen(mgr, C.kIOHIDOptionsTypeNone) != C.kIOReturnSuccess {
			started <- fmt.Errorf("IOHIDManagerOpen failed")
			close(r.done)
			return
		}

		started <- nil
		C.CFRunLoopRun()
		close(r.done)
	}()

	if err := <-started; err != nil {
		return nil, err
	}

	go r.safetyNetLoop()

	return r, nil
}

func (r *Registry) safetyNetLoop() {
	ticker := time.NewTicker(safetyNetInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.reclassify()
		case <-r.stop:
			return
		}
	}
}

// Stop tears down the run loop and releases IOKit resources.
func (r *Registry) Stop() {
	close(r.stop)

	r.mu.Lock()
	rl := r.runLoop
	mgr := r.manager
	r.runLoop = 0
	r.mu.Unlock()

	if rl != 0 {
		C.CFRunLoopStop(rl)
		<-r.done
	}
	if mgr != 0 {
		C.IOHIDManagerClose(mgr, C.kIOHIDOptionsTypeNone)
		registries.Delete(uintptr(unsafe.Pointer(mgr)))
	}
}

// Devices returns a snapshot of currently known devices.
func (r *Registry) Devices() []Device {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, d)
	}
	return out
}

// ExternalPresence reports whether any external (non-first-party) mouse or
// keyboard is currently attached.
func (r *Registry) ExternalPresence() (mouse, keyboard bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.devices {
		if d.FirstParty {
			continue
		}
		switch d.Kind {
		case KindMouse:
			mouse = true
		case KindKeyboard:
			keyboard = true
		}
	}
	return mouse, keyboard
}

func deviceFromHID(device C.IOHIDDeviceRef, kind Kind) Device {
	vendorKey := C.CFStringRef(C.CFSTR(C.kIOHIDVendorIDKey))
	productKey := C.CFStringRef(C.CFSTR(C.kIOHIDProductIDKey))
	vendorNameKey := C.CFStringRef(C.CFSTR(C.kIOHIDManufacturerKey))
	productNameKey := C.CFStringRef(C.CFSTR(C.kIOHIDProductKey))

	vendorID := int(C.flowmod_hid_int_property(device, vendorKey))
	productID := int(C.flowmod_hid_int_property(device, productKey))
	vendorName := cStringOrEmpty(C.flowmod_hid_string_property(device, vendorNameKey))
	productName := cStringOrEmpty(C.flowmod_hid_string_property(device, productNameKey))

	return NewDevice(vendorID, productID, vendorName, productName, kind)
}

func cStringOrEmpty(s *C.char) string {
	if s == nil {
		return ""
	}
	defer C.free(unsafe.Pointer(s))
	return C.GoString(s)
}

func (r *Registry) addDevice(key uintptr, d Device) {
	r.mu.Lock()
	r.devices[key] = d
	r.mu.Unlock()
	r.notifyIfChanged()
}

func (r *Registry) removeDevice(key uintptr) {
	r.mu.Lock()
	delete(r.devices, key)
	r.mu.Unlock()
	r.notifyIfChanged()
}

func (r *Registry) reclassify() {
	// Periodic tick: no device set mutation occurs here. The presence
	// booleans are recomputed from the current set and onChange fires only
	// if they differ from the last notification; a dropped IOHIDManager
	// callback leaves the set, and so the booleans, unchanged.
	r.notifyIfChanged()
}

func (r *Registry) notifyIfChanged() {
	mouse, keyboard := r.ExternalPresence()

	r.mu.Lock()
	changed := !r.presenceKnown || r.lastMouse != mouse || r.lastKeyboard != keyboard
	r.lastMouse = mouse
	r.lastKeyboard = keyboard
	r.presenceKnown = true
	r.mu.Unlock()

	if changed && r.onChange != nil {
		r.onChange(mouse, keyboard)
	}
}

func registryForManager(mgr unsafe.Pointer) *Registry {
	v, ok := registries.Load(uintptr(mgr))
	if !ok {
		return nil
	}
	return v.(*Registry)
}

//export goHIDDeviceMatched
func goHIDDeviceMatched(context unsafe.Pointer, result C.IOReturn, sender unsafe.Pointer, device C.IOHIDDeviceRef) {
	r := registryForManager(sender)
	if r == nil {
		return
	}
	usage := int(C.flowmod_hid_int_property(device, C.CFStringRef(C.CFSTR(C.kIOHIDPrimaryUsageKey))))
	kind := KindUnknown
	switch usage {
	case 2:
		kind = KindMouse
	case 6:
		kind = KindKeyboard
	}
	r.addDevice(uintptr(unsafe.Pointer(device)), deviceFromHID(device, kind))
}

//export goHIDDeviceRemoved
func goHIDDeviceRemoved(context unsafe.Pointer, result C.IOReturn, sender unsafe.Pointer, device C.IOHIDDeviceRef) {
	r := registryForManager(sender)
	if r == nil {
		return
	}
	r.removeDevice(uintptr(unsafe.Pointer(device)))
}
