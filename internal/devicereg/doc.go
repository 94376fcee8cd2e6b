// Package devicereg enumerates attached HID mice and keyboards and
// classifies each as first-party or external. It is grounded on the
// IOKit notification idiom in the teacher's device.go (DeviceNotifier:
// IONotificationPortCreate, IOServiceAddMatchingNotification, a dedicated
// OS-locked CFRunLoop goroutine), generalized from a single
// "AppleMultitouchDevice" class match to IOHIDManager-based matching
// over the generic-desktop mouse and keyboard usages.
package devicereg
