// Command flowmod is a macOS daemon that intercepts wheel/button/key
// events from external mice and keyboards and re-injects smooth scroll,
// DockSwipe gestures, magnification, and remapped keys in their place.
package main

func main() {
	Execute()
}
