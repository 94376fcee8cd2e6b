//go:build darwin

package scrollengine

import "github.com/sendmebits/flowmod/internal/eventsource"

// eventsourcePoster adapts internal/eventsource's free functions to the
// engine's Poster interface, keeping engine.go itself free of a direct
// cgo dependency so it stays unit-testable on any platform.
type eventsourcePoster struct{}

// NewPoster returns the real, cgo-backed Poster used in production.
func NewPoster() Poster { return eventsourcePoster{} }

func (eventsourcePoster) PostScroll(deltaY, deltaX float64, scrollPhase, momentumPhase int32) {
	eventsource.PostScroll(deltaY, deltaX, eventsource.ScrollPhase(scrollPhase), eventsource.MomentumPhase(momentumPhase))
}

func (eventsourcePoster) PostMagnify(phase int, magnification float64) {
	eventsource.PostMagnify(phase, magnification)
}
