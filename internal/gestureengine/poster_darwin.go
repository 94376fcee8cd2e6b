//go:build darwin

package gestureengine

import "github.com/sendmebits/flowmod/internal/eventsource"

// eventsourcePoster adapts internal/eventsource's cgo-backed DockSwipe
// emission to the local, portable Poster interface.
type eventsourcePoster struct{}

// NewPoster returns the real darwin Poster.
func NewPoster() Poster {
	return eventsourcePoster{}
}

func (eventsourcePoster) PostGesturePair(fields DockSwipeFields) {
	eventsource.PostGesturePair(eventsource.GesturePairFields{
		Phase:         fields.Phase,
		DockSwipeType: fields.DockSwipeType,
		TypeConstant:  fields.TypeConstant,
		OriginOffset:  fields.OriginOffset,
		Inverted:      fields.Inverted,
		HasExitSpeed:  fields.HasExitSpeed,
		ExitSpeed:     fields.ExitSpeed,
	})
}
