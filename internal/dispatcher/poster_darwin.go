//go:build darwin

package dispatcher

import (
	"github.com/sendmebits/flowmod/internal/eventsource"
	"github.com/sendmebits/flowmod/internal/model"
)

type eventsourcePoster struct{}

// NewPoster returns the real darwin Poster.
func NewPoster() Poster {
	return eventsourcePoster{}
}

func (eventsourcePoster) PostKeyCombo(combo model.KeyCombo) {
	eventsource.PostKeyCombo(combo)
}

func (eventsourcePoster) PostMiddleClick() {
	eventsource.PostMiddleClick()
}
