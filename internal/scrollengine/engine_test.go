package scrollengine

import (
	"testing"
	"time"

	"github.com/sendmebits/flowmod/internal/model"
)

type scrollCall struct {
	deltaY, deltaX             float64
	scrollPhase, momentumPhase int32
}

type magnifyCall struct {
	phase         int
	magnification float64
}

type fakePoster struct {
	scrolls   []scrollCall
	magnifies []magnifyCall
}

func (f *fakePoster) PostScroll(deltaY, deltaX float64, scrollPhase, momentumPhase int32) {
	f.scrolls = append(f.scrolls, scrollCall{deltaY, deltaX, scrollPhase, momentumPhase})
}

func (f *fakePoster) PostMagnify(phase int, magnification float64) {
	f.magnifies = append(f.magnifies, magnifyCall{phase, magnification})
}

// fakeClock never auto-fires; tests call the stored tick function directly
// so frame advancement is fully deterministic.
type fakeClock struct {
	tick    func(now time.Time)
	running bool
}

func (c *fakeClock) Ensure(tick func(now time.Time)) {
	c.tick = tick
	c.running = true
}

func (c *fakeClock) StopIfIdle() {
	c.running = false
}

func settingsProvider(s *model.Settings) func() *model.Settings {
	return func() *model.Settings { return s }
}

func TestHandleWheelTrackpadOriginPassesThroughUnchanged(t *testing.T) {
	e := New(&fakePoster{}, settingsProvider(model.Defaults()), &fakeClock{}, nil)
	ev := WheelEvent{DeltaAxis1: 3, IsContinuous: true, ScrollPhase: 1}
	result := e.HandleWheel(ev, time.Now())
	if result.Suppress || result.Mutated != nil {
		t.Fatalf("trackpad-origin event must pass through unchanged, got %+v", result)
	}
}

func TestHandleWheelReverseNonSmooth(t *testing.T) {
	s := model.Defaults()
	s.SmoothScrollLevel = model.SmoothOff
	s.ReverseScroll = true
	s.Overrides.AssumeExternalMouse = true

	e := New(&fakePoster{}, settingsProvider(s), &fakeClock{}, nil)
	ev := WheelEvent{DeltaAxis1: 3, PointDeltaAxis1: 14.5, FixedPtDeltaAxis1: 14.3}
	result := e.HandleWheel(ev, time.Now())

	if result.Suppress {
		t.Fatal("non-smooth mutated path must not suppress the original event")
	}
	if result.Mutated == nil {
		t.Fatal("expected a mutated event carrying the reversed delta")
	}
	if result.Mutated.DeltaAxis1 != -3 {
		t.Fatalf("DeltaAxis1 = %v, want -3", result.Mutated.DeltaAxis1)
	}
	if result.Mutated.PointDeltaAxis1 != -14.5 || result.Mutated.FixedPtDeltaAxis1 != -14.3 {
		t.Fatalf("point/fixed-point deltas must reverse independently from their own fields, got %+v", result.Mutated)
	}
}

func TestHandleWheelNoModifiersNoChangeReturnsUnchanged(t *testing.T) {
	s := model.Defaults()
	s.SmoothScrollLevel = model.SmoothOff
	s.ReverseScroll = false
	s.Modifiers = model.ModifierBehaviors{}

	e := New(&fakePoster{}, settingsProvider(s), &fakeClock{}, nil)
	ev := WheelEvent{DeltaAxis1: 3}
	result := e.HandleWheel(ev, time.Now())
	if result.Suppress || result.Mutated != nil {
		t.Fatalf("expected untouched passthrough, got %+v", result)
	}
}

func TestHandleWheelSmoothSuppressesAndStartsAnimator(t *testing.T) {
	s := model.Defaults()
	s.SmoothScrollLevel = model.Smooth

	poster := &fakePoster{}
	clock := &fakeClock{}
	e := New(poster, settingsProvider(s), clock, nil)

	result := e.HandleWheel(WheelEvent{DeltaAxis1: 3}, time.Now())
	if !result.Suppress {
		t.Fatal("smooth-scroll path must suppress the original event")
	}
	if !clock.running {
		t.Fatal("expected the frame clock to be started")
	}

	clock.tick(time.Now().Add(10 * time.Millisecond))
	if len(poster.scrolls) == 0 {
		t.Fatal("expected at least one posted scroll event after a frame tick")
	}
	if poster.scrolls[0].scrollPhase != scrollPhaseBegan {
		t.Fatalf("first posted event should carry scrollPhaseBegan, got %+v", poster.scrolls[0])
	}
}

func TestHandleWheelOptionBypassesSmooth(t *testing.T) {
	s := model.Defaults()
	s.SmoothScrollLevel = model.Smooth
	s.Modifiers.OptionPrecision = true
	s.Modifiers.PrecisionScale = 0.25

	poster := &fakePoster{}
	e := New(poster, settingsProvider(s), &fakeClock{}, nil)
	result := e.HandleWheel(WheelEvent{DeltaAxis1: 4, PointDeltaAxis1: 20, Modifiers: model.ModOption}, time.Now())

	if result.Suppress {
		t.Fatal("Option must bypass smooth-scroll entirely")
	}
	if result.Mutated == nil || result.Mutated.DeltaAxis1 != 1 {
		t.Fatalf("expected precision-scaled delta of 1, got %+v", result.Mutated)
	}
	if result.Mutated.PointDeltaAxis1 != 5 {
		t.Fatalf("expected point delta scaled by the same precision factor, got %v", result.Mutated.PointDeltaAxis1)
	}
}

func TestHandleWheelCommandZoomEmitsBeginThenChanged(t *testing.T) {
	s := model.Defaults()
	poster := &fakePoster{}
	e := New(poster, settingsProvider(s), &fakeClock{}, nil)

	e.HandleWheel(WheelEvent{DeltaAxis1: -1, Modifiers: model.ModCommand}, time.Now())
	e.HandleWheel(WheelEvent{DeltaAxis1: -1, Modifiers: model.ModCommand}, time.Now())

	if len(poster.magnifies) != 3 {
		t.Fatalf("expected begin + 2 changed events, got %d: %+v", len(poster.magnifies), poster.magnifies)
	}
	if poster.magnifies[0].phase != gesturePhaseBegan || poster.magnifies[0].magnification != 0 {
		t.Fatalf("first event should be begin with magnification 0, got %+v", poster.magnifies[0])
	}
	for _, m := range poster.magnifies[1:] {
		if m.phase != gesturePhaseChanged || m.magnification != -0.02 {
			t.Fatalf("expected changed events at -0.02, got %+v", m)
		}
	}
}

func TestCommandReleasedEndsActiveZoom(t *testing.T) {
	s := model.Defaults()
	poster := &fakePoster{}
	e := New(poster, settingsProvider(s), &fakeClock{}, nil)

	e.HandleWheel(WheelEvent{DeltaAxis1: -1, Modifiers: model.ModCommand}, time.Now())
	e.CommandReleased(time.Now())

	last := poster.magnifies[len(poster.magnifies)-1]
	if last.phase != gesturePhaseEnded {
		t.Fatalf("expected a trailing ended event, got %+v", last)
	}
}

func TestHandleWheelSettingsUnavailablePassesThrough(t *testing.T) {
	e := New(&fakePoster{}, func() *model.Settings { return nil }, &fakeClock{}, nil)
	result := e.HandleWheel(WheelEvent{DeltaAxis1: 3}, time.Now())
	if result.Suppress || result.Mutated != nil {
		t.Fatalf("expected passthrough when settings unavailable, got %+v", result)
	}
}
