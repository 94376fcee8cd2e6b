package interceptor

import (
	"testing"
	"time"

	"github.com/sendmebits/flowmod/internal/dispatcher"
	"github.com/sendmebits/flowmod/internal/gestureengine"
	"github.com/sendmebits/flowmod/internal/model"
	"github.com/sendmebits/flowmod/internal/scrollengine"
)

type fakeScrollPoster struct{ calls int }

func (f *fakeScrollPoster) PostScroll(float64, float64, int32, int32) { f.calls++ }
func (f *fakeScrollPoster) PostMagnify(int, float64)                  { f.calls++ }

type fakeClock struct{ tick func(time.Time) }

func (c *fakeClock) Ensure(tick func(time.Time)) { c.tick = tick }
func (c *fakeClock) StopIfIdle()                 {}

type fakeGesturePoster struct{ calls int }

func (f *fakeGesturePoster) PostGesturePair(gestureengine.DockSwipeFields) { f.calls++ }

type fakeGesturePlatform struct{}

func (fakeGesturePlatform) EnableHIDDragTap()          {}
func (fakeGesturePlatform) DisableHIDDragTap()         {}
func (fakeGesturePlatform) FreezePointer()             {}
func (fakeGesturePlatform) ThawPointer()               {}
func (fakeGesturePlatform) SpaceCount() int            { return 4 }
func (fakeGesturePlatform) ScreenSize() (float64, float64) { return 1920, 1080 }

type fakeDispatchPoster struct{ combos int }

func (f *fakeDispatchPoster) PostKeyCombo(model.KeyCombo) { f.combos++ }
func (f *fakeDispatchPoster) PostMiddleClick()            {}

func newTestRouter(settings *model.Settings) *Router {
	scroll := scrollengine.New(&fakeScrollPoster{}, func() *model.Settings { return settings }, &fakeClock{}, nil)
	dispatch := dispatcher.New(func() *model.Settings { return settings }, &fakeDispatchPoster{}, func() string { return "" }, nil)
	gesture := gestureengine.New(func() *model.Settings { return settings }, dispatch, &fakeGesturePoster{}, fakeGesturePlatform{}, nil)
	return NewRouter(func() *model.Settings { return settings }, scroll, gesture, dispatch)
}

func TestSelfTaggedScrollPassesThrough(t *testing.T) {
	r := newTestRouter(model.Defaults())
	result := r.HandleScrollWheel(SelfTaggedEvent{IsSelf: true}, scrollengine.WheelEvent{DeltaAxis1: 5}, time.Now())
	if result.Suppress || result.Mutated != nil {
		t.Fatal("a self-tagged scroll event must always pass through unchanged")
	}
}

func TestSelfTaggedOtherMouseNeverSuppressed(t *testing.T) {
	r := newTestRouter(model.Defaults())
	now := time.Now()
	if r.HandleOtherMouseDown(SelfTaggedEvent{IsSelf: true}, 2, 0, 0, now) {
		t.Fatal("self-tagged down must not be routed to the gesture engine")
	}
	if r.HandleOtherMouseUp(SelfTaggedEvent{IsSelf: true}, 2, now) {
		t.Fatal("self-tagged up must not be routed to the gesture engine")
	}
}

func TestSelfTaggedKeyPassesThrough(t *testing.T) {
	r := newTestRouter(model.Defaults())
	if _, suppress := r.HandleKeyDown(SelfTaggedEvent{IsSelf: true}, model.KeyCombo{KeyCode: 0x00}); suppress {
		t.Fatal("self-tagged key events must never be remapped")
	}
}

func TestMiddleButtonRoutesToGestureEngine(t *testing.T) {
	settings := model.Defaults()
	settings.ContinuousGesture = false
	dm := &model.DragDirectionMap{}
	dm.Set(model.DirLeft, model.Action{Kind: model.ActionSystem, System: model.SystemSwitchSpaceLeft})
	settings.DirectionMapping = dm

	r := newTestRouter(settings)
	now := time.Now()
	r.HandleOtherMouseDown(SelfTaggedEvent{}, 2, 0, 0, now)
	suppressed := r.HandleOtherMouseDrag(SelfTaggedEvent{}, 2, -31, 0, now)
	if !suppressed {
		t.Fatal("expected a committed discrete gesture to suppress the drag event")
	}
}

func TestNonMiddleAuxiliaryButtonRoutesToDispatcher(t *testing.T) {
	settings := model.Defaults()
	mapping, _ := model.NewMouseButtonMapping(3, model.Action{Kind: model.ActionEditing, Editing: model.EditingCopy})
	settings.ButtonMappings.Add(mapping)

	r := newTestRouter(settings)
	now := time.Now()
	if !r.HandleOtherMouseDown(SelfTaggedEvent{}, 3, 0, 0, now) {
		t.Fatal("expected button 3's mapping to suppress the down event via the dispatcher path")
	}
}

func TestForceStopEndsInFlightGesture(t *testing.T) {
	settings := model.Defaults()
	dm := &model.DragDirectionMap{}
	dm.Set(model.DirLeft, model.Action{Kind: model.ActionSystem, System: model.SystemSwitchSpaceLeft})
	settings.DirectionMapping = dm
	settings.ContinuousGesture = true

	r := newTestRouter(settings)
	now := time.Now()
	r.HandleOtherMouseDown(SelfTaggedEvent{}, 2, 0, 0, now)
	r.HandleOtherMouseDrag(SelfTaggedEvent{}, 2, -16, 0, now) // crosses half threshold, begins continuous

	r.ForceStop(now) // must not panic, and must tear down the continuous gesture
}
