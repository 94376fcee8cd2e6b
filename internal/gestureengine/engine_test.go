package gestureengine

import (
	"testing"
	"time"

	"github.com/sendmebits/flowmod/internal/model"
)

type fakeExecutor struct {
	executed []model.Action
}

func (f *fakeExecutor) Execute(a model.Action) {
	f.executed = append(f.executed, a)
}

type fakePoster struct {
	pairs []DockSwipeFields
}

func (f *fakePoster) PostGesturePair(fields DockSwipeFields) {
	f.pairs = append(f.pairs, fields)
}

type fakePlatform struct {
	frozen        bool
	dragTapOn     bool
	spaceCount    int
	screenW, screenH float64
}

func (p *fakePlatform) EnableHIDDragTap()  { p.dragTapOn = true }
func (p *fakePlatform) DisableHIDDragTap() { p.dragTapOn = false }
func (p *fakePlatform) FreezePointer()     { p.frozen = true }
func (p *fakePlatform) ThawPointer()       { p.frozen = false }
func (p *fakePlatform) SpaceCount() int    { return p.spaceCount }
func (p *fakePlatform) ScreenSize() (float64, float64) { return p.screenW, p.screenH }

func testSettings() *model.Settings {
	s := model.Defaults()
	s.DragThresholdPixels = 30
	s.ContinuousGesture = true
	dm := &model.DragDirectionMap{}
	dm.Set(model.DirLeft, model.Action{Kind: model.ActionSystem, System: model.SystemSwitchSpaceLeft})
	dm.Set(model.DirUp, model.Action{Kind: model.ActionEditing, Editing: model.EditingUndo})
	s.DirectionMapping = dm
	return s
}

func newTestEngine(settings *model.Settings) (*Engine, *fakeExecutor, *fakePoster, *fakePlatform) {
	exec := &fakeExecutor{}
	poster := &fakePoster{}
	platform := &fakePlatform{spaceCount: 4, screenW: 1920, screenH: 1080}
	e := New(func() *model.Settings { return settings }, exec, poster, platform, nil)
	return e, exec, poster, platform
}

func TestDiscreteCommitExecutesMappedActionOnce(t *testing.T) {
	settings := testSettings()
	settings.ContinuousGesture = false
	e, exec, poster, _ := newTestEngine(settings)

	now := time.Now()
	if suppressed := e.OnMiddleDown(0, 0, now); suppressed {
		t.Fatalf("down should not suppress when button 2 has no click mapping")
	}

	// left drag under threshold: no commit yet
	if e.OnMiddleDrag(-10, 0, now) {
		t.Fatalf("expected pre-threshold drag to pass through while button 2 has no click mapping")
	}
	if len(exec.executed) != 0 {
		t.Fatalf("should not commit before crossing full threshold")
	}

	// cross full threshold (>=30px) left
	if !e.OnMiddleDrag(-31, 0, now) {
		t.Fatal("expected suppression on commit")
	}
	if len(exec.executed) != 1 {
		t.Fatalf("expected exactly one committed action, got %d", len(exec.executed))
	}
	if exec.executed[0].System != model.SystemSwitchSpaceLeft {
		t.Fatalf("expected SwitchSpaceLeft, got %+v", exec.executed[0])
	}
	if len(poster.pairs) != 0 {
		t.Fatal("discrete commit must not emit DockSwipe events")
	}

	if !e.OnMiddleUp(now) {
		t.Fatal("up after discrete commit should stay suppressed")
	}
	if len(exec.executed) != 1 {
		t.Fatal("up must not re-execute the committed action")
	}
}

func TestContinuousGestureLocksAxisAtHalfThresholdAndEmitsDockSwipe(t *testing.T) {
	settings := testSettings()
	e, _, poster, platform := newTestEngine(settings)

	now := time.Now()
	e.OnMiddleDown(0, 0, now)

	// half threshold is 15px; left direction is continuous-capable
	if !e.OnMiddleDrag(-16, 0, now) {
		t.Fatal("expected suppression once continuous gesture begins")
	}
	if !platform.dragTapOn || !platform.frozen {
		t.Fatal("expected HID drag tap enabled and pointer frozen on continuous begin")
	}
	if len(poster.pairs) != 1 || poster.pairs[0].Phase != phaseBegan {
		t.Fatalf("expected a single began pair, got %+v", poster.pairs)
	}
	if poster.pairs[0].DockSwipeType != dockSwipeHorizontal {
		t.Fatalf("expected horizontal dockswipe type, got %d", poster.pairs[0].DockSwipeType)
	}

	e.OnMiddleDrag(-40, 0, now)
	if len(poster.pairs) != 2 || poster.pairs[1].Phase != phaseChanged {
		t.Fatalf("expected a changed pair to follow, got %+v", poster.pairs)
	}

	e.OnMiddleUp(now)
	if platform.frozen || platform.dragTapOn {
		t.Fatal("expected drag tap disabled and pointer thawed on end")
	}
	last := poster.pairs[len(poster.pairs)-1]
	if last.Phase != phaseEnded {
		t.Fatalf("expected ended phase on up, got %+v", last)
	}
	if !last.HasExitSpeed {
		t.Fatal("expected an exit speed on the end event")
	}
}

func TestForceStopEmitsCancelledInsteadOfEnded(t *testing.T) {
	settings := testSettings()
	e, _, poster, _ := newTestEngine(settings)

	now := time.Now()
	e.OnMiddleDown(0, 0, now)
	e.OnMiddleDrag(-16, 0, now)

	e.OnForceStop(now)

	last := poster.pairs[len(poster.pairs)-1]
	if last.Phase != phaseCancelled {
		t.Fatalf("expected cancelled phase on forced stop, got %+v", last)
	}
}

func TestClickMappingExecutesOnUpWhenNoDragOccurred(t *testing.T) {
	settings := testSettings()
	settings.ButtonMappings = model.NewButtonMap()
	clickAction := model.Action{Kind: model.ActionEditing, Editing: model.EditingMiddleClick}
	mapping, err := model.NewMouseButtonMapping(middleButtonNumber, clickAction)
	if err != nil {
		t.Fatalf("unexpected error constructing mapping: %v", err)
	}
	settings.ButtonMappings.Add(mapping)

	e, exec, _, _ := newTestEngine(settings)

	now := time.Now()
	if suppressed := e.OnMiddleDown(0, 0, now); !suppressed {
		t.Fatal("expected down suppressed when button 2 has a non-passthrough click mapping")
	}
	if !e.OnMiddleUp(now) {
		t.Fatal("expected up suppressed")
	}
	if len(exec.executed) != 1 || exec.executed[0].Editing != model.EditingMiddleClick {
		t.Fatalf("expected the click mapping to execute on up, got %+v", exec.executed)
	}
}

func TestRetransmitsCancelledByNewGesture(t *testing.T) {
	settings := testSettings()
	e, _, poster, _ := newTestEngine(settings)

	now := time.Now()
	e.OnMiddleDown(0, 0, now)
	e.OnMiddleDrag(-16, 0, now)
	e.OnMiddleUp(now)

	if len(e.retransmits) != 2 {
		t.Fatalf("expected two scheduled retransmits, got %d", len(e.retransmits))
	}

	pairsBeforeNewGesture := len(poster.pairs)
	e.OnMiddleDown(0, 0, now)
	if len(e.retransmits) != 0 {
		t.Fatal("expected retransmits cancelled by the next gesture's down event")
	}
	_ = pairsBeforeNewGesture
}
