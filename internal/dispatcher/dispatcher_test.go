package dispatcher

import (
	"testing"

	"github.com/sendmebits/flowmod/internal/model"
)

type fakePoster struct {
	combos       []model.KeyCombo
	middleClicks int
}

func (f *fakePoster) PostKeyCombo(c model.KeyCombo) { f.combos = append(f.combos, c) }
func (f *fakePoster) PostMiddleClick()              { f.middleClicks++ }

func TestPrimaryButtonsAreNeverRemappable(t *testing.T) {
	if _, err := model.NewMouseButtonMapping(0, model.InertSuppressedAction); err == nil {
		t.Fatal("expected an error constructing a mapping for button 0")
	}
	if _, err := model.NewMouseButtonMapping(1, model.InertSuppressedAction); err == nil {
		t.Fatal("expected an error constructing a mapping for button 1")
	}
}

func TestDispatchButtonPressStyleFiresOnDown(t *testing.T) {
	settings := model.Defaults()
	mapping, _ := model.NewMouseButtonMapping(3, model.Action{Kind: model.ActionSystem, System: model.SystemMissionControl})
	settings.ButtonMappings.Add(mapping)

	poster := &fakePoster{}
	d := New(func() *model.Settings { return settings }, poster, func() string { return "" }, nil)

	if suppressed := d.DispatchButton(3, true); !suppressed {
		t.Fatal("expected down suppressed for a mapped button")
	}
	if len(poster.combos) != 1 {
		t.Fatalf("expected the system action to fire on down, got %d combos", len(poster.combos))
	}
	if suppressed := d.DispatchButton(3, false); !suppressed {
		t.Fatal("expected up also suppressed for a mapped button")
	}
	if len(poster.combos) != 1 {
		t.Fatal("press-style action must not fire again on up")
	}
}

func TestDispatchButtonClickStyleFiresOnUp(t *testing.T) {
	settings := model.Defaults()
	mapping, _ := model.NewMouseButtonMapping(4, model.Action{Kind: model.ActionEditing, Editing: model.EditingCopy})
	settings.ButtonMappings.Add(mapping)

	poster := &fakePoster{}
	d := New(func() *model.Settings { return settings }, poster, func() string { return "" }, nil)

	d.DispatchButton(4, true)
	if len(poster.combos) != 0 {
		t.Fatal("click-style action must not fire on down")
	}
	d.DispatchButton(4, false)
	if len(poster.combos) != 1 {
		t.Fatal("expected click-style action to fire on up")
	}
}

func TestDispatchButtonUnmappedPassesThrough(t *testing.T) {
	settings := model.Defaults()
	poster := &fakePoster{}
	d := New(func() *model.Settings { return settings }, poster, func() string { return "" }, nil)

	if suppressed := d.DispatchButton(5, true); suppressed {
		t.Fatal("expected an unmapped button to pass through")
	}
}

func TestDispatchKeyGatedOnExternalKeyboardPresence(t *testing.T) {
	settings := model.Defaults()
	settings.ExternalKeyboardPresent = false
	combo := model.KeyCombo{KeyCode: 0x00, Modifier: model.ModCommand}
	settings.KeyboardRemaps.Add(model.KeyboardRemap{
		Custom: combo, Target: model.Action{Kind: model.ActionEditing, Editing: model.EditingUndo},
	})

	poster := &fakePoster{}
	d := New(func() *model.Settings { return settings }, poster, func() string { return "" }, nil)

	if _, suppressed := d.DispatchKey(combo); suppressed {
		t.Fatal("expected no remap to apply without an external keyboard present")
	}
	if len(poster.combos) != 0 {
		t.Fatal("expected nothing synthesized")
	}
}

func TestDispatchKeyGatedOnExcludedApp(t *testing.T) {
	settings := model.Defaults()
	settings.ExternalKeyboardPresent = true
	settings.ExcludedBundleIDs["com.apple.Terminal"] = struct{}{}
	combo := model.KeyCombo{KeyCode: 0x00, Modifier: model.ModCommand}
	settings.KeyboardRemaps.Add(model.KeyboardRemap{
		Custom: combo, Target: model.Action{Kind: model.ActionEditing, Editing: model.EditingUndo},
	})

	poster := &fakePoster{}
	d := New(func() *model.Settings { return settings }, poster, func() string { return "com.apple.Terminal" }, nil)

	if _, suppressed := d.DispatchKey(combo); suppressed {
		t.Fatal("expected no remap to apply in an excluded app")
	}
}

func TestDispatchKeyExecutesMappedCombo(t *testing.T) {
	settings := model.Defaults()
	settings.ExternalKeyboardPresent = true
	source := model.KeyCombo{KeyCode: 0x00, Modifier: model.ModCommand}
	settings.KeyboardRemaps.Add(model.KeyboardRemap{
		Custom: source, Target: model.Action{Kind: model.ActionEditing, Editing: model.EditingUndo},
	})

	poster := &fakePoster{}
	d := New(func() *model.Settings { return settings }, poster, func() string { return "com.other.App" }, nil)

	action, suppressed := d.DispatchKey(source)
	if !suppressed {
		t.Fatal("expected the remapped key to be suppressed")
	}
	if action.Editing != model.EditingUndo {
		t.Fatalf("expected EditingUndo resolved, got %+v", action)
	}
	if len(poster.combos) != 1 {
		t.Fatalf("expected the undo combo synthesized, got %d", len(poster.combos))
	}
}

func TestExecuteMiddleClickUsesDedicatedPoster(t *testing.T) {
	poster := &fakePoster{}
	d := New(func() *model.Settings { return model.Defaults() }, poster, func() string { return "" }, nil)

	d.Execute(model.Action{Kind: model.ActionEditing, Editing: model.EditingMiddleClick})
	if poster.middleClicks != 1 {
		t.Fatalf("expected one middle click posted, got %d", poster.middleClicks)
	}
	if len(poster.combos) != 0 {
		t.Fatal("middle click must not also post a key combo")
	}
}

func TestExecuteInertActionDoesNothing(t *testing.T) {
	poster := &fakePoster{}
	d := New(func() *model.Settings { return model.Defaults() }, poster, func() string { return "" }, nil)

	d.Execute(model.InertPassthroughAction)
	d.Execute(model.InertSuppressedAction)
	if len(poster.combos) != 0 || poster.middleClicks != 0 {
		t.Fatal("inert actions must not synthesize anything")
	}
}
