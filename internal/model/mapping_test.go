package model

import "testing"

func TestNewMouseButtonMappingRejectsPrimaryButtons(t *testing.T) {
	for _, button := range []int{0, 1} {
		if _, err := NewMouseButtonMapping(button, InertPassthroughAction); err == nil {
			t.Fatalf("button %d: expected ErrReservedButton, got nil", button)
		}
	}
}

func TestNewMouseButtonMappingAcceptsAuxiliaryButtons(t *testing.T) {
	m, err := NewMouseButtonMapping(2, InertPassthroughAction)
	if err != nil {
		t.Fatalf("button 2: unexpected error %v", err)
	}
	if m.Button != 2 {
		t.Fatalf("Button = %d, want 2", m.Button)
	}
}

func TestButtonMapAtMostOnePerButton(t *testing.T) {
	bm := NewButtonMap()
	m1, _ := NewMouseButtonMapping(2, Action{Kind: ActionEditing, Editing: EditingCopy})
	m2, _ := NewMouseButtonMapping(2, Action{Kind: ActionEditing, Editing: EditingPaste})
	bm.Add(m1)
	bm.Add(m2)

	a, ok := bm.Lookup(2)
	if !ok {
		t.Fatal("expected a mapping for button 2")
	}
	if a.Editing != EditingPaste {
		t.Fatalf("expected last-write-wins (Paste), got %v", a.Editing)
	}
	if len(bm.order) != 1 {
		t.Fatalf("expected a single order entry for button 2, got %d", len(bm.order))
	}
}

func TestDragDirectionMapAtMostOnePerDirection(t *testing.T) {
	var m DragDirectionMap
	m.Set(DirUp, Action{Kind: ActionSystem, System: SystemMissionControl})
	if _, ok := m.Lookup(DirDown); ok {
		t.Fatal("expected no mapping for DirDown")
	}
	a, ok := m.Lookup(DirUp)
	if !ok || a.System != SystemMissionControl {
		t.Fatalf("unexpected lookup result: %v, %v", a, ok)
	}
}

func TestKeyboardRemapTableCanonicalLookupIdempotent(t *testing.T) {
	table := NewKeyboardRemapTable()
	table.Add(KeyboardRemap{
		IsNamed: true,
		Named:   NamedKeyHome,
		Target:  Action{Kind: ActionEditing, Editing: EditingCursorUp},
	})

	raw := KeyCombo{KeyCode: 0x73, Modifier: ModFunction}
	a1, ok1 := table.Lookup(raw)
	a2, ok2 := table.Lookup(raw.Canonical())
	if !ok1 || !ok2 {
		t.Fatal("expected both raw and canonical lookups to succeed")
	}
	if a1 != a2 {
		t.Fatalf("lookup not idempotent under canonicalization: %v != %v", a1, a2)
	}
}

func TestSystemActionContinuousCapable(t *testing.T) {
	capable := []SystemAction{
		SystemMissionControl, SystemAppExpose, SystemShowDesktop,
		SystemLaunchpad, SystemSwitchSpaceLeft, SystemSwitchSpaceRight,
	}
	for _, sa := range capable {
		if !sa.ContinuousCapable() {
			t.Errorf("%v: expected continuous-capable", sa)
		}
	}
	if SystemNone.ContinuousCapable() {
		t.Error("SystemNone: expected not continuous-capable")
	}
}
