package model

import "fmt"

// Direction is one of the four drag directions a continuous gesture can
// lock onto.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
	dirCount // fixed-capacity array bound, spec.md §9's enum-ordinal array idiom
)

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "Up"
	case DirDown:
		return "Down"
	case DirLeft:
		return "Left"
	case DirRight:
		return "Right"
	default:
		return "Unknown"
	}
}

// DragDirectionMap holds at most one action per direction, stored as a
// fixed-capacity array indexed by Direction's ordinal — no hashing on the
// hot path, per spec.md §9.
type DragDirectionMap struct {
	actions [dirCount]Action
	set     [dirCount]bool
}

// Set assigns the action for a direction.
func (m *DragDirectionMap) Set(d Direction, a Action) {
	m.actions[d] = a
	m.set[d] = true
}

// Lookup returns the action configured for d, if any.
func (m *DragDirectionMap) Lookup(d Direction) (Action, bool) {
	if int(d) < 0 || int(d) >= int(dirCount) || !m.set[d] {
		return Action{}, false
	}
	return m.actions[d], true
}

// primaryButtonMax is the highest reserved primary-click button number
// (0 and 1 are reserved); any mapping naming one of these is rejected at
// policy time.
const primaryButtonMax = 1

// ErrReservedButton is returned when a MouseButtonMapping names a reserved
// primary button.
var ErrReservedButton = fmt.Errorf("button numbers 0 and 1 are reserved primary clicks")

// MouseButtonMapping pairs an auxiliary button number with an action.
// Button numbers 0 and 1 are reserved and must never be constructed here;
// callers validate with NewMouseButtonMapping.
type MouseButtonMapping struct {
	Button int
	Action Action
}

// NewMouseButtonMapping validates button and constructs a mapping. Buttons
// 0 and 1 are rejected at policy time per spec.md §3/§8.
func NewMouseButtonMapping(button int, action Action) (MouseButtonMapping, error) {
	if button <= primaryButtonMax {
		return MouseButtonMapping{}, fmt.Errorf("button %d: %w", button, ErrReservedButton)
	}
	return MouseButtonMapping{Button: button, Action: action}, nil
}

// ButtonMap is an ordered, at-most-one-mapping-per-button-number collection
// of MouseButtonMapping, keyed by button number.
type ButtonMap struct {
	order []int
	byNum map[int]Action
}

// NewButtonMap returns an empty ButtonMap.
func NewButtonMap() *ButtonMap {
	return &ButtonMap{byNum: make(map[int]Action)}
}

// Add inserts or replaces the mapping for m.Button, preserving insertion
// order for buttons seen for the first time.
func (bm *ButtonMap) Add(m MouseButtonMapping) {
	if _, exists := bm.byNum[m.Button]; !exists {
		bm.order = append(bm.order, m.Button)
	}
	bm.byNum[m.Button] = m.Action
}

// Lookup returns the action configured for a button number.
func (bm *ButtonMap) Lookup(button int) (Action, bool) {
	a, ok := bm.byNum[button]
	return a, ok
}

// KeyboardRemap maps a source key (named or custom) to a target Action.
type KeyboardRemap struct {
	Named  NamedKey
	Custom KeyCombo
	// IsNamed selects which source field is meaningful.
	IsNamed bool
	Target  Action
}

// SourceCombo resolves the remap's source into a canonical KeyCombo.
func (r KeyboardRemap) SourceCombo() (KeyCombo, bool) {
	if r.IsNamed {
		return r.Named.Combo()
	}
	return r.Custom.Canonical(), true
}

// KeyboardRemapTable is keyed by canonical (keycode, modifier) pairs.
type KeyboardRemapTable struct {
	byCombo map[KeyCombo]Action
}

// NewKeyboardRemapTable returns an empty table.
func NewKeyboardRemapTable() *KeyboardRemapTable {
	return &KeyboardRemapTable{byCombo: make(map[KeyCombo]Action)}
}

// Add inserts r, keyed by its canonicalized source combo. A remap whose
// source cannot be resolved (an unrecognized NamedKey) is silently
// dropped — config validation is expected to catch this earlier.
func (t *KeyboardRemapTable) Add(r KeyboardRemap) {
	combo, ok := r.SourceCombo()
	if !ok {
		return
	}
	t.byCombo[combo.Canonical()] = r.Target
}

// Lookup finds the target action for a canonical combo. Match is by
// keycode+modifier-subset equality; canonicalizing before lookup is
// idempotent, so callers may pass either a raw or already-canonical combo.
func (t *KeyboardRemapTable) Lookup(combo KeyCombo) (Action, bool) {
	a, ok := t.byCombo[combo.Canonical()]
	return a, ok
}
