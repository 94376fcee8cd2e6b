// Package model defines the data types shared across flowmod's engines:
// key combinations, button/direction/keyboard mappings, actions, and the
// settings snapshot the hot path reads.
package model

import "fmt"

// Modifier is a bitfield over the four primary modifier keys plus
// Function. Layout and caps-lock bits reported by the OS are never stored
// here; Canonical further drops Function.
type Modifier uint64

const (
	ModControl Modifier = 1 << iota
	ModOption
	ModShift
	ModCommand
	ModFunction
)

// primaryMask is the canonical modifier subset used for all comparisons.
// Function is tracked separately because spec.md's KeyCombo only compares
// "the four primary modifiers"; Function is carried for display/logging
// but excluded from equality.
const primaryMask = ModControl | ModOption | ModShift | ModCommand

// Canonical returns m restricted to the four primary modifiers.
// Canonicalization is idempotent: Canonical(Canonical(m)) == Canonical(m).
func (m Modifier) Canonical() Modifier {
	return m & primaryMask
}

func (m Modifier) String() string {
	s := ""
	if m&ModControl != 0 {
		s += "⌃"
	}
	if m&ModOption != 0 {
		s += "⌥"
	}
	if m&ModShift != 0 {
		s += "⇧"
	}
	if m&ModCommand != 0 {
		s += "⌘"
	}
	return s
}

// KeyCombo is a virtual key code paired with a modifier mask. Two combos
// are equal iff their key codes match and their canonical modifier subsets
// match — layout bits and caps-lock never participate in comparison.
type KeyCombo struct {
	KeyCode  uint16
	Modifier Modifier
}

// Canonical returns c with its modifier mask reduced to the primary subset.
func (c KeyCombo) Canonical() KeyCombo {
	return KeyCombo{KeyCode: c.KeyCode, Modifier: c.Modifier.Canonical()}
}

// Equal reports whether c and other denote the same combo under canonical
// modifier comparison.
func (c KeyCombo) Equal(other KeyCombo) bool {
	return c.KeyCode == other.KeyCode && c.Modifier.Canonical() == other.Modifier.Canonical()
}

// String renders a display string such as "⇧⌘Key(0x14)" or "⌘Home":
// canonical modifiers in ⌃⌥⇧⌘ order, then the key name. The package has no
// parser that decodes this string back into a KeyCombo.
func (c KeyCombo) String() string {
	return fmt.Sprintf("%s%s", c.Modifier.Canonical(), keyCodeName(c.KeyCode))
}

// namedKeyCodes covers the small closed set of named keys spec.md §3 calls
// out (Home/End/Insert/ForwardDelete/PageUp/PageDown/PrintScreen); every
// other key code renders as Key(0xNN).
var namedKeyCodes = map[uint16]string{
	0x73: "Home",
	0x77: "End",
	0x72: "Insert",
	0x75: "ForwardDelete",
	0x74: "PageUp",
	0x79: "PageDown",
	0x69: "PrintScreen",
}

func keyCodeName(code uint16) string {
	if name, ok := namedKeyCodes[code]; ok {
		return name
	}
	return fmt.Sprintf("Key(0x%02X)", code)
}

// NamedKey is the closed set of source keys a KeyboardRemap may reference
// by name instead of a raw (keycode, modifier) pair.
type NamedKey int

const (
	NamedKeyNone NamedKey = iota
	NamedKeyHome
	NamedKeyEnd
	NamedKeyInsert
	NamedKeyForwardDelete
	NamedKeyPageUp
	NamedKeyPageDown
	NamedKeyPrintScreen
)

// namedKeyCombo maps the closed NamedKey set to the virtual key codes macOS
// assigns them (no modifiers — these are bare extended keys on external
// keyboards).
var namedKeyCombo = map[NamedKey]KeyCombo{
	NamedKeyHome:          {KeyCode: 0x73},
	NamedKeyEnd:           {KeyCode: 0x77},
	NamedKeyInsert:        {KeyCode: 0x72},
	NamedKeyForwardDelete: {KeyCode: 0x75},
	NamedKeyPageUp:        {KeyCode: 0x74},
	NamedKeyPageDown:      {KeyCode: 0x79},
	NamedKeyPrintScreen:   {KeyCode: 0x69},
}

// Combo resolves a NamedKey to its KeyCombo. The zero value (NamedKeyNone)
// resolves to the zero KeyCombo and ok=false.
func (k NamedKey) Combo() (KeyCombo, bool) {
	c, ok := namedKeyCombo[k]
	return c, ok
}
