package model

// ActionKind tags the variant carried by an Action.
type ActionKind int

const (
	// ActionInert passes the originating event through unchanged, or
	// suppresses it with no synthetic replacement — callers distinguish
	// the two via InertMode.
	ActionInert ActionKind = iota
	ActionSystem
	ActionEditing
	ActionCustom
)

// InertMode distinguishes the two ActionInert behaviors.
type InertMode int

const (
	InertPassThrough InertMode = iota
	InertSuppress
)

// SystemAction is the closed set of named system actions (spec.md §3).
type SystemAction int

const (
	SystemNone SystemAction = iota
	SystemMissionControl
	SystemAppExpose
	SystemShowDesktop
	SystemLaunchpad
	SystemSwitchSpaceLeft
	SystemSwitchSpaceRight
)

// ContinuousCapable reports whether a system action can be driven smoothly
// by a DockSwipe gesture rather than fired only as a discrete shortcut.
func (s SystemAction) ContinuousCapable() bool {
	switch s {
	case SystemMissionControl, SystemAppExpose, SystemShowDesktop,
		SystemLaunchpad, SystemSwitchSpaceLeft, SystemSwitchSpaceRight:
		return true
	default:
		return false
	}
}

// EditingAction is the closed set of named editing/navigation actions.
type EditingAction int

const (
	EditingNone EditingAction = iota
	EditingBack
	EditingForward
	EditingCopy
	EditingCut
	EditingPaste
	EditingUndo
	EditingRedo
	EditingSelectAll
	EditingFullscreen
	EditingMiddleClick
	EditingCursorUp
	EditingCursorDown
	EditingCursorLeft
	EditingCursorRight
)

// editingCombos maps the named editing actions to their predetermined key
// combinations (spec.md §4.5: "Copy=⌘C, Back=⌘[, Fullscreen=⌃⌘F, etc.").
var editingCombos = map[EditingAction]KeyCombo{
	EditingBack:       {KeyCode: 0x21, Modifier: ModCommand},       // ⌘[
	EditingForward:    {KeyCode: 0x1E, Modifier: ModCommand},       // ⌘]
	EditingCopy:       {KeyCode: 0x08, Modifier: ModCommand},       // ⌘C
	EditingCut:        {KeyCode: 0x07, Modifier: ModCommand},       // ⌘X
	EditingPaste:      {KeyCode: 0x09, Modifier: ModCommand},       // ⌘V
	EditingUndo:       {KeyCode: 0x06, Modifier: ModCommand},       // ⌘Z
	EditingRedo:       {KeyCode: 0x06, Modifier: ModCommand | ModShift},
	EditingSelectAll:  {KeyCode: 0x00, Modifier: ModCommand},       // ⌘A
	EditingFullscreen: {KeyCode: 0x03, Modifier: ModControl | ModCommand}, // ⌃⌘F
	EditingCursorUp:    {KeyCode: 0x7E},
	EditingCursorDown:  {KeyCode: 0x7D},
	EditingCursorLeft:  {KeyCode: 0x7B},
	EditingCursorRight: {KeyCode: 0x7C},
}

// Combo resolves an EditingAction to its predetermined KeyCombo. Actions
// driven by a system trigger instead of a synthesized combo (MiddleClick)
// return ok=false.
func (e EditingAction) Combo() (KeyCombo, bool) {
	c, ok := editingCombos[e]
	return c, ok
}

// Action is the tagged-variant type from spec.md §3. Exactly one of the
// payload fields is meaningful, selected by Kind.
type Action struct {
	Kind    ActionKind
	Inert   InertMode
	System  SystemAction
	Editing EditingAction
	Custom  KeyCombo
}

// InertPassthroughAction and InertSuppressedAction are the two zero-configuration
// Action values used when a mapping intentionally does nothing.
var (
	InertPassthroughAction = Action{Kind: ActionInert, Inert: InertPassThrough}
	InertSuppressedAction  = Action{Kind: ActionInert, Inert: InertSuppress}
)

// IsInert reports whether a is the pass-through or suppress variant.
func (a Action) IsInert() bool { return a.Kind == ActionInert }

// ContinuousCapable reports whether a can be driven by a DockSwipe gesture.
func (a Action) ContinuousCapable() bool {
	return a.Kind == ActionSystem && a.System.ContinuousCapable()
}
