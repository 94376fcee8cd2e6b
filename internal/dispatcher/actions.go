package dispatcher

import "github.com/sendmebits/flowmod/internal/model"

// systemCombos gives each discrete (non-DockSwipe) invocation of a
// SystemAction its default macOS keyboard-shortcut equivalent, the same
// combo System Settings binds out of the box. A continuous DockSwipe
// gesture never goes through this table — only a button/key mapping or a
// below-threshold drag commit does — so these combos exist purely as the
// discrete fallback.
var systemCombos = map[model.SystemAction]model.KeyCombo{
	model.SystemMissionControl:    {KeyCode: 0x7E, Modifier: model.ModControl}, // ^Up
	model.SystemAppExpose:         {KeyCode: 0x7D, Modifier: model.ModControl}, // ^Down
	model.SystemShowDesktop:       {KeyCode: 0x67, Modifier: model.ModFunction}, // fn+F11
	model.SystemLaunchpad:         {KeyCode: 0x82},                            // F4 / Launchpad key
	model.SystemSwitchSpaceLeft:   {KeyCode: 0x7B, Modifier: model.ModControl}, // ^Left
	model.SystemSwitchSpaceRight:  {KeyCode: 0x7C, Modifier: model.ModControl}, // ^Right
}

// comboFor resolves action to the combo it should synthesize, covering
// all three non-inert ActionKind variants.
func comboFor(action model.Action) (model.KeyCombo, bool) {
	switch action.Kind {
	case model.ActionSystem:
		c, ok := systemCombos[action.System]
		return c, ok
	case model.ActionEditing:
		return action.Editing.Combo()
	case model.ActionCustom:
		return action.Custom, true
	default:
		return model.KeyCombo{}, false
	}
}

// isPressStyle reports whether action should fire immediately on button
// down rather than waiting for up. System actions (space switches, Mission
// Control) read as press-style shortcuts; editing/custom combos mimic a
// normal click-release.
func isPressStyle(action model.Action) bool {
	return action.Kind == model.ActionSystem
}
