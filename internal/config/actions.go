package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sendmebits/flowmod/internal/model"
)

var systemActionNames = map[string]model.SystemAction{
	"mission_control":    model.SystemMissionControl,
	"app_expose":         model.SystemAppExpose,
	"show_desktop":       model.SystemShowDesktop,
	"launchpad":          model.SystemLaunchpad,
	"switch_space_left":  model.SystemSwitchSpaceLeft,
	"switch_space_right": model.SystemSwitchSpaceRight,
}

var editingActionNames = map[string]model.EditingAction{
	"back":         model.EditingBack,
	"forward":      model.EditingForward,
	"copy":         model.EditingCopy,
	"cut":          model.EditingCut,
	"paste":        model.EditingPaste,
	"undo":         model.EditingUndo,
	"redo":         model.EditingRedo,
	"select_all":   model.EditingSelectAll,
	"fullscreen":   model.EditingFullscreen,
	"middle_click": model.EditingMiddleClick,
	"cursor_up":    model.EditingCursorUp,
	"cursor_down":  model.EditingCursorDown,
	"cursor_left":  model.EditingCursorLeft,
	"cursor_right": model.EditingCursorRight,
}

var namedKeyNames = map[string]model.NamedKey{
	"home":           model.NamedKeyHome,
	"end":            model.NamedKeyEnd,
	"insert":         model.NamedKeyInsert,
	"forward_delete": model.NamedKeyForwardDelete,
	"page_up":        model.NamedKeyPageUp,
	"page_down":      model.NamedKeyPageDown,
	"print_screen":   model.NamedKeyPrintScreen,
}

// ParseAction parses the small grammar used in [[buttons]], [[drag_directions]],
// and editing-action values: "passthrough", "suppress", "system:<name>",
// "editing:<name>", or "custom:<keycode-hex>[:modifier[+modifier...]]".
func ParseAction(s string) (model.Action, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "passthrough":
		return model.InertPassthroughAction, nil
	case "suppress":
		return model.InertSuppressedAction, nil
	}

	kind, rest, ok := strings.Cut(s, ":")
	if !ok {
		return model.Action{}, fmt.Errorf("unrecognized action %q", s)
	}

	switch kind {
	case "system":
		sa, ok := systemActionNames[rest]
		if !ok {
			return model.Action{}, fmt.Errorf("unknown system action %q", rest)
		}
		return model.Action{Kind: model.ActionSystem, System: sa}, nil
	case "editing":
		ea, ok := editingActionNames[rest]
		if !ok {
			return model.Action{}, fmt.Errorf("unknown editing action %q", rest)
		}
		return model.Action{Kind: model.ActionEditing, Editing: ea}, nil
	case "custom":
		combo, err := parseCustomCombo(rest)
		if err != nil {
			return model.Action{}, err
		}
		return model.Action{Kind: model.ActionCustom, Custom: combo}, nil
	default:
		return model.Action{}, fmt.Errorf("unrecognized action kind %q", kind)
	}
}

// parseCustomCombo parses "0xNN" or "0xNN:mod+mod" into a KeyCombo.
func parseCustomCombo(s string) (model.KeyCombo, error) {
	parts := strings.SplitN(s, ":", 2)
	code, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 0, 16)
	if err != nil {
		return model.KeyCombo{}, fmt.Errorf("invalid key code %q: %w", parts[0], err)
	}

	combo := model.KeyCombo{KeyCode: uint16(code)}
	if len(parts) == 2 {
		mod, err := parseModifiers(parts[1])
		if err != nil {
			return model.KeyCombo{}, err
		}
		combo.Modifier = mod
	}
	return combo, nil
}

func parseModifiers(s string) (model.Modifier, error) {
	var mod model.Modifier
	for _, tok := range strings.Split(s, "+") {
		switch strings.ToLower(strings.TrimSpace(tok)) {
		case "control", "ctrl":
			mod |= model.ModControl
		case "option", "alt":
			mod |= model.ModOption
		case "shift":
			mod |= model.ModShift
		case "command", "cmd":
			mod |= model.ModCommand
		case "function", "fn":
			mod |= model.ModFunction
		case "":
			// allow trailing separators
		default:
			return 0, fmt.Errorf("unknown modifier %q", tok)
		}
	}
	return mod, nil
}

// parseKeyRemap parses a [[keyboard_remaps]] entry. source is either a
// named key ("home") or "keycode:modifiers" ("0x73:function"); action
// follows ParseAction's grammar.
func parseKeyRemap(source, actionStr string) (model.KeyboardRemap, error) {
	action, err := ParseAction(actionStr)
	if err != nil {
		return model.KeyboardRemap{}, err
	}

	if named, ok := namedKeyNames[strings.ToLower(strings.TrimSpace(source))]; ok {
		return model.KeyboardRemap{IsNamed: true, Named: named, Target: action}, nil
	}

	combo, err := parseCustomCombo(source)
	if err != nil {
		return model.KeyboardRemap{}, fmt.Errorf("source %q: %w", source, err)
	}
	return model.KeyboardRemap{IsNamed: false, Custom: combo, Target: action}, nil
}
