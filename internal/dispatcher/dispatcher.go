// Package dispatcher resolves and executes the Action produced by a
// button or keyboard remap (spec.md §4.5): synthesizing a key combo,
// a middle-click, or simply doing nothing for the inert variants.
//
// Grounded on other_examples' hotkey-tap_darwin.go's canonical
// modifier-mask comparison (generalized here from one fixed hotkey to the
// full KeyboardRemapTable; autorepeat key-downs are each dispatched),
// and y3owk1n-govim's internal/hotkeys/manager.go mutex-guarded
// callback-registry idiom, informing the excluded-app gating below.
package dispatcher

import (
	"time"

	"go.uber.org/zap"

	"github.com/sendmebits/flowmod/internal/model"
	"github.com/sendmebits/flowmod/internal/telemetry"
)

// dispatchLogInterval bounds how often DispatchKey may log: a held key's
// autorepeat can arrive well above any sane log rate.
const dispatchLogInterval = 2 * time.Second

// Poster is the subset of internal/eventsource's synthesis API the
// dispatcher needs. Declared locally so dispatcher.go stays portable; the
// darwin adapter is in poster_darwin.go.
type Poster interface {
	PostKeyCombo(combo model.KeyCombo)
	PostMiddleClick()
}

// Dispatcher executes resolved Actions and runs the keyboard-remap lookup
// pipeline spec.md §4.5 describes.
type Dispatcher struct {
	settings  func() *model.Settings
	poster    Poster
	frontmost func() string // current frontmost app's bundle identifier

	log        *zap.Logger
	logLimiter *telemetry.RateLimiter
}

// New builds a Dispatcher. frontmost is typically backed by an
// NSWorkspace.frontmostApplication query (see frontmost_darwin.go). log may
// be nil, in which case key-dispatch logging is a no-op.
func New(settings func() *model.Settings, poster Poster, frontmost func() string, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{settings: settings, poster: poster, frontmost: frontmost, log: log, logLimiter: telemetry.NewRateLimiter(dispatchLogInterval, 1)}
}

// Execute runs action unconditionally: button and direction dispatch have
// already decided the action applies by the time Execute is called.
// Implements gestureengine.ActionExecutor.
func (d *Dispatcher) Execute(action model.Action) {
	if action.IsInert() {
		return
	}
	if action.Kind == model.ActionEditing && action.Editing == model.EditingMiddleClick {
		d.poster.PostMiddleClick()
		return
	}
	if combo, ok := comboFor(action); ok {
		d.poster.PostKeyCombo(combo)
	}
}

// DispatchButton resolves and, if warranted, executes the action mapped
// to an auxiliary button (button numbers 2 and above; 0/1 are never
// remappable and never reach this path). down reports whether this call
// is for the button-down edge. Returns whether the triggering event
// should be suppressed.
func (d *Dispatcher) DispatchButton(button int, down bool) bool {
	settings := d.settings()
	if settings == nil || !settings.MasterMouseEnabled {
		return false
	}
	action, ok := settings.ButtonMappings.Lookup(button)
	if !ok {
		return false
	}
	if action.IsInert() {
		return action.Inert == model.InertSuppress
	}

	press := isPressStyle(action)
	if down == press {
		d.Execute(action)
	}
	return true
}

// DispatchKey runs the keyboard-remap pipeline for a canonical key combo:
// gated on the master keyboard switch, an external keyboard actually
// being present, and the frontmost app not being excluded (spec.md §4.5).
// Executes the mapped action itself and returns it, together with whether
// the key event should be suppressed; an unmapped key always passes
// through unchanged, and an inert mapping is suppressed only in its
// suppress mode.
func (d *Dispatcher) DispatchKey(combo model.KeyCombo) (model.Action, bool) {
	settings := d.settings()
	if settings == nil || !settings.MasterKeyboardEnabled {
		return model.Action{}, false
	}
	if !settings.EffectiveExternalKeyboard() {
		return model.Action{}, false
	}
	if d.frontmost != nil && settings.ExcludesApp(d.frontmost()) {
		return model.Action{}, false
	}

	target, ok := settings.KeyboardRemaps.Lookup(combo)
	if !ok {
		return model.Action{}, false
	}
	if target.IsInert() {
		return target, target.Inert == model.InertSuppress
	}

	d.Execute(target)
	if d.logLimiter.Allow() {
		d.log.Debug("key remap dispatched",
			zap.Uint16("key_code", combo.KeyCode),
			zap.Uint64("modifier", uint64(combo.Modifier)))
	}
	return target, true
}
