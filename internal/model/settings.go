package model

// SmoothLevel selects the scroll-animator preset, or disables smooth mode.
type SmoothLevel int

const (
	SmoothOff SmoothLevel = iota
	Smooth
	VerySmooth
)

// ModifierBehaviors holds the four modifier-driven scroll behaviors from
// spec.md §3 (Shift→horizontal, Option→precision, Control→fast,
// Command→zoom) plus their tunables.
type ModifierBehaviors struct {
	ShiftHorizontal  bool
	OptionPrecision  bool
	PrecisionScale   float64 // 0..1
	ControlFast      bool
	FastScale        float64 // >=1
	CommandZoom      bool
}

// DeviceOverrides lets the user assert "treat as external" regardless of
// what the Device Registry observes.
type DeviceOverrides struct {
	AssumeExternalMouse    bool
	AssumeExternalKeyboard bool
}

// Settings is the read-mostly snapshot spec.md §3 calls the "Settings
// snapshot": single-writer from configuration, read by every tap-callback
// path through the settings bridge.
type Settings struct {
	MasterMouseEnabled    bool
	MasterKeyboardEnabled bool

	ReverseScroll     bool
	SmoothScrollLevel SmoothLevel

	Modifiers ModifierBehaviors

	DragThresholdPixels float64
	ContinuousGesture   bool

	Overrides DeviceOverrides

	ExcludedBundleIDs map[string]struct{}

	ButtonMappings   *ButtonMap
	DirectionMapping *DragDirectionMap
	KeyboardRemaps   *KeyboardRemapTable

	// Derived from the Device Registry; refreshed by whatever publishes a
	// new Settings snapshot (see internal/settingsbridge).
	ExternalMousePresent    bool
	ExternalKeyboardPresent bool
}

// ExcludesApp reports whether bundleID is in the excluded-application set.
func (s *Settings) ExcludesApp(bundleID string) bool {
	if s == nil || s.ExcludedBundleIDs == nil {
		return false
	}
	_, excluded := s.ExcludedBundleIDs[bundleID]
	return excluded
}

// EffectiveExternalMouse reports whether mouse transforms should apply:
// either the registry observed an external mouse, or the user override
// asserts one.
func (s *Settings) EffectiveExternalMouse() bool {
	return s.ExternalMousePresent || s.Overrides.AssumeExternalMouse
}

// EffectiveExternalKeyboard is the keyboard analogue of EffectiveExternalMouse.
func (s *Settings) EffectiveExternalKeyboard() bool {
	return s.ExternalKeyboardPresent || s.Overrides.AssumeExternalKeyboard
}

// Defaults returns a Settings value matching flowmod's factory defaults:
// all transforms enabled, Smooth scroll level, no mappings configured.
func Defaults() *Settings {
	return &Settings{
		MasterMouseEnabled:    true,
		MasterKeyboardEnabled: true,
		SmoothScrollLevel:     Smooth,
		Modifiers: ModifierBehaviors{
			ShiftHorizontal: true,
			OptionPrecision: true,
			PrecisionScale:  0.25,
			ControlFast:     true,
			FastScale:       3.0,
			CommandZoom:     true,
		},
		DragThresholdPixels: 30,
		ContinuousGesture:   true,
		ExcludedBundleIDs:   make(map[string]struct{}),
		ButtonMappings:      NewButtonMap(),
		DirectionMapping:    &DragDirectionMap{},
		KeyboardRemaps:      NewKeyboardRemapTable(),
	}
}
