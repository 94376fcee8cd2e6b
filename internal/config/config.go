// Package config loads flowmod's TOML configuration file, grounded on
// y3owk1n-govim's internal/config.Config. The schema mirrors
// internal/model.Settings field-for-field so loading is a straight
// structural translation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/sendmebits/flowmod/internal/model"
	"github.com/sendmebits/flowmod/internal/telemetry"
)

// GeneralConfig mirrors the master-enable and excluded-app fields of
// model.Settings.
type GeneralConfig struct {
	MasterMouseEnabled    bool     `toml:"master_mouse_enabled"`
	MasterKeyboardEnabled bool     `toml:"master_keyboard_enabled"`
	ExcludedApps          []string `toml:"excluded_apps"`
}

// ScrollConfig mirrors model.Settings' scroll-specific fields.
type ScrollConfig struct {
	ReverseScroll     bool   `toml:"reverse_scroll"`
	SmoothScrollLevel string `toml:"smooth_scroll_level"` // off, smooth, very_smooth
}

// ModifiersConfig mirrors model.ModifierBehaviors.
type ModifiersConfig struct {
	ShiftHorizontal bool    `toml:"shift_horizontal"`
	OptionPrecision bool    `toml:"option_precision"`
	PrecisionScale  float64 `toml:"precision_scale"`
	ControlFast     bool    `toml:"control_fast"`
	FastScale       float64 `toml:"fast_scale"`
	CommandZoom     bool    `toml:"command_zoom"`
}

// GesturesConfig mirrors the drag-gesture fields of model.Settings.
type GesturesConfig struct {
	DragThresholdPixels float64 `toml:"drag_threshold_pixels"`
	ContinuousGesture   bool    `toml:"continuous_gesture"`
}

// DevicesConfig mirrors model.DeviceOverrides.
type DevicesConfig struct {
	AssumeExternalMouse    bool `toml:"assume_external_mouse"`
	AssumeExternalKeyboard bool `toml:"assume_external_keyboard"`
}

// ButtonBinding is one entry of the [[buttons]] array-of-tables: an
// auxiliary mouse button mapped to a named or custom action.
type ButtonBinding struct {
	Button int    `toml:"button"`
	Action string `toml:"action"`
}

// DirectionBinding is one entry of the [[drag_directions]] array-of-tables.
type DirectionBinding struct {
	Direction string `toml:"direction"`
	Action    string `toml:"action"`
}

// KeyRemapBinding is one entry of the [[keyboard_remaps]] array-of-tables.
// Source is either a named key ("home", "end", ...) or "keycode:modifiers"
// (e.g. "0x73:function"); Action follows the same grammar as button/drag
// actions.
type KeyRemapBinding struct {
	Source string `toml:"source"`
	Action string `toml:"action"`
}

// LoggingConfig is reused verbatim in field layout from the teacher pack's
// LoggingConfig, translated to telemetry.Config by ToTelemetryConfig.
type LoggingConfig struct {
	LogLevel           string `toml:"log_level"`
	LogFile            string `toml:"log_file"`
	StructuredLogging  bool   `toml:"structured_logging"`
	DisableFileLogging bool   `toml:"disable_file_logging"`
	MaxFileSize        int    `toml:"max_file_size"`
	MaxBackups         int    `toml:"max_backups"`
	MaxAge             int    `toml:"max_age"`
}

// Config is the root TOML document.
type Config struct {
	General   GeneralConfig   `toml:"general"`
	Scroll    ScrollConfig    `toml:"scroll"`
	Modifiers ModifiersConfig `toml:"modifiers"`
	Gestures  GesturesConfig  `toml:"gestures"`
	Devices   DevicesConfig   `toml:"devices"`
	Logging   LoggingConfig   `toml:"logging"`

	Buttons        []ButtonBinding    `toml:"buttons"`
	DragDirections []DirectionBinding `toml:"drag_directions"`
	KeyboardRemaps []KeyRemapBinding  `toml:"keyboard_remaps"`
}

// DefaultConfig mirrors model.Defaults() in TOML-schema form.
func DefaultConfig() *Config {
	d := model.Defaults()
	return &Config{
		General: GeneralConfig{
			MasterMouseEnabled:    d.MasterMouseEnabled,
			MasterKeyboardEnabled: d.MasterKeyboardEnabled,
			ExcludedApps:          []string{},
		},
		Scroll: ScrollConfig{
			ReverseScroll:     d.ReverseScroll,
			SmoothScrollLevel: smoothLevelName(d.SmoothScrollLevel),
		},
		Modifiers: ModifiersConfig{
			ShiftHorizontal: d.Modifiers.ShiftHorizontal,
			OptionPrecision: d.Modifiers.OptionPrecision,
			PrecisionScale:  d.Modifiers.PrecisionScale,
			ControlFast:     d.Modifiers.ControlFast,
			FastScale:       d.Modifiers.FastScale,
			CommandZoom:     d.Modifiers.CommandZoom,
		},
		Gestures: GesturesConfig{
			DragThresholdPixels: d.DragThresholdPixels,
			ContinuousGesture:   d.ContinuousGesture,
		},
		Logging: LoggingConfig{
			LogLevel:           "info",
			StructuredLogging:  false,
			DisableFileLogging: true,
			MaxFileSize:        10,
			MaxBackups:         5,
			MaxAge:             30,
		},
	}
}

// FindConfigFile searches default locations, preferring XDG-style
// ~/.config over ~/Library/Application Support, matching the teacher
// pack's two-location search order.
func FindConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	candidate := filepath.Join(home, ".config", "flowmod", "config.toml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}

	candidate = filepath.Join(home, "Library", "Application Support", "flowmod", "config.toml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}

	return ""
}

// DefaultConfigPath returns the preferred location for a newly created
// config file (the XDG-style path FindConfigFile prefers), regardless of
// whether anything exists there yet.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "flowmod", "config.toml")
	}
	return filepath.Join(home, ".config", "flowmod", "config.toml")
}

// Load reads and validates the TOML file at path, falling back to
// DefaultConfig when path is empty or the discovered file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = FindConfigFile()
	}
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Save encodes cfg to path as TOML, creating parent directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	// #nosec G304 -- path comes from FindConfigFile or an operator-supplied flag.
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Validate checks cross-field invariants the TOML decoder cannot express
// on its own: primary-button reservation, scale bounds, smooth-level name.
func (c *Config) Validate() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.LogLevel] {
		return errors.New("logging.log_level must be one of: debug, info, warn, error")
	}

	if _, ok := parseSmoothLevel(c.Scroll.SmoothScrollLevel); !ok {
		return fmt.Errorf("scroll.smooth_scroll_level must be one of: off, smooth, very_smooth")
	}

	if c.Modifiers.PrecisionScale <= 0 || c.Modifiers.PrecisionScale > 1 {
		return errors.New("modifiers.precision_scale must be in (0, 1]")
	}
	if c.Modifiers.FastScale < 1 {
		return errors.New("modifiers.fast_scale must be >= 1")
	}
	if c.Gestures.DragThresholdPixels <= 0 {
		return errors.New("gestures.drag_threshold_pixels must be positive")
	}

	for _, b := range c.Buttons {
		if b.Button == 0 || b.Button == 1 {
			return fmt.Errorf("buttons: button %d is reserved (primary/secondary click)", b.Button)
		}
	}
	for _, d := range c.DragDirections {
		if _, ok := parseDirection(d.Direction); !ok {
			return fmt.Errorf("drag_directions: unknown direction %q", d.Direction)
		}
	}
	return nil
}

// ToTelemetryConfig translates the [logging] table into telemetry.Config.
func (c *Config) ToTelemetryConfig() telemetry.Config {
	return telemetry.Config{
		Level:              c.Logging.LogLevel,
		LogFile:            c.Logging.LogFile,
		Structured:         c.Logging.StructuredLogging,
		DisableFileLogging: c.Logging.DisableFileLogging,
		MaxFileSizeMB:      c.Logging.MaxFileSize,
		MaxBackups:         c.Logging.MaxBackups,
		MaxAgeDays:         c.Logging.MaxAge,
	}
}

// ToSettings translates the decoded document into a model.Settings
// snapshot, resolving every action/direction/key grammar string through
// ParseAction, parseDirection, and parseKeyRemap.
func (c *Config) ToSettings() (*model.Settings, error) {
	s := model.Defaults()

	s.MasterMouseEnabled = c.General.MasterMouseEnabled
	s.MasterKeyboardEnabled = c.General.MasterKeyboardEnabled
	s.ExcludedBundleIDs = make(map[string]struct{}, len(c.General.ExcludedApps))
	for _, bundle := range c.General.ExcludedApps {
		bundle = strings.TrimSpace(bundle)
		if bundle != "" {
			s.ExcludedBundleIDs[bundle] = struct{}{}
		}
	}

	s.ReverseScroll = c.Scroll.ReverseScroll
	level, ok := parseSmoothLevel(c.Scroll.SmoothScrollLevel)
	if !ok {
		return nil, fmt.Errorf("unknown smooth_scroll_level %q", c.Scroll.SmoothScrollLevel)
	}
	s.SmoothScrollLevel = level

	s.Modifiers = model.ModifierBehaviors{
		ShiftHorizontal: c.Modifiers.ShiftHorizontal,
		OptionPrecision: c.Modifiers.OptionPrecision,
		PrecisionScale:  c.Modifiers.PrecisionScale,
		ControlFast:     c.Modifiers.ControlFast,
		FastScale:       c.Modifiers.FastScale,
		CommandZoom:     c.Modifiers.CommandZoom,
	}

	s.DragThresholdPixels = c.Gestures.DragThresholdPixels
	s.ContinuousGesture = c.Gestures.ContinuousGesture
	s.Overrides = model.DeviceOverrides{
		AssumeExternalMouse:    c.Devices.AssumeExternalMouse,
		AssumeExternalKeyboard: c.Devices.AssumeExternalKeyboard,
	}

	buttons := model.NewButtonMap()
	for _, b := range c.Buttons {
		action, err := ParseAction(b.Action)
		if err != nil {
			return nil, fmt.Errorf("buttons: button %d: %w", b.Button, err)
		}
		mapping, err := model.NewMouseButtonMapping(b.Button, action)
		if err != nil {
			return nil, fmt.Errorf("buttons: %w", err)
		}
		buttons.Add(mapping)
	}
	s.ButtonMappings = buttons

	var directions model.DragDirectionMap
	for _, d := range c.DragDirections {
		dir, ok := parseDirection(d.Direction)
		if !ok {
			return nil, fmt.Errorf("drag_directions: unknown direction %q", d.Direction)
		}
		action, err := ParseAction(d.Action)
		if err != nil {
			return nil, fmt.Errorf("drag_directions: %w", err)
		}
		directions.Set(dir, action)
	}
	s.DirectionMapping = &directions

	remaps := model.NewKeyboardRemapTable()
	for _, k := range c.KeyboardRemaps {
		remap, err := parseKeyRemap(k.Source, k.Action)
		if err != nil {
			return nil, fmt.Errorf("keyboard_remaps: %w", err)
		}
		remaps.Add(remap)
	}
	s.KeyboardRemaps = remaps

	return s, nil
}

func smoothLevelName(l model.SmoothLevel) string {
	switch l {
	case model.SmoothOff:
		return "off"
	case model.VerySmooth:
		return "very_smooth"
	default:
		return "smooth"
	}
}

func parseSmoothLevel(name string) (model.SmoothLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "off":
		return model.SmoothOff, true
	case "smooth":
		return model.Smooth, true
	case "very_smooth":
		return model.VerySmooth, true
	default:
		return 0, false
	}
}

func parseDirection(name string) (model.Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "up":
		return model.DirUp, true
	case "down":
		return model.DirDown, true
	case "left":
		return model.DirLeft, true
	case "right":
		return model.DirRight, true
	default:
		return 0, false
	}
}
