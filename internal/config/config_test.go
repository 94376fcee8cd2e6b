package config

import (
	"path/filepath"
	"testing"

	"github.com/sendmebits/flowmod/internal/model"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Scroll.SmoothScrollLevel != "smooth" {
		t.Fatalf("expected default smooth level, got %q", cfg.Scroll.SmoothScrollLevel)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.General.ExcludedApps = []string{"com.apple.Terminal"}
	cfg.Buttons = []ButtonBinding{{Button: 3, Action: "system:mission_control"}}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.General.ExcludedApps) != 1 || loaded.General.ExcludedApps[0] != "com.apple.Terminal" {
		t.Fatalf("excluded apps did not round-trip: %v", loaded.General.ExcludedApps)
	}
	if len(loaded.Buttons) != 1 || loaded.Buttons[0].Action != "system:mission_control" {
		t.Fatalf("button bindings did not round-trip: %v", loaded.Buttons)
	}
}

func TestValidateRejectsReservedButton(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Buttons = []ButtonBinding{{Button: 1, Action: "suppress"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for reserved button 1")
	}
}

func TestValidateRejectsUnknownDirection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DragDirections = []DirectionBinding{{Direction: "diagonal", Action: "suppress"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unknown direction")
	}
}

func TestToSettingsResolvesActionsAndMappings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Buttons = []ButtonBinding{{Button: 4, Action: "editing:copy"}}
	cfg.DragDirections = []DirectionBinding{{Direction: "up", Action: "system:mission_control"}}
	cfg.KeyboardRemaps = []KeyRemapBinding{{Source: "home", Action: "custom:0x73:function"}}

	settings, err := cfg.ToSettings()
	if err != nil {
		t.Fatalf("ToSettings: %v", err)
	}

	action, ok := settings.ButtonMappings.Lookup(4)
	if !ok || action.Editing != model.EditingCopy {
		t.Fatalf("button 4 mapping not resolved: %v, %v", action, ok)
	}

	dirAction, ok := settings.DirectionMapping.Lookup(model.DirUp)
	if !ok || dirAction.System != model.SystemMissionControl {
		t.Fatalf("direction mapping not resolved: %v, %v", dirAction, ok)
	}

	combo, _ := model.NamedKeyHome.Combo()
	remapAction, ok := settings.KeyboardRemaps.Lookup(combo)
	if !ok || remapAction.Kind != model.ActionCustom {
		t.Fatalf("keyboard remap not resolved: %v, %v", remapAction, ok)
	}
}

func TestParseActionPassthroughAndSuppress(t *testing.T) {
	a, err := ParseAction("passthrough")
	if err != nil || a.Inert != model.InertPassThrough {
		t.Fatalf("passthrough: %v, %v", a, err)
	}
	a, err = ParseAction("suppress")
	if err != nil || a.Inert != model.InertSuppress {
		t.Fatalf("suppress: %v, %v", a, err)
	}
}
