package main

import "testing"

func TestRootCommandHasSubcommands(t *testing.T) {
	expected := []string{"run", "config", "devices", "version"}
	found := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		found[c.Name()] = true
	}
	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestConfigCommandHasSubcommands(t *testing.T) {
	expected := []string{"path", "edit", "validate"}
	found := make(map[string]bool)
	for _, c := range configCmd.Commands() {
		found[c.Name()] = true
	}
	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected config subcommand %q not found", name)
		}
	}
}

func TestResolvedConfigPathFallsBackToFlag(t *testing.T) {
	configFlag = "/tmp/custom-flowmod.toml"
	defer func() { configFlag = "" }()

	if got := resolvedConfigPath(); got != configFlag {
		t.Fatalf("expected resolvedConfigPath to prefer the --config flag, got %q", got)
	}
}
