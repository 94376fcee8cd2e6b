package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version/Commit/BuildDate are injected via ldflags at release build time,
// matching the teacher pack's cobra convention.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var configFlag string

var rootCmd = &cobra.Command{
	Use:   "flowmod",
	Short: "Smooth scroll, gestures, and key remaps for external mice and keyboards",
	Long: `flowmod intercepts wheel, auxiliary-button, and key events from
external (non-built-in) mice and keyboards and re-injects synthetic
smooth scroll, DockSwipe gestures, magnification, and remapped keys.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(
		fmt.Sprintf("flowmod version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, BuildDate),
	)
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "path to config.toml (defaults to the standard search locations)")
}

// Execute runs the root command, exiting the process on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
