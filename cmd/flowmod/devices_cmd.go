package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sendmebits/flowmod/internal/devicereg"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Inspect attached HID mice and keyboards",
}

var devicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List attached mice and keyboards and whether flowmod treats each as external",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := devicereg.Start(nil)
		if err != nil {
			return fmt.Errorf("enumerate devices: %w", err)
		}
		defer registry.Stop()

		// IOHIDManager's initial matching callbacks arrive asynchronously;
		// give them a moment to land before reading the snapshot.
		time.Sleep(200 * time.Millisecond)

		devices := registry.Devices()
		if len(devices) == 0 {
			fmt.Println("no mice or keyboards detected")
			return nil
		}
		for _, d := range devices {
			kind := "unknown"
			switch d.Kind {
			case devicereg.KindMouse:
				kind = "mouse"
			case devicereg.KindKeyboard:
				kind = "keyboard"
			}
			party := "external"
			if d.FirstParty {
				party = "first-party"
			}
			fmt.Printf("%-8s %-11s vendor=0x%04X product=0x%04X  %s %s\n", kind, party, d.VendorID, d.ProductID, d.VendorName, d.ProductName)
		}
		return nil
	},
}

func init() {
	devicesCmd.AddCommand(devicesListCmd)
	rootCmd.AddCommand(devicesCmd)
}
