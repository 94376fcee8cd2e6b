package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/sendmebits/flowmod/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Locate, edit, or validate the configuration file",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path that would be used",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := resolvedConfigPath()
		if path == "" {
			path = config.DefaultConfigPath()
		}
		fmt.Println(path)
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the configuration file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := resolvedConfigPath()
		if path == "" {
			path = config.DefaultConfigPath()
			if _, err := os.Stat(path); os.IsNotExist(err) {
				if err := config.DefaultConfig().Save(path); err != nil {
					return fmt.Errorf("create default config: %w", err)
				}
			}
		}

		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vi"
		}
		c := exec.Command(editor, path)
		c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
		return c.Run()
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Parse the configuration file and report any errors",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := resolvedConfigPath()
		if path == "" {
			fmt.Println("no config file found, factory defaults would be used")
			return nil
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		if _, err := cfg.ToSettings(); err != nil {
			return fmt.Errorf("config loaded but does not translate to valid settings: %w", err)
		}
		fmt.Printf("%s is valid\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd, configEditCmd, configValidateCmd)
	rootCmd.AddCommand(configCmd)
}
