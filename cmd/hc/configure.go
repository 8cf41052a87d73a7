package main

import (
	"fmt"
	"strconv"

	"hc/pkg/config"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSessionTimeoutCmd)
	configCmd.AddCommand(configClipboardClearCmd)
	configCmd.AddCommand(configBiometricCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		cfg, err := config.Load(dir)
		if err != nil {
			return err
		}
		fmt.Printf("session_timeout_minutes: %d\n", cfg.SessionTimeoutMinutes)
		fmt.Printf("clipboard_clear_seconds: %d\n", cfg.ClipboardClearSeconds)
		fmt.Printf("enable_biometric: %t\n", cfg.EnableBiometric)
		return nil
	},
}

func updateConfig(change func(*config.Config) error) error {
	dir, err := config.Dir()
	if err != nil {
		return err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	if err := change(&cfg); err != nil {
		return err
	}
	return cfg.Save(dir)
}

var configSessionTimeoutCmd = &cobra.Command{
	Use:   "session-timeout <minutes>",
	Short: "Set the session timeout in minutes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil || minutes == 0 {
			return fmt.Errorf("invalid timeout %q (expected a positive number of minutes)", args[0])
		}
		if err := updateConfig(func(c *config.Config) error {
			c.SessionTimeoutMinutes = uint(minutes)
			return nil
		}); err != nil {
			return err
		}
		successf("Session timeout set to %d minutes", minutes)
		return nil
	},
}

var configClipboardClearCmd = &cobra.Command{
	Use:   "clipboard-clear <seconds>",
	Short: "Set the clipboard clear delay in seconds (0 disables)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seconds, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid delay %q (expected a number of seconds)", args[0])
		}
		if err := updateConfig(func(c *config.Config) error {
			c.ClipboardClearSeconds = uint(seconds)
			return nil
		}); err != nil {
			return err
		}
		successf("Clipboard clear delay set to %d seconds", seconds)
		return nil
	},
}

var configBiometricCmd = &cobra.Command{
	Use:   "biometric <on|off>",
	Short: "Enable or disable the biometric unlock gate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var enable bool
		switch args[0] {
		case "on":
			enable = true
		case "off":
			enable = false
		default:
			return fmt.Errorf("invalid value %q (expected on or off)", args[0])
		}
		if err := updateConfig(func(c *config.Config) error {
			c.EnableBiometric = enable
			return nil
		}); err != nil {
			return err
		}
		successf("Biometric unlock %s", args[0])
		return nil
	},
}
