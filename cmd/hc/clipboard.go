package main

import (
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(clearClipboardCmd)
}

// copyToClipboard writes a value to the system clipboard and schedules a
// detached clear. The clear runs in a separate process so it survives
// this short-lived CLI invocation.
func copyToClipboard(value string, clearAfterSeconds uint) error {
	if err := clipboard.WriteAll(value); err != nil {
		return err
	}
	if clearAfterSeconds > 0 {
		scheduleClipboardClear(clearAfterSeconds)
	}
	return nil
}

func scheduleClipboardClear(seconds uint) {
	exe, err := os.Executable()
	if err != nil {
		return
	}
	cmd := exec.Command(exe, "__clear-clipboard", strconv.FormatUint(uint64(seconds), 10))
	if err := cmd.Start(); err != nil {
		return
	}
	_ = cmd.Process.Release()
}

// clearClipboardCmd is the detached child spawned after a clipboard copy.
var clearClipboardCmd = &cobra.Command{
	Use:    "__clear-clipboard <seconds>",
	Hidden: true,
	Args:   cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seconds, err := strconv.Atoi(args[0])
		if err != nil || seconds < 0 {
			return nil
		}
		time.Sleep(time.Duration(seconds) * time.Second)
		return clipboard.WriteAll("")
	},
}
