package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(completeEntriesCmd)

	// Entry-name completion feeds off the session metadata cache, so
	// completing never prompts for a password or decrypts a vault.
	entryGetCmd.ValidArgsFunction = entryNameCompletion
	entryEditCmd.ValidArgsFunction = entryNameCompletion
	entryRmCmd.ValidArgsFunction = entryNameCompletion
	totpGetCmd.ValidArgsFunction = entryNameCompletion
	totpRmCmd.ValidArgsFunction = entryNameCompletion
	sshLoadCmd.ValidArgsFunction = entryNameCompletion
	sshUnloadCmd.ValidArgsFunction = entryNameCompletion
}

func cachedEntryNames() []string {
	sess, _, _, err := selectedSession()
	if err != nil {
		return nil
	}
	return sess.CachedEntryNames()
}

func entryNameCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return cachedEntryNames(), cobra.ShellCompDirectiveNoFileComp
}

// completeEntriesCmd prints cached entry names for external completion
// scripts.
var completeEntriesCmd = &cobra.Command{
	Use:    "__complete-entries",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range cachedEntryNames() {
			fmt.Println(name)
		}
		return nil
	},
}
