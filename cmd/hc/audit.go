package main

import (
	"fmt"
	"strings"

	"hc/internal/cli"
	"hc/pkg/vault"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(auditCmd)
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check the vault for weak and reused secrets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := openVault()
		if err != nil {
			return err
		}

		// The reserved TOTP bucket holds base32 seeds, not passwords.
		var entries []*vault.Entry
		for _, e := range ctx.Vault.ListEntries() {
			if e.Name == vault.TotpEntryName {
				continue
			}
			entries = append(entries, e)
		}

		weak := cli.FindWeakFields(entries)
		duplicates, err := cli.FindDuplicates(entries)
		if err != nil {
			return err
		}

		if len(weak) == 0 && len(duplicates) == 0 {
			successf("No weak or reused secrets found in %d entries", len(entries))
			return nil
		}

		if len(weak) > 0 {
			fmt.Printf("Weak secrets (%d):\n", len(weak))
			for _, w := range weak {
				fmt.Printf("  %s/%s: %s\n", w.Entry, w.Field, w.Rating)
			}
		}
		if len(duplicates) > 0 {
			fmt.Printf("Reused secrets (%d groups):\n", len(duplicates))
			for _, g := range duplicates {
				fmt.Printf("  %d× %s\n", g.Count, strings.Join(g.References, ", "))
			}
		}
		return fmt.Errorf("audit found %d weak and %d reused secrets", len(weak), len(duplicates))
	},
}
