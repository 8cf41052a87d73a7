package main

import (
	"fmt"

	"hc/pkg/totp"
	"hc/pkg/vault"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(totpCmd)
	totpCmd.AddCommand(totpAddCmd)
	totpCmd.AddCommand(totpGetCmd)
	totpCmd.AddCommand(totpListCmd)
	totpCmd.AddCommand(totpRmCmd)
}

var totpCmd = &cobra.Command{
	Use:   "totp",
	Short: "Manage TOTP seeds",
}

// totpBucket returns the reserved seeds entry, creating it on demand.
func totpBucket(v *vault.Vault, create bool) (*vault.Entry, error) {
	if entry, err := v.GetEntry(vault.TotpEntryName); err == nil {
		return entry, nil
	}
	if !create {
		return nil, fmt.Errorf("no TOTP seeds configured")
	}
	entry := vault.NewEntry(vault.TotpEntryName, nil, "")
	if err := v.AddEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

var totpAddCmd = &cobra.Command{
	Use:   "add <entry> <seed>",
	Short: "Store a base32 TOTP seed for an entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, seed := args[0], args[1]
		if err := totp.ValidateSeed(seed); err != nil {
			return err
		}

		ctx, err := openVault()
		if err != nil {
			return err
		}
		bucket, err := totpBucket(ctx.Vault, true)
		if err != nil {
			return err
		}
		bucket.SetField(name, seed)
		if err := ctx.Save(); err != nil {
			return err
		}
		successf("TOTP seed stored for '%s'", name)
		return nil
	},
}

var totpGetCmd = &cobra.Command{
	Use:   "get <entry>",
	Short: "Show the current TOTP code (and copy it)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := openVault()
		if err != nil {
			return err
		}
		bucket, err := totpBucket(ctx.Vault, false)
		if err != nil {
			return err
		}
		seed, err := bucket.GetField(args[0])
		if err != nil {
			return fmt.Errorf("no TOTP seed for entry %q", args[0])
		}

		code, err := totp.GenerateCode(seed)
		if err != nil {
			return err
		}
		fmt.Printf("%s (valid for %d seconds)\n", code, totp.RemainingSeconds())

		deps, err := appDeps()
		if err != nil {
			return err
		}
		if err := copyToClipboard(code, deps.Config.ClipboardClearSeconds); err != nil {
			warnf("could not copy to clipboard: %v", err)
		}
		return nil
	},
}

var totpListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries with TOTP seeds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := openVault()
		if err != nil {
			return err
		}
		bucket, err := totpBucket(ctx.Vault, false)
		if err != nil || len(bucket.Fields) == 0 {
			fmt.Println("No TOTP seeds configured.")
			return nil
		}
		for _, name := range sortedFieldNames(bucket) {
			fmt.Println(name)
		}
		return nil
	},
}

var totpRmCmd = &cobra.Command{
	Use:   "rm <entry>",
	Short: "Remove an entry's TOTP seed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := openVault()
		if err != nil {
			return err
		}
		bucket, err := totpBucket(ctx.Vault, false)
		if err != nil {
			return err
		}
		if !bucket.RemoveField(args[0]) {
			return fmt.Errorf("no TOTP seed for entry %q", args[0])
		}
		if err := ctx.Save(); err != nil {
			return err
		}
		successf("TOTP seed removed for '%s'", args[0])
		return nil
	},
}
