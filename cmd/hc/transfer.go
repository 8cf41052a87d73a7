package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"hc/internal/cli"
	"hc/pkg/crypto"
	"hc/pkg/importer"
	"hc/pkg/store"
	"hc/pkg/vault"

	"github.com/spf13/cobra"
)

var (
	importOverwrite bool
	importFormat    string
)

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVar(&importOverwrite, "overwrite", false, "Replace entries that already exist")
	importCmd.Flags().StringVar(&importFormat, "format", "", "Import from another password manager ("+strings.Join(importer.Sources(), ", ")+")")
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the vault to a password-encrypted file",
	Long: `Export the vault to a portable encrypted file.

The export is protected by a password alone, so it can be imported on a
machine without this install's secret key.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := openVault()
		if err != nil {
			return err
		}

		password, err := cli.ReadExportPassword()
		if err != nil {
			return err
		}
		defer crypto.SecureWipe(password)

		plaintext, err := json.Marshal(ctx.Vault)
		if err != nil {
			return fmt.Errorf("failed to encode vault: %w", err)
		}
		defer crypto.SecureWipe(plaintext)

		blob, err := crypto.EncryptForExport(plaintext, string(password))
		if err != nil {
			return err
		}
		if err := store.WriteFileAtomic(args[0], blob); err != nil {
			return err
		}

		successf("Exported %d entries to %s", len(ctx.Vault.Entries), args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import entries from an exported file or another password manager",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		blob, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read import file: %w", err)
		}

		var entries []*vault.Entry
		if importFormat != "" {
			parser, err := importer.ParserFor(importer.Source(importFormat))
			if err != nil {
				return err
			}
			result, err := parser.Parse(blob)
			if err != nil {
				return err
			}
			for _, w := range result.Warnings {
				warnf("%s", w)
			}
			if result.Skipped > 0 {
				warnf("skipped %d items with no usable data", result.Skipped)
			}
			entries = result.Entries
		} else {
			password, err := cli.ReadPassword("Export password: ")
			if err != nil {
				return err
			}
			defer crypto.SecureWipe(password)

			plaintext, err := crypto.DecryptForImport(blob, string(password))
			if err != nil {
				return err
			}
			defer crypto.SecureWipe(plaintext)

			var imported vault.Vault
			if err := json.Unmarshal(plaintext, &imported); err != nil {
				return fmt.Errorf("import file is not a vault export: %w", err)
			}
			for _, entry := range imported.Entries {
				entries = append(entries, entry)
			}
		}

		ctx, err := openVault()
		if err != nil {
			return err
		}

		added, replaced, skipped := 0, 0, 0
		for _, entry := range entries {
			switch {
			case !ctx.Vault.HasEntry(entry.Name):
				if err := ctx.Vault.AddEntry(entry); err != nil {
					return err
				}
				added++
			case importOverwrite:
				if _, err := ctx.Vault.RemoveEntry(entry.Name); err != nil {
					return err
				}
				if err := ctx.Vault.AddEntry(entry); err != nil {
					return err
				}
				replaced++
			default:
				skipped++
			}
		}

		if err := ctx.Save(); err != nil {
			return err
		}
		successf("Imported %d entries (%d replaced, %d skipped)", added, replaced, skipped)
		if skipped > 0 && !importOverwrite {
			fmt.Println("Use --overwrite to replace existing entries.")
		}
		return nil
	},
}
