package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hc/internal/cli"
	"hc/pkg/totp"
	"hc/pkg/vault"

	"github.com/spf13/cobra"
)

// Entry add flags.
var (
	addFields       []string
	addFileFields   []string
	addNotes        string
	addGenerate     bool
	addGenLength    int
	addGenMemorable bool
	addGenWords     int
	addGenNoUpper   bool
	addGenNoLower   bool
	addGenNoDigits  bool
	addGenNoSymbols bool
)

// Entry get flags.
var (
	getClip     string
	getShow     bool
	getTotpCode bool
)

// Entry edit flags.
var (
	editFields     []string
	editFileFields []string
	editRmFields   []string
	editNotes      string
)

var entryRmForce bool

func init() {
	rootCmd.AddCommand(entryCmd)
	entryCmd.AddCommand(entryAddCmd)
	entryCmd.AddCommand(entryGetCmd)
	entryCmd.AddCommand(entryListCmd)
	entryCmd.AddCommand(entryEditCmd)
	entryCmd.AddCommand(entryRmCmd)

	entryAddCmd.Flags().StringArrayVarP(&addFields, "field", "f", nil, "Field value (key=value, can be repeated)")
	entryAddCmd.Flags().StringArrayVar(&addFileFields, "file", nil, "Field from file contents (key=path, can be repeated)")
	entryAddCmd.Flags().StringVar(&addNotes, "notes", "", "Free-text notes")
	entryAddCmd.Flags().BoolVarP(&addGenerate, "generate", "g", false, "Generate a random 'password' field")
	entryAddCmd.Flags().IntVar(&addGenLength, "gen-length", 20, "Generated password length")
	entryAddCmd.Flags().BoolVarP(&addGenMemorable, "gen-memorable", "m", false, "Generate a memorable passphrase instead")
	entryAddCmd.Flags().IntVarP(&addGenWords, "gen-words", "w", 4, "Words in the generated passphrase")
	entryAddCmd.Flags().BoolVar(&addGenNoUpper, "gen-no-uppercase", false, "Exclude uppercase from the generated password")
	entryAddCmd.Flags().BoolVar(&addGenNoLower, "gen-no-lowercase", false, "Exclude lowercase from the generated password")
	entryAddCmd.Flags().BoolVar(&addGenNoDigits, "gen-no-digits", false, "Exclude digits from the generated password")
	entryAddCmd.Flags().BoolVar(&addGenNoSymbols, "gen-no-symbols", false, "Exclude symbols from the generated password")

	entryGetCmd.Flags().StringVarP(&getClip, "clip", "c", "", "Copy a field to the clipboard (defaults to 'password')")
	entryGetCmd.Flags().Lookup("clip").NoOptDefVal = vault.PasswordField
	entryGetCmd.Flags().BoolVar(&getShow, "show", false, "Show field values")
	entryGetCmd.Flags().BoolVar(&getTotpCode, "totp", false, "Show the entry's TOTP code")

	entryEditCmd.Flags().StringArrayVarP(&editFields, "field", "f", nil, "Add or update field (key=value, can be repeated)")
	entryEditCmd.Flags().StringArrayVar(&editFileFields, "file", nil, "Add or update field from file (key=path)")
	entryEditCmd.Flags().StringArrayVarP(&editRmFields, "rm-field", "d", nil, "Remove field by key")
	entryEditCmd.Flags().StringVar(&editNotes, "notes", "", "Replace notes")

	entryRmCmd.Flags().BoolVar(&entryRmForce, "force", false, "Skip confirmation")
}

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Manage vault entries",
}

var entryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		fields, err := parseFieldFlags(addFields)
		if err != nil {
			return err
		}
		if err := addFileFieldValues(fields, addFileFields); err != nil {
			return err
		}

		if addGenerate || addGenMemorable {
			password, err := generateFieldValue()
			if err != nil {
				return err
			}
			fields[vault.PasswordField] = password
		}

		// Nothing specified: prompt for a password with echo off.
		if len(fields) == 0 {
			password, err := cli.ReadPassword(fmt.Sprintf("Password for '%s': ", name))
			if err != nil {
				return err
			}
			fields[vault.PasswordField] = string(password)
		}

		ctx, err := openVault()
		if err != nil {
			return err
		}
		if err := ctx.Vault.AddEntry(vault.NewEntry(name, fields, addNotes)); err != nil {
			return err
		}
		if err := ctx.Save(); err != nil {
			return err
		}

		successf("Entry '%s' added with %d field(s)", name, len(fields))
		for field, value := range fields {
			if strings.Contains(strings.ToLower(field), "password") {
				fmt.Printf("  %s strength: %s\n", field, cli.FieldStrength(field, value))
			}
		}
		return nil
	},
}

var entryGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Show an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := openVault()
		if err != nil {
			return err
		}
		entry, err := ctx.Vault.GetEntry(args[0])
		if err != nil {
			return err
		}

		if getTotpCode {
			return showTotpCode(ctx.Vault, entry.Name)
		}

		fmt.Printf("%s\n", entry.Name)
		for _, field := range sortedFieldNames(entry) {
			if getShow {
				fmt.Printf("  %s: %s\n", field, entry.Fields[field])
			} else {
				fmt.Printf("  %s: ********\n", field)
			}
		}
		if entry.Notes != "" {
			fmt.Printf("  notes: %s\n", entry.Notes)
		}

		if cmd.Flags().Changed("clip") {
			field, value, err := clipTarget(entry, getClip)
			if err != nil {
				return err
			}
			deps, err := appDeps()
			if err != nil {
				return err
			}
			if err := copyToClipboard(value, deps.Config.ClipboardClearSeconds); err != nil {
				return err
			}
			successf("Copied '%s' to clipboard (clears in %d seconds)", field, deps.Config.ClipboardClearSeconds)
		}
		return nil
	},
}

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := openVault()
		if err != nil {
			return err
		}

		entries := ctx.Vault.ListEntries()
		if len(entries) == 0 {
			fmt.Println("No entries found.")
			return nil
		}
		for _, entry := range entries {
			fmt.Printf("%s\t(%s)\n", entry.Name, strings.Join(sortedFieldNames(entry), ", "))
		}
		return nil
	},
}

var entryEditCmd = &cobra.Command{
	Use:   "edit <name>",
	Short: "Edit an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := openVault()
		if err != nil {
			return err
		}
		entry, err := ctx.Vault.GetEntry(args[0])
		if err != nil {
			return err
		}

		fields, err := parseFieldFlags(editFields)
		if err != nil {
			return err
		}
		if err := addFileFieldValues(fields, editFileFields); err != nil {
			return err
		}
		if len(fields) == 0 && len(editRmFields) == 0 && !cmd.Flags().Changed("notes") {
			return fmt.Errorf("nothing to change (use --field, --rm-field or --notes)")
		}

		for field, value := range fields {
			entry.SetField(field, value)
		}
		for _, field := range editRmFields {
			if !entry.RemoveField(field) {
				return fmt.Errorf("field %q not found in entry %q", field, entry.Name)
			}
		}
		if cmd.Flags().Changed("notes") {
			entry.SetNotes(editNotes)
		}

		if err := ctx.Save(); err != nil {
			return err
		}
		successf("Entry '%s' updated", entry.Name)
		return nil
	},
}

var entryRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Remove an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := openVault()
		if err != nil {
			return err
		}

		if !entryRmForce {
			ok, err := cli.Confirm(fmt.Sprintf("Remove entry '%s'?", args[0]))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Aborted")
				return nil
			}
		}

		if _, err := ctx.Vault.RemoveEntry(args[0]); err != nil {
			return err
		}
		if err := ctx.Save(); err != nil {
			return err
		}
		successf("Entry '%s' removed", args[0])
		return nil
	},
}

// parseFieldFlags parses repeated key=value flags into a field map.
func parseFieldFlags(flags []string) (map[string]string, error) {
	fields := make(map[string]string)
	for _, f := range flags {
		key, value, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field format %q (expected key=value)", f)
		}
		fields[key] = value
	}
	return fields, nil
}

// addFileFieldValues reads key=path flags and stores the file contents as
// field values. A leading ~ expands to the home directory.
func addFileFieldValues(fields map[string]string, flags []string) error {
	for _, f := range flags {
		key, path, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid file field format %q (expected key=path)", f)
		}
		if strings.HasPrefix(path, "~") {
			home, err := os.UserHomeDir()
			if err == nil {
				path = filepath.Join(home, strings.TrimPrefix(path, "~"))
			}
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read file for field %q: %w", key, err)
		}
		fields[key] = string(content)
	}
	return nil
}

func generateFieldValue() (string, error) {
	if addGenMemorable {
		return cli.GeneratePassphrase(addGenWords)
	}
	return cli.GeneratePassword(cli.PasswordOptions{
		Length:    addGenLength,
		Uppercase: !addGenNoUpper,
		Lowercase: !addGenNoLower,
		Digits:    !addGenNoDigits,
		Symbols:   !addGenNoSymbols,
	})
}

// clipTarget picks the field to copy: the requested one, or 'password',
// or the only field present.
func clipTarget(entry *vault.Entry, requested string) (string, string, error) {
	if requested != "" && requested != vault.PasswordField {
		value, err := entry.GetField(requested)
		return requested, value, err
	}
	if value, err := entry.GetField(vault.PasswordField); err == nil {
		return vault.PasswordField, value, nil
	}
	names := sortedFieldNames(entry)
	if len(names) == 1 {
		return names[0], entry.Fields[names[0]], nil
	}
	return "", "", fmt.Errorf("entry %q has no '%s' field; use --clip <field>", entry.Name, vault.PasswordField)
}

func sortedFieldNames(entry *vault.Entry) []string {
	names := make([]string, 0, len(entry.Fields))
	for name := range entry.Fields {
		names = append(names, name)
	}
	return cli.SortNames(names)
}

// showTotpCode prints the current code for an entry's seed in the
// reserved totp bucket.
func showTotpCode(v *vault.Vault, entryName string) error {
	bucket, err := v.GetEntry(vault.TotpEntryName)
	if err != nil {
		return fmt.Errorf("no TOTP seeds configured (use 'hc totp add')")
	}
	seed, err := bucket.GetField(entryName)
	if err != nil {
		return fmt.Errorf("no TOTP seed for entry %q", entryName)
	}
	code, err := totp.GenerateCode(seed)
	if err != nil {
		return err
	}
	fmt.Printf("%s (valid for %d seconds)\n", code, totp.RemainingSeconds())
	return nil
}
