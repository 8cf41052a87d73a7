package main

import (
	"fmt"

	"hc/internal/cli"

	"github.com/spf13/cobra"
)

// Generate flags.
var (
	genLength    int
	genMemorable bool
	genWords     int
	genNoUpper   bool
	genNoLower   bool
	genNoDigits  bool
	genNoSymbols bool
	genClip      bool
)

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().IntVarP(&genLength, "length", "l", 20, "Password length (8-128)")
	generateCmd.Flags().BoolVarP(&genMemorable, "memorable", "m", false, "Generate a memorable passphrase")
	generateCmd.Flags().IntVarP(&genWords, "words", "w", 4, "Words in the passphrase (2-10)")
	generateCmd.Flags().BoolVar(&genNoUpper, "no-uppercase", false, "Exclude uppercase letters")
	generateCmd.Flags().BoolVar(&genNoLower, "no-lowercase", false, "Exclude lowercase letters")
	generateCmd.Flags().BoolVar(&genNoDigits, "no-digits", false, "Exclude digits")
	generateCmd.Flags().BoolVar(&genNoSymbols, "no-symbols", false, "Exclude symbols")
	generateCmd.Flags().BoolVarP(&genClip, "clip", "c", false, "Copy to clipboard instead of printing")
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a secure password or passphrase",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var password string
		var err error
		if genMemorable {
			password, err = cli.GeneratePassphrase(genWords)
		} else {
			password, err = cli.GeneratePassword(cli.PasswordOptions{
				Length:    genLength,
				Uppercase: !genNoUpper,
				Lowercase: !genNoLower,
				Digits:    !genNoDigits,
				Symbols:   !genNoSymbols,
			})
		}
		if err != nil {
			return err
		}

		if genClip {
			clearAfter := uint(0)
			deps, err := appDeps()
			if err == nil {
				clearAfter = deps.Config.ClipboardClearSeconds
			}
			if err := copyToClipboard(password, clearAfter); err != nil {
				return err
			}
			successf("Password copied to clipboard")
			return nil
		}

		fmt.Println(password)
		return nil
	},
}
