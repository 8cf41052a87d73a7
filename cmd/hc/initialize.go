package main

import (
	"fmt"

	"hc/internal/cli"
	"hc/internal/vaultctx"
	"hc/pkg/crypto"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new vault",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := appDeps()
		if err != nil {
			return err
		}

		name := vaultFlag
		if name == "" {
			name = "default"
		}

		fmt.Printf("Initializing vault '%s'...\n", name)
		password, err := cli.ReadNewMasterPassword()
		if err != nil {
			return err
		}
		defer crypto.SecureWipe(password)

		ctx, secretKey, err := vaultctx.Create(name, string(password), deps)
		if err != nil {
			return err
		}

		if secretKey != "" {
			fmt.Println("\nYour secret key (save it somewhere safe, it is needed to")
			fmt.Println("unlock your vaults from a fresh install):")
			fmt.Printf("\n  %s\n\n", secretKey)
		}
		successf("Vault '%s' created at %s", ctx.Name, ctx.Path)
		return nil
	},
}
