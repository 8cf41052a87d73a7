package main

import (
	"fmt"
	"os"

	"hc/internal/cli"
	"hc/internal/vaultctx"
	"hc/pkg/config"
	"hc/pkg/crypto"
	"hc/pkg/keychain"
	"hc/pkg/registry"
	"hc/pkg/session"

	"github.com/spf13/cobra"
)

var vaultDeleteForce bool

func init() {
	rootCmd.AddCommand(vaultCmd)
	vaultCmd.AddCommand(vaultListCmd)
	vaultCmd.AddCommand(vaultCreateCmd)
	vaultCmd.AddCommand(vaultUseCmd)
	vaultCmd.AddCommand(vaultDeleteCmd)
	vaultCmd.AddCommand(vaultPasswdCmd)

	vaultDeleteCmd.Flags().BoolVar(&vaultDeleteForce, "force", false, "Skip confirmation")
}

var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Manage vaults",
}

var vaultListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all vaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		reg, err := registry.Open(dir)
		if err != nil {
			return err
		}

		vaults, err := reg.List()
		if err != nil {
			return err
		}
		if len(vaults) == 0 {
			fmt.Println("No vaults found. Run 'hc init' to create one.")
			return nil
		}

		active, err := reg.ActiveName()
		if err != nil {
			return err
		}
		for _, v := range vaults {
			marker := " "
			if v.Name == active {
				marker = "*"
			}
			fmt.Printf("%s %s\t%s\n", marker, v.Name, v.Path)
		}
		return nil
	},
}

var vaultCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := appDeps()
		if err != nil {
			return err
		}

		password, err := cli.ReadNewMasterPassword()
		if err != nil {
			return err
		}
		defer crypto.SecureWipe(password)

		ctx, secretKey, err := vaultctx.Create(args[0], string(password), deps)
		if err != nil {
			return err
		}
		if secretKey != "" {
			fmt.Printf("\nYour secret key:\n\n  %s\n\n", secretKey)
		}
		successf("Vault '%s' created", ctx.Name)
		return nil
	},
}

var vaultUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the active vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		reg, err := registry.Open(dir)
		if err != nil {
			return err
		}
		if err := reg.SetActive(args[0]); err != nil {
			return err
		}
		successf("Active vault is now '%s'", args[0])
		return nil
	},
}

var vaultDeleteCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a vault and its encrypted file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		deps, err := appDeps()
		if err != nil {
			return err
		}
		reg, err := registry.Open(deps.ConfigDir)
		if err != nil {
			return err
		}
		info, err := reg.Get(name)
		if err != nil {
			return err
		}

		if !vaultDeleteForce {
			ok, err := cli.Confirm(fmt.Sprintf("Delete vault '%s' and all its entries?", name))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Aborted")
				return nil
			}
		}

		if err := reg.Delete(name); err != nil {
			return err
		}
		removeVaultArtifacts(deps, name, info)
		successf("Vault '%s' deleted", name)
		return nil
	},
}

// removeVaultArtifacts removes the encrypted file and any cached session
// for a deleted vault. The registry entry is already gone; leftovers are
// reported as warnings, never as failures.
func removeVaultArtifacts(deps vaultctx.Deps, name string, info registry.VaultInfo) {
	if err := removeFile(info.Path); err != nil {
		warnf("could not remove vault file: %v", err)
	}
	sess := session.NewManager(deps.Credentials, deps.ConfigDir, name, deps.Config.SessionTimeoutMinutes)
	if err := sess.Clear(); err != nil {
		warnf("could not clear session: %v", err)
	}
	_ = keychain.NewMasterPasswordCache(deps.Credentials).Delete(name)
}

func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

var vaultPasswdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the master password of a vault",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := openVault()
		if err != nil {
			return err
		}

		fmt.Printf("Changing master password for vault '%s'\n", ctx.Name)
		password, err := cli.ReadNewMasterPassword()
		if err != nil {
			return err
		}
		defer crypto.SecureWipe(password)

		if err := ctx.ChangePassword(string(password)); err != nil {
			return err
		}
		successf("Master password changed")
		return nil
	},
}
