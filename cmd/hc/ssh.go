package main

import (
	"fmt"

	"hc/pkg/sshkey"
	"hc/pkg/vault"

	"github.com/spf13/cobra"
)

// Conventional field names for SSH entries.
const (
	sshKeyField        = "private_key"
	sshPassphraseField = "passphrase"
	sshUsernameField   = "username"
	sshHostnameField   = "hostname"
)

// SSH add flags.
var (
	sshUsername   string
	sshHostname   string
	sshKeyPath    string
	sshPassphrase string
)

var sshLoadLifetime uint32

func init() {
	rootCmd.AddCommand(sshCmd)
	sshCmd.AddCommand(sshAddCmd)
	sshCmd.AddCommand(sshLoadCmd)
	sshCmd.AddCommand(sshUnloadCmd)
	sshCmd.AddCommand(sshListCmd)

	sshAddCmd.Flags().StringVar(&sshUsername, "username", "", "SSH username")
	sshAddCmd.Flags().StringVar(&sshHostname, "hostname", "", "SSH hostname")
	sshAddCmd.Flags().StringVar(&sshKeyPath, "private-key", "", "Path to the private key file")
	sshAddCmd.Flags().StringVar(&sshPassphrase, "passphrase", "", "Passphrase of the private key")
	sshAddCmd.MarkFlagRequired("private-key")

	sshLoadCmd.Flags().Uint32Var(&sshLoadLifetime, "lifetime", 0, "Agent lifetime in seconds (0 = until the agent exits)")
}

var sshCmd = &cobra.Command{
	Use:   "ssh",
	Short: "Manage SSH keys",
}

var sshAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Store an SSH private key as an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields := make(map[string]string)
		if err := addFileFieldValues(fields, []string{sshKeyField + "=" + sshKeyPath}); err != nil {
			return err
		}

		keyType, err := sshkey.Validate(fields[sshKeyField])
		if err != nil {
			return err
		}
		if sshPassphrase != "" {
			fields[sshPassphraseField] = sshPassphrase
		}
		if sshUsername != "" {
			fields[sshUsernameField] = sshUsername
		}
		if sshHostname != "" {
			fields[sshHostnameField] = sshHostname
		}

		ctx, err := openVault()
		if err != nil {
			return err
		}
		if err := ctx.Vault.AddEntry(vault.NewEntry(args[0], fields, "")); err != nil {
			return err
		}
		if err := ctx.Save(); err != nil {
			return err
		}
		successf("SSH entry '%s' added (%s key)", args[0], keyType)
		return nil
	},
}

var sshLoadCmd = &cobra.Command{
	Use:   "load <name>",
	Short: "Load an entry's SSH key into the ssh-agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := openVault()
		if err != nil {
			return err
		}
		privateKey, passphrase, err := sshKeyMaterial(ctx.Vault, args[0])
		if err != nil {
			return err
		}

		a, err := sshkey.ConnectAgent()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.AddIdentity(privateKey, passphrase, "hc:"+args[0], sshLoadLifetime); err != nil {
			return err
		}
		successf("Key '%s' loaded into ssh-agent", args[0])
		return nil
	},
}

var sshUnloadCmd = &cobra.Command{
	Use:   "unload <name>",
	Short: "Remove an entry's SSH key from the ssh-agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := openVault()
		if err != nil {
			return err
		}
		privateKey, passphrase, err := sshKeyMaterial(ctx.Vault, args[0])
		if err != nil {
			return err
		}

		a, err := sshkey.ConnectAgent()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.RemoveIdentity(privateKey, passphrase); err != nil {
			return err
		}
		successf("Key '%s' removed from ssh-agent", args[0])
		return nil
	},
}

var sshListCmd = &cobra.Command{
	Use:   "list",
	Short: "List keys loaded in the ssh-agent",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := sshkey.ConnectAgent()
		if err != nil {
			return err
		}
		defer a.Close()

		identities, err := a.ListIdentities()
		if err != nil {
			return err
		}
		if len(identities) == 0 {
			fmt.Println("No keys loaded.")
			return nil
		}
		for _, id := range identities {
			fmt.Printf("%s %s %s\n", id.Type, id.Fingerprint, id.Comment)
		}
		return nil
	},
}

// sshKeyMaterial extracts the private key and optional passphrase fields
// from an entry.
func sshKeyMaterial(v *vault.Vault, entryName string) (string, string, error) {
	entry, err := v.GetEntry(entryName)
	if err != nil {
		return "", "", err
	}
	privateKey, err := entry.GetField(sshKeyField)
	if err != nil {
		return "", "", fmt.Errorf("entry %q has no %s field", entryName, sshKeyField)
	}
	passphrase, _ := entry.GetField(sshPassphraseField)
	return privateKey, passphrase, nil
}
