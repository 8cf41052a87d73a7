package main

import (
	"fmt"

	"hc/internal/cli"
	"hc/internal/vaultctx"
	"hc/pkg/config"
	"hc/pkg/keychain"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Global --vault flag; empty means the active vault.
var vaultFlag string

var rootCmd = &cobra.Command{
	Use:           "hc",
	Short:         "hc is a local secret-management vault",
	Long:          `A local password and secret manager with encrypted vault files, OS keyring sessions and hc:// secret references.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&vaultFlag, "vault", "", "Vault to operate on (default: active vault)")
}

// promptSource reads the master password from the terminal with echo off.
type promptSource struct{}

func (promptSource) ReadMasterPassword(vaultName string) (string, error) {
	prompt := "Enter master password: "
	if vaultName != "" {
		prompt = fmt.Sprintf("Enter master password for vault '%s': ", vaultName)
	}
	password, err := cli.ReadPassword(prompt)
	if err != nil {
		return "", err
	}
	return string(password), nil
}

// appDeps assembles the real collaborators: on-disk config, the OS
// keyring and the terminal prompt.
func appDeps() (vaultctx.Deps, error) {
	dir, err := config.Dir()
	if err != nil {
		return vaultctx.Deps{}, err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return vaultctx.Deps{}, err
	}
	return vaultctx.Deps{
		ConfigDir:   dir,
		Config:      cfg,
		Credentials: keychain.NewSystemStore(),
		Biometric:   keychain.NewBiometricAuth(),
		Passwords:   promptSource{},
	}, nil
}

// openVault unlocks the vault selected by --vault (or the active one).
func openVault() (*vaultctx.Context, error) {
	deps, err := appDeps()
	if err != nil {
		return nil, err
	}
	return vaultctx.Load(vaultFlag, deps)
}

func successf(format string, a ...any) {
	fmt.Printf("%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, a...))
}

func warnf(format string, a ...any) {
	color.New(color.FgYellow).Fprintf(color.Error, "warning: "+format+"\n", a...)
}
