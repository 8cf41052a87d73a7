package main

import (
	"fmt"
	"time"

	"hc/internal/vaultctx"
	"hc/pkg/registry"
	"hc/pkg/session"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(statusCmd)
}

// selectedSession resolves --vault (or the active vault) to its session
// manager without unlocking anything.
func selectedSession() (*session.Manager, string, vaultctx.Deps, error) {
	deps, err := appDeps()
	if err != nil {
		return nil, "", vaultctx.Deps{}, err
	}
	reg, err := registry.Open(deps.ConfigDir)
	if err != nil {
		return nil, "", vaultctx.Deps{}, err
	}

	var info registry.VaultInfo
	if vaultFlag == "" {
		info, err = reg.GetActive()
	} else {
		info, err = reg.Get(vaultFlag)
	}
	if err != nil {
		return nil, "", vaultctx.Deps{}, err
	}

	sess := session.NewManager(deps.Credentials, deps.ConfigDir, info.Name, deps.Config.SessionTimeoutMinutes)
	return sess, info.Name, deps, nil
}

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Lock the vault (clear the cached session)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, name, _, err := selectedSession()
		if err != nil {
			return err
		}
		if err := sess.Clear(); err != nil {
			return err
		}
		successf("Vault '%s' locked", name)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, name, deps, err := selectedSession()
		if err != nil {
			return err
		}

		fmt.Printf("Vault: %s\n", name)
		if !sess.Active() {
			fmt.Println("Session: locked")
			return nil
		}
		fmt.Println("Session: unlocked")
		fmt.Printf("Expires: %s (timeout %d minutes, sliding)\n",
			sess.ExpiresAt().Format(time.RFC3339), deps.Config.SessionTimeoutMinutes)
		return nil
	},
}
