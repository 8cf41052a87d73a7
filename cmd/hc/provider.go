package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"hc/internal/vaultctx"
	"hc/pkg/config"
	"hc/pkg/provider"
	"hc/pkg/resolver"
	"hc/pkg/vault"

	"github.com/spf13/cobra"
)

// Provider add flags.
var (
	providerRepo       string
	providerToken      string
	providerAccountID  string
	providerWorkerName string
)

// Provider secrets add flags.
var (
	secretsAsName string
	secretsExpand bool
)

func init() {
	rootCmd.AddCommand(providerCmd)
	providerCmd.AddCommand(providerListCmd)
	providerCmd.AddCommand(providerAddCmd)
	providerCmd.AddCommand(providerRmCmd)
	providerCmd.AddCommand(providerSecretsCmd)

	providerAddCmd.AddCommand(providerAddGitHubCmd)
	providerAddCmd.AddCommand(providerAddCloudflareCmd)

	providerAddGitHubCmd.Flags().StringVar(&providerRepo, "repo", "", "GitHub repository (owner/repo)")
	providerAddGitHubCmd.Flags().StringVar(&providerToken, "token", "", "GitHub token (or {{entry.field}} reference)")
	providerAddGitHubCmd.MarkFlagRequired("repo")
	providerAddGitHubCmd.MarkFlagRequired("token")

	providerAddCloudflareCmd.Flags().StringVar(&providerAccountID, "account-id", "", "Cloudflare account ID")
	providerAddCloudflareCmd.Flags().StringVar(&providerWorkerName, "worker-name", "", "Worker name")
	providerAddCloudflareCmd.Flags().StringVar(&providerToken, "token", "", "API token (or {{entry.field}} reference)")
	providerAddCloudflareCmd.MarkFlagRequired("account-id")
	providerAddCloudflareCmd.MarkFlagRequired("worker-name")
	providerAddCloudflareCmd.MarkFlagRequired("token")

	providerSecretsCmd.AddCommand(providerSecretsListCmd)
	providerSecretsCmd.AddCommand(providerSecretsAddCmd)
	providerSecretsCmd.AddCommand(providerSecretsRmCmd)

	providerSecretsAddCmd.Flags().StringVar(&secretsAsName, "as", "", "Override the secret name at the provider")
	providerSecretsAddCmd.Flags().BoolVar(&secretsExpand, "expand", false, "Push every field of the entry as its own secret")
}

var providerCmd = &cobra.Command{
	Use:   "provider",
	Short: "Manage secret providers (GitHub, Cloudflare)",
}

// loadProviderConfigs opens the encrypted provider config store with the
// vault's key. The file lives next to the registry, shared across vaults.
func loadProviderConfigs(ctx *vaultctx.Context) (map[string]provider.Config, string, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, "", err
	}
	path := filepath.Join(dir, provider.ConfigFileName)
	configs, err := provider.NewStorage().Load(path, ctx.Key)
	return configs, path, err
}

func saveProviderConfigs(ctx *vaultctx.Context, configs map[string]provider.Config, path string) error {
	return provider.NewStorage().Save(configs, path, ctx.Key, ctx.Salt)
}

func providerKey(providerType, providerID string) string {
	return providerType + ":" + providerID
}

// buildProvider resolves {{entry.field}} credential references against
// the vault and constructs the provider client.
func buildProvider(ctx *vaultctx.Context, cfg provider.Config) (provider.Provider, error) {
	resolved := provider.Config{Type: cfg.Type, ID: cfg.ID, Credentials: make(map[string]string, len(cfg.Credentials))}
	for name, value := range cfg.Credentials {
		v, err := resolver.ResolveValue(value, ctx.Vault)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve credential %q: %w", name, err)
		}
		resolved.Credentials[name] = v
	}
	return provider.New(resolved)
}

func lookupProviderConfig(ctx *vaultctx.Context, providerType, providerID string) (provider.Config, map[string]provider.Config, string, error) {
	configs, path, err := loadProviderConfigs(ctx)
	if err != nil {
		return provider.Config{}, nil, "", err
	}
	cfg, ok := configs[providerKey(providerType, providerID)]
	if !ok {
		return provider.Config{}, nil, "", fmt.Errorf("provider %s/%s not configured", providerType, providerID)
	}
	return cfg, configs, path, nil
}

var providerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured providers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := openVault()
		if err != nil {
			return err
		}
		configs, _, err := loadProviderConfigs(ctx)
		if err != nil {
			return err
		}
		if len(configs) == 0 {
			fmt.Println("No providers configured.")
			return nil
		}
		for _, key := range sortedKeys(configs) {
			cfg := configs[key]
			fmt.Printf("%s\t%s\n", cfg.Type, cfg.ID)
		}
		return nil
	},
}

var providerAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a provider configuration",
}

var providerAddGitHubCmd = &cobra.Command{
	Use:   "github <id>",
	Short: "Add a GitHub Actions secrets provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return addProviderConfig(provider.Config{
			Type: "github",
			ID:   args[0],
			Credentials: map[string]string{
				"repo":  providerRepo,
				"token": providerToken,
			},
		})
	},
}

var providerAddCloudflareCmd = &cobra.Command{
	Use:   "cloudflare <id>",
	Short: "Add a Cloudflare Workers secrets provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return addProviderConfig(provider.Config{
			Type: "cloudflare",
			ID:   args[0],
			Credentials: map[string]string{
				"account_id":  providerAccountID,
				"worker_name": providerWorkerName,
				"token":       providerToken,
			},
		})
	},
}

func addProviderConfig(cfg provider.Config) error {
	ctx, err := openVault()
	if err != nil {
		return err
	}
	configs, path, err := loadProviderConfigs(ctx)
	if err != nil {
		return err
	}

	key := providerKey(cfg.Type, cfg.ID)
	if _, exists := configs[key]; exists {
		return fmt.Errorf("provider %s/%s already configured", cfg.Type, cfg.ID)
	}

	// Fail early on unresolvable credentials or an unknown type.
	if _, err := buildProvider(ctx, cfg); err != nil {
		return err
	}

	configs[key] = cfg
	if err := saveProviderConfigs(ctx, configs, path); err != nil {
		return err
	}
	successf("Provider %s/%s added", cfg.Type, cfg.ID)
	return nil
}

var providerRmCmd = &cobra.Command{
	Use:   "rm <type> <id>",
	Short: "Remove a provider configuration",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := openVault()
		if err != nil {
			return err
		}
		_, configs, path, err := lookupProviderConfig(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		delete(configs, providerKey(args[0], args[1]))
		if err := saveProviderConfigs(ctx, configs, path); err != nil {
			return err
		}
		successf("Provider %s/%s removed", args[0], args[1])
		return nil
	},
}

var providerSecretsCmd = &cobra.Command{
	Use:   "secrets",
	Short: "Manage secrets at a provider",
}

var providerSecretsListCmd = &cobra.Command{
	Use:   "list <type> <id>",
	Short: "List secrets at the provider",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := openVault()
		if err != nil {
			return err
		}
		cfg, _, _, err := lookupProviderConfig(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		p, err := buildProvider(ctx, cfg)
		if err != nil {
			return err
		}

		names, err := p.ListSecrets()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No secrets found.")
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

var providerSecretsAddCmd = &cobra.Command{
	Use:   "add <type> <id> <entry[.field]>",
	Short: "Push entry fields to the provider",
	Long: `Push a vault value to the provider.

  hc provider secrets add github my-repo myapp.db_url
  hc provider secrets add github my-repo myapp --expand

With entry.field one secret is pushed; with --expand every field of the
entry is pushed as its own secret. Names are UPPER_SNAKE_CASE unless
--as overrides them.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := openVault()
		if err != nil {
			return err
		}
		cfg, _, _, err := lookupProviderConfig(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		p, err := buildProvider(ctx, cfg)
		if err != nil {
			return err
		}

		secrets, err := collectPushSecrets(ctx.Vault, args[2])
		if err != nil {
			return err
		}
		for name, value := range secrets {
			if err := p.PushSecret(name, value); err != nil {
				return fmt.Errorf("failed to push %s: %w", name, err)
			}
			successf("Pushed %s to %s/%s", name, cfg.Type, cfg.ID)
		}
		return nil
	},
}

// collectPushSecrets maps the entry[.field] argument to secret
// name/value pairs, honoring --as and --expand.
func collectPushSecrets(v *vault.Vault, ref string) (map[string]string, error) {
	entryName, field, hasField := strings.Cut(ref, ".")
	entry, err := v.GetEntry(entryName)
	if err != nil {
		return nil, err
	}

	secrets := make(map[string]string)
	switch {
	case hasField && secretsExpand:
		return nil, fmt.Errorf("--expand cannot be combined with an explicit field")
	case hasField:
		value, err := entry.GetField(field)
		if err != nil {
			return nil, err
		}
		name := secretsAsName
		if name == "" {
			name = provider.FieldToSecretName(field)
		}
		secrets[name] = value
	case secretsExpand:
		for fieldName, value := range entry.Fields {
			secrets[provider.FieldToSecretName(fieldName)] = value
		}
	default:
		return nil, fmt.Errorf("specify entry.field, or --expand to push all fields")
	}
	return secrets, nil
}

var providerSecretsRmCmd = &cobra.Command{
	Use:   "rm <type> <id> <secret-name>",
	Short: "Delete a secret at the provider",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := openVault()
		if err != nil {
			return err
		}
		cfg, _, _, err := lookupProviderConfig(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		p, err := buildProvider(ctx, cfg)
		if err != nil {
			return err
		}
		if err := p.DeleteSecret(args[2]); err != nil {
			return err
		}
		successf("Deleted %s from %s/%s", args[2], cfg.Type, cfg.ID)
		return nil
	},
}

func sortedKeys(m map[string]provider.Config) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
