// Package provider pushes vault entries to external secret stores
// (GitHub Actions secrets, Cloudflare Worker secrets). Provider
// credentials are kept in an encrypted config file keyed like the vault.
package provider

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Provider errors.
var (
	ErrUnknownType       = errors.New("provider: unknown provider type")
	ErrMissingCredential = errors.New("provider: missing credential")
)

// Provider is one configured push target.
type Provider interface {
	// PushSecret creates or updates one secret.
	PushSecret(name, value string) error
	// ListSecrets returns the names of secrets currently at the target.
	ListSecrets() ([]string, error)
	// DeleteSecret removes one secret.
	DeleteSecret(name string) error
	// Type is the provider kind ("github", "cloudflare").
	Type() string
	// ID identifies the target within the kind (repo, worker name).
	ID() string
}

// Config is a stored provider configuration. Credential values may be
// vault references ({{entry.field}}); the caller resolves them before
// constructing the provider.
type Config struct {
	Type        string            `json:"provider_type"`
	ID          string            `json:"provider_id"`
	Credentials map[string]string `json:"credentials"`
}

func (c Config) credential(name string) (string, error) {
	v, ok := c.Credentials[name]
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %q", ErrMissingCredential, name)
	}
	return v, nil
}

// New constructs a provider from its configuration.
func New(cfg Config) (Provider, error) {
	switch cfg.Type {
	case "github":
		repo, err := cfg.credential("repo")
		if err != nil {
			return nil, err
		}
		token, err := cfg.credential("token")
		if err != nil {
			return nil, err
		}
		return NewGitHub(repo, token), nil
	case "cloudflare":
		accountID, err := cfg.credential("account_id")
		if err != nil {
			return nil, err
		}
		workerName, err := cfg.credential("worker_name")
		if err != nil {
			return nil, err
		}
		token, err := cfg.credential("token")
		if err != nil {
			return nil, err
		}
		return NewCloudflare(accountID, workerName, token), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, cfg.Type)
	}
}

// FieldToSecretName maps a field name to the UPPER_SNAKE_CASE form
// providers expect: db_url -> DB_URL, apiKey -> API_KEY.
func FieldToSecretName(field string) string {
	out := make([]rune, 0, len(field)+4)
	prevLower := false

	for i, ch := range field {
		switch {
		case ch == '_':
			out = append(out, '_')
			prevLower = false
		case ch >= 'A' && ch <= 'Z':
			if i > 0 && prevLower {
				out = append(out, '_')
			}
			out = append(out, ch)
			prevLower = false
		case ch >= 'a' && ch <= 'z':
			out = append(out, ch-'a'+'A')
			prevLower = true
		default:
			out = append(out, ch)
			prevLower = true
		}
	}
	return string(out)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
