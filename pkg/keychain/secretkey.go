package keychain

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ServiceName is the keyring service hc registers its credentials under.
	ServiceName = "hc"

	secretKeyAccount     = "secret_key"
	secretKeyFile        = "secret_key"
	masterPasswordPrefix = "master_password"
)

// ErrNoSecretKey is returned when neither the keyring nor the fallback
// file holds a secret key; the user has not initialized hc yet.
var ErrNoSecretKey = errors.New("keychain: secret key not found, run 'hc init' first")

// SecretKeyStore persists the machine-local secret key. The OS keyring is
// the primary location; on hosts without one the key is written to an
// owner-only file in the config directory instead.
type SecretKeyStore struct {
	store        CredentialStore
	fallbackPath string
}

// NewSecretKeyStore returns a store rooted in configDir for its fallback
// file.
func NewSecretKeyStore(store CredentialStore, configDir string) *SecretKeyStore {
	return &SecretKeyStore{
		store:        store,
		fallbackPath: filepath.Join(configDir, secretKeyFile),
	}
}

// Save writes the secret key to the keyring, falling back to the file
// when the keyring is unreachable.
func (s *SecretKeyStore) Save(secretKey string) error {
	if err := s.store.Set(ServiceName, secretKeyAccount, secretKey); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.fallbackPath), 0o700); err != nil {
		return fmt.Errorf("keychain: failed to create config directory: %w", err)
	}
	if err := os.WriteFile(s.fallbackPath, []byte(secretKey), 0o600); err != nil {
		return fmt.Errorf("keychain: failed to save secret key fallback: %w", err)
	}
	return nil
}

// Load reads the secret key, preferring the keyring over the fallback
// file. Stored keys are trimmed; some keyring backends append a newline.
func (s *SecretKeyStore) Load() (string, error) {
	if key, err := s.store.Get(ServiceName, secretKeyAccount); err == nil {
		return strings.TrimSpace(key), nil
	}

	data, err := os.ReadFile(s.fallbackPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoSecretKey
		}
		return "", fmt.Errorf("keychain: failed to read secret key fallback: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Delete removes the secret key from both locations. Missing entries are
// not an error.
func (s *SecretKeyStore) Delete() error {
	_ = s.store.Delete(ServiceName, secretKeyAccount)
	if err := os.Remove(s.fallbackPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("keychain: failed to delete secret key fallback: %w", err)
	}
	return nil
}

// MasterPasswordCache caches master passwords per vault behind the
// biometric gate. Nothing here is written without an explicit opt-in in
// the config.
type MasterPasswordCache struct {
	store CredentialStore
}

// NewMasterPasswordCache returns a cache backed by the given store.
func NewMasterPasswordCache(store CredentialStore) *MasterPasswordCache {
	return &MasterPasswordCache{store: store}
}

func masterPasswordAccount(vaultName string) string {
	return masterPasswordPrefix + "-" + vaultName
}

// Save caches the master password for a vault.
func (c *MasterPasswordCache) Save(vaultName, masterPassword string) error {
	return c.store.Set(ServiceName, masterPasswordAccount(vaultName), masterPassword)
}

// Load returns the cached password for a vault, or "" with ok=false when
// none is cached.
func (c *MasterPasswordCache) Load(vaultName string) (password string, ok bool, err error) {
	password, err = c.store.Get(ServiceName, masterPasswordAccount(vaultName))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return password, true, nil
}

// Delete drops the cached password for a vault.
func (c *MasterPasswordCache) Delete(vaultName string) error {
	return c.store.Delete(ServiceName, masterPasswordAccount(vaultName))
}
