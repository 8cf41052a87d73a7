// Package keychain wraps the operating system credential store and the
// pieces of hc that live in it: the machine-local secret key, cached
// session keys and biometric-gated master passwords.
package keychain

import (
	"errors"
	"sync"

	"github.com/zalando/go-keyring"
)

// ErrNotFound is returned when a credential is absent from the store.
var ErrNotFound = errors.New("keychain: credential not found")

// ErrUnavailable is returned when no credential store backend can be
// reached (no Secret Service on Linux, locked keychain, and so on).
var ErrUnavailable = errors.New("keychain: credential store unavailable")

// CredentialStore is the minimal surface hc needs from a secret backend.
// The system implementation talks to the OS keyring; tests use the
// in-memory one.
type CredentialStore interface {
	Set(service, account, secret string) error
	Get(service, account string) (string, error)
	Delete(service, account string) error
}

// SystemStore is the OS keyring: Keychain on macOS, Secret Service on
// Linux, Credential Manager on Windows.
type SystemStore struct{}

// NewSystemStore returns the OS keyring store.
func NewSystemStore() SystemStore {
	return SystemStore{}
}

func (SystemStore) Set(service, account, secret string) error {
	if err := keyring.Set(service, account, secret); err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}

func (SystemStore) Get(service, account string) (string, error) {
	secret, err := keyring.Get(service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", errors.Join(ErrUnavailable, err)
	}
	return secret, nil
}

func (SystemStore) Delete(service, account string) error {
	if err := keyring.Delete(service, account); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return errors.Join(ErrUnavailable, err)
	}
	return nil
}

// MemoryStore is an in-process CredentialStore used by tests.
type MemoryStore struct {
	mu      sync.Mutex
	secrets map[string]string

	// FailAll makes every call report ErrUnavailable, simulating a host
	// without a usable keyring.
	FailAll bool
}

// NewMemoryStore returns an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{secrets: make(map[string]string)}
}

func (m *MemoryStore) Set(service, account, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return ErrUnavailable
	}
	m.secrets[service+"\x00"+account] = secret
	return nil
}

func (m *MemoryStore) Get(service, account string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return "", ErrUnavailable
	}
	secret, ok := m.secrets[service+"\x00"+account]
	if !ok {
		return "", ErrNotFound
	}
	return secret, nil
}

func (m *MemoryStore) Delete(service, account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return ErrUnavailable
	}
	delete(m.secrets, service+"\x00"+account)
	return nil
}
