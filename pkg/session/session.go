// Package session caches the derived vault key between invocations so a
// short-lived CLI process does not pay the Argon2id cost on every call.
// The key itself lives in the OS keyring; a JSON sidecar file carries the
// non-secret metadata (salt, timestamps, entry names). The timeout is a
// sliding window: every successful load pushes the expiry forward.
package session

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hc/pkg/crypto"
	"hc/pkg/keychain"
)

const derivedKeyAccount = "derived_key"

// Data is a decoded, still-valid session.
type Data struct {
	DerivedKey []byte
	Salt       []byte
	EntryNames []string
}

type metadata struct {
	CreatedAt    int64    `json:"created_at"`
	LastAccessed int64    `json:"last_accessed"`
	Salt         string   `json:"salt"`
	EntryNames   []string `json:"entry_names,omitempty"`
}

// Manager caches sessions for one vault.
type Manager struct {
	store       keychain.CredentialStore
	sessionFile string
	vaultName   string
	timeout     time.Duration

	now func() time.Time
}

// NewManager returns a session manager for the named vault. Sessions of
// different vaults never share keyring entries or metadata files.
func NewManager(store keychain.CredentialStore, configDir, vaultName string, timeoutMinutes uint) *Manager {
	return &Manager{
		store:       store,
		sessionFile: filepath.Join(configDir, "session-"+vaultName+".json"),
		vaultName:   vaultName,
		timeout:     time.Duration(timeoutMinutes) * time.Minute,
		now:         time.Now,
	}
}

func (m *Manager) service() string {
	return "hc-session-" + m.vaultName
}

// Save caches the derived key in the keyring and writes the metadata
// sidecar. A host without a keyring cannot cache sessions; the caller
// treats that as a degraded mode, not a failure of the operation.
func (m *Manager) Save(derivedKey, salt []byte, entryNames []string) error {
	if len(derivedKey) != crypto.KeyLength || len(salt) != crypto.SaltLength {
		return fmt.Errorf("session: malformed key material")
	}

	encoded := base64.StdEncoding.EncodeToString(derivedKey)
	if err := m.store.Set(m.service(), derivedKeyAccount, encoded); err != nil {
		return fmt.Errorf("session: keyring unavailable for caching: %w", err)
	}

	now := m.now().Unix()
	meta := metadata{
		CreatedAt:    now,
		LastAccessed: now,
		Salt:         base64.StdEncoding.EncodeToString(salt),
		EntryNames:   entryNames,
	}
	return m.writeMetadata(meta)
}

// Load returns the cached session, or nil when there is none. An expired
// session is cleared and reported as absent. Any malformed state tears
// the session down rather than erroring: the caller falls back to the
// password prompt either way.
func (m *Manager) Load() (*Data, error) {
	raw, err := os.ReadFile(m.sessionFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("session: failed to read metadata: %w", err)
	}

	var meta metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		_ = m.Clear()
		return nil, nil
	}

	if m.now().Sub(time.Unix(meta.LastAccessed, 0)) >= m.timeout {
		if err := m.Clear(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	encoded, err := m.store.Get(m.service(), derivedKeyAccount)
	if err != nil {
		// Keyring entry gone or store unreachable: no session.
		return nil, nil
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		_ = m.Clear()
		return nil, nil
	}
	salt, err := base64.StdEncoding.DecodeString(meta.Salt)
	if err != nil {
		_ = m.Clear()
		return nil, nil
	}
	if len(key) != crypto.KeyLength || len(salt) != crypto.SaltLength {
		_ = m.Clear()
		return nil, nil
	}

	meta.LastAccessed = m.now().Unix()
	if err := m.writeMetadata(meta); err != nil {
		return nil, err
	}

	return &Data{DerivedKey: key, Salt: salt, EntryNames: meta.EntryNames}, nil
}

// Clear removes the cached key and metadata. Clearing an absent session
// is a no-op.
func (m *Manager) Clear() error {
	_ = m.store.Delete(m.service(), derivedKeyAccount)
	if err := os.Remove(m.sessionFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("session: failed to remove metadata: %w", err)
	}
	return nil
}

// Active reports whether a valid session exists. This touches the
// session like any other load.
func (m *Manager) Active() bool {
	data, err := m.Load()
	return err == nil && data != nil
}

// ExpiresAt returns when the current session will lapse without further
// activity, or zero time when no metadata exists.
func (m *Manager) ExpiresAt() time.Time {
	raw, err := os.ReadFile(m.sessionFile)
	if err != nil {
		return time.Time{}
	}
	var meta metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return time.Time{}
	}
	return time.Unix(meta.LastAccessed, 0).Add(m.timeout)
}

// CachedEntryNames returns the entry names recorded in the session
// metadata, or nil when the session is absent or lapsed. It reads only
// the sidecar file: shell completion must never hit the keyring, prompt,
// or extend the sliding window.
func (m *Manager) CachedEntryNames() []string {
	raw, err := os.ReadFile(m.sessionFile)
	if err != nil {
		return nil
	}
	var meta metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil
	}
	if m.now().Sub(time.Unix(meta.LastAccessed, 0)) >= m.timeout {
		return nil
	}
	return meta.EntryNames
}

func (m *Manager) writeMetadata(meta metadata) error {
	blob, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("session: failed to encode metadata: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.sessionFile), 0o700); err != nil {
		return fmt.Errorf("session: failed to create config directory: %w", err)
	}
	if err := os.WriteFile(m.sessionFile, blob, 0o600); err != nil {
		return fmt.Errorf("session: failed to write metadata: %w", err)
	}
	return nil
}
