// Package vaultctx orchestrates unlocking: registry lookup, session
// cache, biometric gate, password prompt, key derivation and decryption.
// Commands work with a Context and never touch the moving parts
// directly.
package vaultctx

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"hc/pkg/config"
	"hc/pkg/crypto"
	"hc/pkg/keychain"
	"hc/pkg/registry"
	"hc/pkg/session"
	"hc/pkg/store"
	"hc/pkg/vault"
)

// ErrWrongPassword is returned when the supplied master password does
// not decrypt the vault.
var ErrWrongPassword = errors.New("vaultctx: incorrect master password")

// PasswordSource supplies the master password when no session is
// available. The CLI implements it with a hidden terminal prompt; tests
// inject canned values.
type PasswordSource interface {
	ReadMasterPassword(vaultName string) (string, error)
}

// PasswordFunc adapts a function to PasswordSource.
type PasswordFunc func(vaultName string) (string, error)

func (f PasswordFunc) ReadMasterPassword(vaultName string) (string, error) { return f(vaultName) }

// Deps collects the injected collaborators.
type Deps struct {
	ConfigDir   string
	Config      config.Config
	Credentials keychain.CredentialStore
	Biometric   keychain.BiometricAuth
	Passwords   PasswordSource
}

// Context is one unlocked vault.
type Context struct {
	Name  string
	Path  string
	Vault *vault.Vault

	// Key and Salt are the live encryption key material; Save reuses
	// them so a process never derives twice.
	Key  []byte
	Salt []byte

	deps Deps
	vs   store.Store[*vault.Vault]
	sess *session.Manager
	reg  *registry.Registry
}

func vaultStore() store.Store[*vault.Vault] {
	return store.Store[*vault.Vault]{NewFunc: vault.New}
}

func newSession(deps Deps, vaultName string) *session.Manager {
	return session.NewManager(deps.Credentials, deps.ConfigDir, vaultName, deps.Config.SessionTimeoutMinutes)
}

// Load unlocks a vault. An empty name means the active vault. The
// session cache is consulted first; on a miss (or a stale cached key)
// the password path runs and a fresh session is saved.
func Load(vaultName string, deps Deps) (*Context, error) {
	reg, err := registry.Open(deps.ConfigDir)
	if err != nil {
		return nil, err
	}

	var info registry.VaultInfo
	if vaultName == "" {
		info, err = reg.GetActive()
	} else {
		info, err = reg.Get(vaultName)
	}
	if err != nil {
		return nil, err
	}

	ctx := &Context{
		Name: info.Name,
		Path: info.Path,
		deps: deps,
		vs:   vaultStore(),
		sess: newSession(deps, info.Name),
		reg:  reg,
	}

	if err := ctx.unlock(); err != nil {
		return nil, err
	}

	if err := reg.Touch(info.Name); err != nil {
		return nil, err
	}
	return ctx, nil
}

func (c *Context) unlock() error {
	if cached, err := c.sess.Load(); err == nil && cached != nil {
		if c.acceptCached(cached) {
			return nil
		}
		// Stale key material: tear the session down and fall through
		// to the password path.
		_ = c.sess.Clear()
	}

	password, err := c.resolveMasterPassword()
	if err != nil {
		return err
	}

	secretKeys := keychain.NewSecretKeyStore(c.deps.Credentials, c.deps.ConfigDir)
	secretKey, err := secretKeys.Load()
	if err != nil {
		return err
	}

	key, salt, err := c.vs.DeriveKeyFromFile(c.Path, password, secretKey)
	if err != nil {
		return err
	}

	v, err := c.vs.LoadWithKey(c.Path, key)
	if err != nil {
		if errors.Is(err, crypto.ErrDecryptionFailed) {
			return ErrWrongPassword
		}
		return err
	}

	c.Vault = v
	c.Key = key
	c.Salt = salt

	// Caching is best-effort: a host without a keyring still works,
	// it just prompts every time.
	_ = c.sess.Save(key, salt, v.EntryNames())
	return nil
}

// acceptCached validates a cached session key before trusting it. The
// salt it was derived with must match the vault file's stored salt;
// after an external password change they differ and the stale key must
// not be used.
func (c *Context) acceptCached(cached *session.Data) bool {
	storedSalt, err := store.ReadSalt(c.Path)
	if err != nil || storedSalt == nil {
		return false
	}
	if !bytes.Equal(cached.Salt, storedSalt) {
		return false
	}

	v, err := c.vs.LoadWithKey(c.Path, cached.DerivedKey)
	if err != nil {
		return false
	}

	c.Vault = v
	c.Key = cached.DerivedKey
	c.Salt = cached.Salt
	return true
}

// resolveMasterPassword runs the biometric-gated password cache when
// enabled, falling back to the prompt on any failure.
func (c *Context) resolveMasterPassword() (string, error) {
	prompt := func() (string, error) {
		return c.deps.Passwords.ReadMasterPassword(c.Name)
	}

	if !c.deps.Config.EnableBiometric || c.deps.Biometric == nil || !c.deps.Biometric.Available() {
		return prompt()
	}

	ok, err := c.deps.Biometric.Authenticate("Unlock your vault")
	if err != nil || !ok {
		return prompt()
	}

	cache := keychain.NewMasterPasswordCache(c.deps.Credentials)
	if password, hit, err := cache.Load(c.Name); err == nil && hit {
		return password, nil
	}

	password, err := prompt()
	if err != nil {
		return "", err
	}
	_ = cache.Save(c.Name, password)
	return password, nil
}

// Save re-encrypts the vault with the held key and refreshes the
// session; every save extends the session window.
func (c *Context) Save() error {
	if err := c.vs.SaveWithKey(c.Vault, c.Path, c.Key, c.Salt); err != nil {
		return err
	}
	_ = c.sess.Save(c.Key, c.Salt, c.Vault.EntryNames())
	return nil
}

// Lock drops the cached session for this vault.
func (c *Context) Lock() error {
	return c.sess.Clear()
}

// SessionManager exposes the vault's session for status display.
func (c *Context) SessionManager() *session.Manager {
	return c.sess
}

// ChangePassword re-encrypts the vault under a new master password with
// a fresh salt. The old file is kept as a backup until the new one is
// written; a failed write restores it. Sessions and cached passwords
// are invalidated either way.
func (c *Context) ChangePassword(newPassword string) error {
	secretKeys := keychain.NewSecretKeyStore(c.deps.Credentials, c.deps.ConfigDir)
	secretKey, err := secretKeys.Load()
	if err != nil {
		return err
	}

	newSalt := make([]byte, crypto.SaltLength)
	if err := fillRandom(newSalt); err != nil {
		return err
	}
	newKey, err := crypto.DeriveKey(newPassword, secretKey, newSalt)
	if err != nil {
		return err
	}

	backupPath := c.Path + ".bak"
	original, err := os.ReadFile(c.Path)
	if err != nil {
		return fmt.Errorf("vaultctx: failed to read vault for backup: %w", err)
	}
	if err := store.WriteFileAtomic(backupPath, original); err != nil {
		return err
	}

	if err := c.vs.SaveWithKey(c.Vault, c.Path, newKey, newSalt); err != nil {
		// Put the old file back; the old password still works.
		if restoreErr := store.WriteFileAtomic(c.Path, original); restoreErr != nil {
			return fmt.Errorf("vaultctx: save failed (%v) and restore failed: %w", err, restoreErr)
		}
		return err
	}
	_ = os.Remove(backupPath)

	crypto.SecureWipe(c.Key)
	c.Key = newKey
	c.Salt = newSalt

	_ = c.sess.Clear()
	_ = keychain.NewMasterPasswordCache(c.deps.Credentials).Delete(c.Name)
	_ = c.sess.Save(newKey, newSalt, c.Vault.EntryNames())
	return nil
}
