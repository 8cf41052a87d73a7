package vaultctx

import (
	"crypto/rand"
	"fmt"
	"path/filepath"

	"hc/pkg/crypto"
	"hc/pkg/keychain"
	"hc/pkg/registry"
)

// Create initializes a new empty vault and registers it. On the very
// first vault the machine's secret key is generated and stored; later
// vaults share it. The generated secret key is returned once (non-empty
// only when freshly generated) so the caller can tell the user to save
// an emergency copy.
func Create(name, masterPassword string, deps Deps) (*Context, string, error) {
	reg, err := registry.Open(deps.ConfigDir)
	if err != nil {
		return nil, "", err
	}

	secretKeys := keychain.NewSecretKeyStore(deps.Credentials, deps.ConfigDir)
	secretKey, err := secretKeys.Load()
	generated := ""
	if err != nil {
		secretKey, err = crypto.GenerateSecretKey()
		if err != nil {
			return nil, "", err
		}
		if err := secretKeys.Save(secretKey); err != nil {
			return nil, "", err
		}
		generated = secretKey
	}

	path := filepath.Join(deps.ConfigDir, "vaults", name+".enc")
	info, err := reg.Create(name, path)
	if err != nil {
		return nil, "", err
	}

	salt := make([]byte, crypto.SaltLength)
	if err := fillRandom(salt); err != nil {
		return nil, "", err
	}
	key, err := crypto.DeriveKey(masterPassword, secretKey, salt)
	if err != nil {
		return nil, "", err
	}

	ctx := &Context{
		Name: info.Name,
		Path: info.Path,
		deps: deps,
		vs:   vaultStore(),
		reg:  reg,
		Key:  key,
		Salt: salt,
	}
	ctx.Vault = ctx.vs.NewFunc()
	ctx.sess = newSession(deps, info.Name)

	if err := ctx.Save(); err != nil {
		// Roll the registration back so a failed create leaves no
		// phantom vault behind.
		_ = reg.Delete(name)
		return nil, "", err
	}
	return ctx, generated, nil
}

func fillRandom(b []byte) error {
	if _, err := rand.Read(b); err != nil {
		return fmt.Errorf("vaultctx: failed to draw randomness: %w", err)
	}
	return nil
}
