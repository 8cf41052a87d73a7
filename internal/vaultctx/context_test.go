package vaultctx

import (
	"errors"
	"testing"

	"hc/pkg/config"
	"hc/pkg/keychain"
	"hc/pkg/registry"
	"hc/pkg/vault"
)

const testPassword = "correct horse battery"

func testDeps(t *testing.T) Deps {
	t.Helper()
	return Deps{
		ConfigDir:   t.TempDir(),
		Config:      config.Default(),
		Credentials: keychain.NewMemoryStore(),
		Passwords: PasswordFunc(func(string) (string, error) {
			return testPassword, nil
		}),
	}
}

func TestCreateAndLoad(t *testing.T) {
	deps := testDeps(t)

	ctx, generated, err := Create("work", testPassword, deps)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if generated == "" {
		t.Error("Create() on a fresh install should generate a secret key")
	}

	entry := vault.NewEntry("github", map[string]string{"token": "ghp_abc"}, "")
	if err := ctx.Vault.AddEntry(entry); err != nil {
		t.Fatalf("AddEntry() error = %v", err)
	}
	if err := ctx.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load("work", deps)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	e, err := loaded.Vault.GetEntry("github")
	if err != nil {
		t.Fatalf("GetEntry() error = %v", err)
	}
	if got, _ := e.GetField("token"); got != "ghp_abc" {
		t.Errorf("field token = %q, want %q", got, "ghp_abc")
	}
}

func TestCreateSecondVaultSharesSecretKey(t *testing.T) {
	deps := testDeps(t)

	if _, generated, err := Create("first", testPassword, deps); err != nil || generated == "" {
		t.Fatalf("Create(first) = %q, %v", generated, err)
	}
	_, generated, err := Create("second", testPassword, deps)
	if err != nil {
		t.Fatalf("Create(second) error = %v", err)
	}
	if generated != "" {
		t.Error("second vault should reuse the existing secret key")
	}
}

func TestLoadActiveVault(t *testing.T) {
	deps := testDeps(t)

	if _, _, err := Create("only", testPassword, deps); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	ctx, err := Load("", deps)
	if err != nil {
		t.Fatalf("Load(active) error = %v", err)
	}
	if ctx.Name != "only" {
		t.Errorf("Load(active).Name = %q, want %q", ctx.Name, "only")
	}
}

func TestLoadUsesSessionWithoutPrompting(t *testing.T) {
	deps := testDeps(t)
	if _, _, err := Create("work", testPassword, deps); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	prompts := 0
	deps.Passwords = PasswordFunc(func(string) (string, error) {
		prompts++
		return testPassword, nil
	})

	if _, err := Load("work", deps); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if prompts != 0 {
		t.Errorf("Load() prompted %d times with a live session, want 0", prompts)
	}
}

func TestLockForcesPasswordPath(t *testing.T) {
	deps := testDeps(t)
	ctx, _, err := Create("work", testPassword, deps)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := ctx.Lock(); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	prompts := 0
	deps.Passwords = PasswordFunc(func(string) (string, error) {
		prompts++
		return testPassword, nil
	})

	if _, err := Load("work", deps); err != nil {
		t.Fatalf("Load() after Lock() error = %v", err)
	}
	if prompts != 1 {
		t.Errorf("Load() after Lock() prompted %d times, want 1", prompts)
	}
}

func TestLoadWrongPassword(t *testing.T) {
	deps := testDeps(t)
	ctx, _, err := Create("work", testPassword, deps)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := ctx.Lock(); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	deps.Passwords = PasswordFunc(func(string) (string, error) {
		return "wrong password!!", nil
	})

	if _, err := Load("work", deps); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("Load() error = %v, want ErrWrongPassword", err)
	}
}

func TestLoadUnknownVault(t *testing.T) {
	deps := testDeps(t)
	if _, _, err := Create("work", testPassword, deps); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := Load("missing", deps); !errors.Is(err, registry.ErrVaultNotFound) {
		t.Errorf("Load(missing) error = %v, want ErrVaultNotFound", err)
	}
}

func TestChangePassword(t *testing.T) {
	deps := testDeps(t)
	ctx, _, err := Create("work", testPassword, deps)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	entry := vault.NewEntry("db", map[string]string{"password": "hunter2hunter2"}, "")
	if err := ctx.Vault.AddEntry(entry); err != nil {
		t.Fatalf("AddEntry() error = %v", err)
	}
	if err := ctx.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	const newPassword = "an even longer phrase"
	if err := ctx.ChangePassword(newPassword); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}

	// Old password no longer decrypts.
	oldDeps := deps
	oldDeps.Passwords = PasswordFunc(func(string) (string, error) {
		return testPassword, nil
	})
	if err := ctx.Lock(); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	if _, err := Load("work", oldDeps); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("Load() with old password after change = %v, want ErrWrongPassword", err)
	}

	// New password decrypts and the data survived.
	newDeps := deps
	newDeps.Passwords = PasswordFunc(func(string) (string, error) {
		return newPassword, nil
	})
	loaded, err := Load("work", newDeps)
	if err != nil {
		t.Fatalf("Load() with new password error = %v", err)
	}
	if !loaded.Vault.HasEntry("db") {
		t.Error("entry lost across password change")
	}
}

func TestStaleSessionRejectedAfterPasswordChange(t *testing.T) {
	deps := testDeps(t)
	ctx, _, err := Create("work", testPassword, deps)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Unlock elsewhere and change the password there, leaving this
	// process's idea of the session behind. The salt stored in the vault
	// file changes, so the original cached key must not be trusted.
	other, err := Load("work", deps)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	const newPassword = "rotated passphrase xx"
	if err := other.ChangePassword(newPassword); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}

	// Re-plant the stale key as the current session.
	if err := ctx.sess.Save(ctx.Key, ctx.Salt, ctx.Vault.EntryNames()); err != nil {
		t.Fatalf("Save() stale session error = %v", err)
	}

	prompts := 0
	deps.Passwords = PasswordFunc(func(string) (string, error) {
		prompts++
		return newPassword, nil
	})
	if _, err := Load("work", deps); err != nil {
		t.Fatalf("Load() after external change error = %v", err)
	}
	if prompts != 1 {
		t.Errorf("stale session accepted: prompted %d times, want 1", prompts)
	}
}

func TestCreateDuplicateVault(t *testing.T) {
	deps := testDeps(t)
	if _, _, err := Create("work", testPassword, deps); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, _, err := Create("work", testPassword, deps); !errors.Is(err, registry.ErrVaultExists) {
		t.Errorf("Create() duplicate error = %v, want ErrVaultExists", err)
	}
}

func TestMultiCachesContexts(t *testing.T) {
	deps := testDeps(t)
	if _, _, err := Create("work", testPassword, deps); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, _, err := Create("personal", testPassword, deps); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	prompts := 0
	deps.Passwords = PasswordFunc(func(string) (string, error) {
		prompts++
		return testPassword, nil
	})

	m := NewMulti(deps)
	for _, name := range []string{"work", "personal", "work", ""} {
		if _, err := m.OpenVault(name); err != nil {
			t.Fatalf("OpenVault(%q) error = %v", name, err)
		}
	}
	if len(m.contexts) > 3 {
		t.Errorf("Multi cached %d contexts for two vaults", len(m.contexts))
	}
}
