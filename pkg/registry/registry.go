// Package registry tracks the known vaults and which one is active. The
// registry file (vaults.yaml) is plain YAML: it holds names, paths and
// timestamps, never secrets.
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"hc/pkg/store"
)

// Registry errors.
var (
	ErrVaultExists   = errors.New("registry: vault already exists")
	ErrVaultNotFound = errors.New("registry: vault not found")
	ErrNoActiveVault = errors.New("registry: no active vault set, use 'hc vault use <name>'")
)

// VaultInfo is one registered vault.
type VaultInfo struct {
	Name         string    `yaml:"name"`
	Path         string    `yaml:"path"`
	CreatedAt    time.Time `yaml:"created_at"`
	LastAccessed time.Time `yaml:"last_accessed"`
}

type registryFile struct {
	ActiveVault string      `yaml:"active_vault"`
	Vaults      []VaultInfo `yaml:"vaults"`
}

// Registry reads and writes the vault registry in configDir. Every
// operation loads the file fresh; concurrent hc processes see each
// other's writes.
type Registry struct {
	configDir string
}

// Open returns the registry for configDir, adopting a pre-registry vault
// file as the "default" vault on first contact.
func Open(configDir string) (*Registry, error) {
	r := &Registry{configDir: configDir}
	if _, err := os.Stat(r.path()); os.IsNotExist(err) {
		if err := r.migrateLegacyVault(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) path() string {
	return filepath.Join(r.configDir, "vaults.yaml")
}

// Create registers a new vault and makes it active if nothing is active
// yet. The vault file itself is created elsewhere.
func (r *Registry) Create(name, vaultPath string) (VaultInfo, error) {
	cfg, err := r.load()
	if err != nil {
		return VaultInfo{}, err
	}

	for _, v := range cfg.Vaults {
		if v.Name == name {
			return VaultInfo{}, fmt.Errorf("%w: %q", ErrVaultExists, name)
		}
	}

	now := time.Now()
	info := VaultInfo{Name: name, Path: vaultPath, CreatedAt: now, LastAccessed: now}
	cfg.Vaults = append(cfg.Vaults, info)
	if cfg.ActiveVault == "" {
		cfg.ActiveVault = name
	}

	if err := r.save(cfg); err != nil {
		return VaultInfo{}, err
	}
	return info, nil
}

// Delete removes a vault from the registry. When the active vault is
// deleted, the first remaining vault becomes active.
func (r *Registry) Delete(name string) error {
	cfg, err := r.load()
	if err != nil {
		return err
	}

	kept := cfg.Vaults[:0]
	found := false
	for _, v := range cfg.Vaults {
		if v.Name == name {
			found = true
			continue
		}
		kept = append(kept, v)
	}
	if !found {
		return fmt.Errorf("%w: %q", ErrVaultNotFound, name)
	}
	cfg.Vaults = kept

	if cfg.ActiveVault == name {
		cfg.ActiveVault = ""
		if len(cfg.Vaults) > 0 {
			cfg.ActiveVault = cfg.Vaults[0].Name
		}
	}

	return r.save(cfg)
}

// SetActive switches the active vault.
func (r *Registry) SetActive(name string) error {
	cfg, err := r.load()
	if err != nil {
		return err
	}
	for _, v := range cfg.Vaults {
		if v.Name == name {
			cfg.ActiveVault = name
			return r.save(cfg)
		}
	}
	return fmt.Errorf("%w: %q", ErrVaultNotFound, name)
}

// Get looks up one vault by name.
func (r *Registry) Get(name string) (VaultInfo, error) {
	cfg, err := r.load()
	if err != nil {
		return VaultInfo{}, err
	}
	for _, v := range cfg.Vaults {
		if v.Name == name {
			return v, nil
		}
	}
	return VaultInfo{}, fmt.Errorf("%w: %q", ErrVaultNotFound, name)
}

// GetActive returns the active vault.
func (r *Registry) GetActive() (VaultInfo, error) {
	cfg, err := r.load()
	if err != nil {
		return VaultInfo{}, err
	}
	if cfg.ActiveVault == "" {
		return VaultInfo{}, ErrNoActiveVault
	}
	for _, v := range cfg.Vaults {
		if v.Name == cfg.ActiveVault {
			return v, nil
		}
	}
	return VaultInfo{}, fmt.Errorf("%w: %q", ErrVaultNotFound, cfg.ActiveVault)
}

// ActiveName returns the name of the active vault, or "".
func (r *Registry) ActiveName() (string, error) {
	cfg, err := r.load()
	if err != nil {
		return "", err
	}
	return cfg.ActiveVault, nil
}

// List returns all vaults, most recently accessed first.
func (r *Registry) List() ([]VaultInfo, error) {
	cfg, err := r.load()
	if err != nil {
		return nil, err
	}
	vaults := cfg.Vaults
	for i := 1; i < len(vaults); i++ {
		for j := i; j > 0 && vaults[j].LastAccessed.After(vaults[j-1].LastAccessed); j-- {
			vaults[j], vaults[j-1] = vaults[j-1], vaults[j]
		}
	}
	return vaults, nil
}

// Touch refreshes a vault's last-accessed timestamp.
func (r *Registry) Touch(name string) error {
	cfg, err := r.load()
	if err != nil {
		return err
	}
	for i := range cfg.Vaults {
		if cfg.Vaults[i].Name == name {
			cfg.Vaults[i].LastAccessed = time.Now()
			return r.save(cfg)
		}
	}
	return fmt.Errorf("%w: %q", ErrVaultNotFound, name)
}

func (r *Registry) load() (registryFile, error) {
	var cfg registryFile

	data, err := os.ReadFile(r.path())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("registry: failed to read vaults.yaml: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("registry: failed to parse vaults.yaml: %w", err)
	}
	return cfg, nil
}

func (r *Registry) save(cfg registryFile) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("registry: failed to serialize vaults.yaml: %w", err)
	}
	return store.WriteFileAtomic(r.path(), data)
}

// migrateLegacyVault adopts a vault.enc written before multi-vault
// support existed, registering it as the active "default" vault.
func (r *Registry) migrateLegacyVault() error {
	legacy := filepath.Join(r.configDir, "vault.enc")
	if _, err := os.Stat(legacy); err != nil {
		return nil
	}

	now := time.Now()
	cfg := registryFile{
		ActiveVault: "default",
		Vaults: []VaultInfo{{
			Name:         "default",
			Path:         legacy,
			CreatedAt:    now,
			LastAccessed: now,
		}},
	}
	return r.save(cfg)
}
