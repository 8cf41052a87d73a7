package vaultctx

import (
	"hc/pkg/vault"
)

// Multi unlocks vaults on demand and caches the contexts, so a template
// sweep referencing three vaults derives each key at most once. It
// satisfies the resolver's Opener interface.
type Multi struct {
	deps     Deps
	contexts map[string]*Context
}

// NewMulti returns an empty multi-vault cache.
func NewMulti(deps Deps) *Multi {
	return &Multi{deps: deps, contexts: make(map[string]*Context)}
}

// Load returns the context for a vault, unlocking it on first use. The
// empty name means the active vault.
func (m *Multi) Load(name string) (*Context, error) {
	if ctx, ok := m.contexts[name]; ok {
		return ctx, nil
	}

	ctx, err := Load(name, m.deps)
	if err != nil {
		return nil, err
	}
	m.contexts[name] = ctx
	// The active vault is reachable under both its empty alias and its
	// real name.
	m.contexts[ctx.Name] = ctx
	return ctx, nil
}

// OpenVault implements resolver.Opener.
func (m *Multi) OpenVault(name string) (*vault.Vault, error) {
	ctx, err := m.Load(name)
	if err != nil {
		return nil, err
	}
	return ctx.Vault, nil
}
