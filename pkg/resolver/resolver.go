package resolver

import (
	"fmt"
	"regexp"
	"strings"

	"hc/pkg/vault"
)

var templateURIRegex = regexp.MustCompile(`(?:hc|op)://(?:[^/]+/)?[^/\s]+/[^\s]+`)

// Opener unlocks a vault by name; the empty name means the caller's
// default. Implemented by the vault context layer so resolution stays
// independent of how vaults are stored and unlocked.
type Opener interface {
	OpenVault(name string) (*vault.Vault, error)
}

// Resolver resolves secret references against unlocked vaults.
type Resolver struct {
	opener Opener
	// DefaultVault is used when a reference does not name a vault.
	// Empty means the opener's own default (the active vault).
	DefaultVault string
}

// New returns a resolver that unlocks vaults through opener.
func New(opener Opener) *Resolver {
	return &Resolver{opener: opener}
}

// Resolve resolves a single reference to its secret value. Environment
// variables in the reference are expanded first, so a reference like
// hc://${ENV:-staging}/db/password picks its vault at runtime.
func (r *Resolver) Resolve(ref string) (string, error) {
	expanded := ExpandEnvVars(ref)
	u, err := ParseURI(expanded)
	if err != nil {
		return "", err
	}

	vaultName := u.Vault
	if vaultName == "" {
		vaultName = r.DefaultVault
	}

	v, err := r.opener.OpenVault(vaultName)
	if err != nil {
		return "", err
	}

	entry, err := v.GetEntry(u.Item)
	if err != nil {
		return "", err
	}
	return entry.GetField(u.Field)
}

// ResolveTemplate replaces every reference in text with its secret
// value. All references are attempted; when any fail, the error lists
// every failure so the user fixes them in one pass. Substitution runs
// back to front so earlier byte offsets stay valid.
func (r *Resolver) ResolveTemplate(text string) (string, error) {
	matches := templateURIRegex.FindAllStringIndex(text, -1)
	if matches == nil {
		return text, nil
	}

	type replacement struct {
		start, end int
		value      string
	}
	var replacements []replacement
	var failures []string

	for _, m := range matches {
		ref := strings.TrimSpace(text[m[0]:m[1]])
		value, err := r.Resolve(ref)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", ref, err))
			continue
		}
		replacements = append(replacements, replacement{start: m[0], end: m[1], value: value})
	}

	if len(failures) > 0 {
		return "", fmt.Errorf("resolver: failed to resolve secrets:\n  %s", strings.Join(failures, "\n  "))
	}

	out := []byte(text)
	for i := len(replacements) - 1; i >= 0; i-- {
		rep := replacements[i]
		out = append(out[:rep.start], append([]byte(rep.value), out[rep.end:]...)...)
	}
	return string(out), nil
}

// HasURIReferences reports whether text contains any secret reference.
func HasURIReferences(text string) bool {
	return strings.Contains(text, "hc://") || strings.Contains(text, "op://")
}
