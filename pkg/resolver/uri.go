// Package resolver turns secret references into secret values. A
// reference is a URI of the form hc://[vault/]item/field; the op://
// scheme is accepted as an alias so existing 1Password-style configs
// keep working.
package resolver

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	uriRegex    = regexp.MustCompile(`^(?:hc|op)://(?:([^/]+)/)?([^/]+)/(.+)$`)
	envVarRegex = regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*)(?::-([^}]+))?\}`)
)

// URI is a parsed secret reference. Vault is empty when the reference
// relies on the caller's default vault.
type URI struct {
	Vault string
	Item  string
	Field string
}

// ParseURI parses a secret reference. Leading and trailing whitespace is
// ignored.
func ParseURI(raw string) (URI, error) {
	raw = strings.TrimSpace(raw)

	if !strings.HasPrefix(raw, "hc://") && !strings.HasPrefix(raw, "op://") {
		return URI{}, fmt.Errorf("resolver: invalid URI scheme, expected hc:// or op://: %s", raw)
	}

	m := uriRegex.FindStringSubmatch(raw)
	if m == nil {
		return URI{}, fmt.Errorf("resolver: invalid URI format: %s", raw)
	}

	u := URI{Vault: m[1], Item: m[2], Field: m[3]}
	if u.Item == "" {
		return URI{}, fmt.Errorf("resolver: item name cannot be empty: %s", raw)
	}
	if u.Field == "" {
		return URI{}, fmt.Errorf("resolver: field name cannot be empty: %s", raw)
	}
	return u, nil
}

// IsURI reports whether s looks like a secret reference.
func IsURI(s string) bool {
	trimmed := strings.TrimSpace(s)
	return strings.HasPrefix(trimmed, "hc://") || strings.HasPrefix(trimmed, "op://")
}

// ExpandEnvVars substitutes ${VAR} and ${VAR:-default} occurrences with
// environment values. An unset variable without a default is left as-is
// so the later parse error names it.
func ExpandEnvVars(s string) string {
	return envVarRegex.ReplaceAllStringFunc(s, func(match string) string {
		m := envVarRegex.FindStringSubmatch(match)
		name, fallback := m[1], m[2]

		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		if fallback != "" {
			return fallback
		}
		return "${" + name + "}"
	})
}
