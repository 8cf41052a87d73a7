// Package importer parses exports from other password managers into
// vault entries. Supported sources: 1Password CSV, Bitwarden JSON and
// LastPass CSV.
package importer

import (
	"fmt"
	"net/url"
	"strings"

	"hc/pkg/vault"
)

// Source identifies an export format.
type Source string

const (
	Source1Password Source = "1password"
	SourceBitwarden Source = "bitwarden"
	SourceLastPass  Source = "lastpass"
)

// Result is the outcome of parsing one export file.
type Result struct {
	Entries []*vault.Entry
	// Warnings are rows or items that parsed oddly, with a reason.
	Warnings []string
	// Skipped counts items carrying no usable data.
	Skipped int
}

// Parser parses one export format.
type Parser interface {
	Source() Source
	Parse(data []byte) (*Result, error)
}

// ParserFor returns the parser for a source.
func ParserFor(source Source) (Parser, error) {
	switch source {
	case Source1Password:
		return &OnePasswordParser{}, nil
	case SourceBitwarden:
		return &BitwardenParser{}, nil
	case SourceLastPass:
		return &LastPassParser{}, nil
	default:
		return nil, fmt.Errorf("importer: unknown source %q (supported: %s)", source, strings.Join(Sources(), ", "))
	}
}

// Sources lists the supported source names.
func Sources() []string {
	return []string{string(Source1Password), string(SourceBitwarden), string(SourceLastPass)}
}

// entryName picks a name for an imported item: the item's own name, the
// URL hostname, or a running counter.
func entryName(name, rawURL string, counter *int) string {
	name = strings.TrimSpace(name)
	if name != "" {
		return name
	}
	if host := hostname(rawURL); host != "" {
		return host
	}
	*counter++
	return fmt.Sprintf("imported_%d", *counter)
}

func hostname(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// dedupeNames suffixes repeated entry names with _2, _3, … so every
// imported entry can be added to one vault.
func dedupeNames(entries []*vault.Entry) {
	seen := make(map[string]int)
	for _, e := range entries {
		key := vault.NormalizeName(e.Name)
		seen[key]++
		if n := seen[key]; n > 1 {
			e.Name = vault.NormalizeName(fmt.Sprintf("%s_%d", e.Name, n))
		}
	}
}

// setField stores a field when the value is non-blank.
func setField(fields map[string]string, key, value string) {
	if strings.TrimSpace(value) != "" {
		fields[key] = value
	}
}
