package resolver

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"hc/pkg/vault"
)

var (
	templateVarRegex   = regexp.MustCompile(`\{\{([^}]+)\}\}`)
	templateValueRegex = regexp.MustCompile(`^\{\{([^.]+)\.([^}]+)\}\}$`)
)

// RenderEntry expands {{entry.field}} and {{entry}} placeholders against
// one entry. {{entry}} expands to KEY=value lines for every field.
func RenderEntry(template string, e *vault.Entry) (string, error) {
	var missing []string
	result := template

	for _, m := range templateVarRegex.FindAllStringSubmatch(template, -1) {
		full, name := m[0], strings.TrimSpace(m[1])

		var value string
		switch {
		case name == "entry":
			value = expandEntry(e)
		case strings.Contains(name, "."):
			prefix, field, _ := strings.Cut(name, ".")
			if prefix != "entry" {
				return "", fmt.Errorf("resolver: invalid template variable %q, only 'entry' is supported", prefix)
			}
			v, ok := e.Fields[vault.NormalizeName(field)]
			if !ok {
				missing = append(missing, field)
				continue
			}
			value = v
		default:
			return "", fmt.Errorf("resolver: invalid template syntax %q, use {{entry.field}} or {{entry}}", name)
		}

		result = strings.ReplaceAll(result, full, value)
	}

	if len(missing) > 0 {
		return "", fmt.Errorf("resolver: missing fields in entry %q: %s", e.Name, strings.Join(missing, ", "))
	}
	return result, nil
}

// ResolveValue resolves a value that is exactly one {{item.field}}
// reference against a vault; any other value passes through unchanged.
// Used for provider configs whose credentials live in the vault.
func ResolveValue(value string, v *vault.Vault) (string, error) {
	m := templateValueRegex.FindStringSubmatch(value)
	if m == nil {
		return value, nil
	}

	item, field := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	entry, err := v.GetEntry(item)
	if err != nil {
		return "", err
	}
	return entry.GetField(field)
}

func expandEntry(e *vault.Entry) string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, strings.ToUpper(name)+"="+e.Fields[name])
	}
	return strings.Join(lines, "\n")
}
