package importer

import (
	"encoding/json"
	"fmt"

	"hc/pkg/vault"
)

// BitwardenParser parses Bitwarden JSON exports.
type BitwardenParser struct{}

// Bitwarden item type codes.
const (
	bitwardenTypeLogin      = 1
	bitwardenTypeSecureNote = 2
	bitwardenTypeCard       = 3
	bitwardenTypeIdentity   = 4
)

type bitwardenExport struct {
	Items   []bitwardenItem   `json:"items"`
	Folders []bitwardenFolder `json:"folders"`
}

type bitwardenFolder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type bitwardenItem struct {
	Type     int                    `json:"type"`
	Name     string                 `json:"name"`
	Notes    string                 `json:"notes"`
	Login    *bitwardenLogin        `json:"login"`
	Card     *bitwardenCard         `json:"card"`
	Identity map[string]string      `json:"identity"`
	Fields   []bitwardenCustomField `json:"fields"`
}

type bitwardenLogin struct {
	URIs     []bitwardenURI `json:"uris"`
	Username string         `json:"username"`
	Password string         `json:"password"`
	TOTP     string         `json:"totp"`
}

type bitwardenURI struct {
	URI string `json:"uri"`
}

type bitwardenCard struct {
	CardholderName string `json:"cardholderName"`
	Number         string `json:"number"`
	ExpMonth       string `json:"expMonth"`
	ExpYear        string `json:"expYear"`
	Code           string `json:"code"`
	Brand          string `json:"brand"`
}

type bitwardenCustomField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (p *BitwardenParser) Source() Source {
	return SourceBitwarden
}

func (p *BitwardenParser) Parse(data []byte) (*Result, error) {
	var export bitwardenExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("importer: not a Bitwarden JSON export: %w", err)
	}

	result := &Result{}
	counter := 0
	for i, item := range export.Items {
		fields, warning := p.itemFields(item)
		if warning != "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("item %d (%s): %s", i+1, item.Name, warning))
		}
		if len(fields) == 0 && item.Notes == "" {
			result.Skipped++
			continue
		}

		var primaryURL string
		if item.Login != nil && len(item.Login.URIs) > 0 {
			primaryURL = item.Login.URIs[0].URI
		}
		name := entryName(item.Name, primaryURL, &counter)
		result.Entries = append(result.Entries, vault.NewEntry(name, fields, item.Notes))
	}

	dedupeNames(result.Entries)
	return result, nil
}

func (p *BitwardenParser) itemFields(item bitwardenItem) (map[string]string, string) {
	fields := make(map[string]string)

	switch item.Type {
	case bitwardenTypeLogin:
		if item.Login != nil {
			setField(fields, "username", item.Login.Username)
			setField(fields, "password", item.Login.Password)
			setField(fields, "totp", item.Login.TOTP)
			for i, uri := range item.Login.URIs {
				if i == 0 {
					setField(fields, "url", uri.URI)
				} else {
					setField(fields, fmt.Sprintf("url_%d", i+1), uri.URI)
				}
			}
		}
	case bitwardenTypeSecureNote:
		// Only the notes carry data; nothing to map.
	case bitwardenTypeCard:
		if item.Card != nil {
			setField(fields, "cardholder_name", item.Card.CardholderName)
			setField(fields, "number", item.Card.Number)
			setField(fields, "exp_month", item.Card.ExpMonth)
			setField(fields, "exp_year", item.Card.ExpYear)
			setField(fields, "cvv", item.Card.Code)
			setField(fields, "brand", item.Card.Brand)
		}
	case bitwardenTypeIdentity:
		for key, value := range item.Identity {
			setField(fields, snakeCase(key), value)
		}
	default:
		return nil, fmt.Sprintf("unsupported item type %d", item.Type)
	}

	for _, cf := range item.Fields {
		if cf.Name != "" {
			setField(fields, cf.Name, cf.Value)
		}
	}
	return fields, ""
}

// snakeCase maps Bitwarden's camelCase identity keys (firstName) to the
// field naming used everywhere else (first_name).
func snakeCase(s string) string {
	out := make([]rune, 0, len(s)+4)
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				out = append(out, '_')
			}
			r += 'a' - 'A'
		}
		out = append(out, r)
	}
	return string(out)
}
