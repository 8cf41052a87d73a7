package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"hc/pkg/vault"
)

// OnePasswordParser parses 1Password CSV exports (Title, Website,
// Username, Password, OTPAuth, Favorite, Archived, Tags, Notes).
type OnePasswordParser struct{}

func (p *OnePasswordParser) Source() Source {
	return Source1Password
}

func (p *OnePasswordParser) Parse(data []byte) (*Result, error) {
	header, reader, err := openCSV(data)
	if err != nil {
		return nil, err
	}

	columns := make(map[string]int)
	for i, col := range header {
		columns[strings.TrimSpace(col)] = i
	}
	if _, ok := columns["Title"]; !ok {
		return nil, fmt.Errorf("importer: not a 1Password export, missing 'Title' column")
	}

	result := &Result{}
	counter := 0
	rowNum := 1
	for {
		rowNum++
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		get := func(col string) string {
			if idx, ok := columns[col]; ok && idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}

		rawURL := get("Website")
		fields := make(map[string]string)
		setField(fields, "username", get("Username"))
		setField(fields, "password", get("Password"))
		setField(fields, "totp", get("OTPAuth"))
		setField(fields, "url", rawURL)

		notes := get("Notes")
		if len(fields) == 0 && notes == "" {
			result.Skipped++
			continue
		}

		name := entryName(get("Title"), rawURL, &counter)
		result.Entries = append(result.Entries, vault.NewEntry(name, fields, notes))
	}

	dedupeNames(result.Entries)
	return result, nil
}
