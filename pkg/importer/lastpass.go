package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"hc/pkg/vault"
)

// LastPassParser parses LastPass CSV exports
// (url,username,password,totp,extra,name,grouping,fav).
type LastPassParser struct{}

func (p *LastPassParser) Source() Source {
	return SourceLastPass
}

func (p *LastPassParser) Parse(data []byte) (*Result, error) {
	header, reader, err := openCSV(data)
	if err != nil {
		return nil, err
	}

	columns := make(map[string]int)
	for i, col := range header {
		columns[strings.ToLower(strings.TrimSpace(col))] = i
	}
	if _, ok := columns["name"]; !ok {
		return nil, fmt.Errorf("importer: not a LastPass export, missing 'name' column")
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

		rawURL := get("url")
		fields := make(map[string]string)
		setField(fields, "username", get("username"))
		setField(fields, "password", get("password"))
		setField(fields, "totp", get("totp"))
		// LastPass marks secure notes with the pseudo-URL http://sn.
		if rawURL != "" && rawURL != "http://sn" {
			setField(fields, "url", rawURL)
		}

		notes := get("extra")
		if len(fields) == 0 && notes == "" {
			result.Skipped++
			continue
		}

		name := entryName(get("name"), rawURL, &counter)
		result.Entries = append(result.Entries, vault.NewEntry(name, fields, notes))
	}

	dedupeNames(result.Entries)
	return result, nil
}

// openCSV strips a UTF-8 BOM, builds a tolerant reader and returns the
// header row.
func openCSV(data []byte) ([]string, *csv.Reader, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("importer: failed to read CSV header: %w", err)
	}
	return header, reader, nil
}
