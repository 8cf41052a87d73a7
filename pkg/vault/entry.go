package vault

import (
	"fmt"
	"time"
)

// Entry is one named secret record: a set of string fields plus optional
// free-text notes. Field names have no schema; "password" is only a
// display convention.
type Entry struct {
	Name      string            `json:"name"`
	Fields    map[string]string `json:"custom_fields"`
	Notes     string            `json:"notes,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewEntry creates an entry with both timestamps set to now. The entry
// name and field names are NFC-normalized.
func NewEntry(name string, fields map[string]string, notes string) *Entry {
	normalized := make(map[string]string, len(fields))
	for k, v := range fields {
		normalized[NormalizeName(k)] = v
	}
	now := time.Now().UTC()
	return &Entry{
		Name:      NormalizeName(name),
		Fields:    normalized,
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetField returns the value of a field; the error names both the entry
// and the field.
func (e *Entry) GetField(name string) (string, error) {
	v, ok := e.Fields[NormalizeName(name)]
	if !ok {
		return "", fmt.Errorf("field %q not found in entry %q", name, e.Name)
	}
	return v, nil
}

// SetField sets a field value and refreshes the update timestamp.
func (e *Entry) SetField(name, value string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[NormalizeName(name)] = value
	e.Touch()
}

// RemoveField deletes a field and refreshes the update timestamp. Returns
// false if the field was absent.
func (e *Entry) RemoveField(name string) bool {
	key := NormalizeName(name)
	if _, ok := e.Fields[key]; !ok {
		return false
	}
	delete(e.Fields, key)
	e.Touch()
	return true
}

// SetNotes replaces the notes and refreshes the update timestamp.
func (e *Entry) SetNotes(notes string) {
	e.Notes = notes
	e.Touch()
}

// Touch refreshes the update timestamp. Any mutation counts.
func (e *Entry) Touch() {
	e.UpdatedAt = time.Now().UTC()
}
