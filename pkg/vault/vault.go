// Package vault provides the domain model for hc: a vault is a named
// collection of entries, each holding arbitrary string fields. The model
// enforces its invariants independently of how the vault is encrypted or
// persisted.
package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// TotpEntryName is the reserved entry acting as the bucket for TOTP seeds.
const TotpEntryName = "totp"

// PasswordField is the conventional default field name. A field literally
// named "password" is the default clipboard and display target.
const PasswordField = "password"

// Domain errors.
var (
	ErrEntryAlreadyExists = errors.New("vault: entry already exists")
	ErrEntryNotFound      = errors.New("vault: entry not found")
	ErrEmptyEntryName     = errors.New("vault: entry name cannot be empty")
)

// Vault is a collection of entries keyed by entry name. Names are unique
// and case-sensitive.
type Vault struct {
	Entries map[string]*Entry `json:"entries"`
}

// New returns an empty vault.
func New() *Vault {
	return &Vault{Entries: make(map[string]*Entry)}
}

// AddEntry inserts an entry. Fails with ErrEntryAlreadyExists if an entry
// of the same name is present.
func (v *Vault) AddEntry(e *Entry) error {
	if e.Name == "" {
		return ErrEmptyEntryName
	}
	if v.Entries == nil {
		v.Entries = make(map[string]*Entry)
	}
	if _, ok := v.Entries[e.Name]; ok {
		return fmt.Errorf("%w: %q", ErrEntryAlreadyExists, e.Name)
	}
	v.Entries[e.Name] = e
	return nil
}

// GetEntry looks up an entry by name.
func (v *Vault) GetEntry(name string) (*Entry, error) {
	e, ok := v.Entries[NormalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrEntryNotFound, name)
	}
	return e, nil
}

// RemoveEntry deletes an entry by name and returns it.
func (v *Vault) RemoveEntry(name string) (*Entry, error) {
	key := NormalizeName(name)
	e, ok := v.Entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrEntryNotFound, name)
	}
	delete(v.Entries, key)
	return e, nil
}

// HasEntry reports whether an entry exists.
func (v *Vault) HasEntry(name string) bool {
	_, ok := v.Entries[NormalizeName(name)]
	return ok
}

// ListEntries returns all entries sorted by name. Storage order is
// undefined; display order is not.
func (v *Vault) ListEntries() []*Entry {
	entries := make([]*Entry, 0, len(v.Entries))
	for _, e := range v.Entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// EntryNames returns all entry names sorted.
func (v *Vault) EntryNames() []string {
	names := make([]string, 0, len(v.Entries))
	for name := range v.Entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnmarshalJSON tolerates a vault serialized with a null entry map.
func (v *Vault) UnmarshalJSON(data []byte) error {
	type alias Vault
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.Entries == nil {
		a.Entries = make(map[string]*Entry)
	}
	*v = Vault(a)
	return nil
}

// NormalizeName NFC-normalizes an entry or field name so visually identical
// names typed on different platforms address the same record.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}
