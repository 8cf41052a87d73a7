package vault

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestAddEntryDuplicate(t *testing.T) {
	v := New()

	if err := v.AddEntry(NewEntry("db", map[string]string{"password": "secret123"}, "")); err != nil {
		t.Fatalf("AddEntry() error = %v", err)
	}

	err := v.AddEntry(NewEntry("db", nil, ""))
	if !errors.Is(err, ErrEntryAlreadyExists) {
		t.Errorf("AddEntry() duplicate error = %v, want ErrEntryAlreadyExists", err)
	}
}

func TestAddEntryEmptyName(t *testing.T) {
	v := New()
	if err := v.AddEntry(NewEntry("", nil, "")); !errors.Is(err, ErrEmptyEntryName) {
		t.Errorf("AddEntry() error = %v, want ErrEmptyEntryName", err)
	}
}

func TestGetEntryNotFound(t *testing.T) {
	v := New()
	if _, err := v.GetEntry("missing"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("GetEntry() error = %v, want ErrEntryNotFound", err)
	}
}

func TestRemoveEntry(t *testing.T) {
	v := New()
	if err := v.AddEntry(NewEntry("github", map[string]string{"token": "t"}, "")); err != nil {
		t.Fatalf("AddEntry() error = %v", err)
	}

	e, err := v.RemoveEntry("github")
	if err != nil {
		t.Fatalf("RemoveEntry() error = %v", err)
	}
	if e.Name != "github" {
		t.Errorf("RemoveEntry() returned %q", e.Name)
	}

	if _, err := v.RemoveEntry("github"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("second RemoveEntry() error = %v, want ErrEntryNotFound", err)
	}
}

func TestListEntriesSorted(t *testing.T) {
	v := New()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := v.AddEntry(NewEntry(name, nil, "")); err != nil {
			t.Fatalf("AddEntry(%q) error = %v", name, err)
		}
	}

	entries := v.ListEntries()
	want := []string{"alpha", "mid", "zeta"}
	if len(entries) != len(want) {
		t.Fatalf("ListEntries() returned %d entries, want %d", len(entries), len(want))
	}
	for i, e := range entries {
		if e.Name != want[i] {
			t.Errorf("ListEntries()[%d] = %q, want %q", i, e.Name, want[i])
		}
	}
}

func TestEntryTouchSemantics(t *testing.T) {
	e := NewEntry("db", map[string]string{"password": "old"}, "")
	created := e.CreatedAt
	// Make sure the clock can move.
	time.Sleep(10 * time.Millisecond)

	e.SetField("password", "new")
	if !e.UpdatedAt.After(created) {
		t.Error("SetField() should refresh UpdatedAt")
	}
	if !e.CreatedAt.Equal(created) {
		t.Error("SetField() must not modify CreatedAt")
	}

	before := e.UpdatedAt
	time.Sleep(10 * time.Millisecond)
	e.SetNotes("rotated")
	if !e.UpdatedAt.After(before) {
		t.Error("SetNotes() should refresh UpdatedAt")
	}
}

func TestEntryGetField(t *testing.T) {
	e := NewEntry("db", map[string]string{"password": "secret123"}, "")

	got, err := e.GetField("password")
	if err != nil {
		t.Fatalf("GetField() error = %v", err)
	}
	if got != "secret123" {
		t.Errorf("GetField() = %q, want secret123", got)
	}

	_, err = e.GetField("username")
	if err == nil {
		t.Fatal("GetField() on missing field should fail")
	}
	// The error must name both the entry and the field.
	msg := err.Error()
	for _, want := range []string{"username", "db"} {
		if !strings.Contains(msg, want) {
			t.Errorf("GetField() error %q does not mention %q", msg, want)
		}
	}
}

func TestEntryRemoveField(t *testing.T) {
	e := NewEntry("api", map[string]string{"token": "t"}, "")
	if !e.RemoveField("token") {
		t.Error("RemoveField() on existing field should return true")
	}
	if e.RemoveField("token") {
		t.Error("RemoveField() on absent field should return false")
	}
}

func TestNameNormalization(t *testing.T) {
	v := New()
	// "é" as a precomposed rune vs. "e" + combining acute.
	if err := v.AddEntry(NewEntry("café", nil, "")); err != nil {
		t.Fatalf("AddEntry() error = %v", err)
	}
	if !v.HasEntry("café") {
		t.Error("decomposed lookup should find the precomposed entry")
	}
}

func TestVaultJSONRoundTrip(t *testing.T) {
	v := New()
	if err := v.AddEntry(NewEntry("db", map[string]string{"password": "secret123"}, "primary")); err != nil {
		t.Fatalf("AddEntry() error = %v", err)
	}

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var loaded Vault
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	e, err := loaded.GetEntry("db")
	if err != nil {
		t.Fatalf("GetEntry() after round trip error = %v", err)
	}
	if e.Fields["password"] != "secret123" || e.Notes != "primary" {
		t.Error("round trip lost entry data")
	}
}

func TestVaultUnmarshalNullEntries(t *testing.T) {
	var v Vault
	if err := json.Unmarshal([]byte(`{"entries":null}`), &v); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if err := v.AddEntry(NewEntry("x", nil, "")); err != nil {
		t.Errorf("AddEntry() after null unmarshal error = %v", err)
	}
}
