package main

import (
	"os"
	"path/filepath"
	"testing"

	"hc/pkg/vault"
)

func TestParseFieldFlags(t *testing.T) {
	fields, err := parseFieldFlags([]string{"username=alice", "api_key=a=b=c", "empty="})
	if err != nil {
		t.Fatalf("parseFieldFlags: %v", err)
	}
	if fields["username"] != "alice" {
		t.Errorf("username = %q", fields["username"])
	}
	// Only the first '=' separates key and value.
	if fields["api_key"] != "a=b=c" {
		t.Errorf("api_key = %q", fields["api_key"])
	}
	if v, ok := fields["empty"]; !ok || v != "" {
		t.Errorf("empty = %q (present %v)", v, ok)
	}

	for _, bad := range []string{"novalue", "=orphan"} {
		if _, err := parseFieldFlags([]string{bad}); err == nil {
			t.Errorf("parseFieldFlags(%q) should fail", bad)
		}
	}
}

func TestAddFileFieldValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key.pem")
	if err := os.WriteFile(path, []byte("PEM DATA"), 0o600); err != nil {
		t.Fatal(err)
	}

	fields := make(map[string]string)
	if err := addFileFieldValues(fields, []string{"private_key=" + path}); err != nil {
		t.Fatalf("addFileFieldValues: %v", err)
	}
	if fields["private_key"] != "PEM DATA" {
		t.Errorf("private_key = %q", fields["private_key"])
	}

	if err := addFileFieldValues(fields, []string{"missing=" + filepath.Join(dir, "nope")}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestClipTarget(t *testing.T) {
	withPassword := vault.NewEntry("a", map[string]string{"password": "pw", "username": "u"}, "")
	field, value, err := clipTarget(withPassword, "")
	if err != nil || field != "password" || value != "pw" {
		t.Errorf("default target = %s/%s (%v)", field, value, err)
	}

	field, value, err = clipTarget(withPassword, "username")
	if err != nil || field != "username" || value != "u" {
		t.Errorf("requested target = %s/%s (%v)", field, value, err)
	}

	soleField := vault.NewEntry("b", map[string]string{"token": "t"}, "")
	field, value, err = clipTarget(soleField, "")
	if err != nil || field != "token" || value != "t" {
		t.Errorf("sole field target = %s/%s (%v)", field, value, err)
	}

	ambiguous := vault.NewEntry("c", map[string]string{"token": "t", "api_key": "k"}, "")
	if _, _, err := clipTarget(ambiguous, ""); err == nil {
		t.Error("expected error when no password field and several candidates")
	}

	if _, _, err := clipTarget(withPassword, "absent"); err == nil {
		t.Error("expected error for unknown field")
	}
}
