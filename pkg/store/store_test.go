package store

import (
	"bytes"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"hc/pkg/crypto"
)

type payload struct {
	Items map[string]string `json:"items"`
}

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, crypto.KeyLength)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return key
}

func testSalt(t *testing.T) []byte {
	t.Helper()
	salt := make([]byte, crypto.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		t.Fatalf("failed to generate salt: %v", err)
	}
	return salt
}

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	s := &Store[payload]{NewFunc: func() payload {
		return payload{Items: make(map[string]string)}
	}}

	got, err := s.LoadWithKey(filepath.Join(t.TempDir(), "absent.enc"), testKey(t))
	if err != nil {
		t.Fatalf("LoadWithKey() on missing file error = %v", err)
	}
	if got.Items == nil || len(got.Items) != 0 {
		t.Errorf("LoadWithKey() on missing file = %+v, want empty aggregate", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := &Store[payload]{}
	path := filepath.Join(t.TempDir(), "data.enc")
	key := testKey(t)
	salt := testSalt(t)

	want := payload{Items: map[string]string{"db": "secret123", "api": "token"}}
	if err := s.SaveWithKey(want, path, key, salt); err != nil {
		t.Fatalf("SaveWithKey() error = %v", err)
	}

	got, err := s.LoadWithKey(path, key)
	if err != nil {
		t.Fatalf("LoadWithKey() error = %v", err)
	}
	if len(got.Items) != 2 || got.Items["db"] != "secret123" {
		t.Errorf("round trip lost data: %+v", got)
	}
}

func TestSavedFilePermissions(t *testing.T) {
	s := &Store[payload]{}
	path := filepath.Join(t.TempDir(), "data.enc")

	if err := s.SaveWithKey(payload{}, path, testKey(t), testSalt(t)); err != nil {
		t.Fatalf("SaveWithKey() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != FileMode {
		t.Errorf("file permissions = %o, want %o", perm, FileMode)
	}
}

func TestSaveCreatesParentDirs(t *testing.T) {
	s := &Store[payload]{}
	path := filepath.Join(t.TempDir(), "nested", "deeper", "data.enc")

	if err := s.SaveWithKey(payload{}, path, testKey(t), testSalt(t)); err != nil {
		t.Fatalf("SaveWithKey() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("saved file not found: %v", err)
	}
}

func TestSaveRejectsBadSalt(t *testing.T) {
	s := &Store[payload]{}
	path := filepath.Join(t.TempDir(), "data.enc")
	for _, n := range []int{0, 8, 15, 17} {
		if err := s.SaveWithKey(payload{}, path, testKey(t), make([]byte, n)); err == nil {
			t.Errorf("SaveWithKey() accepted %d-byte salt", n)
		}
	}
}

func TestLoadWrongKey(t *testing.T) {
	s := &Store[payload]{}
	path := filepath.Join(t.TempDir(), "data.enc")

	if err := s.SaveWithKey(payload{Items: map[string]string{"x": "y"}}, path, testKey(t), testSalt(t)); err != nil {
		t.Fatalf("SaveWithKey() error = %v", err)
	}

	if _, err := s.LoadWithKey(path, testKey(t)); err == nil {
		t.Error("LoadWithKey() with wrong key should fail")
	}
}

func TestLoadTruncatedFile(t *testing.T) {
	s := &Store[payload]{}
	path := filepath.Join(t.TempDir(), "data.enc")

	if err := os.WriteFile(path, make([]byte, crypto.SaltLength-1), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := s.LoadWithKey(path, testKey(t)); err == nil {
		t.Error("LoadWithKey() accepted truncated file")
	}
}

func TestReadSalt(t *testing.T) {
	s := &Store[payload]{}
	path := filepath.Join(t.TempDir(), "data.enc")
	salt := testSalt(t)

	if got, err := ReadSalt(path); err != nil || got != nil {
		t.Fatalf("ReadSalt() on missing file = (%v, %v), want (nil, nil)", got, err)
	}

	if err := s.SaveWithKey(payload{}, path, testKey(t), salt); err != nil {
		t.Fatalf("SaveWithKey() error = %v", err)
	}

	got, err := ReadSalt(path)
	if err != nil {
		t.Fatalf("ReadSalt() error = %v", err)
	}
	if !bytes.Equal(got, salt) {
		t.Error("ReadSalt() did not return the stored salt")
	}
}

func TestDeriveKeyFromFileReusesSalt(t *testing.T) {
	s := &Store[payload]{}
	path := filepath.Join(t.TempDir(), "data.enc")

	// First derivation: fresh salt.
	key1, salt1, err := s.DeriveKeyFromFile(path, "pw", "A3-SECRET")
	if err != nil {
		t.Fatalf("DeriveKeyFromFile() error = %v", err)
	}
	if err := s.SaveWithKey(payload{}, path, key1, salt1); err != nil {
		t.Fatalf("SaveWithKey() error = %v", err)
	}

	// Second derivation must reuse the stored salt and reproduce the key.
	key2, salt2, err := s.DeriveKeyFromFile(path, "pw", "A3-SECRET")
	if err != nil {
		t.Fatalf("DeriveKeyFromFile() error = %v", err)
	}
	if !bytes.Equal(salt1, salt2) {
		t.Error("DeriveKeyFromFile() did not reuse the stored salt")
	}
	if !bytes.Equal(key1, key2) {
		t.Error("DeriveKeyFromFile() did not reproduce the key")
	}
}

func TestDeriveKeyFromFileFreshSaltsDiffer(t *testing.T) {
	s := &Store[payload]{}
	dir := t.TempDir()

	_, salt1, err := s.DeriveKeyFromFile(filepath.Join(dir, "a.enc"), "pw", "sk")
	if err != nil {
		t.Fatalf("DeriveKeyFromFile() error = %v", err)
	}
	_, salt2, err := s.DeriveKeyFromFile(filepath.Join(dir, "b.enc"), "pw", "sk")
	if err != nil {
		t.Fatalf("DeriveKeyFromFile() error = %v", err)
	}
	if bytes.Equal(salt1, salt2) {
		t.Error("fresh salts should differ")
	}
}

func TestWriteFileAtomicReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")

	if err := WriteFileAtomic(path, []byte("old")); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}
	if err := WriteFileAtomic(path, []byte("new")); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "new" {
		t.Errorf("content = %q, want new", data)
	}

	// No temp file debris left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries after write, want 1", len(entries))
	}
}
