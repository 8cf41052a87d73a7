// Package store persists a serializable aggregate to disk as an encrypted
// envelope: salt(16) ‖ nonce(12) ‖ ciphertext ‖ tag. The salt is stored in
// cleartext (salts are not secret); the derived key is supplied by the
// caller so one expensive KDF run covers a whole process invocation.
package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"hc/pkg/crypto"
)

// FileMode is the permission set for every file the store writes.
const FileMode = 0o600

// DirMode is the permission set for created parent directories.
const DirMode = 0o700

// ErrUnreadable wraps I/O and format problems distinct from authentication
// failures.
var ErrUnreadable = errors.New("store: unreadable envelope file")

// Store loads and saves one aggregate type as an encrypted envelope.
// The zero value of T must be a usable empty aggregate, or NewFunc must be
// set to produce one.
type Store[T any] struct {
	// NewFunc returns the aggregate used when the file does not exist yet
	// (first-run semantics). Optional; defaults to the zero value.
	NewFunc func() T
}

// LoadWithKey reads, decrypts and deserializes the aggregate at path.
// A missing file yields an empty aggregate, not an error. Decryption and
// deserialization failures are opaque: a wrong key and a corrupted file
// are deliberately indistinguishable.
func (s *Store[T]) LoadWithKey(path string, key []byte) (T, error) {
	var zero T

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s.empty(), nil
		}
		return zero, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	if len(data) < crypto.SaltLength {
		return zero, fmt.Errorf("%w: file too short", ErrUnreadable)
	}

	plaintext, err := crypto.DecryptWithKey(data[crypto.SaltLength:], key)
	if err != nil {
		return zero, err
	}

	var aggregate T
	if err := json.Unmarshal(plaintext, &aggregate); err != nil {
		return zero, crypto.ErrDecryptionFailed
	}
	return aggregate, nil
}

// SaveWithKey serializes, encrypts and atomically writes the aggregate.
// The salt must be the one the key was derived with; it is prepended in
// cleartext so future derivations reproduce the same key.
func (s *Store[T]) SaveWithKey(aggregate T, path string, key, salt []byte) error {
	if len(salt) != crypto.SaltLength {
		return fmt.Errorf("store: salt must be %d bytes", crypto.SaltLength)
	}

	plaintext, err := json.Marshal(aggregate)
	if err != nil {
		return fmt.Errorf("store: failed to serialize: %w", err)
	}

	blob, err := crypto.EncryptWithKey(plaintext, key)
	if err != nil {
		return err
	}

	envelope := make([]byte, 0, len(salt)+len(blob))
	envelope = append(envelope, salt...)
	envelope = append(envelope, blob...)

	return WriteFileAtomic(path, envelope)
}

// DeriveKeyFromFile derives the envelope key for path. If the file exists
// its stored salt is reused so the same password reproduces the same key;
// otherwise a fresh random salt is generated (first initialization).
func (s *Store[T]) DeriveKeyFromFile(path, masterPassword, secretKey string) (key, salt []byte, err error) {
	salt, err = ReadSalt(path)
	if err != nil {
		return nil, nil, err
	}
	if salt == nil {
		salt = make([]byte, crypto.SaltLength)
		if _, err := rand.Read(salt); err != nil {
			return nil, nil, fmt.Errorf("store: failed to generate salt: %w", err)
		}
	}

	key, err = crypto.DeriveKey(masterPassword, secretKey, salt)
	if err != nil {
		return nil, nil, err
	}
	return key, salt, nil
}

// ReadSalt returns the stored salt of the envelope at path, or nil if the
// file does not exist.
func ReadSalt(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if len(data) < crypto.SaltLength {
		return nil, fmt.Errorf("%w: file too short", ErrUnreadable)
	}
	salt := make([]byte, crypto.SaltLength)
	copy(salt, data[:crypto.SaltLength])
	return salt, nil
}

// WriteFileAtomic writes data via a sibling temp file with owner-only
// permissions, then renames it over the destination. A reader never
// observes a half-written file and a crash mid-write leaves the old file
// intact.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirMode); err != nil {
		return fmt.Errorf("store: failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("store: failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	// Restrict permissions before any data hits the file.
	if err := tmp.Chmod(FileMode); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("store: failed to set permissions: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("store: failed to write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("store: failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("store: failed to finalize file: %w", err)
	}
	return nil
}

func (s *Store[T]) empty() T {
	if s.NewFunc != nil {
		return s.NewFunc()
	}
	var zero T
	return zero
}
