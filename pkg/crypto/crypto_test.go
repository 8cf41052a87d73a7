package crypto

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"
)

// TestDeriveKey tests the Argon2id key derivation function
func TestDeriveKey(t *testing.T) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		t.Fatalf("failed to generate salt: %v", err)
	}

	key, err := DeriveKey("master-password-123", "A3-SECRET", salt)
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}
	if len(key) != KeyLength {
		t.Errorf("DeriveKey() returned key of length %d, want %d", len(key), KeyLength)
	}

	// Same inputs produce the same key (deterministic)
	key2, err := DeriveKey("master-password-123", "A3-SECRET", salt)
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}
	if !bytes.Equal(key, key2) {
		t.Error("DeriveKey() with same inputs should produce identical keys")
	}

	// Changing any single input changes the output key
	otherSalt := make([]byte, SaltLength)
	if _, err := rand.Read(otherSalt); err != nil {
		t.Fatalf("failed to generate salt: %v", err)
	}
	variants := []struct {
		name     string
		password string
		secret   string
		salt     []byte
	}{
		{"different password", "other-password", "A3-SECRET", salt},
		{"different secret key", "master-password-123", "A3-OTHER", salt},
		{"different salt", "master-password-123", "A3-SECRET", otherSalt},
	}
	for _, v := range variants {
		got, err := DeriveKey(v.password, v.secret, v.salt)
		if err != nil {
			t.Fatalf("DeriveKey(%s) error = %v", v.name, err)
		}
		if bytes.Equal(key, got) {
			t.Errorf("DeriveKey() with %s should produce a different key", v.name)
		}
	}
}

// TestDeriveKeyInvalidSalt verifies salt length is enforced
func TestDeriveKeyInvalidSalt(t *testing.T) {
	for _, n := range []int{0, 8, 15, 17, 32} {
		if _, err := DeriveKey("pw", "sk", make([]byte, n)); err == nil {
			t.Errorf("DeriveKey() with %d-byte salt should fail", n)
		}
	}
}

// TestDeriveKeySeparator ensures the password/secret-key boundary is
// unambiguous: moving characters across the separator changes the key.
func TestDeriveKeySeparator(t *testing.T) {
	salt := make([]byte, SaltLength)

	a, err := DeriveKey("pass", "key", salt)
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}
	b, err := DeriveKey("passk", "ey", salt)
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}
	if bytes.Equal(a, b) {
		t.Error("shifting bytes across the password/secret-key boundary should change the key")
	}
}

// TestEncryptDecryptRoundTrip verifies decrypt(encrypt(p, k), k) == p
func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := make([]byte, KeyLength)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	plaintexts := [][]byte{
		[]byte(""),
		[]byte("x"),
		[]byte("secret data to encrypt"),
		bytes.Repeat([]byte{0xAB}, 4096),
	}

	for _, plaintext := range plaintexts {
		blob, err := EncryptWithKey(plaintext, key)
		if err != nil {
			t.Fatalf("EncryptWithKey() error = %v", err)
		}
		if len(blob) != NonceLength+len(plaintext)+TagLength {
			t.Errorf("EncryptWithKey() blob length = %d, want %d",
				len(blob), NonceLength+len(plaintext)+TagLength)
		}

		got, err := DecryptWithKey(blob, key)
		if err != nil {
			t.Fatalf("DecryptWithKey() error = %v", err)
		}
		if !bytes.Equal(got, plaintext) {
			t.Error("round trip did not preserve plaintext")
		}
	}
}

// TestEncryptFreshNonce verifies encrypting twice never reuses a nonce
func TestEncryptFreshNonce(t *testing.T) {
	key := make([]byte, KeyLength)
	plaintext := []byte("same input")

	a, err := EncryptWithKey(plaintext, key)
	if err != nil {
		t.Fatalf("EncryptWithKey() error = %v", err)
	}
	b, err := EncryptWithKey(plaintext, key)
	if err != nil {
		t.Fatalf("EncryptWithKey() error = %v", err)
	}
	if bytes.Equal(a[:NonceLength], b[:NonceLength]) {
		t.Error("EncryptWithKey() reused a nonce")
	}
}

// TestDecryptTamperDetection verifies flipping any bit fails authentication
func TestDecryptTamperDetection(t *testing.T) {
	key := make([]byte, KeyLength)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	blob, err := EncryptWithKey([]byte("integrity protected"), key)
	if err != nil {
		t.Fatalf("EncryptWithKey() error = %v", err)
	}

	for i := range blob {
		tampered := make([]byte, len(blob))
		copy(tampered, blob)
		tampered[i] ^= 0x01

		if _, err := DecryptWithKey(tampered, key); err == nil {
			t.Fatalf("DecryptWithKey() accepted blob with bit flipped at byte %d", i)
		}
	}
}

// TestDecryptWrongKey verifies a different key never decrypts
func TestDecryptWrongKey(t *testing.T) {
	key := make([]byte, KeyLength)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	blob, err := EncryptWithKey([]byte("data"), key)
	if err != nil {
		t.Fatalf("EncryptWithKey() error = %v", err)
	}

	wrongKey := make([]byte, KeyLength)
	if _, err := DecryptWithKey(blob, wrongKey); err == nil {
		t.Error("DecryptWithKey() with wrong key should fail")
	}
}

// TestDecryptTooShort verifies short blobs are rejected before decryption
func TestDecryptTooShort(t *testing.T) {
	key := make([]byte, KeyLength)
	for _, n := range []int{0, 1, NonceLength, NonceLength + TagLength - 1} {
		if _, err := DecryptWithKey(make([]byte, n), key); err == nil {
			t.Errorf("DecryptWithKey() accepted %d-byte blob", n)
		}
	}
}

// TestEncryptInvalidKeyLength tests that invalid key lengths are rejected
func TestEncryptInvalidKeyLength(t *testing.T) {
	tests := []struct {
		name   string
		keyLen int
	}{
		{"empty key", 0},
		{"too short (16 bytes)", 16},
		{"too short (24 bytes)", 24},
		{"too long (48 bytes)", 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := make([]byte, tt.keyLen)
			if _, err := EncryptWithKey([]byte("data"), key); err == nil {
				t.Error("EncryptWithKey() should reject invalid key length")
			}
			if _, err := DecryptWithKey(make([]byte, 64), key); err == nil {
				t.Error("DecryptWithKey() should reject invalid key length")
			}
		})
	}
}

// TestGenerateSecretKey verifies format and uniqueness of secret keys
func TestGenerateSecretKey(t *testing.T) {
	key, err := GenerateSecretKey()
	if err != nil {
		t.Fatalf("GenerateSecretKey() error = %v", err)
	}

	parts := strings.Split(key, "-")
	if len(parts) != 7 {
		t.Fatalf("GenerateSecretKey() = %q, want 7 dash-separated groups", key)
	}
	if parts[0] != "A3" {
		t.Errorf("GenerateSecretKey() prefix = %q, want A3", parts[0])
	}
	wantLens := []int{2, 6, 6, 5, 5, 5, 5}
	for i, p := range parts {
		if len(p) != wantLens[i] {
			t.Errorf("group %d = %q, want length %d", i, p, wantLens[i])
		}
	}
	for _, r := range strings.Join(parts[1:], "") {
		if !strings.ContainsRune("0123456789ABCDEFGHJKMNPQRSTVWXYZ", r) {
			t.Errorf("secret key contains non-Crockford character %q", r)
		}
	}

	other, err := GenerateSecretKey()
	if err != nil {
		t.Fatalf("GenerateSecretKey() error = %v", err)
	}
	if key == other {
		t.Error("GenerateSecretKey() produced duplicate keys")
	}
}

// TestExportRoundTrip verifies the password-only export envelope
func TestExportRoundTrip(t *testing.T) {
	data := []byte(`{"entries":{}}`)

	blob, err := EncryptForExport(data, "export-password")
	if err != nil {
		t.Fatalf("EncryptForExport() error = %v", err)
	}
	if len(blob) != SaltLength+NonceLength+len(data)+TagLength {
		t.Errorf("EncryptForExport() blob length = %d", len(blob))
	}

	got, err := DecryptForImport(blob, "export-password")
	if err != nil {
		t.Fatalf("DecryptForImport() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("export round trip did not preserve data")
	}

	if _, err := DecryptForImport(blob, "wrong-password"); err == nil {
		t.Error("DecryptForImport() with wrong password should fail")
	}
}

// TestExportUsesFreshSalt verifies each export gets its own salt
func TestExportUsesFreshSalt(t *testing.T) {
	data := []byte("payload")

	a, err := EncryptForExport(data, "pw")
	if err != nil {
		t.Fatalf("EncryptForExport() error = %v", err)
	}
	b, err := EncryptForExport(data, "pw")
	if err != nil {
		t.Fatalf("EncryptForExport() error = %v", err)
	}
	if bytes.Equal(a[:SaltLength], b[:SaltLength]) {
		t.Error("EncryptForExport() reused a salt")
	}
}

// TestSecureWipe verifies the buffer is zeroed
func TestSecureWipe(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	SecureWipe(b)
	for i, v := range b {
		if v != 0 {
			t.Errorf("SecureWipe() left byte %d = %d", i, v)
		}
	}
}
