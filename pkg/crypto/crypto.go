// Package crypto provides the cryptographic primitives for hc.
//
// This package implements AES-256-GCM authenticated encryption and Argon2id
// key derivation. The derived key combines the master password with a
// locally generated secret key, so knowledge of the password alone is not
// enough to decrypt a vault copied off the machine.
//
// # Security Features
//
//   - AES-256-GCM authenticated encryption with a fresh random nonce per call
//   - Argon2id key derivation (19 MiB memory, 2 iterations, 1 thread)
//   - High-entropy secret key acting as a second factor
//   - Secure memory wiping for key material
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id and envelope parameters.
const (
	// Argon2Memory is the memory cost in KiB (19 MiB).
	Argon2Memory = 19 * 1024

	// Argon2Time is the number of iterations.
	Argon2Time = 2

	// Argon2Threads is the degree of parallelism.
	Argon2Threads = 1

	// KeyLength is the length of encryption keys in bytes (256 bits).
	KeyLength = 32

	// SaltLength is the length of KDF salts in bytes (128 bits).
	SaltLength = 16

	// NonceLength is the length of GCM nonces in bytes (96 bits).
	NonceLength = 12

	// TagLength is the length of the GCM authentication tag in bytes.
	TagLength = 16

	// secretKeyBytes is the entropy of a generated secret key.
	secretKeyBytes = 20

	// secretKeyPrefix identifies the secret key format version.
	secretKeyPrefix = "A3"
)

// kdfSeparator joins the master password and the secret key before
// derivation. Neither input may be attacked independently of the other.
const kdfSeparator = "|"

// crockford is the Crockford base32 alphabet used for secret keys. It
// omits I, L, O and U so keys survive human transcription.
var crockford = base32.NewEncoding("0123456789ABCDEFGHJKMNPQRSTVWXYZ").WithPadding(base32.NoPadding)

// Sentinel errors returned by crypto functions.
var (
	// ErrInvalidKeyLength indicates the key is not 32 bytes.
	ErrInvalidKeyLength = errors.New("crypto: invalid key length, must be 32 bytes")

	// ErrKeyDerivationFailed indicates the KDF inputs were unusable.
	ErrKeyDerivationFailed = errors.New("crypto: key derivation failed")

	// ErrCipherInitFailed indicates the AEAD cipher could not be constructed.
	ErrCipherInitFailed = errors.New("crypto: cipher initialization failed")

	// ErrDecryptionFailed indicates authentication or decryption failed.
	// Deliberately opaque: a wrong password and a corrupted file are not
	// distinguished.
	ErrDecryptionFailed = errors.New("crypto: decryption failed, incorrect password or corrupted data")

	// ErrInvalidData indicates the blob is too short to be an envelope.
	ErrInvalidData = errors.New("crypto: invalid encrypted data")
)

// GenerateSecretKey produces a high-entropy, human-transcribable secret key
// of the form "A3-XXXXXX-XXXXXX-XXXXX-XXXXX-XXXXX-XXXXX". It is generated
// once per install, held in the OS keyring and combined with the master
// password during key derivation.
func GenerateSecretKey() (string, error) {
	raw := make([]byte, secretKeyBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("crypto: failed to generate secret key: %w", err)
	}

	encoded := crockford.EncodeToString(raw)
	groups := []string{
		secretKeyPrefix,
		encoded[0:6],
		encoded[6:12],
		encoded[12:17],
		encoded[17:22],
		encoded[22:27],
		encoded[27:32],
	}
	return strings.Join(groups, "-"), nil
}

// DeriveKey derives a 256-bit encryption key from the master password and
// the secret key using Argon2id. The same password, secret key and salt
// always produce the same key.
func DeriveKey(masterPassword, secretKey string, salt []byte) ([]byte, error) {
	if len(salt) != SaltLength {
		return nil, fmt.Errorf("%w: salt must be %d bytes", ErrKeyDerivationFailed, SaltLength)
	}

	combined := make([]byte, 0, len(masterPassword)+len(kdfSeparator)+len(secretKey))
	combined = append(combined, masterPassword...)
	combined = append(combined, kdfSeparator...)
	combined = append(combined, secretKey...)
	defer SecureWipe(combined)

	return argon2.IDKey(combined, salt, Argon2Time, Argon2Memory, Argon2Threads, KeyLength), nil
}

// derivePasswordKey derives a key from a password alone. Used for the
// portable export format, which cannot assume access to the local keyring.
func derivePasswordKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, Argon2Time, Argon2Memory, Argon2Threads, KeyLength)
}

// EncryptWithKey encrypts plaintext using AES-256-GCM and returns
// nonce ‖ ciphertext ‖ tag. The nonce is freshly random on every call and
// never reused for a given key.
func EncryptWithKey(plaintext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("crypto: failed to generate nonce: %w", err)
	}

	// Seal appends ciphertext+tag to the nonce slice.
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// DecryptWithKey splits the leading nonce off the blob, verifies the
// authentication tag and returns the plaintext. Any malformed or tampered
// input fails with an opaque error.
func DecryptWithKey(blob, key []byte) ([]byte, error) {
	if len(blob) < NonceLength+TagLength {
		return nil, fmt.Errorf("%w: too short", ErrInvalidData)
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, blob[:NonceLength], blob[NonceLength:], nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// EncryptForExport encrypts data with a password-only key for portable
// backups. The output layout is salt(16) ‖ nonce ‖ ciphertext ‖ tag; the
// fresh salt makes the file independent of the local secret key.
func EncryptForExport(data []byte, password string) ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("crypto: failed to generate salt: %w", err)
	}

	key := derivePasswordKey(password, salt)
	defer SecureWipe(key)

	blob, err := EncryptWithKey(data, key)
	if err != nil {
		return nil, err
	}
	return append(salt, blob...), nil
}

// DecryptForImport reverses EncryptForExport.
func DecryptForImport(blob []byte, password string) ([]byte, error) {
	if len(blob) < SaltLength+NonceLength+TagLength {
		return nil, fmt.Errorf("%w: too short", ErrInvalidData)
	}

	key := derivePasswordKey(password, blob[:SaltLength])
	defer SecureWipe(key)

	return DecryptWithKey(blob[SaltLength:], key)
}

// newGCM builds the AEAD for a 32-byte key.
func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeyLength {
		return nil, ErrInvalidKeyLength
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCipherInitFailed, err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCipherInitFailed, err)
	}
	return gcm, nil
}

// SecureWipe overwrites a byte slice with zeros in a way that prevents
// the compiler from optimizing the writes away. Used to destroy derived
// keys and password material once they are no longer needed.
func SecureWipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
