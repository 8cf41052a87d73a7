// Package sshkey stores SSH private keys in the vault and loads them
// into a running ssh-agent, so keys live encrypted at rest and never
// touch the filesystem in the clear.
package sshkey

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"
)

// KeyType classifies a private key by its PEM armor.
type KeyType string

const (
	TypeOpenSSH KeyType = "openssh"
	TypeRSA     KeyType = "rsa"
	TypeECDSA   KeyType = "ecdsa"
	TypePKCS8   KeyType = "pkcs8"
)

// ErrInvalidKey is returned for material that is not a recognized SSH
// private key.
var ErrInvalidKey = errors.New("sshkey: invalid private key, supported formats: OpenSSH, RSA (PEM), ECDSA, PKCS#8")

var keyFormats = []struct {
	label string
	typ   KeyType
}{
	{"OPENSSH PRIVATE KEY", TypeOpenSSH},
	{"RSA PRIVATE KEY", TypeRSA},
	{"EC PRIVATE KEY", TypeECDSA},
	{"PRIVATE KEY", TypePKCS8},
}

// DetectType classifies a private key by its PEM markers without
// parsing it. Works for passphrase-protected keys too.
func DetectType(key string) (KeyType, error) {
	key = strings.TrimSpace(key)
	for _, f := range keyFormats {
		begin := "-----BEGIN " + f.label + "-----"
		end := "-----END " + f.label + "-----"
		if strings.Contains(key, begin) && strings.Contains(key, end) {
			return f.typ, nil
		}
	}
	return "", ErrInvalidKey
}

// Validate checks that the material is a recognized private key format.
// A passphrase-protected key validates without the passphrase; only the
// armor is checked in that case.
func Validate(key string) (KeyType, error) {
	typ, err := DetectType(key)
	if err != nil {
		return "", err
	}

	if _, err := ssh.ParseRawPrivateKey([]byte(strings.TrimSpace(key) + "\n")); err != nil {
		var passErr *ssh.PassphraseMissingError
		if errors.As(err, &passErr) {
			return typ, nil
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return typ, nil
}

// Parse decodes a private key, using the passphrase when the key is
// protected. The result feeds directly into an agent AddedKey.
func Parse(key, passphrase string) (any, error) {
	material := []byte(strings.TrimSpace(key) + "\n")

	signer, err := ssh.ParseRawPrivateKey(material)
	if err == nil {
		return signer, nil
	}

	var passErr *ssh.PassphraseMissingError
	if !errors.As(err, &passErr) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if passphrase == "" {
		return nil, fmt.Errorf("sshkey: key is passphrase-protected")
	}

	signer, err = ssh.ParseRawPrivateKeyWithPassphrase(material, []byte(passphrase))
	if err != nil {
		return nil, fmt.Errorf("sshkey: failed to decrypt private key: %w", err)
	}
	return signer, nil
}
