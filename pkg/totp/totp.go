// Package totp generates time-based one-time codes from seeds stored in
// the vault's totp entry. Codes follow the common authenticator profile:
// SHA-1, 6 digits, 30-second window.
package totp

import (
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp/totp"
)

const (
	// Period is the code validity window in seconds.
	Period = 30
	// Digits is the code length.
	Digits = 6
	// minSeedBytes is the smallest seed accepted; RFC 4226 recommends at
	// least 128 bits but common issuers go as low as 80.
	minSeedBytes = 10
)

// Validation errors.
var (
	ErrInvalidSeed  = errors.New("totp: seed is not valid base32")
	ErrSeedTooShort = errors.New("totp: seed too short (minimum 10 bytes)")
)

// ValidateSeed checks that a seed is well-formed base32 of sufficient
// length before it is stored.
func ValidateSeed(seed string) error {
	normalized := normalizeSeed(seed)
	decoded, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(normalized)
	if err != nil {
		return ErrInvalidSeed
	}
	if len(decoded) < minSeedBytes {
		return ErrSeedTooShort
	}
	return nil
}

// GenerateCode returns the current code for a seed.
func GenerateCode(seed string) (string, error) {
	return GenerateCodeAt(seed, time.Now())
}

// GenerateCodeAt returns the code valid at a given instant.
func GenerateCodeAt(seed string, at time.Time) (string, error) {
	if err := ValidateSeed(seed); err != nil {
		return "", err
	}
	code, err := totp.GenerateCode(normalizeSeed(seed), at)
	if err != nil {
		return "", fmt.Errorf("totp: failed to generate code: %w", err)
	}
	return code, nil
}

// RemainingSeconds returns how long the current code stays valid.
func RemainingSeconds() int {
	return RemainingSecondsAt(time.Now())
}

// RemainingSecondsAt returns the validity remainder at a given instant.
func RemainingSecondsAt(at time.Time) int {
	return Period - int(at.Unix()%Period)
}

// normalizeSeed strips the spacing and case variations issuers put in
// setup strings.
func normalizeSeed(seed string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(seed), " ", ""))
}
