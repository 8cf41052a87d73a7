package cli

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const symbolSet = "!@#$%^&*()-_=+[]{}|;:,.<>?"

// PasswordOptions controls random password generation.
type PasswordOptions struct {
	Length    int
	Uppercase bool
	Lowercase bool
	Digits    bool
	Symbols   bool
}

// DefaultPasswordOptions is a 20-character password drawing from all
// character classes.
func DefaultPasswordOptions() PasswordOptions {
	return PasswordOptions{Length: 20, Uppercase: true, Lowercase: true, Digits: true, Symbols: true}
}

// GeneratePassword returns a random password per the options.
func GeneratePassword(opts PasswordOptions) (string, error) {
	if opts.Length < 8 {
		return "", fmt.Errorf("password length must be at least 8 characters")
	}
	if opts.Length > 128 {
		return "", fmt.Errorf("password length must not exceed 128 characters")
	}

	var charset strings.Builder
	if opts.Lowercase {
		charset.WriteString("abcdefghijklmnopqrstuvwxyz")
	}
	if opts.Uppercase {
		charset.WriteString("ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	}
	if opts.Digits {
		charset.WriteString("0123456789")
	}
	if opts.Symbols {
		charset.WriteString(symbolSet)
	}
	chars := charset.String()
	if chars == "" {
		return "", fmt.Errorf("cannot generate password: all character types excluded")
	}

	out := make([]byte, opts.Length)
	for i := range out {
		idx, err := randomIndex(len(chars))
		if err != nil {
			return "", err
		}
		out[i] = chars[idx]
	}
	return string(out), nil
}

// GeneratePassphrase returns wordCount random words joined with dashes.
func GeneratePassphrase(wordCount int) (string, error) {
	if wordCount < 2 {
		return "", fmt.Errorf("passphrase must contain at least 2 words")
	}
	if wordCount > 10 {
		return "", fmt.Errorf("passphrase must not exceed 10 words")
	}

	words := make([]string, wordCount)
	for i := range words {
		idx, err := randomIndex(len(wordList))
		if err != nil {
			return "", err
		}
		words[i] = wordList[idx]
	}
	return strings.Join(words, "-"), nil
}

func randomIndex(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, fmt.Errorf("failed to draw randomness: %w", err)
	}
	return int(n.Int64()), nil
}
