package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"hc/pkg/crypto"
)

// MinMasterPasswordLength is the floor for new master passwords.
// Existing vaults unlock with whatever they were created with.
const MinMasterPasswordLength = 12

// ReadPassword prompts on stdout and reads a password with echo off.
func ReadPassword(prompt string) ([]byte, error) {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return password, nil
}

// ReadNewMasterPassword prompts twice for a new master password and
// enforces the minimum length.
func ReadNewMasterPassword() ([]byte, error) {
	first, err := ReadPassword("Master password: ")
	if err != nil {
		return nil, err
	}
	second, err := ReadPassword("Confirm master password: ")
	if err != nil {
		crypto.SecureWipe(first)
		return nil, err
	}
	return confirmPasswords(first, second, ValidateMasterPassword)
}

// confirmPasswords checks that the two prompt buffers match and that
// validate accepts the password. The confirmation buffer is always
// wiped; first is wiped too on any failure, so error paths never leave
// key material behind.
func confirmPasswords(first, second []byte, validate func(string) error) ([]byte, error) {
	match := string(first) == string(second)
	crypto.SecureWipe(second)
	if !match {
		crypto.SecureWipe(first)
		return nil, fmt.Errorf("passwords do not match")
	}
	if err := validate(string(first)); err != nil {
		crypto.SecureWipe(first)
		return nil, err
	}
	return first, nil
}

// ValidateMasterPassword enforces the policy for new master passwords.
func ValidateMasterPassword(password string) error {
	if len(password) < MinMasterPasswordLength {
		return fmt.Errorf("master password must be at least %d characters", MinMasterPasswordLength)
	}
	return nil
}

// ReadExportPassword prompts twice for a transfer password. Any
// non-empty password is accepted; exports are the user's own risk
// tradeoff.
func ReadExportPassword() ([]byte, error) {
	first, err := ReadPassword("Export password: ")
	if err != nil {
		return nil, err
	}
	second, err := ReadPassword("Confirm export password: ")
	if err != nil {
		crypto.SecureWipe(first)
		return nil, err
	}
	return confirmPasswords(first, second, func(password string) error {
		if password == "" {
			return fmt.Errorf("password cannot be empty")
		}
		return nil
	})
}

// ReadLine prompts and reads one line of visible input.
func ReadLine(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question, defaulting to no.
func Confirm(prompt string) (bool, error) {
	answer, err := ReadLine(prompt + " [y/N]: ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}
