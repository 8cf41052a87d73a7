package keychain

// BiometricAuth gates sensitive operations behind OS-level user presence
// (Touch ID on macOS). Hosts without a biometric facility get the stub,
// which reports unavailable and never blocks.
type BiometricAuth interface {
	// Available reports whether the host can evaluate a biometric or
	// device-owner authentication policy right now.
	Available() bool
	// Authenticate prompts the user and reports whether they passed.
	// The reason string is shown in the OS prompt.
	Authenticate(reason string) (bool, error)
}
