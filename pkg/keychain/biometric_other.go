//go:build !darwin

package keychain

type stubBiometric struct{}

// NewBiometricAuth returns the platform authenticator. On platforms
// without a biometric facility it always reports unavailable.
func NewBiometricAuth() BiometricAuth {
	return stubBiometric{}
}

func (stubBiometric) Available() bool { return false }

func (stubBiometric) Authenticate(string) (bool, error) { return false, nil }
