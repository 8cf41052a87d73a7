package keychain

import (
	"fmt"
	"os/exec"
	"strings"
)

// darwinBiometric drives LocalAuthentication through a short Swift
// program fed to the system toolchain on stdin. Slower than cgo but
// keeps the build pure Go.
type darwinBiometric struct{}

// NewBiometricAuth returns the platform authenticator.
func NewBiometricAuth() BiometricAuth {
	return darwinBiometric{}
}

const availabilityScript = `
import Foundation
import LocalAuthentication

let context = LAContext()
var error: NSError?
let available = context.canEvaluatePolicy(.deviceOwnerAuthentication, error: &error)
exit(available ? 0 : 1)
`

const authenticateScript = `
import Foundation
import LocalAuthentication

let context = LAContext()
var error: NSError?

guard context.canEvaluatePolicy(.deviceOwnerAuthentication, error: &error) else {
    exit(1)
}

let semaphore = DispatchSemaphore(value: 0)
var authResult = false

context.evaluatePolicy(.deviceOwnerAuthentication, localizedReason: %q) { success, _ in
    authResult = success
    semaphore.signal()
}

semaphore.wait()
exit(authResult ? 0 : 1)
`

func (darwinBiometric) Available() bool {
	return runSwift(availabilityScript) == nil
}

func (darwinBiometric) Authenticate(reason string) (bool, error) {
	script := fmt.Sprintf(authenticateScript, reason)
	if err := runSwift(script); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return false, nil
		}
		return false, fmt.Errorf("keychain: biometric prompt failed: %w", err)
	}
	return true, nil
}

func runSwift(script string) error {
	cmd := exec.Command("swift", "-")
	cmd.Stdin = strings.NewReader(script)
	return cmd.Run()
}
