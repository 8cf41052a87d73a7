package totp

import (
	"errors"
	"testing"
	"time"
)

// rfcSeed is the RFC 6238 test seed ("12345678901234567890") in base32.
const rfcSeed = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func TestValidateSeed(t *testing.T) {
	tests := []struct {
		name    string
		seed    string
		wantErr error
	}{
		{"valid seed", "JBSWY3DPEHPK3PXP", nil},
		{"valid with spaces and lowercase", "jbsw y3dp ehpk 3pxp", nil},
		{"not base32", "invalid!@#", ErrInvalidSeed},
		{"too short", "AB", ErrSeedTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSeed(tt.seed)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateSeed(%q) error = %v, want %v", tt.seed, err, tt.wantErr)
			}
		})
	}
}

func TestGenerateCodeKnownVectors(t *testing.T) {
	// SHA-1, 6 digits, 30s window, per RFC 6238 appendix B.
	tests := []struct {
		at   int64
		want string
	}{
		{59, "287082"},
		{1111111109, "081804"},
		{1234567890, "005924"},
	}

	for _, tt := range tests {
		got, err := GenerateCodeAt(rfcSeed, time.Unix(tt.at, 0))
		if err != nil {
			t.Fatalf("GenerateCodeAt(%d) error = %v", tt.at, err)
		}
		if got != tt.want {
			t.Errorf("GenerateCodeAt(%d) = %q, want %q", tt.at, got, tt.want)
		}
	}
}

func TestGenerateCodeStableWithinWindow(t *testing.T) {
	a, err := GenerateCodeAt(rfcSeed, time.Unix(1000000020, 0))
	if err != nil {
		t.Fatalf("GenerateCodeAt() error = %v", err)
	}
	b, err := GenerateCodeAt(rfcSeed, time.Unix(1000000049, 0))
	if err != nil {
		t.Fatalf("GenerateCodeAt() error = %v", err)
	}
	if a != b {
		t.Error("codes within one window should match")
	}

	c, err := GenerateCodeAt(rfcSeed, time.Unix(1000000050, 0))
	if err != nil {
		t.Fatalf("GenerateCodeAt() error = %v", err)
	}
	if a == c {
		t.Error("codes across windows should differ")
	}
}

func TestGenerateCodeRejectsBadSeed(t *testing.T) {
	if _, err := GenerateCodeAt("!!!", time.Now()); err == nil {
		t.Error("GenerateCodeAt() with invalid seed should fail")
	}
}

func TestRemainingSeconds(t *testing.T) {
	tests := []struct {
		at   int64
		want int
	}{
		{0, 30},
		{1, 29},
		{29, 1},
		{30, 30},
		{59, 1},
	}
	for _, tt := range tests {
		if got := RemainingSecondsAt(time.Unix(tt.at, 0)); got != tt.want {
			t.Errorf("RemainingSecondsAt(%d) = %d, want %d", tt.at, got, tt.want)
		}
	}
}
