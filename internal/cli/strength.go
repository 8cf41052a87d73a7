package cli

import "strings"

// Strength buckets a secret's resistance to guessing. Length is the
// primary factor per NIST SP 800-63B; composition rules are
// deliberately not enforced.
type Strength int

const (
	StrengthWeak Strength = iota
	StrengthFair
	StrengthGood
	StrengthStrong
)

func (s Strength) String() string {
	switch s {
	case StrengthWeak:
		return "Weak"
	case StrengthFair:
		return "Fair"
	case StrengthGood:
		return "Good"
	case StrengthStrong:
		return "Strong"
	default:
		return "Unknown"
	}
}

// FieldStrength rates a field value. Fields that look like machine
// tokens are held to entropy-style thresholds; everything else is rated
// as a human password.
func FieldStrength(fieldName, value string) Strength {
	if isTokenField(fieldName) {
		return tokenStrength(value)
	}
	return passwordStrength(value)
}

func passwordStrength(value string) Strength {
	switch l := len(value); {
	case l >= 20:
		return StrengthStrong
	case l >= 14:
		return StrengthGood
	case l >= 8:
		return StrengthFair
	default:
		return StrengthWeak
	}
}

func tokenStrength(value string) Strength {
	switch l := len(value); {
	case l >= 32:
		return StrengthStrong
	case l >= 20:
		return StrengthGood
	case l >= 16:
		return StrengthFair
	default:
		return StrengthWeak
	}
}

func isTokenField(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range []string{"token", "api_key", "apikey", "key_id"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
