package cli

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"hc/pkg/vault"
)

// DuplicateGroup is a set of entry fields sharing one secret value.
type DuplicateGroup struct {
	// References are "entry/field" pairs, sorted.
	References []string
	Count      int
}

// FindDuplicates scans password-like fields for reused values. Values
// are compared through HMAC-SHA256 under a throwaway per-call key, so no
// plaintext or stable hash of a secret outlives the scan.
func FindDuplicates(entries []*vault.Entry) ([]DuplicateGroup, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}

	buckets := make(map[string][]string)
	for _, e := range entries {
		for field, value := range e.Fields {
			if !isSecretField(field) {
				continue
			}
			normalized := norm.NFC.String(strings.TrimSpace(value))
			if normalized == "" {
				continue
			}
			mac := hmac.New(sha256.New, key)
			mac.Write([]byte(normalized))
			sum := string(mac.Sum(nil))
			buckets[sum] = append(buckets[sum], e.Name+"/"+field)
		}
	}

	var groups []DuplicateGroup
	for _, refs := range buckets {
		if len(refs) < 2 {
			continue
		}
		sort.Strings(refs)
		groups = append(groups, DuplicateGroup{References: refs, Count: len(refs)})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].References[0] < groups[j].References[0]
	})
	return groups, nil
}

// WeakField flags one entry field rated below Good.
type WeakField struct {
	Entry  string
	Field  string
	Rating Strength
}

// FindWeakFields rates every password-like field and returns the ones a
// user should rotate.
func FindWeakFields(entries []*vault.Entry) []WeakField {
	var weak []WeakField
	for _, e := range entries {
		for field, value := range e.Fields {
			if !isSecretField(field) {
				continue
			}
			if rating := FieldStrength(field, value); rating <= StrengthFair {
				weak = append(weak, WeakField{Entry: e.Name, Field: field, Rating: rating})
			}
		}
	}
	sort.Slice(weak, func(i, j int) bool {
		if weak[i].Entry != weak[j].Entry {
			return weak[i].Entry < weak[j].Entry
		}
		return weak[i].Field < weak[j].Field
	})
	return weak
}

// isSecretField reports whether a field name looks like it holds a
// credential worth auditing.
func isSecretField(name string) bool {
	if isTokenField(name) {
		return true
	}
	lower := strings.ToLower(name)
	for _, marker := range []string{"password", "passphrase", "secret", "pass"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
