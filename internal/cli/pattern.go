// Package cli provides shared helpers for hc commands: terminal input,
// glob expansion over entry and field names, and password generation.
package cli

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ExpandPattern expands a glob pattern against available names. A
// pattern without glob characters (*?[) must match one name exactly.
func ExpandPattern(pattern string, available []string) ([]string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	if !strings.ContainsAny(pattern, "*?[") {
		for _, name := range available {
			if name == pattern {
				return []string{pattern}, nil
			}
		}
		return nil, fmt.Errorf("%q not found", pattern)
	}

	var matches []string
	for _, name := range available {
		ok, err := filepath.Match(pattern, name)
		if err != nil {
			return nil, err
		}
		if ok {
			matches = append(matches, name)
		}
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("nothing matches pattern %q", pattern)
	}
	return matches, nil
}

// ExpandPatterns expands several patterns, deduplicating while keeping
// first-match order.
func ExpandPatterns(patterns, available []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string

	for _, pattern := range patterns {
		matches, err := ExpandPattern(pattern, available)
		if err != nil {
			return nil, err
		}
		for _, name := range matches {
			if !seen[name] {
				seen[name] = true
				result = append(result, name)
			}
		}
	}
	return result, nil
}

// SortNames returns a sorted copy.
func SortNames(names []string) []string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)
	return sorted
}
