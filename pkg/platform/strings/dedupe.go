// Package strings holds the scope-canonicalization helpers shared by the
// receipt model and the consent gate.
package strings

import (
	"sort"
	"strings"
)

func dedupe(values []string, canon func(string) string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		c := canon(v)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		result = append(result, c)
	}
	return result
}

// DedupeAndTrim trims each element and drops blanks and repeats,
// preserving first-seen order.
func DedupeAndTrim(values []string) []string {
	return dedupe(values, strings.TrimSpace)
}

// DedupeAndTrimLower is DedupeAndTrim with case folding, for sets whose
// members compare case-insensitively.
func DedupeAndTrimLower(values []string) []string {
	return dedupe(values, func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
}

// SortedSet canonicalizes a scope set: trim, lowercase, dedupe, then sort.
// Two inputs with the same members always produce the same slice, so
// content hashes computed over the result do not depend on caller ordering.
func SortedSet(values []string) []string {
	result := DedupeAndTrimLower(values)
	sort.Strings(result)
	return result
}

// TrimSpacePtr trims an optional string in place of nil checks at every
// call site.
func TrimSpacePtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}
