package engine

import "strings"

// lowerASCII is a small wrapper kept distinct from strings.ToLower at the
// call site so search intent (case-insensitive substring match, spec §4.4)
// reads clearly wherever it's used.
func lowerASCII(s string) string { return strings.ToLower(s) }

// containsFold reports whether needle (already lowercased) occurs in s,
// case-insensitively.
func containsFold(s, needle string) bool {
	return strings.Contains(strings.ToLower(s), needle)
}
