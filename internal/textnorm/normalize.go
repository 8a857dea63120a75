// Package textnorm provides text normalization shared by parsing and matching.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD, removes combining marks, and recomposes.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lower-cases the input, trims surrounding whitespace and strips
// Unicode combining diacritical marks. It is a pure function and idempotent:
// Normalize(Normalize(s)) == Normalize(s). Empty input yields "".
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToLower(strings.TrimSpace(s))

	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		// Malformed UTF-8 passes through untouched rather than failing the caller.
		return s
	}
	return out
}

// Contains reports whether needle occurs in haystack after both are
// normalized. Callers that already hold a normalized needle can pass it
// as-is since Normalize is idempotent.
func Contains(haystack, needle string) bool {
	return strings.Contains(Normalize(haystack), Normalize(needle))
}
