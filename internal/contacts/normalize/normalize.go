// Package normalize provides the pure name-normalisation functions the
// matcher and name-lookup index build on: a canonical lookup key and a
// display-name complexity comparator.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripDiacritics removes Unicode combining marks left over after NFD
// decomposition, folding e.g. "é" -> "e". Built once at package init and
// reused rather than reconstructed on every call.
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize returns the canonical lookup key for s: lowercased, diacritics
// and punctuation stripped, whitespace collapsed away entirely. Two names
// that a human would consider "the same spelling" normalize to the same key.
func Normalize(s string) string {
	folded, _, err := transform.String(stripDiacritics, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			// punctuation and whitespace are dropped, not replaced —
			// "O'Brien" and "OBrien" must normalize identically.
		}
	}
	return b.String()
}

// CompareComplexity ranks two display-name strings for aggregate display-name
// selection: mixed case beats mono-case, longer beats shorter. Returns >0 if
// a is more complex than b, <0 if less, 0 if equal.
func CompareComplexity(a, b string) int {
	ca, cb := complexityScore(a), complexityScore(b)
	if ca != cb {
		return ca - cb
	}
	return len(a) - len(b)
}

// complexityScore gives mixed-case strings a higher score than all-lower or
// all-upper strings of the same shape; "John Doe" beats "john doe" and
// "JOHN DOE".
func complexityScore(s string) int {
	hasUpper, hasLower := false, false
	for _, r := range s {
		if unicode.IsUpper(r) {
			hasUpper = true
		}
		if unicode.IsLower(r) {
			hasLower = true
		}
	}
	if hasUpper && hasLower {
		return 1
	}
	return 0
}
