// Package text provides utilities for text normalization and truncation.
// The normalization here feeds article fingerprinting, so its behavior is
// part of the deduplication contract: two titles that normalize to the same
// string are the same article.
package text

import (
	"strings"
	"unicode"
)

// NormalizeTitle lowercases the input, strips leading and trailing
// whitespace and collapses internal whitespace runs to a single space.
// Punctuation is preserved; feeds rarely vary it for the same item, and
// dropping it would merge genuinely different headlines.
//
// Examples:
//
//	NormalizeTitle("  Fed  Announces\tRate Cut ") // "fed announces rate cut"
//	NormalizeTitle("BREAKING: Quake")             // "breaking: quake"
func NormalizeTitle(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace {
			b.WriteRune(' ')
			inSpace = false
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// TruncateRunes shortens text to at most max runes, appending "..." when
// anything was cut. Rune-based so multi-byte characters are never split.
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
