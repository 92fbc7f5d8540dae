package util

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics strips combining diacritical marks after canonical
// decomposition and lowercases the result, so "Áo" and "ao" compare equal.
// The function is idempotent.
func RemoveDiacritics(s string) string {
	if s == "" {
		return ""
	}
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		// NFD leaves đ/Đ intact; fold them by hand so "đông" matches "dong".
		switch r {
		case 'đ':
			r = 'd'
		case 'Đ':
			r = 'D'
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// wordBoundary reports whether r separates words for search matching.
func wordBoundary(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// ContainsWord reports whether token occurs in haystack anchored at word
// boundaries on both sides, so "mu" never matches inside "mua".
func ContainsWord(haystack, token string) bool {
	if token == "" {
		return false
	}
	start := 0
	for start <= len(haystack)-len(token) {
		idx := strings.Index(haystack[start:], token)
		if idx < 0 {
			return false
		}
		idx += start

		before := true
		if idx > 0 {
			r, _ := utf8.DecodeLastRuneInString(haystack[:idx])
			before = wordBoundary(r)
		}
		after := true
		if end := idx + len(token); end < len(haystack) {
			r, _ := utf8.DecodeRuneInString(haystack[end:])
			after = wordBoundary(r)
		}
		if before && after {
			return true
		}
		start = idx + 1
	}
	return false
}
