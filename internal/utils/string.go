package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsSeparator checks if a rune may appear inside a dotted call name
func IsSeparator(r rune) bool {
	return r == '_' || r == '.'
}

// EqualFold performs case-insensitive rune equality check
func EqualFold(a, b rune) bool {
	if a == b {
		return true
	}

	// Try simple ASCII case folding first (faster)
	if a < utf8.RuneSelf && b < utf8.RuneSelf {
		if 'A' <= a && a <= 'Z' {
			a += 'a' - 'A'
		}
		if 'A' <= b && b <= 'Z' {
			b += 'a' - 'A'
		}
		return a == b
	}

	// Use Unicode's more comprehensive case folding
	return strings.EqualFold(string(a), string(b))
}

// IndexFold returns the byte index of the first case-insensitive occurrence
// of substr in s, or -1. Matching is rune by rune, so the returned index and
// the matched length always line up with the original bytes of s.
func IndexFold(s, substr string) int {
	if substr == "" {
		return 0
	}
	for i := 0; i < len(s); {
		if n := matchFoldAt(s[i:], substr); n > 0 {
			return i
		}
		_, w := utf8.DecodeRuneInString(s[i:])
		i += w
	}
	return -1
}

// MatchFoldLen reports how many bytes of s matched substr case-insensitively
// when substr is a prefix of s, or 0 if it is not.
func MatchFoldLen(s, substr string) int {
	return matchFoldAt(s, substr)
}

func matchFoldAt(s, substr string) int {
	i := 0
	for _, want := range substr {
		if i >= len(s) {
			return 0
		}
		got, w := utf8.DecodeRuneInString(s[i:])
		if !EqualFold(got, want) {
			return 0
		}
		i += w
	}
	return i
}

// StripSpace removes every whitespace rune and every rune in cutset from s.
func StripSpace(s, cutset string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || strings.ContainsRune(cutset, r) {
			return -1
		}
		return r
	}, s)
}
