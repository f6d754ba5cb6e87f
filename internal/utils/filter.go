package utils

import (
	"unicode"
	"unicode/utf8"
)

// ContainsSpecialChars checks if a string contains characters that cannot
// be part of a dotted call name.
func ContainsSpecialChars(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !IsSeparator(r) {
			return true
		}
	}
	return false
}

// IsValidName checks a configured call prefix. Empty strings, overlong
// strings and names with special characters are rejected.
func IsValidName(s string, maxLen int) bool {
	if len(s) == 0 {
		return false
	}
	if maxLen > 0 && len(s) > maxLen {
		return false
	}
	return !ContainsSpecialChars(s)
}

// IsLookupName checks a function name or name prefix from a client request.
// Extracted names may hold any text before the first '(', so only empty,
// overlong, non-UTF-8 and control-character names are rejected.
func IsLookupName(s string, maxLen int) bool {
	if len(s) == 0 || !utf8.ValidString(s) {
		return false
	}
	if maxLen > 0 && len(s) > maxLen {
		return false
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
