package utils

import "strings"

// NormalizeWhitespace collapses every run of whitespace (including newlines)
// into a single space and trims both ends.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Prefix returns at most n runes from the start of s.
func Prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}
