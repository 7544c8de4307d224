package utils

import "strings"

// CollapseWhitespace replaces every run of whitespace (spaces, tabs,
// newlines) with a single space and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Excerpt collapses whitespace in s and caps it at n runes.
func Excerpt(s string, n int) string {
	return Truncate(CollapseWhitespace(s), n)
}
