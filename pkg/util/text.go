package util

import (
	"regexp"
	"strings"
)

var (
	// multiSpacePattern matches multiple consecutive whitespace characters
	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// CleanField normalizes a free-text CSV field (city or province name).
// This function is designed to handle sloppy source data: stray quotes,
// non-breaking spaces, and collapsed whitespace from manual editing.
func CleanField(s string) string {
	if s == "" {
		return ""
	}

	// 1. Strip UTF-8 BOM left by spreadsheet exports
	s = strings.TrimPrefix(s, "\uFEFF")

	// 2. Replace non-breaking spaces with regular spaces
	s = strings.ReplaceAll(s, " ", " ")

	// 3. Drop surrounding quote characters
	s = strings.Trim(s, `"'`)

	// 4. Normalize whitespace (collapse multiple spaces/newlines into single space)
	s = multiSpacePattern.ReplaceAllString(s, " ")

	// 5. Trim leading/trailing whitespace
	return strings.TrimSpace(s)
}

// CleanNumeric strips formatting runes (currency symbols, thousands
// separators, spaces) from a numeric field, keeping digits, sign, and the
// decimal point.
func CleanNumeric(s string) string {
	clean := make([]rune, 0, len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			clean = append(clean, r)
		}
	}
	return string(clean)
}
