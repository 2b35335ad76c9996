package helpers

import (
	"strings"
	"unicode"
)

// TrailingDigits returns the digit run s ends with, e.g. "page1_3" -> "3",
// "0042" -> "0042". Empty string when s does not end in a digit.
func TrailingDigits(s string) string {
	i := len(s)
	for i > 0 && unicode.IsDigit(rune(s[i-1])) {
		i--
	}
	return s[i:]
}

// FirstDigits returns the first contiguous digit run in s with grouping
// commas removed, e.g. "1,234 reviews" -> "1234".
func FirstDigits(s string) string {
	s = strings.ReplaceAll(s, ",", "")
	start := -1
	for i, r := range s {
		if unicode.IsDigit(r) {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			return s[start:i]
		}
	}
	if start != -1 {
		return s[start:]
	}
	return ""
}

// NormalizeSpace trims s and collapses internal whitespace runs into a
// single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
