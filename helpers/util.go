package helpers

import (
	"strings"
)

// CollapseWhitespace turns escaped newlines and whitespace runs into single spaces
func CollapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, `\n`, " ")
	return strings.Join(strings.Fields(s), " ")
}

// DigitsOnly strips every non-digit character from s
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DigitsAndDots strips everything except digits and dots from s
func DigitsAndDots(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
