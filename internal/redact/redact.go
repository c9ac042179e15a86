// Package redact masks secret values before they are printed or written.
package redact

import "strings"

const maskChar = "*"

// Mask hides all but the first and last two characters of s. Values of
// eight characters or fewer are masked entirely.
func Mask(s string) string {
	n := len([]rune(s))
	if n == 0 {
		return ""
	}
	if n <= 8 {
		return strings.Repeat(maskChar, n)
	}
	r := []rune(s)
	return string(r[:2]) + strings.Repeat(maskChar, n-4) + string(r[n-2:])
}

// Line replaces every occurrence of secret in line with its masked form.
func Line(line, secret string) string {
	if secret == "" {
		return line
	}
	return strings.ReplaceAll(line, secret, Mask(secret))
}
