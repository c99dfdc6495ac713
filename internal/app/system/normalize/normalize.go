// Package normalize canonicalises user-supplied strings before they are
// validated or stored.
package normalize

import (
	"strings"
	"unicode"
)

// Email trims and lower-cases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding space and collapses internal runs of whitespace.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Role trims and lower-cases a role string.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Phone strips spaces, dashes, dots and parentheses from a phone number.
// A leading "+" is kept. Other characters are left in place so the caller
// can reject them.
func Phone(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '+' && i == 0:
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '-', r == '.', r == '(', r == ')':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsPhone reports whether s (already normalised) is a plausible phone number:
// an optional leading "+" followed by 6 to 15 digits.
func IsPhone(s string) bool {
	s = strings.TrimPrefix(s, "+")
	if len(s) < 6 || len(s) > 15 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// QueryParam trims a raw query parameter value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// StringList trims every entry, drops blanks and duplicates, and keeps the
// first-seen order.
func StringList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
