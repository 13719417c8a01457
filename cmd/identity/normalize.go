package identity

import (
	"net/mail"
	"strings"
)

const maxEmailLen = 254

// NormalizeEmail performs case-insensitive canonicalization.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidEmail accepts a bare addr-spec (no display name) up to 254 bytes.
func ValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxEmailLen {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s && addr.Name == ""
}

// NormalizeFullName trims and collapses inner whitespace.
func NormalizeFullName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
