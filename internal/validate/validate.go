// Package validate normalizes and bounds user-supplied account fields.
package validate

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/melo-app/accounts/internal/apperr"
	"github.com/melo-app/accounts/types"
)

// reDomain requires a DNS-plausible domain: dot-separated labels of
// letters/digits/hyphens, no leading or trailing hyphen.
var reDomain = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?(\.[A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?)+$`)

// NormalizeEmail validates raw as a bare RFC 5322 address with a
// DNS-plausible domain and returns its canonical form: surrounding
// whitespace removed and the domain lowercased. Normalization is
// idempotent.
func NormalizeEmail(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" || len(s) > types.MaxEmailLen {
		return "", apperr.Validation("Invalid email address")
	}

	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return "", apperr.Validation("Invalid email address")
	}

	at := strings.LastIndex(s, "@")
	if at < 1 {
		return "", apperr.Validation("Invalid email address")
	}
	local, domain := s[:at], s[at+1:]
	if !reDomain.MatchString(domain) {
		return "", apperr.Validation("Invalid email address")
	}

	return local + "@" + strings.ToLower(domain), nil
}

// FullName trims s and enforces the column bound.
func FullName(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) > types.MaxFullNameLen {
		return "", apperr.Validation("Full name is too long")
	}
	return s, nil
}

// Password enforces bcrypt's input limit. There is deliberately no
// complexity policy here.
func Password(s string) error {
	if s == "" {
		return apperr.Validation("Password is required")
	}
	if len(s) > 72 {
		return apperr.Validation("Password is too long")
	}
	return nil
}
