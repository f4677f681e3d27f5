package service

import (
	"strings"
	"unicode"

	"github.com/sentra-id/identity-api/internal/core/domain"
)

const defaultMinPasswordLength = 8

// PasswordPolicy is the configurable strength policy applied on
// registration and password change.
type PasswordPolicy struct {
	MinLength int
}

// NewPasswordPolicy returns a policy with the given minimum length,
// falling back to the default when the value is not positive.
func NewPasswordPolicy(minLength int) *PasswordPolicy {
	if minLength <= 0 {
		minLength = defaultMinPasswordLength
	}
	return &PasswordPolicy{MinLength: minLength}
}

// Validate checks password strength against the policy. The reported
// field name is supplied by the caller so registration ("password")
// and password change ("new_password") reuse the same checks. Returns
// nil when the password passes.
func (p *PasswordPolicy) Validate(field, password, username, email string) *domain.ValidationError {
	ve := &domain.ValidationError{}

	if len(password) < p.MinLength {
		ve.Add(field, "password is too short")
	}
	if isEntirelyNumeric(password) {
		ve.Add(field, "password cannot be entirely numeric")
	}
	if tooSimilar(password, username) || tooSimilar(password, emailLocalPart(email)) {
		ve.Add(field, "password is too similar to your personal information")
	}

	if ve.HasErrors() {
		return ve
	}
	return nil
}

func isEntirelyNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// tooSimilar reports whether the password contains the attribute (or
// vice versa), compared case-insensitively. Short attributes are
// ignored to avoid false positives on two-letter names.
func tooSimilar(password, attribute string) bool {
	if len(attribute) < 3 {
		return false
	}
	pw := strings.ToLower(password)
	attr := strings.ToLower(attribute)
	return strings.Contains(pw, attr) || strings.Contains(attr, pw)
}

func emailLocalPart(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
