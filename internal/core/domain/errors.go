package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared across services, repositories and the HTTP
// error handler. Repositories translate storage-level failures
// (missing documents, unique index violations) into these so callers
// never depend on driver error types.
var (
	// ErrInvalidCredentials covers both "no such user" and "wrong
	// password" so login failures cannot be used to enumerate usernames.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled is returned only after the password verified,
	// i.e. the identity is confirmed but the account is deactivated.
	ErrAccountDisabled = errors.New("account disabled")
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrForbidden       = errors.New("forbidden")

	ErrUserNotFound       = errors.New("user not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrAssignmentNotFound = errors.New("role assignment not found")

	// Unique-constraint conflicts surfaced by the storage layer. The
	// services translate these into field-level validation errors so a
	// registration race reports the same shape as the proactive check.
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already taken")
	ErrRoleNameTaken = errors.New("role name already taken")
	ErrRoleCodeTaken = errors.New("role code already taken")
)

// FieldError describes a single per-field validation failure.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError aggregates field-level failures for one request. It
// always maps to HTTP 400 with the full field list in the body.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError builds a ValidationError with a single field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Reason: reason}}}
}

// Add appends a field failure and returns the receiver for chaining.
func (e *ValidationError) Add(field, reason string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
	return e
}

// HasErrors reports whether any field failure was recorded.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Reason))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidationError unwraps err into a *ValidationError if possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
