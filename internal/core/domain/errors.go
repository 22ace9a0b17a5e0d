package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrClienteNotFound    = errors.New("cliente not found")
	ErrSessionNotFound    = errors.New("session not found")

	// ErrEmailTaken and ErrCPFTaken are returned by the repository when a unique
	// index rejects the write.
	ErrEmailTaken = errors.New("email already registered")
	ErrCPFTaken   = errors.New("cpf already registered")
)

// Internal reasons behind ErrInvalidCredentials. They are logged and counted,
// never sent to the caller.
const (
	ReasonEmailNotFound = "email_not_found"
	ReasonWrongPassword = "wrong_password"
)

// InvalidCredentialsError keeps the internal reason a login was refused.
type InvalidCredentialsError struct {
	Reason string
}

func (e InvalidCredentialsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidCredentials.Error(), e.Reason)
}

func (e InvalidCredentialsError) Unwrap() error { return ErrInvalidCredentials }

// FieldError is a single rule violation on an input field, keyed by wire name.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError carries every field violation found in one request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a violation.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Has reports whether field has at least one violation.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Map groups the messages by field, preserving their order.
func (e *ValidationError) Map() map[string][]string {
	out := make(map[string][]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = append(out[f.Field], f.Message)
	}
	return out
}

// OrNil returns nil when no violation was recorded, so callers can return it directly.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
