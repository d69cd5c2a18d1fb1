package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound means the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrGatewayUnavailable means the payment provider could not be
	// reached in time. The client should retry; no payment state changed.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrPaymentVerification means the provider explicitly rejected the
	// confirmation. Terminal for that intent; a fresh authorization is
	// required to retry.
	ErrPaymentVerification = errors.New("payment verification failed")
)

// FieldError is a single violated constraint on one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violated field of a request, not just
// the first one.
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

// Add records a violation. Returns the receiver for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
	return e
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// InvalidStateError means an operation was attempted on an entity in
// the wrong lifecycle state. It signals a client protocol bug and is
// never retried automatically.
type InvalidStateError struct {
	Entity string
	ID     string
	State  string
	Op     string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s %s is %s: cannot %s", e.Entity, e.ID, e.State, e.Op)
}
