package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for comparison with errors.Is
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidReference  = errors.New("invalid reference")
)

// ValidationError reports a request field that failed validation
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// ReferenceError is a validation error caused by an identifier that does not resolve
func ReferenceError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message, Err: ErrInvalidReference}
}

// NotFoundError reports an unknown identifier for an entity
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e NotFoundError) Unwrap() error {
	return ErrNotFound
}

// TransitionError reports a status change rejected by a transition table
type TransitionError struct {
	Entity string
	ID     int64
	From   string
	To     string
	Reason string
}

func (e TransitionError) Error() string {
	msg := fmt.Sprintf("%s %d cannot move from %s to %s", e.Entity, e.ID, e.From, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// IsNotFound checks if an error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error should be reported to the caller as a bad request
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrInvalidReference)
}
