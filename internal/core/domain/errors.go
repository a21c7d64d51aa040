package domain

import (
	"errors"
	"strings"
)

var ErrUserExists = errors.New("User already exists")
var ErrInvalidCredentials = errors.New("Invalid credentials")
var ErrAccountDeactivated = errors.New("Account is deactivated")
var ErrInvalidToken = errors.New("invalid or expired token")
var ErrUserNotFound = errors.New("User not found")
var ErrBroadcastNotFound = errors.New("Broadcast not found")
var ErrForbidden = errors.New("Not authorized to perform this action")

// ValidationError lists every field that failed validation so the caller can
// correct the request in a single round trip.
type ValidationError struct {
	Fields []string
}

func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Fields, "; ")
}
