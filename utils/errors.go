package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// Error taxonomy for the REST surface. Handlers catch at their boundary and
// map each class to exactly one HTTP status; anything unclassified is a 500.

type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }

type AuthenticationError struct{ Message string }

func (e *AuthenticationError) Error() string { return e.Message }

type AuthorizationError struct{ Message string }

func (e *AuthorizationError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

func NewAuthenticationError(message string) error {
	return &AuthenticationError{Message: message}
}

func NewAuthorizationError(message string) error {
	return &AuthorizationError{Message: message}
}

func NewNotFoundError(message string) error {
	return &NotFoundError{Message: message}
}

func NewConflictError(message string) error {
	return &ConflictError{Message: message}
}
