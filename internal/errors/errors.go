package errors

import (
	"errors"
	"fmt"
)

// Common error kinds for the Tripmate client
var (
	// Fetch errors
	ErrRetriesExhausted = errors.New("retries exhausted")
	ErrRefreshFailed    = errors.New("session refresh failed")

	// API errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBadResponse  = errors.New("invalid response from api")

	// Session errors
	ErrSessionExpired = errors.New("session expired")
	ErrNoCredentials  = errors.New("no stored credentials")

	// Role errors
	ErrInvalidRole       = errors.New("invalid role")
	ErrRoleNotSelectable = errors.New("role cannot be self-selected")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New is errors.New, re-exported so callers need a single errors import
func New(text string) error {
	return errors.New(text)
}
