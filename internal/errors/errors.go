package errors

import (
	"errors"
	"fmt"
)

// Failure taxonomy shared by the gateway, the session controller and the screens.
var (
	// Gateway errors
	ErrTransport     = errors.New("transport failure")
	ErrServer        = errors.New("server error")
	ErrAuthExpired   = errors.New("authorization expired")
	ErrRefreshFailed = errors.New("credential refresh failed")
	ErrDecode        = errors.New("malformed response body")

	// A success response without a field the caller depends on, e.g. no access token on login
	ErrValidationGap = errors.New("response missing expected field")

	// Storage errors
	ErrStorageUnavailable = errors.New("durable storage unavailable")
	ErrNotFound           = errors.New("not found")

	// Form errors
	ErrInvalidInput = errors.New("invalid input")
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

// New returns an error that formats as the given text
func New(text string) error {
	return errors.New(text)
}
