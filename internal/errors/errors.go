package errors

import (
	"errors"
	"fmt"
)

// Common errors for the storefront
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")

	// Input errors
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidID    = errors.New("invalid id")

	// Checkout errors
	ErrPaymentNotVerified = errors.New("payment not verified")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
