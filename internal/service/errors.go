// Package service provides business logic services for the storefront.
package service

import "errors"

// Common service errors. Business rule violations use the sentinel
// errors in the domain package; these cover input validation and
// infrastructure failures.
var (
	// ErrInvalidName indicates an empty or unusable display name.
	ErrInvalidName = errors.New("invalid name: must not be empty")

	// ErrInvalidEmail indicates an email that does not parse.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidPassword indicates an empty password.
	ErrInvalidPassword = errors.New("invalid password: must not be empty")

	// ErrCheckoutBusy indicates another checkout is in flight for the
	// same shopper.
	ErrCheckoutBusy = errors.New("checkout already in progress")

	// ErrInternalError indicates an unexpected infrastructure failure.
	ErrInternalError = errors.New("internal error")
)
