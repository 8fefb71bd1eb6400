// Package domain contains the core business entities for the Doce Delícia storefront.
package domain

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, cache, etc.).

var (
	// ===========================================
	// Identity Errors
	// ===========================================

	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateEmail indicates the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials indicates authentication failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotAuthenticated indicates the operation requires a session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionNotFound indicates the session token is unknown or expired.
	ErrSessionNotFound = errors.New("session not found")

	// ErrAccessDenied indicates the caller lacks the required role.
	ErrAccessDenied = errors.New("access denied")

	// ===========================================
	// Catalog Errors
	// ===========================================

	// ErrProductNotFound indicates the requested product does not exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrCatalogNotLoaded indicates the catalog has not been loaded yet.
	ErrCatalogNotLoaded = errors.New("catalog not loaded")

	// ===========================================
	// Cart Errors
	// ===========================================

	// ErrCartLineNotFound indicates the cart has no line for the product.
	ErrCartLineNotFound = errors.New("cart line not found")

	// ErrInvalidQuantity indicates a quantity that is not a positive integer.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// ===========================================
	// Order Errors
	// ===========================================

	// ErrOrderNotFound indicates the requested order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrEmptyCart indicates checkout was attempted with no line items.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrInvalidStatus indicates an unknown order status value.
	ErrInvalidStatus = errors.New("invalid order status")

	// ErrInvalidTransition indicates a status change that breaks the
	// enumerated state machine (only enforced when configured).
	ErrInvalidTransition = errors.New("invalid status transition")
)

// DomainError wraps a domain error with additional context.
type DomainError struct {
	// Err is the underlying domain error.
	Err error

	// Message provides additional context.
	Message string

	// Resource identifies the affected resource (e.g., order id, email).
	Resource string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Err.Error(), e.Message, e.Resource)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/errors.As.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError with context.
func NewDomainError(err error, message, resource string) *DomainError {
	return &DomainError{
		Err:      err,
		Message:  message,
		Resource: resource,
	}
}
