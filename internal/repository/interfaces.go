// Package repository defines data access interfaces for the Doce Delícia
// storefront. These interfaces abstract the durable store, allowing for
// different implementations (embedded SQLite, PostgreSQL, in-memory for
// testing) while keeping the service layer clean.
package repository

import (
	"context"

	"github.com/docedelicia/storefront/internal/domain"
)

// =============================================================================
// User Repository
// =============================================================================

// UserRepository defines the interface for the durable user registry.
type UserRepository interface {
	// Create creates a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email (exact match).
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update updates an existing user.
	Update(ctx context.Context, user *domain.User) error

	// List returns all users in registration order.
	List(ctx context.Context) ([]*domain.User, error)

	// ExistsByEmail checks if a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// AdminExists checks if at least one admin account exists.
	// Used by the startup bootstrap invariant.
	AdminExists(ctx context.Context) (bool, error)
}

// =============================================================================
// Session Repository
// =============================================================================

// SessionRepository defines the interface for the durable session marker.
// A session stores only the user id; callers resolve the full user record
// against the live registry so profile and role edits stay visible.
type SessionRepository interface {
	// Create persists a new session.
	Create(ctx context.Context, session *domain.Session) error

	// GetByToken retrieves a session by its token.
	GetByToken(ctx context.Context, token string) (*domain.Session, error)

	// Delete removes a session by token. Deleting an unknown token is
	// not an error (logout is idempotent).
	Delete(ctx context.Context, token string) error

	// DeleteByUserID removes every session belonging to a user.
	DeleteByUserID(ctx context.Context, userID string) error

	// DeleteExpired removes all expired sessions and returns the count.
	DeleteExpired(ctx context.Context) (int64, error)
}

// =============================================================================
// Cart Repository
// =============================================================================

// CartRepository defines the interface for durable cart snapshots.
// Every cart mutation rewrites the full snapshot for its cart id.
type CartRepository interface {
	// Get retrieves the cart for the given id. A missing cart is
	// returned as an empty cart, not an error.
	Get(ctx context.Context, cartID string) (*domain.Cart, error)

	// Save replaces the stored snapshot for the cart.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes the cart's durable record entirely.
	Delete(ctx context.Context, cartID string) error
}

// =============================================================================
// Order Repository
// =============================================================================

// OrderRepository defines the interface for the durable order history.
// Orders are stored newest-first and never deleted.
type OrderRepository interface {
	// Create persists a new order with its items.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// ListByUserID returns all orders owned by the user, newest first.
	ListByUserID(ctx context.Context, userID string) ([]*domain.Order, error)

	// ListAll returns every order regardless of owner, newest first.
	ListAll(ctx context.Context) ([]*domain.Order, error)

	// UpdateStatus overwrites the status of the matching order.
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error

	// CountByStatus returns the order count and sales total per status,
	// aggregated by the store so statistics never load full orders.
	CountByStatus(ctx context.Context) (map[domain.OrderStatus]StatusCount, error)
}

// StatusCount aggregates the orders in one fulfillment stage.
type StatusCount struct {
	Orders int64
	Sales  float64
}

// =============================================================================
// Aggregate
// =============================================================================

// Repositories holds all repository instances wired at startup.
type Repositories struct {
	User    UserRepository
	Session SessionRepository
	Cart    CartRepository
	Order   OrderRepository
}

// DatabaseHealth is an interface for database health checks.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Close() error
}
