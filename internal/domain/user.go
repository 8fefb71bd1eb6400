// Package domain contains the core business entities for the Doce Delícia
// storefront. These are pure Go structs with no external dependencies,
// representing the fundamental concepts of the shop: users, products,
// carts and orders.
package domain

import (
	"time"
)

// Role identifies the access level of a user.
type Role string

const (
	// RoleCustomer is the default role assigned at signup.
	RoleCustomer Role = "customer"

	// RoleAdmin grants access to the order dashboard and status management.
	RoleAdmin Role = "admin"
)

// Address is a structured shipping/billing address.
// All fields are optional; an empty Address means the user has not
// filled in their profile yet.
type Address struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Zip          string `json:"zip"`
}

// IsZero reports whether the address has no fields set.
func (a Address) IsZero() bool {
	return a == Address{}
}

// User represents a registered customer or administrator.
type User struct {
	// ID is the unique identifier for the user (generated at signup).
	ID string `json:"id"`

	// Name is the display name shown on orders and in the account area.
	Name string `json:"name"`

	// Email is the unique login key. Comparison is exact (case-sensitive).
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	// Never exposed in API responses.
	PasswordHash string `json:"-"`

	// Role is either RoleCustomer or RoleAdmin.
	Role Role `json:"role"`

	// Address is the optional saved shipping address.
	Address *Address `json:"address,omitempty"`

	// CPF is the optional Brazilian national id, formatted 000.000.000-00.
	CPF string `json:"cpf,omitempty"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the account was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new customer account with default values.
func NewUser(id, name, email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName returns the user's name, falling back to the local part
// of the email when the name is empty.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	for i := 0; i < len(u.Email); i++ {
		if u.Email[i] == '@' {
			return u.Email[:i]
		}
	}
	return u.Email
}

// Session is the durable marker for a logged-in user.
// The session stores only the user id; the full user record is always
// re-read from the registry so profile and role edits are reflected
// immediately, including across restarts.
type Session struct {
	// Token is the opaque bearer token handed to the client.
	Token string `json:"token"`

	// UserID is the id of the authenticated user.
	UserID string `json:"user_id"`

	// CreatedAt is when the session was opened.
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is when the session stops being valid.
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
