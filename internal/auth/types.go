// Package auth provides bearer session-token authentication for the
// storefront API. Every admin-gated operation also re-checks the role in
// the service layer: the HTTP route guard is a convenience, not the
// authorization boundary.
package auth

import (
	"github.com/docedelicia/storefront/internal/domain"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	// UserID is the id of the authenticated user.
	UserID string

	// Name is the user's display name.
	Name string

	// Email is the user's email.
	Email string

	// Role is the user's role at the time the request was resolved.
	Role domain.Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == domain.RoleAdmin
}

// PrincipalFromUser builds a Principal from a live user record.
func PrincipalFromUser(user *domain.User) *Principal {
	return &Principal{
		UserID: user.ID,
		Name:   user.DisplayName(),
		Email:  user.Email,
		Role:   user.Role,
	}
}
