// Package service provides business logic services for the storefront.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/docedelicia/storefront/internal/auth"
	"github.com/docedelicia/storefront/internal/domain"
	"github.com/docedelicia/storefront/internal/pkg/crypto"
	"github.com/docedelicia/storefront/internal/repository"
)

// sessionCachePrefix keys the token-to-user-id cache entries.
const sessionCachePrefix = "session:"

// resetCachePrefix keys the password reset tokens.
const resetCachePrefix = "pwreset:"

// sessionCacheTTL bounds how long a token-to-user-id mapping is cached.
// The mapping is immutable for the life of a session, so caching it never
// serves stale roles: the user record itself is always re-read from the
// registry.
const sessionCacheTTL = 5 * time.Minute

// IdentityConfig holds identity service settings.
type IdentityConfig struct {
	// SessionTTL is how long a login session stays valid.
	SessionTTL time.Duration

	// ResetTokenTTL is how long a password reset token stays valid.
	ResetTokenTTL time.Duration

	// AdminName, AdminEmail and AdminPassword define the bootstrap
	// admin account.
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// IdentityService owns the user registry and login sessions.
type IdentityService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	cache       repository.Cache
	cfg         IdentityConfig
	logger      zerolog.Logger
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	cache repository.Cache,
	cfg IdentityConfig,
	logger zerolog.Logger,
) *IdentityService {
	return &IdentityService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		cache:       cache,
		cfg:         cfg,
		logger:      logger.With().Str("service", "identity").Logger(),
	}
}

// SignupInput contains the data needed to register a customer.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// AuthOutput contains the result of a signup or login.
type AuthOutput struct {
	User  *domain.User
	Token string
}

// Signup registers a new customer and opens a session for it.
func (s *IdentityService) Signup(ctx context.Context, input SignupInput) (*AuthOutput, error) {
	if input.Name == "" {
		return nil, ErrInvalidName
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, ErrInvalidEmail
	}
	if input.Password == "" {
		return nil, ErrInvalidPassword
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		s.logger.Error().Err(err).Str("email", input.Email).Msg("failed to check email existence")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: '%s'", domain.ErrDuplicateEmail, input.Email)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("%w: failed to hash password", ErrInternalError)
	}

	user := domain.NewUser(uuid.NewString(), input.Name, input.Email, string(passwordHash))

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: '%s'", domain.ErrDuplicateEmail, input.Email)
		}
		s.logger.Error().Err(err).Str("email", input.Email).Msg("failed to create user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("user signed up")

	return &AuthOutput{User: user, Token: token}, nil
}

// Login verifies credentials and opens a session.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*AuthOutput, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Log but don't expose whether the email exists.
			s.logger.Debug().Str("email", email).Msg("unknown email during login")
			return nil, domain.ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Str("email", email).Msg("failed to load user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug().Str("email", email).Msg("invalid password during login")
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("user logged in")

	return &AuthOutput{User: user, Token: token}, nil
}

// Logout closes the session for the given token. Idempotent: unknown
// tokens are not an error.
func (s *IdentityService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if err := s.sessionRepo.Delete(ctx, token); err != nil {
		s.logger.Error().Err(err).Msg("failed to delete session")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	_ = s.cache.Delete(ctx, sessionCachePrefix+token)

	return nil
}

// ResolvePrincipal resolves a session token to a Principal, re-reading
// the user from the registry so role and profile edits apply immediately.
// Implements auth.SessionResolver.
func (s *IdentityService) ResolvePrincipal(ctx context.Context, token string) (*auth.Principal, error) {
	user, err := s.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	return auth.PrincipalFromUser(user), nil
}

// CurrentUser returns the live user record for a session token.
func (s *IdentityService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrNotAuthenticated
	}

	userID, err := s.lookupSession(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return user, nil
}

// UpdateProfileInput contains the fields to merge into a user profile.
// Nil fields are left untouched; a supplied Address replaces the whole
// stored address record.
type UpdateProfileInput struct {
	Name    *string
	CPF     *string
	Address *domain.Address
}

// UpdateProfile merges the supplied fields into the authenticated user's
// record and persists it.
func (s *IdentityService) UpdateProfile(ctx context.Context, principal *auth.Principal, input UpdateProfileInput) (*domain.User, error) {
	if principal == nil {
		return nil, domain.ErrNotAuthenticated
	}

	user, err := s.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, ErrInvalidName
		}
		user.Name = *input.Name
	}
	if input.CPF != nil {
		user.CPF = *input.CPF
	}
	if input.Address != nil {
		addr := *input.Address
		user.Address = &addr
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to update profile")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("profile updated")
	return user, nil
}

// ChangePassword verifies the old password and stores a new hash.
// Every open session for the user is revoked; the client logs in again.
// A token still in the session cache keeps resolving until its cache
// entry expires (at most sessionCacheTTL).
func (s *IdentityService) ChangePassword(ctx context.Context, principal *auth.Principal, oldPassword, newPassword string) error {
	if principal == nil {
		return domain.ErrNotAuthenticated
	}
	if newPassword == "" {
		return ErrInvalidPassword
	}

	user, err := s.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return domain.ErrInvalidCredentials
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%w: failed to hash password", ErrInternalError)
	}

	user.PasswordHash = string(newHash)
	user.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := s.sessionRepo.DeleteByUserID(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to revoke sessions after password change")
	}

	s.logger.Info().Str("user_id", user.ID).Msg("password changed")
	return nil
}

// RequestPasswordReset records a reset token for the email and simulates
// sending a notification. It always succeeds from the caller's point of
// view: whether the email is registered is never disclosed.
func (s *IdentityService) RequestPasswordReset(ctx context.Context, email string) error {
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to check email for password reset")
		return nil
	}
	if !exists {
		s.logger.Debug().Str("email", email).Msg("password reset requested for unknown email")
		return nil
	}

	token, err := crypto.GenerateResetToken()
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to generate reset token")
		return nil
	}

	if err := s.cache.Set(ctx, resetCachePrefix+email, []byte(token), s.cfg.ResetTokenTTL); err != nil {
		s.logger.Error().Err(err).Msg("failed to store reset token")
		return nil
	}

	// No mail delivery exists; the token is logged so an operator can
	// hand it to the customer.
	s.logger.Info().
		Str("email", email).
		Str("reset_token", token).
		Msg("password reset requested")

	return nil
}

// ListUsers returns the full registry in registration order.
// Admin callers only.
func (s *IdentityService) ListUsers(ctx context.Context, principal *auth.Principal) ([]*domain.User, error) {
	if principal == nil {
		return nil, domain.ErrNotAuthenticated
	}
	if !principal.IsAdmin() {
		return nil, domain.ErrAccessDenied
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return users, nil
}

// EnsureAdmin creates the bootstrap admin account when no admin exists.
// Called once at startup so the dashboard always has an entry point.
func (s *IdentityService) EnsureAdmin(ctx context.Context) error {
	exists, err := s.userRepo.AdminExists(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if exists {
		return nil
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%w: failed to hash admin password", ErrInternalError)
	}

	admin := domain.NewUser(uuid.NewString(), s.cfg.AdminName, s.cfg.AdminEmail, string(passwordHash))
	admin.Role = domain.RoleAdmin

	if err := s.userRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// The email exists with the customer role; leave it alone
			// rather than escalating it.
			s.logger.Warn().Str("email", s.cfg.AdminEmail).Msg("bootstrap admin email taken by non-admin account")
			return nil
		}
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("user_id", admin.ID).
		Str("email", admin.Email).
		Msg("bootstrap admin created")

	return nil
}

// openSession creates and persists a session for the user.
func (s *IdentityService) openSession(ctx context.Context, userID string) (string, error) {
	now := time.Now().UTC()
	session := &domain.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		s.logger.Error().Err(err).Msg("failed to create session")
		return "", fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return session.Token, nil
}

// lookupSession resolves a token to a user id, consulting the cache
// first. The token-to-user-id mapping never changes, so the cache is
// purely a read optimization.
func (s *IdentityService) lookupSession(ctx context.Context, token string) (string, error) {
	if cached, err := s.cache.Get(ctx, sessionCachePrefix+token); err == nil {
		return string(cached), nil
	}

	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", domain.ErrSessionNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if session.Expired(time.Now().UTC()) {
		_ = s.sessionRepo.Delete(ctx, token)
		return "", domain.ErrSessionNotFound
	}

	_ = s.cache.Set(ctx, sessionCachePrefix+token, []byte(session.UserID), sessionCacheTTL)

	return session.UserID, nil
}
