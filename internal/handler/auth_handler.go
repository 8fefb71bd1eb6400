// Package handler provides the HTTP API for the Doce Delícia storefront.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/docedelicia/storefront/internal/auth"
	"github.com/docedelicia/storefront/internal/domain"
	"github.com/docedelicia/storefront/internal/metrics"
	"github.com/docedelicia/storefront/internal/service"
)

// AuthHandler handles signup, login and account management requests.
type AuthHandler struct {
	identity *service.IdentityService
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(identity *service.IdentityService, m *metrics.Metrics, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		identity: identity,
		metrics:  m,
		logger:   logger.With().Str("handler", "auth").Logger(),
	}
}

// RegisterRoutes registers authentication and account routes.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/signup", h.handleSignup)
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/logout", h.handleLogout)
	r.Post("/auth/password-reset", h.handlePasswordReset)

	r.Get("/me", h.handleMe)
	r.Put("/me", h.handleUpdateProfile)
	r.Put("/me/password", h.handleChangePassword)
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

func (h *AuthHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := h.identity.Signup(r.Context(), service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.metrics.AuthAttempts.WithLabelValues("signup", "failure").Inc()
		writeServiceError(w, h.logger, err)
		return
	}

	h.metrics.AuthAttempts.WithLabelValues("signup", "success").Inc()
	writeJSON(w, http.StatusCreated, "account created", authResponse{User: out.User, Token: out.Token})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := h.identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.AuthAttempts.WithLabelValues("login", "failure").Inc()
		writeServiceError(w, h.logger, err)
		return
	}

	h.metrics.AuthAttempts.WithLabelValues("login", "success").Inc()
	writeJSON(w, http.StatusOK, "logged in", authResponse{User: out.User, Token: out.Token})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := auth.TokenFromRequest(r)
	if err := h.identity.Logout(r.Context(), token); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "logged out", nil)
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Always answers the same regardless of whether the email exists.
	_ = h.identity.RequestPasswordReset(r.Context(), req.Email)
	writeJSON(w, http.StatusOK, "if the email is registered, reset instructions have been sent", nil)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	token := auth.TokenFromRequest(r)
	user, err := h.identity.CurrentUser(r.Context(), token)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "ok", user)
}

type updateProfileRequest struct {
	Name    *string         `json:"name"`
	CPF     *string         `json:"cpf"`
	Address *domain.Address `json:"address"`
}

func (h *AuthHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.identity.UpdateProfile(r.Context(), principal, service.UpdateProfileInput{
		Name:    req.Name,
		CPF:     req.CPF,
		Address: req.Address,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "profile updated", user)
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (h *AuthHandler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.identity.ChangePassword(r.Context(), principal, req.OldPassword, req.NewPassword); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "password changed", nil)
}
