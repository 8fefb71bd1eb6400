package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/docedelicia/storefront/internal/auth"
	"github.com/docedelicia/storefront/internal/domain"
	"github.com/docedelicia/storefront/internal/service"
)

// AdminHandler serves the order management dashboard API. Every
// operation is re-checked for the admin role in the service layer; the
// handlers just pass the principal through.
type AdminHandler struct {
	orders   *service.OrderService
	identity *service.IdentityService
	logger   zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(orders *service.OrderService, identity *service.IdentityService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		orders:   orders,
		identity: identity,
		logger:   logger.With().Str("handler", "admin").Logger(),
	}
}

// RegisterRoutes registers admin routes under /admin.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/orders", h.handleListAllOrders)
	r.Put("/admin/orders/{id}/status", h.handleSetStatus)
	r.Get("/admin/stats", h.handleStats)
	r.Get("/admin/users", h.handleListUsers)
}

func (h *AdminHandler) handleListAllOrders(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())

	orders, err := h.orders.ListAll(r.Context(), principal)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	writeJSON(w, http.StatusOK, "ok", orders)
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (h *AdminHandler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())

	var req setStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orders.SetStatus(r.Context(), principal, chi.URLParam(r, "id"), domain.OrderStatus(req.Status))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "status updated", order)
}

func (h *AdminHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())

	stats, err := h.orders.Stats(r.Context(), principal)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "ok", stats)
}

func (h *AdminHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())

	users, err := h.identity.ListUsers(r.Context(), principal)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "ok", users)
}
