package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/docedelicia/storefront/internal/auth"
	"github.com/docedelicia/storefront/internal/domain"
	"github.com/docedelicia/storefront/internal/service"
)

// OrderHandler handles checkout and the customer's order history.
type OrderHandler struct {
	orders *service.OrderService
	logger zerolog.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders *service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger.With().Str("handler", "order").Logger(),
	}
}

// RegisterRoutes registers checkout and order routes.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/checkout", h.handleCheckout)
	r.Get("/orders", h.handleListOrders)
	r.Get("/orders/{id}", h.handleGetOrder)
}

type checkoutRequest struct {
	ShippingAddress domain.Address      `json:"shipping_address"`
	CustomerInfo    domain.CustomerInfo `json:"customer_info"`
	PaymentMethod   string              `json:"payment_method"`
}

func (h *OrderHandler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.orders.Place(r.Context(), principal, principal.UserID, service.PlaceOrderInput{
		ShippingAddress: req.ShippingAddress,
		CustomerInfo:    req.CustomerInfo,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, "order placed", order)
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())

	orders, err := h.orders.ListMine(r.Context(), principal)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	writeJSON(w, http.StatusOK, "ok", orders)
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())

	order, err := h.orders.Get(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "ok", order)
}
