package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/docedelicia/storefront/internal/auth"
	"github.com/docedelicia/storefront/internal/domain"
	"github.com/docedelicia/storefront/internal/service"
)

// guestTokenHeader carries the cart token for shoppers who have not
// logged in. The first cart response hands one out; the client echoes
// it on later requests.
const guestTokenHeader = "X-Guest-Token"

// CartHandler handles shopping cart requests.
type CartHandler struct {
	cart   *service.CartService
	logger zerolog.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cart *service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		cart:   cart,
		logger: logger.With().Str("handler", "cart").Logger(),
	}
}

// RegisterRoutes registers cart routes.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/cart", h.handleGetCart)
	r.Delete("/cart", h.handleClearCart)
	r.Post("/cart/items", h.handleAddItem)
	r.Put("/cart/items/{productID}", h.handleUpdateQuantity)
	r.Delete("/cart/items/{productID}", h.handleRemoveItem)
}

// cartResponse is the cart payload with derived totals.
type cartResponse struct {
	Lines     []domain.CartLine `json:"lines"`
	Total     float64           `json:"total"`
	ItemCount int               `json:"item_count"`
}

func newCartResponse(cart *domain.Cart) cartResponse {
	lines := cart.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return cartResponse{
		Lines:     lines,
		Total:     cart.Total(),
		ItemCount: cart.ItemCount(),
	}
}

// cartID resolves the cart scope for the request: the user id for
// authenticated shoppers, the guest token otherwise. A guest without a
// token gets a fresh one, echoed back in the response header.
func (h *CartHandler) cartID(w http.ResponseWriter, r *http.Request) string {
	if principal := auth.PrincipalFromContext(r.Context()); principal != nil {
		return principal.UserID
	}

	token := r.Header.Get(guestTokenHeader)
	if token == "" {
		token = uuid.NewString()
	}
	w.Header().Set(guestTokenHeader, token)
	return "guest:" + token
}

func (h *CartHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cart.Get(r.Context(), h.cartID(w, r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "ok", newCartResponse(cart))
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "product_id is required")
		return
	}

	cart, err := h.cart.AddItem(r.Context(), h.cartID(w, r), req.ProductID, req.Quantity)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "item added", newCartResponse(cart))
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cart, err := h.cart.UpdateQuantity(r.Context(), h.cartID(w, r), chi.URLParam(r, "productID"), req.Quantity)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "quantity updated", newCartResponse(cart))
}

func (h *CartHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cart.RemoveItem(r.Context(), h.cartID(w, r), chi.URLParam(r, "productID"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "item removed", newCartResponse(cart))
}

func (h *CartHandler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context(), h.cartID(w, r)); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, "cart cleared", newCartResponse(&domain.Cart{}))
}
