package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/docedelicia/storefront/internal/auth"
	"github.com/docedelicia/storefront/internal/domain"
	"github.com/docedelicia/storefront/internal/lock"
	"github.com/docedelicia/storefront/internal/metrics"
	"github.com/docedelicia/storefront/internal/pkg/crypto"
	"github.com/docedelicia/storefront/internal/repository"
)

// checkoutLockPrefix keys the per-shopper checkout locks.
const checkoutLockPrefix = "checkout:"

// OrderConfig holds order service settings.
type OrderConfig struct {
	// EnforceTransitions restricts status changes to the enumerated
	// state machine. Off by default: the dashboard board lets staff
	// drag an order card to any column.
	EnforceTransitions bool

	// CheckoutLockTTL bounds how long a checkout lock may be held.
	CheckoutLockTTL time.Duration
}

// OrderService owns the order history: checkout, listings, status
// changes and sales statistics.
type OrderService struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	locker    lock.Locker
	cfg       OrderConfig
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	locker lock.Locker,
	cfg OrderConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		locker:    locker,
		cfg:       cfg,
		metrics:   m,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// PlaceOrderInput carries the checkout form data.
type PlaceOrderInput struct {
	ShippingAddress domain.Address
	CustomerInfo    domain.CustomerInfo
	PaymentMethod   string
}

// Place turns the shopper's cart into an order and clears the cart.
// Cart read, order write and cart clear are serialized per shopper
// behind a lock so concurrent checkouts cannot double-spend a cart.
func (s *OrderService) Place(ctx context.Context, principal *auth.Principal, cartID string, input PlaceOrderInput) (*domain.Order, error) {
	if principal == nil {
		return nil, domain.ErrNotAuthenticated
	}

	lockKey := checkoutLockPrefix + cartID
	acquired, err := s.locker.Acquire(ctx, lockKey, s.cfg.CheckoutLockTTL)
	if err != nil {
		s.logger.Error().Err(err).Str("cart_id", cartID).Msg("failed to acquire checkout lock")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if !acquired {
		return nil, ErrCheckoutBusy
	}
	defer func() {
		if _, err := s.locker.Release(ctx, lockKey); err != nil {
			s.logger.Warn().Err(err).Str("cart_id", cartID).Msg("failed to release checkout lock")
		}
	}()

	cart, err := s.cartRepo.Get(ctx, cartID)
	if err != nil {
		s.logger.Error().Err(err).Str("cart_id", cartID).Msg("failed to load cart for checkout")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if len(cart.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	now := time.Now().UTC()
	orderID, err := crypto.GenerateOrderID(now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	// Items are copied from the cart lines; the order keeps its own
	// snapshot and never observes later cart mutations.
	items := make([]domain.OrderItem, len(cart.Lines))
	for i, l := range cart.Lines {
		items[i] = domain.OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Image:     l.Image,
			Quantity:  l.Quantity,
		}
	}

	customer := input.CustomerInfo
	if customer.Name == "" {
		customer.Name = principal.Name
	}
	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = domain.PaymentPix
	}

	order := &domain.Order{
		ID:              orderID,
		UserID:          principal.UserID,
		UserName:        principal.Name,
		CreatedAt:       now,
		Status:          domain.StatusReceived,
		Items:           items,
		Total:           cart.Total(),
		ShippingAddress: input.ShippingAddress,
		CustomerInfo:    customer,
		PaymentMethod:   paymentMethod,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID).Msg("failed to create order")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := s.cartRepo.Delete(ctx, cartID); err != nil {
		// The order exists; losing the cart clear only leaves stale
		// lines behind, so log and keep going.
		s.logger.Warn().Err(err).Str("cart_id", cartID).Msg("failed to clear cart after checkout")
	}

	s.metrics.OrdersPlaced.Inc()
	s.logger.Info().
		Str("order_id", order.ID).
		Str("user_id", order.UserID).
		Float64("total", order.Total).
		Int("items", len(order.Items)).
		Msg("order placed")

	return order, nil
}

// Get returns a single order. Customers may only read their own orders;
// admins may read any.
func (s *OrderService) Get(ctx context.Context, principal *auth.Principal, orderID string) (*domain.Order, error) {
	if principal == nil {
		return nil, domain.ErrNotAuthenticated
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", domain.ErrOrderNotFound, orderID)
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if order.UserID != principal.UserID && !principal.IsAdmin() {
		return nil, domain.ErrAccessDenied
	}
	return order, nil
}

// ListMine returns the caller's orders, newest first.
func (s *OrderService) ListMine(ctx context.Context, principal *auth.Principal) ([]*domain.Order, error) {
	if principal == nil {
		return nil, domain.ErrNotAuthenticated
	}

	orders, err := s.orderRepo.ListByUserID(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return orders, nil
}

// ListAll returns every order, newest first. Admin callers only.
func (s *OrderService) ListAll(ctx context.Context, principal *auth.Principal) ([]*domain.Order, error) {
	if principal == nil {
		return nil, domain.ErrNotAuthenticated
	}
	if !principal.IsAdmin() {
		return nil, domain.ErrAccessDenied
	}

	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return orders, nil
}

// SetStatus changes an order's fulfillment stage. Admin callers only.
// When transition enforcement is on, the change must follow the
// enumerated state machine.
func (s *OrderService) SetStatus(ctx context.Context, principal *auth.Principal, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	if principal == nil {
		return nil, domain.ErrNotAuthenticated
	}
	if !principal.IsAdmin() {
		return nil, domain.ErrAccessDenied
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: '%s'", domain.ErrInvalidStatus, status)
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", domain.ErrOrderNotFound, orderID)
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if order.Status == status {
		return order, nil
	}

	if s.cfg.EnforceTransitions && !order.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, order.Status, status)
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", domain.ErrOrderNotFound, orderID)
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	order.Status = status

	s.metrics.OrderStatusChanges.WithLabelValues(string(status)).Inc()
	s.logger.Info().
		Str("order_id", orderID).
		Str("status", string(status)).
		Str("changed_by", principal.UserID).
		Msg("order status changed")

	return order, nil
}

// OrderStats summarizes the order history for the dashboard.
type OrderStats struct {
	// TotalOrders counts every order regardless of status.
	TotalOrders int64 `json:"total_orders"`

	// TotalSales sums the totals of all non-cancelled orders.
	TotalSales float64 `json:"total_sales"`

	// ByStatus counts orders per fulfillment stage.
	ByStatus map[domain.OrderStatus]int64 `json:"by_status"`
}

// Stats computes dashboard statistics. Admin callers only.
func (s *OrderService) Stats(ctx context.Context, principal *auth.Principal) (*OrderStats, error) {
	if principal == nil {
		return nil, domain.ErrNotAuthenticated
	}
	if !principal.IsAdmin() {
		return nil, domain.ErrAccessDenied
	}

	counts, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	stats := &OrderStats{
		ByStatus: make(map[domain.OrderStatus]int64),
	}
	for status, c := range counts {
		stats.TotalOrders += c.Orders
		stats.ByStatus[status] = c.Orders
		if status != domain.StatusCancelled {
			stats.TotalSales += c.Sales
		}
	}

	return stats, nil
}
