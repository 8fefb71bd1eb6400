package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/docedelicia/storefront/internal/domain"
	"github.com/docedelicia/storefront/internal/metrics"
	"github.com/docedelicia/storefront/internal/repository"
)

// ProductLookup resolves a product id to its catalog entry. Satisfied by
// the catalog service; carts snapshot name, price and image from it when
// a line is first added.
type ProductLookup interface {
	Product(ctx context.Context, id string) (*domain.Product, error)
}

// CartService owns shopping carts. Carts are keyed by a cart id: the
// user id for authenticated shoppers, a guest token otherwise. Every
// mutation persists the full snapshot, so a restart never loses a cart.
type CartService struct {
	cartRepo repository.CartRepository
	catalog  ProductLookup
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewCartService creates a new CartService.
func NewCartService(
	cartRepo repository.CartRepository,
	catalog ProductLookup,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *CartService {
	return &CartService{
		cartRepo: cartRepo,
		catalog:  catalog,
		metrics:  m,
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

// Get returns the cart for the given id. A shopper with no stored cart
// gets an empty one.
func (s *CartService) Get(ctx context.Context, cartID string) (*domain.Cart, error) {
	cart, err := s.cartRepo.Get(ctx, cartID)
	if err != nil {
		s.logger.Error().Err(err).Str("cart_id", cartID).Msg("failed to load cart")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return cart, nil
}

// AddItem adds quantity units of a product to the cart. If the product
// is already in the cart the quantities are summed onto the existing
// line; otherwise a new line is appended with a snapshot of the catalog
// entry. Quantity defaults to 1 when omitted (zero); a negative quantity
// is rejected rather than treated as a removal.
func (s *CartService) AddItem(ctx context.Context, cartID, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, quantity)
	}
	if quantity == 0 {
		quantity = 1
	}

	product, err := s.catalog.Product(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if i := cart.Find(productID); i >= 0 {
		cart.Lines[i].Quantity += quantity
	} else {
		cart.Lines = append(cart.Lines, domain.CartLine{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.Image,
			Quantity:  quantity,
		})
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	s.metrics.CartMutations.WithLabelValues("add").Inc()
	s.logger.Debug().
		Str("cart_id", cartID).
		Str("product_id", productID).
		Int("quantity", quantity).
		Msg("item added to cart")

	return cart, nil
}

// UpdateQuantity sets the quantity of an existing line. A quantity of
// zero or below removes the line instead of storing a non-positive
// quantity.
func (s *CartService) UpdateQuantity(ctx context.Context, cartID, productID string, quantity int) (*domain.Cart, error) {
	cart, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	i := cart.Find(productID)
	if i < 0 {
		return nil, fmt.Errorf("%w: '%s'", domain.ErrCartLineNotFound, productID)
	}

	if quantity <= 0 {
		cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
	} else {
		cart.Lines[i].Quantity = quantity
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	s.metrics.CartMutations.WithLabelValues("update").Inc()
	return cart, nil
}

// RemoveItem removes the line for the given product. Removing a product
// that is not in the cart is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, cartID, productID string) (*domain.Cart, error) {
	cart, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	i := cart.Find(productID)
	if i < 0 {
		return cart, nil
	}
	cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	s.metrics.CartMutations.WithLabelValues("remove").Inc()
	return cart, nil
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, cartID string) error {
	if err := s.cartRepo.Delete(ctx, cartID); err != nil {
		s.logger.Error().Err(err).Str("cart_id", cartID).Msg("failed to clear cart")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.metrics.CartMutations.WithLabelValues("clear").Inc()
	s.logger.Debug().Str("cart_id", cartID).Msg("cart cleared")
	return nil
}

// save persists the cart, dropping the durable record when it emptied.
func (s *CartService) save(ctx context.Context, cart *domain.Cart) error {
	var err error
	if len(cart.Lines) == 0 {
		err = s.cartRepo.Delete(ctx, cart.ID)
	} else {
		err = s.cartRepo.Save(ctx, cart)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("cart_id", cart.ID).Msg("failed to save cart")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return nil
}
