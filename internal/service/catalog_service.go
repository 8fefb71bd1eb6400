package service

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/docedelicia/storefront/internal/domain"
)

//go:embed products.json
var seedProducts []byte

// CatalogConfig holds catalog service settings.
type CatalogConfig struct {
	// LoadDelay artificially delays the initial load, mimicking a slow
	// upstream supplier feed. Zero disables the delay.
	LoadDelay time.Duration
}

// CatalogService owns the read-only product catalog. The catalog is
// loaded once at startup from the embedded seed; until Load completes,
// reads fail with ErrCatalogNotLoaded.
type CatalogService struct {
	cfg    CatalogConfig
	logger zerolog.Logger

	mu         sync.RWMutex
	loaded     bool
	products   []domain.Product
	categories []string
	byID       map[string]domain.Product
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(cfg CatalogConfig, logger zerolog.Logger) *CatalogService {
	return &CatalogService{
		cfg:    cfg,
		logger: logger.With().Str("service", "catalog").Logger(),
	}
}

// Load parses the embedded product seed and derives the category list.
// Safe to call more than once; later calls replace the loaded set.
func (s *CatalogService) Load(ctx context.Context) error {
	if s.cfg.LoadDelay > 0 {
		select {
		case <-time.After(s.cfg.LoadDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	var products []domain.Product
	if err := json.Unmarshal(seedProducts, &products); err != nil {
		return fmt.Errorf("%w: failed to parse product seed: %v", ErrInternalError, err)
	}

	byID := make(map[string]domain.Product, len(products))
	seen := make(map[string]bool)
	var categories []string
	for _, p := range products {
		byID[p.ID] = p
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	sort.Strings(categories)
	// "all" always leads the list and matches every product.
	categories = append([]string{domain.AllCategory}, categories...)

	s.mu.Lock()
	s.loaded = true
	s.products = products
	s.categories = categories
	s.byID = byID
	s.mu.Unlock()

	s.logger.Info().
		Int("products", len(products)).
		Int("categories", len(categories)-1).
		Msg("catalog loaded")

	return nil
}

// Products returns every product, optionally filtered by category.
// The synthetic "all" category (or an empty string) matches everything.
func (s *CatalogService) Products(ctx context.Context, category string) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return nil, domain.ErrCatalogNotLoaded
	}

	if category == "" || category == domain.AllCategory {
		out := make([]domain.Product, len(s.products))
		copy(out, s.products)
		return out, nil
	}

	var out []domain.Product
	for _, p := range s.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

// Product returns a single product by id.
func (s *CatalogService) Product(ctx context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return nil, domain.ErrCatalogNotLoaded
	}

	p, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", domain.ErrProductNotFound, id)
	}
	return &p, nil
}

// Categories returns the category filter list, led by "all".
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return nil, domain.ErrCatalogNotLoaded
	}

	out := make([]string, len(s.categories))
	copy(out, s.categories)
	return out, nil
}
