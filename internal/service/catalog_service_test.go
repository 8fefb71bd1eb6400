package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/docedelicia/storefront/internal/domain"
)

func TestCatalogService_LoadAndRead(t *testing.T) {
	svc := NewCatalogService(CatalogConfig{}, zerolog.Nop())
	ctx := context.Background()

	// Reads before the load finish with ErrCatalogNotLoaded.
	if _, err := svc.Products(ctx, ""); !errors.Is(err, domain.ErrCatalogNotLoaded) {
		t.Errorf("expected ErrCatalogNotLoaded before load, got %v", err)
	}
	if _, err := svc.Categories(ctx); !errors.Is(err, domain.ErrCatalogNotLoaded) {
		t.Errorf("expected ErrCatalogNotLoaded before load, got %v", err)
	}

	if err := svc.Load(ctx); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	products, err := svc.Products(ctx, "")
	if err != nil {
		t.Fatalf("products failed: %v", err)
	}
	if len(products) == 0 {
		t.Fatal("expected seed products")
	}
	for _, p := range products {
		if p.ID == "" || p.Name == "" || p.Category == "" {
			t.Errorf("incomplete product in seed: %+v", p)
		}
		if p.Price < 0 {
			t.Errorf("negative price in seed: %+v", p)
		}
	}
}

func TestCatalogService_Categories(t *testing.T) {
	svc := NewCatalogService(CatalogConfig{}, zerolog.Nop())
	ctx := context.Background()
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	categories, err := svc.Categories(ctx)
	if err != nil {
		t.Fatalf("categories failed: %v", err)
	}
	if len(categories) < 2 {
		t.Fatalf("expected 'all' plus at least one real category, got %v", categories)
	}
	if categories[0] != domain.AllCategory {
		t.Errorf("expected first category to be %q, got %q", domain.AllCategory, categories[0])
	}
	seen := make(map[string]bool)
	for _, c := range categories {
		if seen[c] {
			t.Errorf("duplicate category %q", c)
		}
		seen[c] = true
	}
}

func TestCatalogService_FilterByCategory(t *testing.T) {
	svc := NewCatalogService(CatalogConfig{}, zerolog.Nop())
	ctx := context.Background()
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	all, err := svc.Products(ctx, domain.AllCategory)
	if err != nil {
		t.Fatalf("products failed: %v", err)
	}

	categories, err := svc.Categories(ctx)
	if err != nil {
		t.Fatalf("categories failed: %v", err)
	}

	var filteredTotal int
	for _, c := range categories[1:] { // skip "all"
		filtered, err := svc.Products(ctx, c)
		if err != nil {
			t.Fatalf("products(%s) failed: %v", c, err)
		}
		for _, p := range filtered {
			if p.Category != c {
				t.Errorf("product %s leaked into category %s", p.ID, c)
			}
		}
		filteredTotal += len(filtered)
	}
	if filteredTotal != len(all) {
		t.Errorf("category filters cover %d products, 'all' has %d", filteredTotal, len(all))
	}
}

func TestCatalogService_ProductByID(t *testing.T) {
	svc := NewCatalogService(CatalogConfig{}, zerolog.Nop())
	ctx := context.Background()
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	products, err := svc.Products(ctx, "")
	if err != nil {
		t.Fatalf("products failed: %v", err)
	}

	p, err := svc.Product(ctx, products[0].ID)
	if err != nil {
		t.Fatalf("product failed: %v", err)
	}
	if p.ID != products[0].ID {
		t.Errorf("expected product %s, got %s", products[0].ID, p.ID)
	}

	if _, err := svc.Product(ctx, "missing"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCatalogService_LoadDelayHonorsContext(t *testing.T) {
	svc := NewCatalogService(CatalogConfig{LoadDelay: time.Minute}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := svc.Load(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context deadline error, got %v", err)
	}
}
