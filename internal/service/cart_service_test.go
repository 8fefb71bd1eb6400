package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/docedelicia/storefront/internal/domain"
	"github.com/docedelicia/storefront/internal/metrics"
)

var cartTestProducts = []domain.Product{
	{ID: "1", Name: "Cupcake de Baunilha", Price: 10.00, Category: "classic", Image: "/img/1.jpg"},
	{ID: "2", Name: "Cupcake Red Velvet", Price: 12.00, Category: "gourmet", Image: "/img/2.jpg"},
}

func newTestCartService() (*CartService, *MockCartRepository) {
	cartRepo := NewMockCartRepository()
	svc := NewCartService(cartRepo, newMockProductLookup(cartTestProducts...), metrics.New(), zerolog.Nop())
	return svc, cartRepo
}

func TestCartService_AddItemMergesByProduct(t *testing.T) {
	svc, _ := newTestCartService()
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "cart-1", "1", 1); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	cart, err := svc.AddItem(ctx, "cart-1", "1", 1)
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	if len(cart.Lines) != 1 {
		t.Fatalf("expected 1 line after adding same product twice, got %d", len(cart.Lines))
	}
	if cart.Lines[0].Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", cart.Lines[0].Quantity)
	}
}

func TestCartService_AddItemSnapshotsProduct(t *testing.T) {
	svc, _ := newTestCartService()
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, "cart-1", "2", 0) // zero quantity defaults to 1
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	line := cart.Lines[0]
	if line.Name != "Cupcake Red Velvet" || line.Price != 12.00 || line.Image != "/img/2.jpg" {
		t.Errorf("expected product snapshot on line, got %+v", line)
	}
	if line.Quantity != 1 {
		t.Errorf("expected default quantity 1, got %d", line.Quantity)
	}
}

func TestCartService_AddItemNegativeQuantity(t *testing.T) {
	svc, cartRepo := newTestCartService()

	_, err := svc.AddItem(context.Background(), "cart-1", "1", -1)
	if !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
	if _, ok := cartRepo.carts["cart-1"]; ok {
		t.Error("rejected add must not create a cart record")
	}
}

func TestCartService_AddItemUnknownProduct(t *testing.T) {
	svc, _ := newTestCartService()

	_, err := svc.AddItem(context.Background(), "cart-1", "missing", 1)
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCartService_TotalsAcrossLines(t *testing.T) {
	svc, _ := newTestCartService()
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "cart-1", "1", 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	cart, err := svc.AddItem(ctx, "cart-1", "2", 1)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if got := cart.Total(); got != 32.00 {
		t.Errorf("expected total 32.00, got %.2f", got)
	}
	if got := cart.ItemCount(); got != 3 {
		t.Errorf("expected item count 3, got %d", got)
	}
}

func TestCartService_UpdateQuantity(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int
		wantLines int
		wantQty   int
	}{
		{name: "positive quantity", quantity: 5, wantLines: 1, wantQty: 5},
		{name: "zero removes line", quantity: 0, wantLines: 0},
		{name: "negative removes line", quantity: -1, wantLines: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestCartService()
			ctx := context.Background()

			if _, err := svc.AddItem(ctx, "cart-1", "1", 2); err != nil {
				t.Fatalf("add failed: %v", err)
			}

			cart, err := svc.UpdateQuantity(ctx, "cart-1", "1", tt.quantity)
			if err != nil {
				t.Fatalf("update failed: %v", err)
			}

			if len(cart.Lines) != tt.wantLines {
				t.Fatalf("expected %d lines, got %d", tt.wantLines, len(cart.Lines))
			}
			if tt.wantLines > 0 && cart.Lines[0].Quantity != tt.wantQty {
				t.Errorf("expected quantity %d, got %d", tt.wantQty, cart.Lines[0].Quantity)
			}
		})
	}
}

func TestCartService_UpdateQuantityUnknownLine(t *testing.T) {
	svc, _ := newTestCartService()

	_, err := svc.UpdateQuantity(context.Background(), "cart-1", "1", 3)
	if !errors.Is(err, domain.ErrCartLineNotFound) {
		t.Errorf("expected ErrCartLineNotFound, got %v", err)
	}
}

func TestCartService_RemoveItem(t *testing.T) {
	svc, _ := newTestCartService()
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "cart-1", "1", 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	cart, err := svc.RemoveItem(ctx, "cart-1", "1")
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(cart.Lines) != 0 {
		t.Errorf("expected empty cart, got %d lines", len(cart.Lines))
	}

	// Removing a product not in the cart is a no-op.
	cart, err = svc.RemoveItem(ctx, "cart-1", "2")
	if err != nil {
		t.Fatalf("remove of absent product failed: %v", err)
	}
	if len(cart.Lines) != 0 {
		t.Errorf("expected empty cart, got %d lines", len(cart.Lines))
	}
}

func TestCartService_ClearAndPersistence(t *testing.T) {
	svc, cartRepo := newTestCartService()
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "cart-1", "1", 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// A fresh read returns the stored snapshot.
	cart, err := svc.Get(ctx, "cart-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if cart.ItemCount() != 2 {
		t.Errorf("expected stored item count 2, got %d", cart.ItemCount())
	}

	if err := svc.Clear(ctx, "cart-1"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	cart, err = svc.Get(ctx, "cart-1")
	if err != nil {
		t.Fatalf("get after clear failed: %v", err)
	}
	if len(cart.Lines) != 0 {
		t.Errorf("expected empty cart after clear, got %d lines", len(cart.Lines))
	}
	if _, ok := cartRepo.carts["cart-1"]; ok {
		t.Error("expected durable record dropped after clear")
	}
}
