package domain

import "testing"

func testCart() *Cart {
	return &Cart{
		ID: "cart-1",
		Lines: []CartLine{
			{ProductID: "1", Price: 10.00, Quantity: 2},
			{ProductID: "2", Price: 12.00, Quantity: 1},
		},
	}
}

func TestCartTotals(t *testing.T) {
	cart := testCart()

	if got := cart.Total(); got != 32.00 {
		t.Errorf("expected total 32.00, got %.2f", got)
	}
	if got := cart.ItemCount(); got != 3 {
		t.Errorf("expected item count 3, got %d", got)
	}

	empty := &Cart{ID: "empty"}
	if empty.Total() != 0 || empty.ItemCount() != 0 {
		t.Error("expected zero totals for empty cart")
	}
}

func TestCartFind(t *testing.T) {
	cart := testCart()

	if i := cart.Find("2"); i != 1 {
		t.Errorf("expected index 1, got %d", i)
	}
	if i := cart.Find("missing"); i != -1 {
		t.Errorf("expected -1 for unknown product, got %d", i)
	}
}

func TestUserDisplayName(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{name: "Ana", email: "ana@example.com", want: "Ana"},
		{name: "", email: "ana@example.com", want: "ana"},
		{name: "", email: "no-at-sign", want: "no-at-sign"},
	}

	for _, tt := range tests {
		u := &User{Name: tt.name, Email: tt.email}
		if got := u.DisplayName(); got != tt.want {
			t.Errorf("DisplayName(%q, %q) = %q, want %q", tt.name, tt.email, got, tt.want)
		}
	}
}
