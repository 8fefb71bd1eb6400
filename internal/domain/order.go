// Package domain contains the core business entities for the Doce Delícia storefront.
package domain

import (
	"time"
)

// OrderStatus is the fulfillment stage of an order.
type OrderStatus string

// Order statuses. The intended progression is
// Received -> Preparing -> Shipped -> Delivered, with Cancelled
// reachable from Received or Preparing. Delivered and Cancelled are
// terminal.
const (
	StatusReceived  OrderStatus = "Received"
	StatusPreparing OrderStatus = "Preparing"
	StatusShipped   OrderStatus = "Shipped"
	StatusDelivered OrderStatus = "Delivered"
	StatusCancelled OrderStatus = "Cancelled"
)

// AllStatuses lists every order status in board order.
var AllStatuses = []OrderStatus{
	StatusReceived,
	StatusPreparing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusReceived, StatusPreparing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is expected from s.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether moving from s to next follows the
// enumerated state machine. Admin callers may bypass this check when
// transition enforcement is disabled (the default, matching the
// drag-anywhere dashboard board).
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case StatusReceived:
		return next == StatusPreparing || next == StatusCancelled
	case StatusPreparing:
		return next == StatusShipped || next == StatusCancelled
	case StatusShipped:
		return next == StatusDelivered
	}
	return false
}

// Payment method tags recorded on an order. Payment itself is simulated;
// the tag is informational only.
const (
	PaymentPix        = "pix"
	PaymentCreditCard = "credit_card"
	PaymentBoleto     = "boleto"
)

// CustomerInfo is the purchaser snapshot recorded on an order.
type CustomerInfo struct {
	// Name is the purchaser name as entered at checkout.
	Name string `json:"name"`

	// CPF is the purchaser national id as entered at checkout.
	CPF string `json:"cpf,omitempty"`
}

// OrderItem is a line item copied from the cart at checkout time.
// It carries the same product snapshot as a cart line and is immutable
// once the order is created.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
}

// Subtotal returns price times quantity for this item.
func (i OrderItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Order is a placed purchase. Only the Status field may change after
// creation; items, total and all snapshots are frozen at checkout.
type Order struct {
	// ID is the unique, time-based order identifier ("ORD-...").
	ID string `json:"id"`

	// UserID is the id of the purchasing user.
	UserID string `json:"user_id"`

	// UserName is the purchaser display name, denormalized so order
	// listings do not need a registry lookup.
	UserName string `json:"user_name"`

	// CreatedAt is the checkout timestamp.
	CreatedAt time.Time `json:"created_at"`

	// Status is the current fulfillment stage.
	Status OrderStatus `json:"status"`

	// Items are the purchased line items, copied from the cart.
	Items []OrderItem `json:"items"`

	// Total is the order total at creation time.
	// Invariant: Total equals the sum of item subtotals.
	Total float64 `json:"total"`

	// ShippingAddress is the delivery address snapshot.
	ShippingAddress Address `json:"shipping_address"`

	// CustomerInfo is the purchaser snapshot.
	CustomerInfo CustomerInfo `json:"customer_info"`

	// PaymentMethod is the recorded payment tag (pix, credit_card, boleto).
	PaymentMethod string `json:"payment_method"`
}

// ItemsTotal recomputes the sum of item subtotals.
func (o *Order) ItemsTotal() float64 {
	var total float64
	for _, it := range o.Items {
		total += it.Subtotal()
	}
	return total
}
