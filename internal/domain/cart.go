// Package domain contains the core business entities for the Doce Delícia storefront.
package domain

// CartLine is a single line in a shopping cart: a product reference plus
// a denormalized snapshot of the product fields taken at the time the
// item was added, so later catalog changes never reprice an open cart.
//
// Invariant: a cart holds at most one line per product id. Adding the
// same product again increments the quantity instead of duplicating
// the line.
type CartLine struct {
	// ProductID references the catalog product.
	ProductID string `json:"product_id"`

	// Name is the product name snapshot.
	Name string `json:"name"`

	// Price is the unit price snapshot.
	Price float64 `json:"price"`

	// Image is the product image snapshot.
	Image string `json:"image"`

	// Quantity is the number of units. Always >= 1 for a stored line;
	// a quantity update to zero or below removes the line instead.
	Quantity int `json:"quantity"`
}

// Subtotal returns price times quantity for this line.
func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

// Cart is an ordered list of cart lines belonging to one shopper.
type Cart struct {
	// ID scopes the cart: the user id for authenticated shoppers, or a
	// guest token before login.
	ID string `json:"id"`

	// Lines are the cart lines in insertion order.
	Lines []CartLine `json:"lines"`
}

// Total returns the sum of price times quantity over all lines.
func (c *Cart) Total() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.Subtotal()
	}
	return total
}

// ItemCount returns the sum of quantities over all lines.
func (c *Cart) ItemCount() int {
	var count int
	for _, l := range c.Lines {
		count += l.Quantity
	}
	return count
}

// Find returns the index of the line for the given product id, or -1.
func (c *Cart) Find(productID string) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}
