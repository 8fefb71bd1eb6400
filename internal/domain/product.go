// Package domain contains the core business entities for the Doce Delícia storefront.
package domain

// Product is a catalog entry. Products are loaded once from a static
// source at startup and are immutable for the lifetime of the process.
type Product struct {
	// ID is the unique product identifier.
	ID string `json:"id"`

	// Name is the product display name.
	Name string `json:"name"`

	// Description is the short marketing description.
	Description string `json:"description"`

	// Price is the unit price in BRL. Always non-negative.
	Price float64 `json:"price"`

	// Category is a free-form tag used to group products ("classic",
	// "gourmet", "seasonal", ...).
	Category string `json:"category"`

	// Image is a URL or asset reference for the product photo.
	Image string `json:"image"`
}

// AllCategory is the synthetic category matching every product.
const AllCategory = "all"
