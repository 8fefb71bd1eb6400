package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/docedelicia/storefront/internal/domain"
	"github.com/docedelicia/storefront/internal/repository"
)

// cartRepository implements repository.CartRepository for SQLite.
// Every save rewrites the full cart snapshot in one transaction, matching
// the synchronous re-persist contract of the cart store.
type cartRepository struct {
	db *DB
}

// NewCartRepository creates a new SQLite cart repository.
func NewCartRepository(db *DB) repository.CartRepository {
	return &cartRepository{db: db}
}

// Get retrieves the cart for the given id. A missing cart is returned
// as an empty cart, not an error.
func (r *cartRepository) Get(ctx context.Context, cartID string) (*domain.Cart, error) {
	query := `
		SELECT product_id, name, price, image, quantity
		FROM cart_lines
		WHERE cart_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	defer rows.Close()

	cart := &domain.Cart{ID: cartID}
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ProductID, &line.Name, &line.Price, &line.Image, &line.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		cart.Lines = append(cart.Lines, line)
	}

	return cart, rows.Err()
}

// Save replaces the stored snapshot for the cart.
func (r *cartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_lines WHERE cart_id = ?`, cart.ID); err != nil {
			return fmt.Errorf("failed to clear cart snapshot: %w", err)
		}

		for i, line := range cart.Lines {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO cart_lines (cart_id, position, product_id, name, price, image, quantity)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`,
				cart.ID, i, line.ProductID, line.Name, line.Price, line.Image, line.Quantity,
			)
			if err != nil {
				return fmt.Errorf("failed to save cart line: %w", err)
			}
		}

		return nil
	})
}

// Delete removes the cart's durable record entirely.
func (r *cartRepository) Delete(ctx context.Context, cartID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE cart_id = ?`, cartID)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

var _ repository.CartRepository = (*cartRepository)(nil)
