package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/docedelicia/storefront/internal/domain"
	"github.com/docedelicia/storefront/internal/repository"
)

// orderRepository implements repository.OrderRepository for PostgreSQL.
// Only the order history has a PostgreSQL implementation; users, sessions
// and carts always live in the embedded store.
type orderRepository struct {
	db *DB
}

// NewOrderRepository creates a new PostgreSQL order repository.
func NewOrderRepository(db *DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

// Create persists a new order with its items.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	address, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, user_id, user_name, created_at, status, total,
			shipping_address, customer_name, customer_cpf, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		order.ID,
		order.UserID,
		order.UserName,
		order.CreatedAt,
		string(order.Status),
		order.Total,
		string(address),
		order.CustomerInfo.Name,
		order.CustomerInfo.CPF,
		order.PaymentMethod,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	for i, item := range order.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, position, product_id, name, price, image, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			order.ID, i, item.ProductID, item.Name, item.Price, item.Image, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

const orderColumns = `id, user_id, user_name, created_at, status, total,
	shipping_address, customer_name, customer_cpf, payment_method`

// GetByID retrieves an order with its items.
func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if err := r.loadItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}

	return order, nil
}

// ListByUserID returns all orders owned by the user, newest first.
func (r *orderRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

// ListAll returns every order regardless of owner, newest first.
func (r *orderRepository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	return r.list(ctx, query)
}

// UpdateStatus overwrites the status of the matching order.
func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE orders SET status = $1 WHERE id = $2`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CountByStatus returns the order count and sales total per status.
func (r *orderRepository) CountByStatus(ctx context.Context) (map[domain.OrderStatus]repository.StatusCount, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT status, COUNT(*), COALESCE(SUM(total), 0) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.OrderStatus]repository.StatusCount)
	for rows.Next() {
		var status string
		var count repository.StatusCount
		if err := rows.Scan(&status, &count.Orders, &count.Sales); err != nil {
			return nil, fmt.Errorf("failed to scan order count: %w", err)
		}
		counts[domain.OrderStatus(status)] = count
	}

	return counts, rows.Err()
}

func (r *orderRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Order, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// rowScanner abstracts pgx.Row and pgx.Rows for order scanning.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	var status, address string

	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.UserName,
		&order.CreatedAt,
		&status,
		&order.Total,
		&address,
		&order.CustomerInfo.Name,
		&order.CustomerInfo.CPF,
		&order.PaymentMethod,
	)
	if err != nil {
		return nil, err
	}

	order.Status = domain.OrderStatus(status)
	if err := json.Unmarshal([]byte(address), &order.ShippingAddress); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shipping address: %w", err)
	}

	return order, nil
}

// loadItems fills in the line items for each order.
func (r *orderRepository) loadItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT order_id, product_id, name, price, image, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position ASC
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var item domain.OrderItem
		if err := rows.Scan(&orderID, &item.ProductID, &item.Name, &item.Price, &item.Image, &item.Quantity); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if order, ok := byID[orderID]; ok {
			order.Items = append(order.Items, item)
		}
	}

	return rows.Err()
}
