package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/docedelicia/storefront/internal/domain"
	"github.com/docedelicia/storefront/internal/repository"
)

// orderTimeLayout is RFC 3339 with fixed-width fractional seconds.
// created_at is a TEXT column sorted lexically, so the stored form must
// be zero padded: RFC3339Nano trims trailing zeros and "00.5Z" would
// sort after "00.51Z". Timestamps are stored in UTC for the same reason.
const orderTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// orderRepository implements repository.OrderRepository for SQLite.
type orderRepository struct {
	db *DB
}

// NewOrderRepository creates a new SQLite order repository.
func NewOrderRepository(db *DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

// Create persists a new order with its items.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	address, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders (id, user_id, user_name, created_at, status, total,
				shipping_address, customer_name, customer_cpf, payment_method)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			order.ID,
			order.UserID,
			order.UserName,
			order.CreatedAt.UTC().Format(orderTimeLayout),
			string(order.Status),
			order.Total,
			string(address),
			order.CustomerInfo.Name,
			order.CustomerInfo.CPF,
			order.PaymentMethod,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: order '%s'", repository.ErrDuplicate, order.ID)
			}
			return fmt.Errorf("failed to create order: %w", err)
		}

		for i, item := range order.Items {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (order_id, position, product_id, name, price, image, quantity)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`,
				order.ID, i, item.ProductID, item.Name, item.Price, item.Image, item.Quantity,
			)
			if err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
		}

		return nil
	})
}

const orderColumns = `id, user_id, user_name, created_at, status, total,
	shipping_address, customer_name, customer_cpf, payment_method`

// GetByID retrieves an order with its items.
func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`

	order, err := r.scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
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
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = ? ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

// ListAll returns every order regardless of owner, newest first.
func (r *orderRepository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	return r.list(ctx, query)
}

// UpdateStatus overwrites the status of the matching order.
func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = ? WHERE id = ?`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// CountByStatus returns the order count and sales total per status.
func (r *orderRepository) CountByStatus(ctx context.Context) (map[domain.OrderStatus]repository.StatusCount, error) {
	rows, err := r.db.QueryContext(ctx,
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
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
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

func (r *orderRepository) scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	var createdAt, status, address string

	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.UserName,
		&createdAt,
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
	order.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
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
	placeholders := make([]byte, 0, 2*len(orders))
	args := make([]interface{}, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		if len(placeholders) > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args = append(args, o.ID)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product_id, name, price, image, quantity
		FROM order_items
		WHERE order_id IN (`+string(placeholders)+`)
		ORDER BY order_id, position ASC
	`, args...)
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
