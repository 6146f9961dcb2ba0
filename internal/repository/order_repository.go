package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commerce-platform/order-edit-service/internal/models"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts an ingested order with its items and shipping methods
// in one transaction. Ingestion is idempotent on the order id: a
// duplicate ingest of the same order is a no-op.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order, items []models.OrderItem, shipping []models.ShippingMethod) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`INSERT INTO orders (id, display_id, currency, status, version, customer_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO NOTHING`,
		order.ID, order.DisplayID, order.Currency, order.Status, order.Version,
		order.CustomerID, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil
	}

	for _, item := range items {
		_, err := tx.Exec(ctx,
			`INSERT INTO order_items (id, order_id, variant_id, sku, title, quantity, unit_price_cents, currency, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			item.ID, item.OrderID, item.VariantID, item.SKU, item.Title,
			item.Quantity, item.UnitPriceCents, item.Currency, item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	for _, method := range shipping {
		_, err := tx.Exec(ctx,
			`INSERT INTO order_shipping_methods (id, order_id, shipping_option_id, name, amount_cents, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			method.ID, method.OrderID, method.ShippingOptionID, method.Name,
			method.AmountCents, method.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create shipping method: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	var completedAt *time.Time

	err := r.pool.QueryRow(ctx,
		`SELECT id, display_id, currency, status, version, customer_id, created_at, updated_at, completed_at
		 FROM orders WHERE id = $1`,
		id,
	).Scan(
		&order.ID, &order.DisplayID, &order.Currency, &order.Status, &order.Version,
		&order.CustomerID, &order.CreatedAt, &order.UpdatedAt, &completedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NewNotFoundError("order")
		}
		return nil, err
	}

	order.CompletedAt = completedAt
	return &order, nil
}

func (r *OrderRepository) GetItemsByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, order_id, variant_id, sku, title, quantity, unit_price_cents, currency, created_at
		 FROM order_items WHERE order_id = $1 ORDER BY created_at, id`,
		orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.VariantID, &item.SKU, &item.Title,
			&item.Quantity, &item.UnitPriceCents, &item.Currency, &item.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *OrderRepository) GetShippingByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.ShippingMethod, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, order_id, shipping_option_id, name, amount_cents, created_at
		 FROM order_shipping_methods WHERE order_id = $1 ORDER BY created_at, id`,
		orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var methods []models.ShippingMethod
	for rows.Next() {
		var method models.ShippingMethod
		err := rows.Scan(
			&method.ID, &method.OrderID, &method.ShippingOptionID, &method.Name,
			&method.AmountCents, &method.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		methods = append(methods, method)
	}

	return methods, rows.Err()
}
