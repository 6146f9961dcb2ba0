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

type ReturnRepository struct {
	pool *pgxpool.Pool
}

func NewReturnRepository(pool *pgxpool.Pool) *ReturnRepository {
	return &ReturnRepository{pool: pool}
}

func (r *ReturnRepository) Create(ctx context.Context, ret *models.Return) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO returns (id, order_id, session_id, exchange_id, status, location_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ret.ID, ret.OrderID, ret.SessionID, ret.ExchangeID, ret.Status,
		ret.LocationID, ret.CreatedAt, ret.UpdatedAt,
	)
	return err
}

func (r *ReturnRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Return, error) {
	ret, err := r.scanReturn(r.pool.QueryRow(ctx,
		`SELECT id, order_id, session_id, exchange_id, status, location_id, created_at, updated_at, canceled_at, received_at
		 FROM returns WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, err
	}
	ret.Items, err = r.getItems(ctx, ret.ID)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// GetByExchangeID finds the inbound return linked to an exchange.
// Returns a NotFound error when the exchange has no inbound leg yet.
func (r *ReturnRepository) GetByExchangeID(ctx context.Context, exchangeID uuid.UUID) (*models.Return, error) {
	ret, err := r.scanReturn(r.pool.QueryRow(ctx,
		`SELECT id, order_id, session_id, exchange_id, status, location_id, created_at, updated_at, canceled_at, received_at
		 FROM returns WHERE exchange_id = $1`,
		exchangeID,
	))
	if err != nil {
		return nil, err
	}
	ret.Items, err = r.getItems(ctx, ret.ID)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (r *ReturnRepository) scanReturn(row pgx.Row) (*models.Return, error) {
	var ret models.Return
	var canceledAt, receivedAt *time.Time
	err := row.Scan(
		&ret.ID, &ret.OrderID, &ret.SessionID, &ret.ExchangeID, &ret.Status,
		&ret.LocationID, &ret.CreatedAt, &ret.UpdatedAt, &canceledAt, &receivedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NewNotFoundError("return")
		}
		return nil, err
	}
	ret.CanceledAt = canceledAt
	ret.ReceivedAt = receivedAt
	return &ret, nil
}

func (r *ReturnRepository) getItems(ctx context.Context, returnID uuid.UUID) ([]models.ReturnItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT return_id, line_item_id, requested_quantity, received_quantity, reason_id, note
		 FROM return_items WHERE return_id = $1 ORDER BY line_item_id`,
		returnID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.ReturnItem
	for rows.Next() {
		var item models.ReturnItem
		err := rows.Scan(
			&item.ReturnID, &item.LineItemID, &item.RequestedQuantity,
			&item.ReceivedQuantity, &item.ReasonID, &item.Note,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// UpsertRequestedItems adds requested quantities to the return's lines,
// accumulating when a line is requested again.
func (r *ReturnRepository) UpsertRequestedItems(ctx context.Context, returnID uuid.UUID, items []models.ReturnItem) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, item := range items {
		_, err := tx.Exec(ctx,
			`INSERT INTO return_items (return_id, line_item_id, requested_quantity, received_quantity, reason_id, note)
			 VALUES ($1, $2, $3, 0, $4, $5)
			 ON CONFLICT (return_id, line_item_id) DO UPDATE
			 SET requested_quantity = return_items.requested_quantity + EXCLUDED.requested_quantity,
			     reason_id = EXCLUDED.reason_id,
			     note = EXCLUDED.note`,
			returnID, item.LineItemID, item.RequestedQuantity, item.ReasonID, item.Note,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert return item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// AddReceivedQuantities records physically received quantities. No cap
// against the requested quantities: physical reality may disagree with
// the request.
func (r *ReturnRepository) AddReceivedQuantities(ctx context.Context, returnID uuid.UUID, items []models.ReceiveItemsInput) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, item := range items {
		_, err := tx.Exec(ctx,
			`INSERT INTO return_items (return_id, line_item_id, requested_quantity, received_quantity, reason_id, note)
			 VALUES ($1, $2, 0, $3, '', '')
			 ON CONFLICT (return_id, line_item_id) DO UPDATE
			 SET received_quantity = return_items.received_quantity + EXCLUDED.received_quantity`,
			returnID, item.LineItemID, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to record received quantity: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *ReturnRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReturnStatus, at time.Time) error {
	query := `UPDATE returns SET status = $1, updated_at = $2 WHERE id = $3`
	switch status {
	case models.ReturnStatusCanceled:
		query = `UPDATE returns SET status = $1, updated_at = $2, canceled_at = $2 WHERE id = $3`
	case models.ReturnStatusReceived:
		query = `UPDATE returns SET status = $1, updated_at = $2, received_at = $2 WHERE id = $3`
	}
	_, err := r.pool.Exec(ctx, query, status, at, id)
	return err
}
