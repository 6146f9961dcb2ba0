package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commerce-platform/order-edit-service/internal/models"
)

type ExchangeRepository struct {
	pool *pgxpool.Pool
}

func NewExchangeRepository(pool *pgxpool.Pool) *ExchangeRepository {
	return &ExchangeRepository{pool: pool}
}

func (r *ExchangeRepository) Create(ctx context.Context, ex *models.Exchange) error {
	meta, err := json.Marshal(ex.TrackingMeta)
	if err != nil {
		return fmt.Errorf("failed to marshal tracking meta: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO exchanges (id, order_id, session_id, status, tracking_meta, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ex.ID, ex.OrderID, ex.SessionID, ex.Status, meta, ex.CreatedAt, ex.UpdatedAt,
	)
	return err
}

func (r *ExchangeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Exchange, error) {
	return r.getByColumn(ctx, "id", id)
}

// GetBySessionID resolves the exchange owning a change session. The
// session manager uses it to carry a confirm or cancel of the session
// through to the exchange record.
func (r *ExchangeRepository) GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*models.Exchange, error) {
	return r.getByColumn(ctx, "session_id", sessionID)
}

func (r *ExchangeRepository) getByColumn(ctx context.Context, column string, id uuid.UUID) (*models.Exchange, error) {
	var ex models.Exchange
	var meta []byte
	var canceledAt *time.Time

	err := r.pool.QueryRow(ctx,
		`SELECT id, order_id, session_id, status, tracking_meta, created_at, updated_at, canceled_at
		 FROM exchanges WHERE `+column+` = $1`,
		id,
	).Scan(
		&ex.ID, &ex.OrderID, &ex.SessionID, &ex.Status, &meta,
		&ex.CreatedAt, &ex.UpdatedAt, &canceledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NewNotFoundError("exchange")
		}
		return nil, err
	}

	ex.CanceledAt = canceledAt
	ex.TrackingMeta = map[string]string{}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &ex.TrackingMeta); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tracking meta: %w", err)
		}
	}
	return &ex, nil
}

func (r *ExchangeRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ExchangeStatus, at time.Time) error {
	query := `UPDATE exchanges SET status = $1, updated_at = $2 WHERE id = $3`
	if status == models.ExchangeStatusCanceled {
		query = `UPDATE exchanges SET status = $1, updated_at = $2, canceled_at = $2 WHERE id = $3`
	}
	_, err := r.pool.Exec(ctx, query, status, at, id)
	return err
}

func (r *ExchangeRepository) UpdateTrackingMeta(ctx context.Context, id uuid.UUID, meta map[string]string) error {
	encoded, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal tracking meta: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`UPDATE exchanges SET tracking_meta = $1, updated_at = $2 WHERE id = $3`,
		encoded, time.Now(), id,
	)
	return err
}
