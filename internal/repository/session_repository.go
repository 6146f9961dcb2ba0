package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commerce-platform/order-edit-service/internal/models"
)

// uniqueViolation is the Postgres error code raised by the partial
// unique index when a second non-terminal session is inserted for an
// order. The index is the backstop behind the session manager's own
// conflict check.
const uniqueViolation = "23505"

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, session *models.ChangeSession) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO change_sessions (id, order_id, kind, status, order_version, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		session.ID, session.OrderID, session.Kind, session.Status,
		session.OrderVersion, session.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return models.NewConflictError("an active change session already exists for this order")
	}
	return err
}

func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ChangeSession, error) {
	var session models.ChangeSession
	var requestedAt, confirmedAt, canceledAt *time.Time

	err := r.pool.QueryRow(ctx,
		`SELECT id, order_id, kind, status, order_version, created_at, requested_at, confirmed_at, canceled_at
		 FROM change_sessions WHERE id = $1`,
		id,
	).Scan(
		&session.ID, &session.OrderID, &session.Kind, &session.Status,
		&session.OrderVersion, &session.CreatedAt, &requestedAt, &confirmedAt, &canceledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NewNotFoundError("change session")
		}
		return nil, err
	}

	session.RequestedAt = requestedAt
	session.ConfirmedAt = confirmedAt
	session.CanceledAt = canceledAt

	session.Actions, err = r.GetActions(ctx, id)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ListActiveByOrder returns the non-terminal sessions for an order,
// optionally filtered by kind. The caller treats more than one result
// as a data-integrity error.
func (r *SessionRepository) ListActiveByOrder(ctx context.Context, orderID uuid.UUID, kinds ...models.SessionKind) ([]models.ChangeSession, error) {
	query := `SELECT id, order_id, kind, status, order_version, created_at, requested_at, confirmed_at, canceled_at
	          FROM change_sessions
	          WHERE order_id = $1 AND status IN ('PENDING', 'REQUESTED')`
	args := []interface{}{orderID}
	if len(kinds) > 0 {
		query += ` AND kind = ANY($2)`
		kindStrs := make([]string, len(kinds))
		for i, k := range kinds {
			kindStrs[i] = string(k)
		}
		args = append(args, kindStrs)
	}
	query += ` ORDER BY created_at`

	sessions, err := r.querySessions(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		sessions[i].Actions, err = r.GetActions(ctx, sessions[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

// ListByOrder returns every session for an order, newest first, with
// actions loaded. Used for session discovery across client reloads.
func (r *SessionRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.ChangeSession, error) {
	sessions, err := r.querySessions(ctx,
		`SELECT id, order_id, kind, status, order_version, created_at, requested_at, confirmed_at, canceled_at
		 FROM change_sessions WHERE order_id = $1 ORDER BY created_at DESC`,
		orderID,
	)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		sessions[i].Actions, err = r.GetActions(ctx, sessions[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

func (r *SessionRepository) querySessions(ctx context.Context, query string, args ...interface{}) ([]models.ChangeSession, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.ChangeSession
	for rows.Next() {
		var session models.ChangeSession
		var requestedAt, confirmedAt, canceledAt *time.Time
		err := rows.Scan(
			&session.ID, &session.OrderID, &session.Kind, &session.Status,
			&session.OrderVersion, &session.CreatedAt, &requestedAt, &confirmedAt, &canceledAt,
		)
		if err != nil {
			return nil, err
		}
		session.RequestedAt = requestedAt
		session.ConfirmedAt = confirmedAt
		session.CanceledAt = canceledAt
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// The Mark* updates are conditional on the current status so a session
// that already reached a terminal state can never be transitioned again,
// no matter which workflow issues the write.

func (r *SessionRepository) MarkRequested(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE change_sessions SET status = $1, requested_at = $2
		 WHERE id = $3 AND status = $4`,
		models.SessionStatusRequested, at, id, models.SessionStatusPending,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotApplicableError("session is not pending")
	}
	return nil
}

// MarkConfirmed finalizes a session without touching the order. Used by
// the return workflow, whose receipt confirmation has no order-line
// changes to apply.
func (r *SessionRepository) MarkConfirmed(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE change_sessions SET status = $1, confirmed_at = $2
		 WHERE id = $3 AND status IN ('PENDING', 'REQUESTED')`,
		models.SessionStatusConfirmed, at, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotApplicableError("session already resolved")
	}
	return nil
}

func (r *SessionRepository) MarkCanceled(ctx context.Context, id uuid.UUID, status models.SessionStatus, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE change_sessions SET status = $1, canceled_at = $2
		 WHERE id = $3 AND status IN ('PENDING', 'REQUESTED')`,
		status, at, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotApplicableError("session already resolved")
	}
	return nil
}

func (r *SessionRepository) GetActions(ctx context.Context, sessionID uuid.UUID) ([]models.Action, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, kind, reference_id, variant_id, sku, title, shipping_option_id,
		        quantity, unit_price_cents, custom_amount_cents, promotion_code, internal_note,
		        exchange_id, return_id, ordering, created_at
		 FROM session_actions WHERE session_id = $1 ORDER BY ordering`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []models.Action
	for rows.Next() {
		var action models.Action
		err := rows.Scan(
			&action.ID, &action.SessionID, &action.Kind, &action.ReferenceID,
			&action.VariantID, &action.SKU, &action.Title, &action.ShippingOptionID,
			&action.Quantity, &action.UnitPriceCents, &action.CustomAmountCents,
			&action.PromotionCode, &action.InternalNote,
			&action.ExchangeID, &action.ReturnID, &action.Ordering, &action.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}

	return actions, rows.Err()
}

// AppendAction inserts an action with the next ordering value for its
// session. Ordering is what makes the ledger replayable.
func (r *SessionRepository) AppendAction(ctx context.Context, action *models.Action) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO session_actions
		   (id, session_id, kind, reference_id, variant_id, sku, title, shipping_option_id,
		    quantity, unit_price_cents, custom_amount_cents, promotion_code, internal_note,
		    exchange_id, return_id, ordering, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		   (SELECT COALESCE(MAX(ordering), 0) + 1 FROM session_actions WHERE session_id = $2), $16)
		 RETURNING ordering`,
		action.ID, action.SessionID, action.Kind, action.ReferenceID,
		action.VariantID, action.SKU, action.Title, action.ShippingOptionID,
		action.Quantity, action.UnitPriceCents, action.CustomAmountCents,
		action.PromotionCode, action.InternalNote,
		action.ExchangeID, action.ReturnID, action.CreatedAt,
	).Scan(&action.Ordering)
	if err != nil {
		return fmt.Errorf("failed to append action: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetAction(ctx context.Context, actionID uuid.UUID) (*models.Action, error) {
	var action models.Action
	err := r.pool.QueryRow(ctx,
		`SELECT id, session_id, kind, reference_id, variant_id, sku, title, shipping_option_id,
		        quantity, unit_price_cents, custom_amount_cents, promotion_code, internal_note,
		        exchange_id, return_id, ordering, created_at
		 FROM session_actions WHERE id = $1`,
		actionID,
	).Scan(
		&action.ID, &action.SessionID, &action.Kind, &action.ReferenceID,
		&action.VariantID, &action.SKU, &action.Title, &action.ShippingOptionID,
		&action.Quantity, &action.UnitPriceCents, &action.CustomAmountCents,
		&action.PromotionCode, &action.InternalNote,
		&action.ExchangeID, &action.ReturnID, &action.Ordering, &action.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NewNotFoundError("action")
		}
		return nil, err
	}
	return &action, nil
}

func (r *SessionRepository) UpdateAction(ctx context.Context, action *models.Action) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE session_actions
		 SET reference_id = $1, quantity = $2, unit_price_cents = $3, custom_amount_cents = $4, internal_note = $5
		 WHERE id = $6`,
		action.ReferenceID, action.Quantity, action.UnitPriceCents,
		action.CustomAmountCents, action.InternalNote, action.ID,
	)
	return err
}

func (r *SessionRepository) DeleteAction(ctx context.Context, actionID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM session_actions WHERE id = $1`, actionID)
	return err
}

// Confirm applies a session atomically: the order's items and shipping
// methods are replaced by the preview's lines, the order version is
// bumped, and the session is marked confirmed. The order row is locked
// and its version rechecked inside the transaction; a mismatch means
// the order changed since the session started and nothing is applied.
func (r *SessionRepository) Confirm(ctx context.Context, session *models.ChangeSession, items []models.OrderItem, shipping []models.ShippingMethod, confirmedAt time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var currentVersion int64
	err = tx.QueryRow(ctx,
		`SELECT version FROM orders WHERE id = $1 FOR UPDATE`,
		session.OrderID,
	).Scan(&currentVersion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.NewNotFoundError("order")
		}
		return err
	}
	if currentVersion != session.OrderVersion {
		return models.NewConflictError("order changed since the session started")
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, session.OrderID); err != nil {
		return fmt.Errorf("failed to clear order items: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM order_shipping_methods WHERE order_id = $1`, session.OrderID); err != nil {
		return fmt.Errorf("failed to clear shipping methods: %w", err)
	}

	for _, item := range items {
		_, err := tx.Exec(ctx,
			`INSERT INTO order_items (id, order_id, variant_id, sku, title, quantity, unit_price_cents, currency, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			item.ID, item.OrderID, item.VariantID, item.SKU, item.Title,
			item.Quantity, item.UnitPriceCents, item.Currency, item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to write order item: %w", err)
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
			return fmt.Errorf("failed to write shipping method: %w", err)
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE orders SET version = version + 1, updated_at = $1 WHERE id = $2`,
		confirmedAt, session.OrderID,
	); err != nil {
		return fmt.Errorf("failed to bump order version: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE change_sessions SET status = $1, confirmed_at = $2
		 WHERE id = $3 AND status IN ('PENDING', 'REQUESTED')`,
		models.SessionStatusConfirmed, confirmedAt, session.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark session confirmed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotApplicableError("session already resolved")
	}

	return tx.Commit(ctx)
}
