package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/commerce-platform/order-edit-service/internal/models"
)

// SessionService owns the start/request/confirm/cancel lifecycle of
// change sessions and enforces the single-active-session invariant.
type SessionService struct {
	orders    OrderStore
	sessions  SessionStore
	exchanges ExchangeStore
	events    EventPublisher
	logger    *zap.Logger
}

func NewSessionService(orders OrderStore, sessions SessionStore, exchanges ExchangeStore, events EventPublisher, logger *zap.Logger) *SessionService {
	return &SessionService{
		orders:    orders,
		sessions:  sessions,
		exchanges: exchanges,
		events:    events,
		logger:    logger,
	}
}

// Start opens a change session against an order. Fails with a conflict
// when a non-terminal session of any kind already exists for the order:
// a second concurrent session is a protocol error, and the caller is
// expected to re-discover the active session instead.
func (s *SessionService) Start(ctx context.Context, orderID uuid.UUID, kind models.SessionKind) (*models.ChangeSession, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if kind == models.SessionKindDraftEdit && order.Status != models.OrderStatusDraft {
		return nil, models.NewValidationError("kind", "draft edits apply to draft orders only")
	}

	active, err := s.sessions.ListActiveByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(active) > 0 {
		return nil, models.NewConflictError("an active change session already exists for this order")
	}

	session := &models.ChangeSession{
		ID:           uuid.New(),
		OrderID:      orderID,
		Kind:         kind,
		Status:       models.SessionStatusPending,
		OrderVersion: order.Version,
		CreatedAt:    time.Now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("change session started",
		zap.String("session_id", session.ID.String()),
		zap.String("order_id", orderID.String()),
		zap.String("kind", string(kind)),
	)
	return session, nil
}

// FindActive returns the single non-terminal session for an order, or
// nil when there is none. This is a query, not cached state: callers
// that lost their session id across reloads re-discover it here. More
// than one active session is a data-integrity violation and is surfaced,
// not silently resolved.
func (s *SessionService) FindActive(ctx context.Context, orderID uuid.UUID, kinds ...models.SessionKind) (*models.ChangeSession, error) {
	active, err := s.sessions.ListActiveByOrder(ctx, orderID, kinds...)
	if err != nil {
		return nil, err
	}
	switch len(active) {
	case 0:
		return nil, nil
	case 1:
		return &active[0], nil
	default:
		return nil, models.NewInternalError(
			fmt.Errorf("order %s has %d active change sessions", orderID, len(active)))
	}
}

// ListChanges returns every session for an order, newest first
func (s *SessionService) ListChanges(ctx context.Context, orderID uuid.UUID) ([]models.ChangeSession, error) {
	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return s.sessions.ListByOrder(ctx, orderID)
}

// Request freezes the session for review and returns a fresh preview
func (s *SessionService) Request(ctx context.Context, sessionID uuid.UUID) (*models.Preview, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status.Terminal() {
		return nil, models.NewNotApplicableError("session already resolved")
	}
	if session.Status == models.SessionStatusPending {
		if err := s.sessions.MarkRequested(ctx, sessionID, time.Now()); err != nil {
			return nil, err
		}
	}
	return buildSessionPreview(ctx, s.orders, s.sessions, session)
}

// Confirm atomically applies the session's actions to the order. The
// committed order ends up exactly as the preview last showed it. The
// order version captured at start is rechecked inside the transaction;
// a concurrent change fails the confirm with a conflict. Irreversible.
func (s *SessionService) Confirm(ctx context.Context, sessionID uuid.UUID) (*models.Preview, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status.Terminal() {
		return nil, models.NewNotApplicableError("session already resolved")
	}

	preview, err := buildSessionPreview(ctx, s.orders, s.sessions, session)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	items := make([]models.OrderItem, len(preview.Items))
	for i, line := range preview.Items {
		items[i] = models.OrderItem{
			ID:             line.LineItemID,
			OrderID:        session.OrderID,
			VariantID:      line.VariantID,
			SKU:            line.SKU,
			Title:          line.Title,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
			Currency:       preview.Currency,
			CreatedAt:      now,
		}
	}
	shipping := make([]models.ShippingMethod, len(preview.ShippingMethods))
	for i, method := range preview.ShippingMethods {
		shipping[i] = models.ShippingMethod{
			ID:               method.ShippingMethodID,
			OrderID:          session.OrderID,
			ShippingOptionID: method.ShippingOptionID,
			Name:             method.Name,
			AmountCents:      method.AmountCents,
			CreatedAt:        now,
		}
	}

	if err := s.sessions.Confirm(ctx, session, items, shipping, now); err != nil {
		return nil, err
	}

	// An exchange session's confirm resolves the exchange itself; the
	// record must follow so the cancel paths see it as terminal.
	if session.Kind == models.SessionKindExchange {
		ex, err := s.exchanges.GetBySessionID(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		if err := s.exchanges.UpdateStatus(ctx, ex.ID, models.ExchangeStatusConfirmed, now); err != nil {
			return nil, err
		}
	}

	event := models.EditConfirmedEvent{
		EventID:      uuid.New(),
		Type:         models.EventTypeEditConfirmed,
		SessionID:    session.ID,
		OrderID:      session.OrderID,
		Kind:         string(session.Kind),
		OrderVersion: session.OrderVersion + 1,
		TotalCents:   preview.TotalCents,
		Currency:     preview.Currency,
		CreatedAt:    now,
	}
	if err := s.events.PublishEditConfirmed(ctx, event); err != nil {
		s.logger.Warn("failed to publish edit confirmed event",
			zap.String("session_id", session.ID.String()), zap.Error(err))
	}

	return preview, nil
}

// Cancel discards the session and all its actions, leaving the order
// untouched. Irreversible.
func (s *SessionService) Cancel(ctx context.Context, sessionID uuid.UUID, decline bool) error {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Status.Terminal() {
		return models.NewNotApplicableError("session already resolved")
	}
	status := models.SessionStatusCanceled
	if decline {
		status = models.SessionStatusDeclined
	}
	return s.sessions.MarkCanceled(ctx, sessionID, status, time.Now())
}

// GetPreview derives the preview for an order's active session, or of
// the committed order as-is when no session is open.
func (s *SessionService) GetPreview(ctx context.Context, orderID uuid.UUID) (*models.Preview, error) {
	session, err := s.FindActive(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if session != nil {
		return buildSessionPreview(ctx, s.orders, s.sessions, session)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.orders.GetItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	shipping, err := s.orders.GetShippingByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return BuildPreview(order, items, shipping, nil), nil
}
