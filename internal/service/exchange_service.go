package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/commerce-platform/order-edit-service/internal/models"
)

// ExchangeService coordinates one inbound return and an outbound item
// set under a single change session, with the two shipping legs
// resolved independently through their leg keys.
type ExchangeService struct {
	orders    OrderStore
	sessions  SessionStore
	returns   ReturnStore
	exchanges ExchangeStore
	manager   *SessionService
	edits     *EditService
	labels    LabelUploader
	logger    *zap.Logger
}

func NewExchangeService(orders OrderStore, sessions SessionStore, returns ReturnStore, exchanges ExchangeStore, manager *SessionService, edits *EditService, labels LabelUploader, logger *zap.Logger) *ExchangeService {
	return &ExchangeService{
		orders:    orders,
		sessions:  sessions,
		returns:   returns,
		exchanges: exchanges,
		manager:   manager,
		edits:     edits,
		labels:    labels,
		logger:    logger,
	}
}

// CreateExchange opens an exchange with its change session
func (s *ExchangeService) CreateExchange(ctx context.Context, orderID uuid.UUID) (*models.Exchange, error) {
	session, err := s.manager.Start(ctx, orderID, models.SessionKindExchange)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ex := &models.Exchange{
		ID:           uuid.New(),
		OrderID:      orderID,
		SessionID:    session.ID,
		Status:       models.ExchangeStatusPending,
		TrackingMeta: map[string]string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.exchanges.Create(ctx, ex); err != nil {
		return nil, err
	}

	s.logger.Info("exchange created",
		zap.String("exchange_id", ex.ID.String()),
		zap.String("order_id", orderID.String()),
	)
	return ex, nil
}

// Get returns an exchange by id
func (s *ExchangeService) Get(ctx context.Context, exchangeID uuid.UUID) (*models.Exchange, error) {
	return s.exchanges.GetByID(ctx, exchangeID)
}

func (s *ExchangeService) pendingExchange(ctx context.Context, exchangeID uuid.UUID) (*models.Exchange, error) {
	ex, err := s.exchanges.GetByID(ctx, exchangeID)
	if err != nil {
		return nil, err
	}
	if ex.Status != models.ExchangeStatusPending {
		return nil, models.NewNotApplicableError("exchange is not open for changes")
	}
	return ex, nil
}

// AddInboundItems creates or extends the linked inbound return. The
// return's id is not returned directly: it may not have existed before
// this call, so callers re-resolve it with ResolveExchangeReturnID.
func (s *ExchangeService) AddInboundItems(ctx context.Context, exchangeID uuid.UUID, locationID string, inputs []models.RequestItemsInput) (*models.Preview, error) {
	ex, err := s.pendingExchange(ctx, exchangeID)
	if err != nil {
		return nil, err
	}

	ret, err := s.returns.GetByExchangeID(ctx, exchangeID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		now := time.Now()
		ret = &models.Return{
			ID:         uuid.New(),
			OrderID:    ex.OrderID,
			SessionID:  ex.SessionID,
			ExchangeID: &ex.ID,
			Status:     models.ReturnStatusNone,
			LocationID: locationID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.returns.Create(ctx, ret); err != nil {
			return nil, err
		}
	}

	items, err := validateReturnRequest(ctx, s.orders, ret, inputs)
	if err != nil {
		return nil, err
	}
	if err := s.returns.UpsertRequestedItems(ctx, ret.ID, items); err != nil {
		return nil, err
	}
	if err := s.returns.UpdateStatus(ctx, ret.ID, models.ReturnStatusItemsRequested, time.Now()); err != nil {
		return nil, err
	}

	return s.preview(ctx, ex)
}

// ResolveExchangeReturnID discovers the inbound return linked to an
// exchange by scanning for a matching exchange id. Nil when the
// exchange has no inbound leg yet.
func (s *ExchangeService) ResolveExchangeReturnID(ctx context.Context, exchangeID uuid.UUID) (*uuid.UUID, error) {
	ret, err := s.returns.GetByExchangeID(ctx, exchangeID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ret.ID, nil
}

// AddOutboundItems stages replacement items to ship. Out-of-stock
// variants are rejected unless backorder is allowed.
func (s *ExchangeService) AddOutboundItems(ctx context.Context, exchangeID uuid.UUID, inputs []models.OutboundItemInput) (*models.Preview, error) {
	if len(inputs) == 0 {
		return nil, models.NewValidationError("items", "at least one item required")
	}
	ex, err := s.pendingExchange(ctx, exchangeID)
	if err != nil {
		return nil, err
	}

	session, err := s.edits.openSession(ctx, ex.SessionID)
	if err != nil {
		return nil, err
	}

	for _, in := range inputs {
		if in.Quantity <= 0 {
			return nil, models.NewValidationError("quantity", "must be a positive integer")
		}
		variant, err := s.edits.variants.GetVariant(ctx, in.VariantID)
		if err != nil {
			return nil, err
		}
		if !variant.InStock && !in.AllowBackorder {
			return nil, models.NewValidationError("variant_id", "variant is out of stock")
		}
		if _, err := s.edits.addVariantItem(ctx, session, variant, in.Quantity, in.UnitPriceCents); err != nil {
			return nil, err
		}
	}

	return s.preview(ctx, ex)
}

// SetInboundShipping stages the return leg's shipping method.
// Idempotent by replace: a different option deletes and recreates the
// action; the same option only patches the amount and metadata, so
// repeated edits never accumulate duplicate shipping actions.
func (s *ExchangeService) SetInboundShipping(ctx context.Context, exchangeID uuid.UUID, shippingOptionID string, customAmountCents *int64, meta *models.TrackingMeta) (*models.Preview, error) {
	ex, err := s.pendingExchange(ctx, exchangeID)
	if err != nil {
		return nil, err
	}
	ret, err := s.returns.GetByExchangeID(ctx, exchangeID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.NewValidationError("exchange", "inbound shipping requires inbound items")
		}
		return nil, err
	}

	if err := s.setLegShipping(ctx, ex, models.LegInbound, shippingOptionID, customAmountCents, &ret.ID); err != nil {
		return nil, err
	}

	if meta != nil {
		merged := models.MergeTracking(ex.TrackingMeta, *meta)
		if err := s.exchanges.UpdateTrackingMeta(ctx, ex.ID, merged); err != nil {
			return nil, err
		}
	}

	return s.preview(ctx, ex)
}

// SetOutboundShipping stages the replacement leg's shipping method,
// with the same replace semantics as the inbound leg.
func (s *ExchangeService) SetOutboundShipping(ctx context.Context, exchangeID uuid.UUID, shippingOptionID string, customAmountCents *int64) (*models.Preview, error) {
	ex, err := s.pendingExchange(ctx, exchangeID)
	if err != nil {
		return nil, err
	}
	if err := s.setLegShipping(ctx, ex, models.LegOutbound, shippingOptionID, customAmountCents, nil); err != nil {
		return nil, err
	}
	return s.preview(ctx, ex)
}

func (s *ExchangeService) setLegShipping(ctx context.Context, ex *models.Exchange, leg models.ShippingLeg, shippingOptionID string, customAmountCents *int64, returnID *uuid.UUID) error {
	if shippingOptionID == "" {
		return models.NewValidationError("shipping_option_id", "must not be empty")
	}

	session, err := s.sessions.GetByID(ctx, ex.SessionID)
	if err != nil {
		return err
	}

	var existing *models.Action
	for i := range session.Actions {
		if session.Actions[i].IsLeg(ex.ID, leg) {
			existing = &session.Actions[i]
			break
		}
	}

	if existing != nil {
		if existing.ShippingOptionID == shippingOptionID {
			existing.CustomAmountCents = customAmountCents
			return s.sessions.UpdateAction(ctx, existing)
		}
		if err := s.sessions.DeleteAction(ctx, existing.ID); err != nil {
			return err
		}
	}

	_, err = s.edits.appendShippingAction(ctx, session, shippingOptionID, customAmountCents, &ex.ID, returnID)
	return err
}

// AttachInboundLabel uploads a shipping label file and merges its URL
// into the exchange's tracking metadata.
func (s *ExchangeService) AttachInboundLabel(ctx context.Context, exchangeID uuid.UUID, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", models.NewValidationError("file", "must not be empty")
	}
	ex, err := s.pendingExchange(ctx, exchangeID)
	if err != nil {
		return "", err
	}

	url, err := s.labels.UploadLabel(ctx, filename, data)
	if err != nil {
		return "", err
	}

	merged := models.MergeTracking(ex.TrackingMeta, models.TrackingMeta{
		TrackingNumber: ex.TrackingMeta[models.TrackingNumberKey],
		TrackingURL:    ex.TrackingMeta[models.TrackingURLKey],
		LabelURL:       url,
	})
	if err := s.exchanges.UpdateTrackingMeta(ctx, ex.ID, merged); err != nil {
		return "", err
	}
	return url, nil
}

// RequestExchange freezes the exchange for review
func (s *ExchangeService) RequestExchange(ctx context.Context, exchangeID uuid.UUID) (*models.Preview, error) {
	ex, err := s.pendingExchange(ctx, exchangeID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.sessions.MarkRequested(ctx, ex.SessionID, now); err != nil {
		return nil, err
	}
	if err := s.exchanges.UpdateStatus(ctx, ex.ID, models.ExchangeStatusRequested, now); err != nil {
		return nil, err
	}

	ret, err := s.returns.GetByExchangeID(ctx, exchangeID)
	if err == nil && ret.Status == models.ReturnStatusItemsRequested {
		if err := s.returns.UpdateStatus(ctx, ret.ID, models.ReturnStatusRequestConfirmed, now); err != nil {
			return nil, err
		}
	} else if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	return s.preview(ctx, ex)
}

// TryCancelRequest cancels an exchange that is sitting in the requested
// state. NotApplicable when the exchange has not been requested or has
// already resolved; the caller may then fall back to a hard cancel.
func (s *ExchangeService) TryCancelRequest(ctx context.Context, exchangeID uuid.UUID) error {
	ex, err := s.exchanges.GetByID(ctx, exchangeID)
	if err != nil {
		return err
	}
	if ex.Status != models.ExchangeStatusRequested {
		return models.NewNotApplicableError("exchange has no cancelable request")
	}
	return s.cancel(ctx, ex)
}

// CancelHard cancels an exchange from any non-terminal state
func (s *ExchangeService) CancelHard(ctx context.Context, exchangeID uuid.UUID) error {
	ex, err := s.exchanges.GetByID(ctx, exchangeID)
	if err != nil {
		return err
	}
	if ex.Status == models.ExchangeStatusConfirmed || ex.Status == models.ExchangeStatusCanceled {
		return models.NewNotApplicableError("exchange already resolved")
	}
	return s.cancel(ctx, ex)
}

// CancelExchange prefers the idempotent request-cancel and falls back
// to a hard cancel when that path reports not-applicable. Any other
// error propagates.
func (s *ExchangeService) CancelExchange(ctx context.Context, exchangeID uuid.UUID) error {
	err := s.TryCancelRequest(ctx, exchangeID)
	if err == nil {
		return nil
	}
	if errors.Is(err, models.ErrNotApplicable) {
		return s.CancelHard(ctx, exchangeID)
	}
	return err
}

func (s *ExchangeService) cancel(ctx context.Context, ex *models.Exchange) error {
	now := time.Now()
	// Session first: a session that already reached a terminal state
	// refuses the transition and nothing else is touched. A session
	// canceled out-of-band is fine to sweep past; a confirmed one never
	// reaches here because the exchange is swept to CONFIRMED with it.
	if err := s.sessions.MarkCanceled(ctx, ex.SessionID, models.SessionStatusCanceled, now); err != nil && !errors.Is(err, models.ErrNotApplicable) {
		return err
	}
	if err := s.exchanges.UpdateStatus(ctx, ex.ID, models.ExchangeStatusCanceled, now); err != nil {
		return err
	}

	ret, err := s.returns.GetByExchangeID(ctx, ex.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return err
	}
	if !ret.Status.Terminal() {
		return s.returns.UpdateStatus(ctx, ret.ID, models.ReturnStatusCanceled, now)
	}
	return nil
}

// Preview derives the shared order-level preview of an exchange
func (s *ExchangeService) Preview(ctx context.Context, exchangeID uuid.UUID) (*models.Preview, error) {
	ex, err := s.exchanges.GetByID(ctx, exchangeID)
	if err != nil {
		return nil, err
	}
	return s.preview(ctx, ex)
}

func (s *ExchangeService) preview(ctx context.Context, ex *models.Exchange) (*models.Preview, error) {
	session, err := s.sessions.GetByID(ctx, ex.SessionID)
	if err != nil {
		return nil, err
	}
	return buildSessionPreview(ctx, s.orders, s.sessions, session)
}
