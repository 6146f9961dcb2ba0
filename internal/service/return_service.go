package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/commerce-platform/order-edit-service/internal/models"
)

// ReturnService drives the return state machine:
// NONE -> ITEMS_REQUESTED -> REQUEST_CONFIRMED -> RECEIVING -> RECEIVED,
// canceled from any non-terminal state.
type ReturnService struct {
	orders   OrderStore
	sessions SessionStore
	returns  ReturnStore
	manager  *SessionService
	events   EventPublisher
	logger   *zap.Logger
}

func NewReturnService(orders OrderStore, sessions SessionStore, returns ReturnStore, manager *SessionService, events EventPublisher, logger *zap.Logger) *ReturnService {
	return &ReturnService{
		orders:   orders,
		sessions: sessions,
		returns:  returns,
		manager:  manager,
		events:   events,
		logger:   logger,
	}
}

// CreateReturn opens a standalone return with its own change session.
// The single-active-session invariant applies: an order already under
// edit cannot also open a return.
func (s *ReturnService) CreateReturn(ctx context.Context, orderID uuid.UUID, locationID string) (*models.Return, error) {
	session, err := s.manager.Start(ctx, orderID, models.SessionKindReturn)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ret := &models.Return{
		ID:         uuid.New(),
		OrderID:    orderID,
		SessionID:  session.ID,
		Status:     models.ReturnStatusNone,
		LocationID: locationID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.returns.Create(ctx, ret); err != nil {
		return nil, err
	}

	s.logger.Info("return created",
		zap.String("return_id", ret.ID.String()),
		zap.String("order_id", orderID.String()),
	)
	return ret, nil
}

// Get returns a return by id
func (s *ReturnService) Get(ctx context.Context, returnID uuid.UUID) (*models.Return, error) {
	return s.returns.GetByID(ctx, returnID)
}

// RequestItems proposes quantities to take back. Zero-quantity lines
// are filtered out before submission; an empty request is rejected.
// Requested quantity per line, accumulated across requests, must not
// exceed the committed line's quantity.
func (s *ReturnService) RequestItems(ctx context.Context, returnID uuid.UUID, inputs []models.RequestItemsInput) (*models.Return, error) {
	ret, err := s.returns.GetByID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	if ret.Status != models.ReturnStatusNone && ret.Status != models.ReturnStatusItemsRequested {
		return nil, models.NewNotApplicableError("return is past the request stage")
	}

	items, err := validateReturnRequest(ctx, s.orders, ret, inputs)
	if err != nil {
		return nil, err
	}

	if err := s.returns.UpsertRequestedItems(ctx, returnID, items); err != nil {
		return nil, err
	}
	if err := s.returns.UpdateStatus(ctx, returnID, models.ReturnStatusItemsRequested, time.Now()); err != nil {
		return nil, err
	}
	return s.returns.GetByID(ctx, returnID)
}

// validateReturnRequest filters and validates requested lines against
// the committed order. Shared with the exchange's inbound leg.
func validateReturnRequest(ctx context.Context, orders OrderStore, ret *models.Return, inputs []models.RequestItemsInput) ([]models.ReturnItem, error) {
	orderItems, err := orders.GetItemsByOrderID(ctx, ret.OrderID)
	if err != nil {
		return nil, err
	}
	committed := make(map[uuid.UUID]models.OrderItem, len(orderItems))
	for _, item := range orderItems {
		committed[item.ID] = item
	}
	requested := make(map[uuid.UUID]int, len(ret.Items))
	for _, item := range ret.Items {
		requested[item.LineItemID] = item.RequestedQuantity
	}

	var items []models.ReturnItem
	for _, in := range inputs {
		if in.Quantity < 0 {
			return nil, models.NewValidationError("quantity", "must not be negative")
		}
		if in.Quantity == 0 {
			continue
		}
		line, ok := committed[in.LineItemID]
		if !ok {
			return nil, models.NewNotFoundError("line item")
		}
		if requested[in.LineItemID]+in.Quantity > line.Quantity {
			return nil, models.NewValidationError("quantity",
				fmt.Sprintf("exceeds order line quantity %d", line.Quantity))
		}
		items = append(items, models.ReturnItem{
			ReturnID:          ret.ID,
			LineItemID:        in.LineItemID,
			RequestedQuantity: in.Quantity,
			ReasonID:          in.ReasonID,
			Note:              in.Note,
		})
	}
	if len(items) == 0 {
		return nil, models.NewValidationError("items", "at least one item required")
	}
	return items, nil
}

// ConfirmRequest freezes the requested set
func (s *ReturnService) ConfirmRequest(ctx context.Context, returnID uuid.UUID) (*models.Return, error) {
	ret, err := s.returns.GetByID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	if ret.Status != models.ReturnStatusItemsRequested {
		return nil, models.NewNotApplicableError("return has no requested items to confirm")
	}

	// Standalone returns drive their own session; exchange-linked
	// returns leave the session to the exchange. The session moves
	// first: a session already resolved out-of-band refuses the
	// transition and the return stays where it was.
	if ret.ExchangeID == nil {
		if err := s.sessions.MarkRequested(ctx, ret.SessionID, time.Now()); err != nil {
			return nil, err
		}
	}
	if err := s.returns.UpdateStatus(ctx, returnID, models.ReturnStatusRequestConfirmed, time.Now()); err != nil {
		return nil, err
	}
	return s.returns.GetByID(ctx, returnID)
}

// StartReceive opens the physical receipt phase
func (s *ReturnService) StartReceive(ctx context.Context, returnID uuid.UUID) (*models.Return, error) {
	ret, err := s.returns.GetByID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	if ret.Status != models.ReturnStatusRequestConfirmed {
		return nil, models.NewNotApplicableError("return request has not been confirmed")
	}
	if err := s.returns.UpdateStatus(ctx, returnID, models.ReturnStatusReceiving, time.Now()); err != nil {
		return nil, err
	}
	return s.returns.GetByID(ctx, returnID)
}

// ReceiveItems records physically received quantities. Independent of
// the request quantities: received may exceed requested, since physical
// reality may disagree with the request.
func (s *ReturnService) ReceiveItems(ctx context.Context, returnID uuid.UUID, inputs []models.ReceiveItemsInput) (*models.Return, error) {
	ret, err := s.returns.GetByID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	if ret.Status != models.ReturnStatusReceiving {
		return nil, models.NewNotApplicableError("return is not receiving")
	}

	orderItems, err := s.orders.GetItemsByOrderID(ctx, ret.OrderID)
	if err != nil {
		return nil, err
	}
	committed := make(map[uuid.UUID]bool, len(orderItems))
	for _, item := range orderItems {
		committed[item.ID] = true
	}

	var items []models.ReceiveItemsInput
	for _, in := range inputs {
		if in.Quantity < 0 {
			return nil, models.NewValidationError("quantity", "must not be negative")
		}
		if in.Quantity == 0 {
			continue
		}
		if !committed[in.LineItemID] {
			return nil, models.NewNotFoundError("line item")
		}
		items = append(items, in)
	}
	if len(items) == 0 {
		return nil, models.NewValidationError("items", "at least one item required")
	}

	if err := s.returns.AddReceivedQuantities(ctx, returnID, items); err != nil {
		return nil, err
	}
	return s.returns.GetByID(ctx, returnID)
}

// ConfirmReceive finalizes the return. Terminal.
func (s *ReturnService) ConfirmReceive(ctx context.Context, returnID uuid.UUID) (*models.Return, error) {
	ret, err := s.returns.GetByID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	if ret.Status != models.ReturnStatusReceiving {
		return nil, models.NewNotApplicableError("return is not receiving")
	}

	now := time.Now()
	if ret.ExchangeID == nil {
		if err := s.sessions.MarkConfirmed(ctx, ret.SessionID, now); err != nil {
			return nil, err
		}
	}
	if err := s.returns.UpdateStatus(ctx, returnID, models.ReturnStatusReceived, now); err != nil {
		return nil, err
	}

	event := models.ReturnReceivedEvent{
		EventID:    uuid.New(),
		Type:       models.EventTypeReturnReceived,
		ReturnID:   ret.ID,
		OrderID:    ret.OrderID,
		ExchangeID: ret.ExchangeID,
		LocationID: ret.LocationID,
		CreatedAt:  now,
	}
	if err := s.events.PublishReturnReceived(ctx, event); err != nil {
		s.logger.Warn("failed to publish return received event",
			zap.String("return_id", ret.ID.String()), zap.Error(err))
	}

	return s.returns.GetByID(ctx, returnID)
}

// Cancel discards the return from any non-terminal state
func (s *ReturnService) Cancel(ctx context.Context, returnID uuid.UUID) error {
	ret, err := s.returns.GetByID(ctx, returnID)
	if err != nil {
		return err
	}
	if ret.Status.Terminal() {
		return models.NewNotApplicableError("return already resolved")
	}

	now := time.Now()
	if ret.ExchangeID == nil {
		// A session canceled out-of-band is fine to sweep past; the
		// return record still needs closing.
		if err := s.sessions.MarkCanceled(ctx, ret.SessionID, models.SessionStatusCanceled, now); err != nil && !errors.Is(err, models.ErrNotApplicable) {
			return err
		}
	}
	return s.returns.UpdateStatus(ctx, returnID, models.ReturnStatusCanceled, now)
}
