package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/commerce-platform/order-edit-service/internal/models"
)

// EditService owns the action ledger of open sessions: appending,
// amending and removing actions, and re-deriving the preview after
// every mutation.
type EditService struct {
	orders   OrderStore
	sessions SessionStore
	variants VariantCatalog
	shipping ShippingCatalog
	logger   *zap.Logger
}

func NewEditService(orders OrderStore, sessions SessionStore, variants VariantCatalog, shipping ShippingCatalog, logger *zap.Logger) *EditService {
	return &EditService{
		orders:   orders,
		sessions: sessions,
		variants: variants,
		shipping: shipping,
		logger:   logger,
	}
}

// openSession loads a session that is still accepting actions
func (s *EditService) openSession(ctx context.Context, sessionID uuid.UUID) (*models.ChangeSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status.Terminal() {
		return nil, models.NewNotApplicableError("session already resolved")
	}
	if session.Status == models.SessionStatusRequested {
		return nil, models.NewNotApplicableError("session is frozen for review")
	}
	return session, nil
}

// AddItem appends an ITEM_ADD action proposing a new line. The unit
// price comes from the variant catalog unless an override is given.
// The preview assigns the new line's reference id, which is then
// persisted on the action.
func (s *EditService) AddItem(ctx context.Context, sessionID uuid.UUID, variantID string, quantity int, priceOverrideCents *int64) (*models.Preview, error) {
	if variantID == "" {
		return nil, models.NewValidationError("variant_id", "must not be empty")
	}

	session, err := s.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	variant, err := s.variants.GetVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	return s.addVariantItem(ctx, session, variant, quantity, priceOverrideCents)
}

// addVariantItem appends the ITEM_ADD action for an already-resolved
// variant, so callers that looked the variant up for their own checks
// do not trigger a second catalog fetch.
func (s *EditService) addVariantItem(ctx context.Context, session *models.ChangeSession, variant *Variant, quantity int, priceOverrideCents *int64) (*models.Preview, error) {
	if quantity <= 0 {
		return nil, models.NewValidationError("quantity", "must be a positive integer")
	}
	if priceOverrideCents != nil && *priceOverrideCents < 0 {
		return nil, models.NewValidationError("unit_price_cents", "must not be negative")
	}

	price := variant.UnitPriceCents
	if priceOverrideCents != nil {
		price = *priceOverrideCents
	}

	action := &models.Action{
		ID:             uuid.New(),
		SessionID:      session.ID,
		Kind:           models.ActionItemAdd,
		VariantID:      variant.ID,
		SKU:            variant.SKU,
		Title:          variant.Title,
		Quantity:       quantity,
		UnitPriceCents: price,
		CreatedAt:      time.Now(),
	}
	if err := s.sessions.AppendAction(ctx, action); err != nil {
		return nil, err
	}

	preview, err := buildSessionPreview(ctx, s.orders, s.sessions, session)
	if err != nil {
		return nil, err
	}

	// The preview assigned the line id; persist it as the action's reference
	resolved, err := ResolveAction(preview, action.ID)
	if err == nil && resolved.LineItem != nil {
		action.ReferenceID = &resolved.LineItem.LineItemID
		if err := s.sessions.UpdateAction(ctx, action); err != nil {
			return nil, err
		}
	}

	return preview, nil
}

// UpdateItem appends an ITEM_UPDATE action against a line. Quantity
// zero is the sanctioned way to remove a line from the proposal; a
// later update on the same line re-adds it. The ledger stays
// append-only either way.
func (s *EditService) UpdateItem(ctx context.Context, sessionID, lineItemID uuid.UUID, quantity int, priceOverrideCents *int64) (*models.Preview, error) {
	if quantity < 0 {
		return nil, models.NewValidationError("quantity", "must not be negative")
	}
	if priceOverrideCents != nil && *priceOverrideCents < 0 {
		return nil, models.NewValidationError("unit_price_cents", "must not be negative")
	}

	session, err := s.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	target, err := s.findLine(ctx, session, lineItemID)
	if err != nil {
		return nil, err
	}
	price := target.unitPriceCents
	if priceOverrideCents != nil {
		price = *priceOverrideCents
	}

	action := &models.Action{
		ID:             uuid.New(),
		SessionID:      session.ID,
		Kind:           models.ActionItemUpdate,
		ReferenceID:    &lineItemID,
		VariantID:      target.variantID,
		SKU:            target.sku,
		Title:          target.title,
		Quantity:       quantity,
		UnitPriceCents: price,
		CreatedAt:      time.Now(),
	}
	if err := s.sessions.AppendAction(ctx, action); err != nil {
		return nil, err
	}

	return buildSessionPreview(ctx, s.orders, s.sessions, session)
}

// RemoveItem is a convenience for the quantity-zero update; there is no
// separate delete action in the ledger.
func (s *EditService) RemoveItem(ctx context.Context, sessionID, lineItemID uuid.UUID) (*models.Preview, error) {
	return s.UpdateItem(ctx, sessionID, lineItemID, 0, nil)
}

// findLine locates the current state of a line targeted by an update:
// a committed order line, or a line staged by an earlier ITEM_ADD. A
// line removed by a quantity-zero update is still a valid target.
func (s *EditService) findLine(ctx context.Context, session *models.ChangeSession, lineItemID uuid.UUID) (*previewLine, error) {
	items, err := s.orders.GetItemsByOrderID(ctx, session.OrderID)
	if err != nil {
		return nil, err
	}
	actions, err := s.sessions.GetActions(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	var line *previewLine
	for _, item := range items {
		if item.ID == lineItemID {
			line = &previewLine{
				lineItemID:     item.ID,
				variantID:      item.VariantID,
				sku:            item.SKU,
				title:          item.Title,
				quantity:       item.Quantity,
				unitPriceCents: item.UnitPriceCents,
			}
			break
		}
	}
	for _, action := range actions {
		switch action.Kind {
		case models.ActionItemAdd:
			if action.ID == lineItemID {
				line = &previewLine{
					lineItemID:     action.ID,
					variantID:      action.VariantID,
					sku:            action.SKU,
					title:          action.Title,
					quantity:       action.Quantity,
					unitPriceCents: action.UnitPriceCents,
				}
			}
		case models.ActionItemUpdate:
			if line != nil && action.ReferenceID != nil && *action.ReferenceID == lineItemID {
				line.quantity = action.Quantity
				line.unitPriceCents = action.UnitPriceCents
			}
		}
	}
	if line == nil {
		return nil, models.NewNotFoundError("line item")
	}
	return line, nil
}

// AddShipping appends a SHIPPING_ADD action for a shipping option. The
// base amount comes from the fulfillment catalog; a custom amount, when
// given, takes precedence in the preview.
func (s *EditService) AddShipping(ctx context.Context, sessionID uuid.UUID, shippingOptionID string, customAmountCents *int64) (*models.Preview, error) {
	session, err := s.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.appendShippingAction(ctx, session, shippingOptionID, customAmountCents, nil, nil); err != nil {
		return nil, err
	}
	return buildSessionPreview(ctx, s.orders, s.sessions, session)
}

// appendShippingAction creates the shipping action with its leg key.
// Exchange legs pass their exchange id and, for inbound, the return id.
func (s *EditService) appendShippingAction(ctx context.Context, session *models.ChangeSession, shippingOptionID string, customAmountCents *int64, exchangeID, returnID *uuid.UUID) (*models.Action, error) {
	if shippingOptionID == "" {
		return nil, models.NewValidationError("shipping_option_id", "must not be empty")
	}
	if customAmountCents != nil && *customAmountCents < 0 {
		return nil, models.NewValidationError("custom_amount_cents", "must not be negative")
	}

	option, err := s.shipping.GetOption(ctx, shippingOptionID)
	if err != nil {
		return nil, err
	}

	action := &models.Action{
		ID:                uuid.New(),
		SessionID:         session.ID,
		Kind:              models.ActionShippingAdd,
		ShippingOptionID:  option.ID,
		Title:             option.Name,
		UnitPriceCents:    option.AmountCents,
		CustomAmountCents: customAmountCents,
		ExchangeID:        exchangeID,
		ReturnID:          returnID,
		CreatedAt:         time.Now(),
	}
	if err := s.sessions.AppendAction(ctx, action); err != nil {
		return nil, err
	}

	// The staged method's id is the action's own id
	action.ReferenceID = &action.ID
	if err := s.sessions.UpdateAction(ctx, action); err != nil {
		return nil, err
	}
	return action, nil
}

// UpdateShipping patches the custom amount of an existing shipping action
func (s *EditService) UpdateShipping(ctx context.Context, actionID uuid.UUID, customAmountCents *int64) (*models.Preview, error) {
	if customAmountCents != nil && *customAmountCents < 0 {
		return nil, models.NewValidationError("custom_amount_cents", "must not be negative")
	}

	action, err := s.sessions.GetAction(ctx, actionID)
	if err != nil {
		return nil, err
	}
	if action.Kind != models.ActionShippingAdd {
		return nil, models.NewValidationError("action_id", "not a shipping action")
	}
	session, err := s.openSession(ctx, action.SessionID)
	if err != nil {
		return nil, err
	}

	action.CustomAmountCents = customAmountCents
	if err := s.sessions.UpdateAction(ctx, action); err != nil {
		return nil, err
	}
	return buildSessionPreview(ctx, s.orders, s.sessions, session)
}

// RemoveShipping deletes a shipping action from the ledger
func (s *EditService) RemoveShipping(ctx context.Context, actionID uuid.UUID) (*models.Preview, error) {
	action, err := s.sessions.GetAction(ctx, actionID)
	if err != nil {
		return nil, err
	}
	if action.Kind != models.ActionShippingAdd {
		return nil, models.NewValidationError("action_id", "not a shipping action")
	}
	session, err := s.openSession(ctx, action.SessionID)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.DeleteAction(ctx, actionID); err != nil {
		return nil, err
	}
	return buildSessionPreview(ctx, s.orders, s.sessions, session)
}

// AddPromotions appends PROMOTION_ADD actions. Draft-edit sessions only.
func (s *EditService) AddPromotions(ctx context.Context, sessionID uuid.UUID, codes []string) (*models.Preview, error) {
	return s.appendPromotionActions(ctx, sessionID, codes, models.ActionPromotionAdd)
}

// RemovePromotions appends PROMOTION_REMOVE actions. Draft-edit sessions only.
func (s *EditService) RemovePromotions(ctx context.Context, sessionID uuid.UUID, codes []string) (*models.Preview, error) {
	return s.appendPromotionActions(ctx, sessionID, codes, models.ActionPromotionRemove)
}

func (s *EditService) appendPromotionActions(ctx context.Context, sessionID uuid.UUID, codes []string, kind models.ActionKind) (*models.Preview, error) {
	if len(codes) == 0 {
		return nil, models.NewValidationError("codes", "at least one code required")
	}
	for _, code := range codes {
		if code == "" {
			return nil, models.NewValidationError("codes", "must not contain empty codes")
		}
	}

	session, err := s.openSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Kind != models.SessionKindDraftEdit {
		return nil, models.NewValidationError("session", "promotions apply to draft edits only")
	}

	now := time.Now()
	for _, code := range codes {
		action := &models.Action{
			ID:            uuid.New(),
			SessionID:     session.ID,
			Kind:          kind,
			PromotionCode: code,
			CreatedAt:     now,
		}
		if err := s.sessions.AppendAction(ctx, action); err != nil {
			return nil, err
		}
	}

	return buildSessionPreview(ctx, s.orders, s.sessions, session)
}
