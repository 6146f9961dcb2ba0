package service

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/commerce-platform/order-edit-service/internal/models"
)

// previewLine is the working state for one line during replay. A line
// with quantity zero is kept so a later update can resurrect it, but it
// is omitted from the final item list.
type previewLine struct {
	lineItemID     uuid.UUID
	variantID      string
	sku            string
	title          string
	quantity       int
	unitPriceCents int64
	actionIDs      []uuid.UUID
}

// BuildPreview derives the hypothetical post-commit state of an order
// from its committed lines plus the session's action ledger, replayed
// in append order. Passing a nil session previews the order as-is.
//
// The preview, not the ledger, is authoritative for line identity:
// item adds surface with the action's id as their line id, and staged
// shipping methods carry their originating action for leg resolution.
func BuildPreview(order *models.Order, items []models.OrderItem, shipping []models.ShippingMethod, session *models.ChangeSession) *models.Preview {
	preview := &models.Preview{
		OrderID:  order.ID,
		Currency: order.Currency,
	}

	lines := make(map[uuid.UUID]*previewLine, len(items))
	lineOrder := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		lines[item.ID] = &previewLine{
			lineItemID:     item.ID,
			variantID:      item.VariantID,
			sku:            item.SKU,
			title:          item.Title,
			quantity:       item.Quantity,
			unitPriceCents: item.UnitPriceCents,
		}
		lineOrder = append(lineOrder, item.ID)
	}

	for _, method := range shipping {
		preview.ShippingMethods = append(preview.ShippingMethods, models.PreviewShipping{
			ShippingMethodID: method.ID,
			ShippingOptionID: method.ShippingOptionID,
			Name:             method.Name,
			AmountCents:      method.AmountCents,
		})
	}

	promos := map[string]bool{}

	if session != nil {
		preview.SessionID = &session.ID

		actions := append([]models.Action(nil), session.Actions...)
		sort.SliceStable(actions, func(i, j int) bool { return actions[i].Ordering < actions[j].Ordering })

		for _, action := range actions {
			switch action.Kind {
			case models.ActionItemAdd:
				line, ok := lines[action.ID]
				if !ok {
					line = &previewLine{lineItemID: action.ID}
					lines[action.ID] = line
					lineOrder = append(lineOrder, action.ID)
				}
				line.variantID = action.VariantID
				line.sku = action.SKU
				line.title = action.Title
				line.quantity = action.Quantity
				line.unitPriceCents = action.UnitPriceCents
				line.actionIDs = append(line.actionIDs, action.ID)

			case models.ActionItemUpdate:
				if action.ReferenceID == nil {
					continue
				}
				line, ok := lines[*action.ReferenceID]
				if !ok {
					continue
				}
				line.quantity = action.Quantity
				line.unitPriceCents = action.UnitPriceCents
				line.actionIDs = append(line.actionIDs, action.ID)

			case models.ActionShippingAdd:
				preview.ShippingMethods = append(preview.ShippingMethods, models.PreviewShipping{
					ShippingMethodID: action.ID,
					ShippingOptionID: action.ShippingOptionID,
					Name:             action.Title,
					AmountCents:      action.AmountCents(),
					Actions:          []models.Action{action},
				})

			case models.ActionPromotionAdd:
				promos[action.PromotionCode] = true
			case models.ActionPromotionRemove:
				delete(promos, action.PromotionCode)
			}
		}
	}

	for _, id := range lineOrder {
		line := lines[id]
		if line.quantity <= 0 {
			continue
		}
		total := line.unitPriceCents * int64(line.quantity)
		preview.Items = append(preview.Items, models.PreviewItem{
			LineItemID:     line.lineItemID,
			VariantID:      line.variantID,
			SKU:            line.sku,
			Title:          line.title,
			Quantity:       line.quantity,
			UnitPriceCents: line.unitPriceCents,
			TotalCents:     total,
			ActionIDs:      line.actionIDs,
		})
		preview.SubtotalCents += total
	}

	for _, method := range preview.ShippingMethods {
		preview.ShippingTotalCents += method.AmountCents
	}
	preview.TotalCents = preview.SubtotalCents + preview.ShippingTotalCents

	for code := range promos {
		preview.PromotionCodes = append(preview.PromotionCodes, code)
	}
	sort.Strings(preview.PromotionCodes)

	return preview
}

// Resolved is the preview counterpart of one action: exactly one of the
// two fields is set.
type Resolved struct {
	LineItem       *models.PreviewItem
	ShippingMethod *models.PreviewShipping
}

// ResolveAction matches an action to the preview line item or shipping
// method it produced. The preview, not the action, is authoritative for
// computed amounts; the action only records the proposal.
func ResolveAction(preview *models.Preview, actionID uuid.UUID) (*Resolved, error) {
	for i := range preview.Items {
		for _, id := range preview.Items[i].ActionIDs {
			if id == actionID {
				return &Resolved{LineItem: &preview.Items[i]}, nil
			}
		}
	}
	for i := range preview.ShippingMethods {
		for _, action := range preview.ShippingMethods[i].Actions {
			if action.ID == actionID {
				return &Resolved{ShippingMethod: &preview.ShippingMethods[i]}, nil
			}
		}
	}
	return nil, models.NewNotFoundError("action")
}

// FindShippingForLeg scans the preview's shipping methods for the
// SHIPPING_ADD action tagged with the given exchange and leg. Returns
// nil when the leg has no shipping method staged.
func FindShippingForLeg(preview *models.Preview, exchangeID uuid.UUID, leg models.ShippingLeg) *models.PreviewShipping {
	for i := range preview.ShippingMethods {
		for _, action := range preview.ShippingMethods[i].Actions {
			if action.IsLeg(exchangeID, leg) {
				return &preview.ShippingMethods[i]
			}
		}
	}
	return nil
}

// buildSessionPreview loads the order state and the session's current
// ledger and derives a fresh preview. Every mutating step re-derives;
// previews are disposable.
func buildSessionPreview(ctx context.Context, orders OrderStore, sessions SessionStore, session *models.ChangeSession) (*models.Preview, error) {
	order, err := orders.GetByID(ctx, session.OrderID)
	if err != nil {
		return nil, err
	}
	items, err := orders.GetItemsByOrderID(ctx, session.OrderID)
	if err != nil {
		return nil, err
	}
	shipping, err := orders.GetShippingByOrderID(ctx, session.OrderID)
	if err != nil {
		return nil, err
	}
	actions, err := sessions.GetActions(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	fresh := *session
	fresh.Actions = actions
	return BuildPreview(order, items, shipping, &fresh), nil
}
