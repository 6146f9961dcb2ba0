package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionKind distinguishes the flavors of change session. All four
// share the same lifecycle; returns and exchanges layer their own
// state machines on top.
type SessionKind string

const (
	SessionKindEdit      SessionKind = "EDIT"
	SessionKindDraftEdit SessionKind = "DRAFT_EDIT"
	SessionKindReturn    SessionKind = "RETURN"
	SessionKindExchange  SessionKind = "EXCHANGE"
)

// SessionStatus represents the lifecycle status of a change session
type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "PENDING"
	SessionStatusRequested SessionStatus = "REQUESTED"
	SessionStatusConfirmed SessionStatus = "CONFIRMED"
	SessionStatusCanceled  SessionStatus = "CANCELED"
	SessionStatusDeclined  SessionStatus = "DECLINED"
)

// Terminal reports whether a session in this status can no longer change
func (s SessionStatus) Terminal() bool {
	switch s {
	case SessionStatusConfirmed, SessionStatusCanceled, SessionStatusDeclined:
		return true
	}
	return false
}

// ChangeSession is one in-flight proposal against an order. At most one
// non-terminal session may exist per order at a time.
type ChangeSession struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	Kind         SessionKind
	Status       SessionStatus
	OrderVersion int64
	Actions      []Action
	CreatedAt    time.Time
	RequestedAt  *time.Time
	ConfirmedAt  *time.Time
	CanceledAt   *time.Time
}

// ActionKind tags one proposed mutation in the ledger
type ActionKind string

const (
	ActionItemAdd         ActionKind = "ITEM_ADD"
	ActionItemUpdate      ActionKind = "ITEM_UPDATE"
	ActionShippingAdd     ActionKind = "SHIPPING_ADD"
	ActionPromotionAdd    ActionKind = "PROMOTION_ADD"
	ActionPromotionRemove ActionKind = "PROMOTION_REMOVE"
)

// Action is one atomic proposed mutation inside a change session.
// ReferenceID links it to the order line item or shipping method it
// targets; for brand-new item adds the preview assigns the action's own
// id as the reference. ExchangeID and ReturnID together form the
// shipping-leg key for exchange shipping actions: a populated ReturnID
// marks the inbound leg, its absence the outbound leg.
type Action struct {
	ID                uuid.UUID
	SessionID         uuid.UUID
	Kind              ActionKind
	ReferenceID       *uuid.UUID
	VariantID         string
	SKU               string
	Title             string
	ShippingOptionID  string
	Quantity          int
	UnitPriceCents    int64
	CustomAmountCents *int64
	PromotionCode     string
	InternalNote      string
	ExchangeID        *uuid.UUID
	ReturnID          *uuid.UUID
	Ordering          int
	CreatedAt         time.Time
}

// AmountCents is the effective amount of a shipping action: the custom
// amount when one was supplied, otherwise the option's base price.
func (a *Action) AmountCents() int64 {
	if a.CustomAmountCents != nil {
		return *a.CustomAmountCents
	}
	return a.UnitPriceCents
}

// ShippingLeg identifies one shipping-bearing half of an exchange
type ShippingLeg string

const (
	LegInbound  ShippingLeg = "INBOUND"
	LegOutbound ShippingLeg = "OUTBOUND"
)

// IsLeg reports whether a shipping action belongs to the given leg of
// the given exchange.
func (a *Action) IsLeg(exchangeID uuid.UUID, leg ShippingLeg) bool {
	if a.Kind != ActionShippingAdd || a.ExchangeID == nil || *a.ExchangeID != exchangeID {
		return false
	}
	if leg == LegInbound {
		return a.ReturnID != nil
	}
	return a.ReturnID == nil
}

// Preview is the recomputed hypothetical state of an order if its
// active change session were committed now. It is derived on demand and
// never persisted.
type Preview struct {
	OrderID            uuid.UUID         `json:"order_id"`
	SessionID          *uuid.UUID        `json:"session_id,omitempty"`
	Currency           string            `json:"currency"`
	Items              []PreviewItem     `json:"items"`
	ShippingMethods    []PreviewShipping `json:"shipping_methods"`
	PromotionCodes     []string          `json:"promotion_codes,omitempty"`
	SubtotalCents      int64             `json:"subtotal_cents"`
	ShippingTotalCents int64             `json:"shipping_total_cents"`
	TotalCents         int64             `json:"total_cents"`
}

// PreviewItem is one line of the preview. LineItemID is the committed
// line's id, or the originating ITEM_ADD action's id for new lines.
type PreviewItem struct {
	LineItemID     uuid.UUID   `json:"line_item_id"`
	VariantID      string      `json:"variant_id"`
	SKU            string      `json:"sku"`
	Title          string      `json:"title"`
	Quantity       int         `json:"quantity"`
	UnitPriceCents int64       `json:"unit_price_cents"`
	TotalCents     int64       `json:"total_cents"`
	ActionIDs      []uuid.UUID `json:"action_ids,omitempty"`
}

// PreviewShipping is one shipping method of the preview. Committed
// methods carry no actions; staged ones carry the SHIPPING_ADD action
// that produced them, which is the join target for leg resolution.
type PreviewShipping struct {
	ShippingMethodID uuid.UUID `json:"shipping_method_id"`
	ShippingOptionID string    `json:"shipping_option_id"`
	Name             string    `json:"name"`
	AmountCents      int64     `json:"amount_cents"`
	Actions          []Action  `json:"actions,omitempty"`
}

// SessionResponse represents a change session in API responses
type SessionResponse struct {
	ID          uuid.UUID        `json:"id"`
	OrderID     uuid.UUID        `json:"order_id"`
	Kind        string           `json:"kind"`
	Status      string           `json:"status"`
	Actions     []ActionResponse `json:"actions"`
	CreatedAt   time.Time        `json:"created_at"`
	RequestedAt *time.Time       `json:"requested_at,omitempty"`
	ConfirmedAt *time.Time       `json:"confirmed_at,omitempty"`
	CanceledAt  *time.Time       `json:"canceled_at,omitempty"`
}

// ActionResponse represents a ledger action in API responses
type ActionResponse struct {
	ID                uuid.UUID  `json:"id"`
	Kind              string     `json:"kind"`
	ReferenceID       *uuid.UUID `json:"reference_id,omitempty"`
	VariantID         string     `json:"variant_id,omitempty"`
	ShippingOptionID  string     `json:"shipping_option_id,omitempty"`
	Quantity          int        `json:"quantity,omitempty"`
	UnitPriceCents    int64      `json:"unit_price_cents,omitempty"`
	CustomAmountCents *int64     `json:"custom_amount_cents,omitempty"`
	PromotionCode     string     `json:"promotion_code,omitempty"`
	ExchangeID        *uuid.UUID `json:"exchange_id,omitempty"`
	ReturnID          *uuid.UUID `json:"return_id,omitempty"`
}

// NewSessionResponse converts a session to its API shape
func NewSessionResponse(s *ChangeSession) SessionResponse {
	actions := make([]ActionResponse, len(s.Actions))
	for i, a := range s.Actions {
		actions[i] = ActionResponse{
			ID:                a.ID,
			Kind:              string(a.Kind),
			ReferenceID:       a.ReferenceID,
			VariantID:         a.VariantID,
			ShippingOptionID:  a.ShippingOptionID,
			Quantity:          a.Quantity,
			UnitPriceCents:    a.UnitPriceCents,
			CustomAmountCents: a.CustomAmountCents,
			PromotionCode:     a.PromotionCode,
			ExchangeID:        a.ExchangeID,
			ReturnID:          a.ReturnID,
		}
	}
	return SessionResponse{
		ID:          s.ID,
		OrderID:     s.OrderID,
		Kind:        string(s.Kind),
		Status:      string(s.Status),
		Actions:     actions,
		CreatedAt:   s.CreatedAt,
		RequestedAt: s.RequestedAt,
		ConfirmedAt: s.ConfirmedAt,
		CanceledAt:  s.CanceledAt,
	}
}
