package models

import (
	"time"

	"github.com/google/uuid"
)

// ReturnStatus represents the state of a return's workflow.
// NONE -> ITEMS_REQUESTED -> REQUEST_CONFIRMED -> RECEIVING -> RECEIVED,
// with CANCELED reachable from any non-terminal state.
type ReturnStatus string

const (
	ReturnStatusNone             ReturnStatus = "NONE"
	ReturnStatusItemsRequested   ReturnStatus = "ITEMS_REQUESTED"
	ReturnStatusRequestConfirmed ReturnStatus = "REQUEST_CONFIRMED"
	ReturnStatusReceiving        ReturnStatus = "RECEIVING"
	ReturnStatusReceived         ReturnStatus = "RECEIVED"
	ReturnStatusCanceled         ReturnStatus = "CANCELED"
)

// Terminal reports whether the return workflow has ended
func (s ReturnStatus) Terminal() bool {
	return s == ReturnStatusReceived || s == ReturnStatusCanceled
}

// Return tracks items coming back from a customer. A standalone return
// owns its change session; an exchange's inbound return shares the
// exchange's session and carries the exchange id.
type Return struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	SessionID  uuid.UUID
	ExchangeID *uuid.UUID
	Status     ReturnStatus
	LocationID string
	Items      []ReturnItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
	CanceledAt *time.Time
	ReceivedAt *time.Time
}

// ReturnItem is the per-line bookkeeping of a return. Received quantity
// may legitimately differ from requested quantity.
type ReturnItem struct {
	ReturnID          uuid.UUID
	LineItemID        uuid.UUID
	RequestedQuantity int
	ReceivedQuantity  int
	ReasonID          string
	Note              string
}

// RequestItemsInput is one line of a return request
type RequestItemsInput struct {
	LineItemID uuid.UUID `json:"line_item_id" binding:"required"`
	Quantity   int       `json:"quantity"`
	ReasonID   string    `json:"reason_id,omitempty"`
	Note       string    `json:"note,omitempty"`
}

// ReceiveItemsInput is one line of a return receipt
type ReceiveItemsInput struct {
	LineItemID uuid.UUID `json:"line_item_id" binding:"required"`
	Quantity   int       `json:"quantity"`
}

// ReturnResponse represents a return in API responses
type ReturnResponse struct {
	ID         uuid.UUID            `json:"id"`
	OrderID    uuid.UUID            `json:"order_id"`
	SessionID  uuid.UUID            `json:"session_id"`
	ExchangeID *uuid.UUID           `json:"exchange_id,omitempty"`
	Status     string               `json:"status"`
	LocationID string               `json:"location_id,omitempty"`
	Items      []ReturnItemResponse `json:"items"`
	CreatedAt  time.Time            `json:"created_at"`
	ReceivedAt *time.Time           `json:"received_at,omitempty"`
	CanceledAt *time.Time           `json:"canceled_at,omitempty"`
}

// ReturnItemResponse represents a return line in API responses
type ReturnItemResponse struct {
	LineItemID        uuid.UUID `json:"line_item_id"`
	RequestedQuantity int       `json:"requested_quantity"`
	ReceivedQuantity  int       `json:"received_quantity"`
	ReasonID          string    `json:"reason_id,omitempty"`
	Note              string    `json:"note,omitempty"`
}

// NewReturnResponse converts a return to its API shape
func NewReturnResponse(r *Return) ReturnResponse {
	items := make([]ReturnItemResponse, len(r.Items))
	for i, it := range r.Items {
		items[i] = ReturnItemResponse{
			LineItemID:        it.LineItemID,
			RequestedQuantity: it.RequestedQuantity,
			ReceivedQuantity:  it.ReceivedQuantity,
			ReasonID:          it.ReasonID,
			Note:              it.Note,
		}
	}
	return ReturnResponse{
		ID:         r.ID,
		OrderID:    r.OrderID,
		SessionID:  r.SessionID,
		ExchangeID: r.ExchangeID,
		Status:     string(r.Status),
		LocationID: r.LocationID,
		Items:      items,
		CreatedAt:  r.CreatedAt,
		ReceivedAt: r.ReceivedAt,
		CanceledAt: r.CanceledAt,
	}
}
