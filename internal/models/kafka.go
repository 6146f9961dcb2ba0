package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderCreatedEvent is consumed from the commerce backend when an order
// is committed there. Its payload matches the internal ingestion endpoint.
type OrderCreatedEvent struct {
	EventID   uuid.UUID          `json:"eventId"`
	Type      string             `json:"type"`
	Order     IngestOrderRequest `json:"order"`
	CreatedAt time.Time          `json:"createdAt"`
}

// EditConfirmedEvent is published when a change session is confirmed
// and its actions have been applied to the order.
type EditConfirmedEvent struct {
	EventID      uuid.UUID `json:"eventId"`
	Type         string    `json:"type"`
	SessionID    uuid.UUID `json:"sessionId"`
	OrderID      uuid.UUID `json:"orderId"`
	Kind         string    `json:"kind"`
	OrderVersion int64     `json:"orderVersion"`
	TotalCents   int64     `json:"totalCents"`
	Currency     string    `json:"currency"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ReturnReceivedEvent is published when a return's receipt is confirmed.
type ReturnReceivedEvent struct {
	EventID    uuid.UUID  `json:"eventId"`
	Type       string     `json:"type"`
	ReturnID   uuid.UUID  `json:"returnId"`
	OrderID    uuid.UUID  `json:"orderId"`
	ExchangeID *uuid.UUID `json:"exchangeId,omitempty"`
	LocationID string     `json:"locationId,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Event type tags
const (
	EventTypeOrderCreated   = "ORDER_CREATED"
	EventTypeEditConfirmed  = "EDIT_CONFIRMED"
	EventTypeReturnReceived = "RETURN_RECEIVED"
)
