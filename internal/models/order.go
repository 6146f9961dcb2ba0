package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the status of a committed order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusCanceled  OrderStatus = "CANCELED"
	OrderStatusArchived  OrderStatus = "ARCHIVED"
)

// Order is the committed aggregate. It is read-only to this service
// except through a confirmed change session, which replaces its items
// and shipping methods and bumps Version.
type Order struct {
	ID          uuid.UUID
	DisplayID   int64
	Currency    string
	Status      OrderStatus
	Version     int64
	CustomerID  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// OrderItem represents a committed line item on an order
type OrderItem struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	VariantID      string
	SKU            string
	Title          string
	Quantity       int
	UnitPriceCents int64
	Currency       string
	CreatedAt      time.Time
}

// ShippingMethod represents a committed shipping method on an order
type ShippingMethod struct {
	ID               uuid.UUID
	OrderID          uuid.UUID
	ShippingOptionID string
	Name             string
	AmountCents      int64
	CreatedAt        time.Time
}

// IngestOrderRequest is the payload for committed-order ingestion,
// shared by the internal endpoint and the Kafka ORDER_CREATED event.
type IngestOrderRequest struct {
	OrderID    uuid.UUID            `json:"order_id" binding:"required"`
	DisplayID  int64                `json:"display_id"`
	Currency   string               `json:"currency" binding:"required"`
	CustomerID string               `json:"customer_id"`
	Status     string               `json:"status"`
	Items      []IngestItem         `json:"items" binding:"required"`
	Shipping   []IngestShippingLine `json:"shipping_methods"`
}

// IngestItem is one line item in an ingestion payload
type IngestItem struct {
	LineItemID     uuid.UUID `json:"line_item_id"`
	VariantID      string    `json:"variant_id"`
	SKU            string    `json:"sku"`
	Title          string    `json:"title"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
}

// IngestShippingLine is one shipping method in an ingestion payload
type IngestShippingLine struct {
	ShippingMethodID uuid.UUID `json:"shipping_method_id"`
	ShippingOptionID string    `json:"shipping_option_id"`
	Name             string    `json:"name"`
	AmountCents      int64     `json:"amount_cents"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID        uuid.UUID                `json:"id"`
	DisplayID int64                    `json:"display_id"`
	Currency  string                   `json:"currency"`
	Status    string                   `json:"status"`
	Version   int64                    `json:"version"`
	Items     []OrderItemResponse      `json:"items"`
	Shipping  []ShippingMethodResponse `json:"shipping_methods"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// OrderItemResponse represents a line item in API responses
type OrderItemResponse struct {
	ID             uuid.UUID `json:"id"`
	VariantID      string    `json:"variant_id"`
	SKU            string    `json:"sku"`
	Title          string    `json:"title"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	Currency       string    `json:"currency"`
}

// ShippingMethodResponse represents a shipping method in API responses
type ShippingMethodResponse struct {
	ID               uuid.UUID `json:"id"`
	ShippingOptionID string    `json:"shipping_option_id"`
	Name             string    `json:"name"`
	AmountCents      int64     `json:"amount_cents"`
}
