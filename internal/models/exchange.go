package models

import (
	"time"

	"github.com/google/uuid"
)

// ExchangeStatus mirrors the owning session's lifecycle
type ExchangeStatus string

const (
	ExchangeStatusPending   ExchangeStatus = "PENDING"
	ExchangeStatusRequested ExchangeStatus = "REQUESTED"
	ExchangeStatusConfirmed ExchangeStatus = "CONFIRMED"
	ExchangeStatusCanceled  ExchangeStatus = "CANCELED"
)

// Tracking metadata keys stored on an exchange's inbound leg
const (
	TrackingNumberKey   = "tracking_number"
	TrackingURLKey      = "tracking_url"
	TrackingLabelURLKey = "label_url"
)

// Exchange pairs an inbound return with an outbound item addition under
// one change session. The linked return is discovered by exchange id,
// not held as a direct reference, because it may not exist until the
// first inbound items arrive.
type Exchange struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	SessionID    uuid.UUID
	Status       ExchangeStatus
	TrackingMeta map[string]string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CanceledAt   *time.Time
}

// TrackingMeta for an inbound shipping update. Empty fields delete the
// corresponding key from the stored metadata (sparse key-removal merge).
type TrackingMeta struct {
	TrackingNumber string `json:"tracking_number"`
	TrackingURL    string `json:"tracking_url"`
	LabelURL       string `json:"label_url"`
}

// MergeTracking applies a sparse key-removal merge of meta into existing:
// non-empty fields overwrite, empty fields remove their key. The input
// map is not mutated.
func MergeTracking(existing map[string]string, meta TrackingMeta) map[string]string {
	merged := make(map[string]string, len(existing))
	for k, v := range existing {
		merged[k] = v
	}
	apply := func(key, value string) {
		if value == "" {
			delete(merged, key)
		} else {
			merged[key] = value
		}
	}
	apply(TrackingNumberKey, meta.TrackingNumber)
	apply(TrackingURLKey, meta.TrackingURL)
	apply(TrackingLabelURLKey, meta.LabelURL)
	return merged
}

// OutboundItemInput is one replacement item to ship on an exchange
type OutboundItemInput struct {
	VariantID      string  `json:"variant_id" binding:"required"`
	Quantity       int     `json:"quantity"`
	UnitPriceCents *int64  `json:"unit_price_cents,omitempty"`
	UnitPrice      *string `json:"unit_price,omitempty"`
	AllowBackorder bool    `json:"allow_backorder,omitempty"`
}

// ExchangeResponse represents an exchange in API responses
type ExchangeResponse struct {
	ID           uuid.UUID         `json:"id"`
	OrderID      uuid.UUID         `json:"order_id"`
	SessionID    uuid.UUID         `json:"session_id"`
	ReturnID     *uuid.UUID        `json:"return_id,omitempty"`
	Status       string            `json:"status"`
	TrackingMeta map[string]string `json:"tracking_meta,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	CanceledAt   *time.Time        `json:"canceled_at,omitempty"`
}
