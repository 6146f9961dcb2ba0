package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/commerce-platform/order-edit-service/internal/models"
)

// OrderStore provides access to committed orders. The commit write path
// lives on SessionStore because confirming a session is what mutates an
// order.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order, items []models.OrderItem, shipping []models.ShippingMethod) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetItemsByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	GetShippingByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.ShippingMethod, error)
}

// SessionStore owns change sessions and their action ledgers
type SessionStore interface {
	Create(ctx context.Context, session *models.ChangeSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ChangeSession, error)
	ListActiveByOrder(ctx context.Context, orderID uuid.UUID, kinds ...models.SessionKind) ([]models.ChangeSession, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.ChangeSession, error)
	MarkRequested(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkConfirmed(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkCanceled(ctx context.Context, id uuid.UUID, status models.SessionStatus, at time.Time) error
	GetActions(ctx context.Context, sessionID uuid.UUID) ([]models.Action, error)
	AppendAction(ctx context.Context, action *models.Action) error
	GetAction(ctx context.Context, actionID uuid.UUID) (*models.Action, error)
	UpdateAction(ctx context.Context, action *models.Action) error
	DeleteAction(ctx context.Context, actionID uuid.UUID) error
	Confirm(ctx context.Context, session *models.ChangeSession, items []models.OrderItem, shipping []models.ShippingMethod, confirmedAt time.Time) error
}

// ReturnStore owns returns and their per-line quantity bookkeeping
type ReturnStore interface {
	Create(ctx context.Context, ret *models.Return) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Return, error)
	GetByExchangeID(ctx context.Context, exchangeID uuid.UUID) (*models.Return, error)
	UpsertRequestedItems(ctx context.Context, returnID uuid.UUID, items []models.ReturnItem) error
	AddReceivedQuantities(ctx context.Context, returnID uuid.UUID, items []models.ReceiveItemsInput) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReturnStatus, at time.Time) error
}

// ExchangeStore owns exchanges and their tracking metadata
type ExchangeStore interface {
	Create(ctx context.Context, ex *models.Exchange) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Exchange, error)
	GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*models.Exchange, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ExchangeStatus, at time.Time) error
	UpdateTrackingMeta(ctx context.Context, id uuid.UUID, meta map[string]string) error
}

// EventPublisher defines the interface for the Kafka producer
type EventPublisher interface {
	PublishEditConfirmed(ctx context.Context, event models.EditConfirmedEvent) error
	PublishReturnReceived(ctx context.Context, event models.ReturnReceivedEvent) error
}

// VariantCatalog resolves product variants from the catalog service
type VariantCatalog interface {
	GetVariant(ctx context.Context, variantID string) (*Variant, error)
	SearchVariants(ctx context.Context, query string) ([]Variant, error)
}

// ShippingCatalog resolves shipping options from the fulfillment service
type ShippingCatalog interface {
	GetOption(ctx context.Context, optionID string) (*ShippingOption, error)
	ListOptions(ctx context.Context) ([]ShippingOption, error)
}

// LocationDirectory lists stock locations
type LocationDirectory interface {
	ListLocations(ctx context.Context) ([]StockLocation, error)
}

// ReasonDirectory lists return reasons
type ReasonDirectory interface {
	ListReasons(ctx context.Context) ([]ReturnReason, error)
}

// LabelUploader stores shipping label files and returns their URL
type LabelUploader interface {
	UploadLabel(ctx context.Context, filename string, data []byte) (string, error)
}
