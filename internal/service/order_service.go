package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/commerce-platform/order-edit-service/internal/models"
)

// OrderService ingests committed orders from upstream and serves
// read views of them.
type OrderService struct {
	orders   OrderStore
	shipping ShippingCatalog
	logger   *zap.Logger
}

func NewOrderService(orders OrderStore, shipping ShippingCatalog, logger *zap.Logger) *OrderService {
	return &OrderService{
		orders:   orders,
		shipping: shipping,
		logger:   logger,
	}
}

// Ingest stores a committed order snapshot received from the order
// service, either via the internal endpoint or an ORDER_CREATED event.
// Replays of an already-ingested order are no-ops.
func (s *OrderService) Ingest(ctx context.Context, req models.IngestOrderRequest) (*models.Order, error) {
	if req.Currency == "" {
		return nil, models.NewValidationError("currency", "must not be empty")
	}
	if len(req.Items) == 0 {
		return nil, models.NewValidationError("items", "at least one item required")
	}

	status := models.OrderStatus(req.Status)
	if status == "" {
		status = models.OrderStatusPending
	}
	switch status {
	case models.OrderStatusPending, models.OrderStatusCompleted, models.OrderStatusDraft,
		models.OrderStatusCanceled, models.OrderStatusArchived:
	default:
		return nil, models.NewValidationError("status", "unknown order status")
	}

	now := time.Now()
	order := &models.Order{
		ID:         req.OrderID,
		DisplayID:  req.DisplayID,
		Currency:   req.Currency,
		Status:     status,
		Version:    1,
		CustomerID: req.CustomerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, in := range req.Items {
		if in.Quantity <= 0 {
			return nil, models.NewValidationError("quantity", "must be a positive integer")
		}
		id := in.LineItemID
		if id == uuid.Nil {
			id = uuid.New()
		}
		items = append(items, models.OrderItem{
			ID:             id,
			OrderID:        order.ID,
			VariantID:      in.VariantID,
			SKU:            in.SKU,
			Title:          in.Title,
			Quantity:       in.Quantity,
			UnitPriceCents: in.UnitPriceCents,
			Currency:       order.Currency,
			CreatedAt:      now,
		})
	}

	shipping := make([]models.ShippingMethod, 0, len(req.Shipping))
	for _, in := range req.Shipping {
		id := in.ShippingMethodID
		if id == uuid.Nil {
			id = uuid.New()
		}
		shipping = append(shipping, models.ShippingMethod{
			ID:               id,
			OrderID:          order.ID,
			ShippingOptionID: in.ShippingOptionID,
			Name:             in.Name,
			AmountCents:      in.AmountCents,
			CreatedAt:        now,
		})
	}

	if err := s.orders.Create(ctx, order, items, shipping); err != nil {
		return nil, err
	}

	s.logger.Info("order ingested",
		zap.String("order_id", order.ID.String()),
		zap.Int64("display_id", order.DisplayID),
		zap.Int("items", len(items)),
	)
	return order, nil
}

// GetOrder returns a committed order with its items and shipping
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.OrderResponse, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.orders.GetItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	shipping, err := s.orders.GetShippingByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	resp := &models.OrderResponse{
		ID:        order.ID,
		DisplayID: order.DisplayID,
		Currency:  order.Currency,
		Status:    string(order.Status),
		Version:   order.Version,
		Items:     make([]models.OrderItemResponse, 0, len(items)),
		Shipping:  make([]models.ShippingMethodResponse, 0, len(shipping)),
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, models.OrderItemResponse{
			ID:             item.ID,
			VariantID:      item.VariantID,
			SKU:            item.SKU,
			Title:          item.Title,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			Currency:       item.Currency,
		})
	}
	for _, sm := range shipping {
		resp.Shipping = append(resp.Shipping, models.ShippingMethodResponse{
			ID:               sm.ID,
			ShippingOptionID: sm.ShippingOptionID,
			Name:             sm.Name,
			AmountCents:      sm.AmountCents,
		})
	}
	return resp, nil
}
