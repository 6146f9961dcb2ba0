package service

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/commerce-platform/order-edit-service/internal/models"
)

// testEnv wires every service against the in-memory fakes with one
// seeded committed order: two line items and one shipping method.
type testEnv struct {
	orders    *fakeOrderStore
	sessions  *fakeSessionStore
	returns   *fakeReturnStore
	exchanges *fakeExchangeStore
	events    *fakePublisher
	catalog   *fakeCatalog
	shipping  *fakeShippingCatalog
	labels    *fakeLabelUploader

	manager     *SessionService
	edits       *EditService
	returnsSvc  *ReturnService
	exchangeSvc *ExchangeService

	order *models.Order
	lineA models.OrderItem
	lineB models.OrderItem
	ship  models.ShippingMethod
}

func newTestEnv() *testEnv {
	orders := newFakeOrderStore()
	sessions := newFakeSessionStore(orders)
	returns := newFakeReturnStore()
	exchanges := newFakeExchangeStore()
	events := &fakePublisher{}
	catalog := &fakeCatalog{variants: map[string]Variant{
		"variant-tee":    {ID: "variant-tee", SKU: "TEE-M", Title: "Basic Tee", UnitPriceCents: 2500, InStock: true},
		"variant-hoodie": {ID: "variant-hoodie", SKU: "HOOD-L", Title: "Zip Hoodie", UnitPriceCents: 5000, InStock: true},
		"variant-poster": {ID: "variant-poster", SKU: "PSTR-A2", Title: "Wall Poster", UnitPriceCents: 1500, InStock: true},
		"variant-rare":   {ID: "variant-rare", SKU: "RARE-1", Title: "Limited Print", UnitPriceCents: 9000, InStock: false},
	}}
	shippingCat := &fakeShippingCatalog{options: map[string]ShippingOption{
		"so-standard": {ID: "so-standard", Name: "Standard Shipping", AmountCents: 800},
		"so-express":  {ID: "so-express", Name: "Express Shipping", AmountCents: 1500},
		"so-return":   {ID: "so-return", Name: "Return Shipping", AmountCents: 500},
	}}
	labels := &fakeLabelUploader{}

	logger := zap.NewNop()
	manager := NewSessionService(orders, sessions, exchanges, events, logger)
	edits := NewEditService(orders, sessions, catalog, shippingCat, logger)
	returnsSvc := NewReturnService(orders, sessions, returns, manager, events, logger)
	exchangeSvc := NewExchangeService(orders, sessions, returns, exchanges, manager, edits, labels, logger)

	now := time.Now().UTC()
	order := &models.Order{
		ID:         uuid.New(),
		DisplayID:  1042,
		Currency:   "USD",
		Status:     models.OrderStatusCompleted,
		Version:    3,
		CustomerID: "cus_9f2c",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	lineA := models.OrderItem{
		ID:             uuid.New(),
		OrderID:        order.ID,
		VariantID:      "variant-tee",
		SKU:            "TEE-M",
		Title:          "Basic Tee",
		Quantity:       2,
		UnitPriceCents: 2500,
		Currency:       "USD",
	}
	lineB := models.OrderItem{
		ID:             uuid.New(),
		OrderID:        order.ID,
		VariantID:      "variant-hoodie",
		SKU:            "HOOD-L",
		Title:          "Zip Hoodie",
		Quantity:       1,
		UnitPriceCents: 5000,
		Currency:       "USD",
	}
	ship := models.ShippingMethod{
		ID:               uuid.New(),
		OrderID:          order.ID,
		ShippingOptionID: "so-standard",
		Name:             "Standard Shipping",
		AmountCents:      800,
	}

	orders.orders[order.ID] = order
	orders.items[order.ID] = []models.OrderItem{lineA, lineB}
	orders.shipping[order.ID] = []models.ShippingMethod{ship}

	return &testEnv{
		orders:      orders,
		sessions:    sessions,
		returns:     returns,
		exchanges:   exchanges,
		events:      events,
		catalog:     catalog,
		shipping:    shippingCat,
		labels:      labels,
		manager:     manager,
		edits:       edits,
		returnsSvc:  returnsSvc,
		exchangeSvc: exchangeSvc,
		order:       order,
		lineA:       lineA,
		lineB:       lineB,
		ship:        ship,
	}
}

func int64Ptr(v int64) *int64 { return &v }
