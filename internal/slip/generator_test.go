package slip

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/commerce-platform/order-edit-service/internal/models"
)

func TestGenerateReturnSlip(t *testing.T) {
	lineID := uuid.New()
	order := &models.OrderResponse{
		ID:        uuid.New(),
		DisplayID: 1042,
		Currency:  "USD",
		Items: []models.OrderItemResponse{
			{ID: lineID, VariantID: "variant-tee", SKU: "TEE-M", Title: "Basic Tee", Quantity: 2, UnitPriceCents: 2500},
		},
	}
	ret := &models.Return{
		ID:         uuid.New(),
		OrderID:    order.ID,
		Status:     models.ReturnStatusItemsRequested,
		LocationID: "loc-warehouse-1",
		CreatedAt:  time.Now(),
		Items: []models.ReturnItem{
			{LineItemID: lineID, RequestedQuantity: 1, ReasonID: "damaged", Note: "sleeve torn"},
			// a line missing from the order falls back to its id
			{LineItemID: uuid.New(), RequestedQuantity: 1},
		},
	}

	buf, err := NewGenerator().Generate(order, ret)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("generated PDF is empty")
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("output does not look like a PDF: %q", buf.Bytes()[:8])
	}
}
