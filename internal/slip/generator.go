package slip

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/commerce-platform/order-edit-service/internal/models"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders a printable return slip for the requested items.
// The customer packs this slip with the parcel so the warehouse can
// match it to the return.
func (g *Generator) Generate(order *models.OrderResponse, ret *models.Return) (*bytes.Buffer, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(0, 10, "RETURN SLIP")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, "Commerce Platform")
	pdf.Ln(5)
	pdf.Cell(0, 10, "Returns Department")
	pdf.Ln(15)

	// Return details
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 10, "Return Details")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(40, 8, "Return Number:")
	pdf.Cell(0, 8, ret.ID.String())
	pdf.Ln(6)

	pdf.Cell(40, 8, "Order Number:")
	pdf.Cell(0, 8, fmt.Sprintf("#%d", order.DisplayID))
	pdf.Ln(6)

	pdf.Cell(40, 8, "Requested On:")
	pdf.Cell(0, 8, ret.CreatedAt.Format("January 2, 2006"))
	pdf.Ln(6)

	if ret.LocationID != "" {
		pdf.Cell(40, 8, "Return To:")
		pdf.Cell(0, 8, ret.LocationID)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	// Items table header
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.Cell(80, 8, "Item")
	pdf.Cell(30, 8, "SKU")
	pdf.Cell(25, 8, "Quantity")
	pdf.Cell(55, 8, "Reason")
	pdf.Ln(8)

	titles := make(map[string]models.OrderItemResponse, len(order.Items))
	for _, item := range order.Items {
		titles[item.ID.String()] = item
	}

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(255, 255, 255)
	for _, line := range ret.Items {
		title := line.LineItemID.String()
		sku := ""
		if item, ok := titles[line.LineItemID.String()]; ok {
			title = item.Title
			sku = item.SKU
		}

		pdf.Cell(80, 8, title)
		pdf.Cell(30, 8, sku)
		pdf.Cell(25, 8, fmt.Sprintf("%d", line.RequestedQuantity))
		pdf.Cell(55, 8, line.ReasonID)
		pdf.Ln(8)

		if line.Note != "" {
			pdf.SetFont("Arial", "I", 8)
			pdf.Cell(10, 6, "")
			pdf.Cell(0, 6, line.Note)
			pdf.Ln(6)
			pdf.SetFont("Arial", "", 10)
		}
	}

	// Footer
	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 8)
	pdf.Cell(0, 10, "Include this slip inside the parcel.")
	pdf.Ln(5)
	pdf.Cell(0, 10, fmt.Sprintf("Generated on %s", time.Now().Format("January 2, 2006 at 3:04 PM")))

	var buf bytes.Buffer
	err := pdf.Output(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return &buf, nil
}
