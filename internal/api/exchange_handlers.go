package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/commerce-platform/order-edit-service/internal/models"
)

type inboundItemsRequest struct {
	LocationID string                     `json:"location_id,omitempty"`
	Items      []models.RequestItemsInput `json:"items" binding:"required"`
}

type outboundItemsRequest struct {
	Items []models.OutboundItemInput `json:"items" binding:"required"`
}

type inboundShippingRequest struct {
	ShippingOptionID  string   `json:"shipping_option_id" binding:"required"`
	CustomAmountCents *int64   `json:"custom_amount_cents,omitempty"`
	CustomAmount      *float64 `json:"custom_amount,omitempty"`
	TrackingNumber    string   `json:"tracking_number,omitempty"`
	TrackingURL       string   `json:"tracking_url,omitempty"`
	LabelURL          string   `json:"label_url,omitempty"`
}

func (h *Handler) exchangeResponse(c *gin.Context, ex *models.Exchange) (models.ExchangeResponse, error) {
	returnID, err := h.exchanges.ResolveExchangeReturnID(c.Request.Context(), ex.ID)
	if err != nil {
		return models.ExchangeResponse{}, err
	}
	return models.ExchangeResponse{
		ID:           ex.ID,
		OrderID:      ex.OrderID,
		SessionID:    ex.SessionID,
		ReturnID:     returnID,
		Status:       string(ex.Status),
		TrackingMeta: ex.TrackingMeta,
		CreatedAt:    ex.CreatedAt,
		CanceledAt:   ex.CanceledAt,
	}, nil
}

// CreateExchange handles POST /api/orders/:id/exchanges
func (h *Handler) CreateExchange(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	ex, err := h.exchanges.CreateExchange(c.Request.Context(), orderID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp, err := h.exchangeResponse(c, ex)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetExchange handles GET /api/exchanges/:id
func (h *Handler) GetExchange(c *gin.Context) {
	exchangeID, ok := parseID(c, "id")
	if !ok {
		return
	}

	ex, err := h.exchanges.Get(c.Request.Context(), exchangeID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp, err := h.exchangeResponse(c, ex)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddExchangeInboundItems handles POST /api/exchanges/:id/inbound/items
// The first call creates the exchange's linked return.
func (h *Handler) AddExchangeInboundItems(c *gin.Context) {
	exchangeID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req inboundItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": err.Error()})
		return
	}

	preview, err := h.exchanges.AddInboundItems(c.Request.Context(), exchangeID, req.LocationID, req.Items)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.exchangePreview(c, exchangeID, preview)
}

// AddExchangeOutboundItems handles POST /api/exchanges/:id/outbound/items
func (h *Handler) AddExchangeOutboundItems(c *gin.Context) {
	exchangeID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req outboundItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": err.Error()})
		return
	}

	for i := range req.Items {
		price, err := resolvePriceCents(req.Items[i].UnitPriceCents, req.Items[i].UnitPrice)
		if err != nil {
			h.respondError(c, err)
			return
		}
		req.Items[i].UnitPriceCents = price
	}

	preview, err := h.exchanges.AddOutboundItems(c.Request.Context(), exchangeID, req.Items)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.exchangePreview(c, exchangeID, preview)
}

// SetExchangeInboundShipping handles POST /api/exchanges/:id/inbound/shipping
// Replaces any previously staged inbound shipping and merges tracking
// metadata, with empty fields removing their keys.
func (h *Handler) SetExchangeInboundShipping(c *gin.Context) {
	exchangeID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req inboundShippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": err.Error()})
		return
	}

	meta := &models.TrackingMeta{
		TrackingNumber: req.TrackingNumber,
		TrackingURL:    req.TrackingURL,
		LabelURL:       req.LabelURL,
	}
	amount := resolveAmountCents(req.CustomAmountCents, req.CustomAmount)
	preview, err := h.exchanges.SetInboundShipping(c.Request.Context(), exchangeID,
		req.ShippingOptionID, amount, meta)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.exchangePreview(c, exchangeID, preview)
}

// SetExchangeOutboundShipping handles POST /api/exchanges/:id/outbound/shipping
func (h *Handler) SetExchangeOutboundShipping(c *gin.Context) {
	exchangeID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req shippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": err.Error()})
		return
	}

	amount := resolveAmountCents(req.CustomAmountCents, req.CustomAmount)
	preview, err := h.exchanges.SetOutboundShipping(c.Request.Context(), exchangeID,
		req.ShippingOptionID, amount)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.exchangePreview(c, exchangeID, preview)
}

// AttachExchangeInboundLabel handles POST /api/exchanges/:id/inbound/label
// Accepts a multipart file upload and stores its URL in the tracking
// metadata.
func (h *Handler) AttachExchangeInboundLabel(c *gin.Context) {
	exchangeID, ok := parseID(c, "id")
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": "file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": "reading file"})
		return
	}

	url, err := h.exchanges.AttachInboundLabel(c.Request.Context(), exchangeID, header.Filename, data)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"label_url": url})
}

// RequestExchange handles POST /api/exchanges/:id/request
func (h *Handler) RequestExchange(c *gin.Context) {
	exchangeID, ok := parseID(c, "id")
	if !ok {
		return
	}

	preview, err := h.exchanges.RequestExchange(c.Request.Context(), exchangeID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.exchangePreview(c, exchangeID, preview)
}

// CancelExchange handles POST /api/exchanges/:id/cancel
func (h *Handler) CancelExchange(c *gin.Context) {
	exchangeID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.exchanges.CancelExchange(c.Request.Context(), exchangeID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": exchangeID, "canceled": true})
}

// exchangePreview responds with the order preview plus the resolved
// linked return id, which clients need after the first inbound call.
func (h *Handler) exchangePreview(c *gin.Context, exchangeID uuid.UUID, preview *models.Preview) {
	returnID, err := h.exchanges.ResolveExchangeReturnID(c.Request.Context(), exchangeID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"return_id": returnID, "preview": preview})
}
