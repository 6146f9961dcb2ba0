package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/commerce-platform/order-edit-service/internal/models"
)

type createReturnRequest struct {
	LocationID string `json:"location_id,omitempty"`
}

type requestItemsRequest struct {
	Items []models.RequestItemsInput `json:"items" binding:"required"`
}

type receiveItemsRequest struct {
	Items []models.ReceiveItemsInput `json:"items" binding:"required"`
}

// CreateReturn handles POST /api/orders/:id/returns
func (h *Handler) CreateReturn(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req createReturnRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": err.Error()})
			return
		}
	}

	ret, err := h.returns.CreateReturn(c.Request.Context(), orderID, req.LocationID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewReturnResponse(ret))
}

// GetReturn handles GET /api/returns/:id
func (h *Handler) GetReturn(c *gin.Context) {
	returnID, ok := parseID(c, "id")
	if !ok {
		return
	}

	ret, err := h.returns.Get(c.Request.Context(), returnID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewReturnResponse(ret))
}

// RequestReturnItems handles POST /api/returns/:id/request
// Repeat calls accumulate requested quantities per line item.
func (h *Handler) RequestReturnItems(c *gin.Context) {
	returnID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req requestItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": err.Error()})
		return
	}

	ret, err := h.returns.RequestItems(c.Request.Context(), returnID, req.Items)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewReturnResponse(ret))
}

// ConfirmReturnRequest handles POST /api/returns/:id/request/confirm
func (h *Handler) ConfirmReturnRequest(c *gin.Context) {
	returnID, ok := parseID(c, "id")
	if !ok {
		return
	}

	ret, err := h.returns.ConfirmRequest(c.Request.Context(), returnID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewReturnResponse(ret))
}

// StartReturnReceive handles POST /api/returns/:id/receive
func (h *Handler) StartReturnReceive(c *gin.Context) {
	returnID, ok := parseID(c, "id")
	if !ok {
		return
	}

	ret, err := h.returns.StartReceive(c.Request.Context(), returnID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewReturnResponse(ret))
}

// ReceiveReturnItems handles POST /api/returns/:id/receive/items
// Received quantities accumulate and may exceed what was requested.
func (h *Handler) ReceiveReturnItems(c *gin.Context) {
	returnID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req receiveItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": err.Error()})
		return
	}

	ret, err := h.returns.ReceiveItems(c.Request.Context(), returnID, req.Items)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewReturnResponse(ret))
}

// ConfirmReturnReceive handles POST /api/returns/:id/receive/confirm
func (h *Handler) ConfirmReturnReceive(c *gin.Context) {
	returnID, ok := parseID(c, "id")
	if !ok {
		return
	}

	ret, err := h.returns.ConfirmReceive(c.Request.Context(), returnID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewReturnResponse(ret))
}

// CancelReturn handles POST /api/returns/:id/cancel
func (h *Handler) CancelReturn(c *gin.Context) {
	returnID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.returns.Cancel(c.Request.Context(), returnID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": returnID, "canceled": true})
}

// GetReturnSlip handles GET /api/returns/:id/slip
// Generates the printable return slip PDF once items have been requested.
func (h *Handler) GetReturnSlip(c *gin.Context) {
	returnID, ok := parseID(c, "id")
	if !ok {
		return
	}

	ret, err := h.returns.Get(c.Request.Context(), returnID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if ret.Status == models.ReturnStatusNone {
		c.JSON(http.StatusConflict, gin.H{"code": "NOT_APPLICABLE", "error": "return has no requested items"})
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), ret.OrderID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	buf, err := h.slips.Generate(order, ret)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=return-slip-%s.pdf", returnID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
