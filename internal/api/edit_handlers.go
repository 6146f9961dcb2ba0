package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/commerce-platform/order-edit-service/internal/models"
)

// Money fields come in two shapes: integer minor units
// (unit_price_cents) or major units (unit_price as a decimal string,
// custom_amount as a number). Minor units win when both are sent.
type addItemRequest struct {
	VariantID      string  `json:"variant_id" binding:"required"`
	Quantity       int     `json:"quantity"`
	UnitPriceCents *int64  `json:"unit_price_cents,omitempty"`
	UnitPrice      *string `json:"unit_price,omitempty"`
}

type updateItemRequest struct {
	Quantity       int     `json:"quantity"`
	UnitPriceCents *int64  `json:"unit_price_cents,omitempty"`
	UnitPrice      *string `json:"unit_price,omitempty"`
}

type shippingRequest struct {
	ShippingOptionID  string   `json:"shipping_option_id" binding:"required"`
	CustomAmountCents *int64   `json:"custom_amount_cents,omitempty"`
	CustomAmount      *float64 `json:"custom_amount,omitempty"`
}

type shippingPatchRequest struct {
	CustomAmountCents *int64   `json:"custom_amount_cents,omitempty"`
	CustomAmount      *float64 `json:"custom_amount,omitempty"`
}

type promotionsRequest struct {
	Codes []string `json:"codes" binding:"required"`
}

type cancelRequest struct {
	Decline bool `json:"decline"`
}

// StartEdit handles POST /api/orders/:id/edits
// The optional ?kind=draft-edit query switches to a draft-order edit.
func (h *Handler) StartEdit(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	kind := models.SessionKindEdit
	if c.Query("kind") == "draft-edit" {
		kind = models.SessionKindDraftEdit
	}

	session, err := h.sessions.Start(c.Request.Context(), orderID, kind)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewSessionResponse(session))
}

// GetActiveEdit handles GET /api/orders/:id/edits/active
func (h *Handler) GetActiveEdit(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	session, err := h.sessions.FindActive(c.Request.Context(), orderID,
		models.SessionKindEdit, models.SessionKindDraftEdit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "error": "no active edit for order"})
		return
	}

	c.JSON(http.StatusOK, models.NewSessionResponse(session))
}

// ListChanges handles GET /api/orders/:id/changes
// Returns the order's full change history across all session kinds.
func (h *Handler) ListChanges(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	sessions, err := h.sessions.ListChanges(c.Request.Context(), orderID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]models.SessionResponse, len(sessions))
	for i := range sessions {
		resp[i] = models.NewSessionResponse(&sessions[i])
	}
	c.JSON(http.StatusOK, gin.H{"changes": resp})
}

// GetOrderPreview handles GET /api/orders/:id/preview
// Shows the order as it would look if the active session were
// confirmed, or the committed order when none is active.
func (h *Handler) GetOrderPreview(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	preview, err := h.sessions.GetPreview(c.Request.Context(), orderID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, preview)
}

// RequestEdit handles POST /api/edits/:id/request
func (h *Handler) RequestEdit(c *gin.Context) {
	sessionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	preview, err := h.sessions.Request(c.Request.Context(), sessionID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, preview)
}

// ConfirmEdit handles POST /api/edits/:id/confirm
func (h *Handler) ConfirmEdit(c *gin.Context) {
	sessionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	preview, err := h.sessions.Confirm(c.Request.Context(), sessionID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, preview)
}

// CancelEdit handles POST /api/edits/:id/cancel
// An optional {"decline": true} body records the cancellation as a
// reviewer decline instead.
func (h *Handler) CancelEdit(c *gin.Context) {
	sessionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req cancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": err.Error()})
			return
		}
	}

	if err := h.sessions.Cancel(c.Request.Context(), sessionID, req.Decline); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": sessionID, "canceled": true})
}

// AddEditItem handles POST /api/edits/:id/items
func (h *Handler) AddEditItem(c *gin.Context) {
	sessionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": err.Error()})
		return
	}

	price, err := resolvePriceCents(req.UnitPriceCents, req.UnitPrice)
	if err != nil {
		h.respondError(c, err)
		return
	}

	preview, err := h.edits.AddItem(c.Request.Context(), sessionID, req.VariantID, req.Quantity, price)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, preview)
}

// UpdateEditItem handles POST /api/edits/:id/items/:lineItemId
// Quantity zero stages a removal; a later update can stage it back.
func (h *Handler) UpdateEditItem(c *gin.Context) {
	sessionID, ok := parseID(c, "id")
	if !ok {
		return
	}
	lineItemID, ok := parseID(c, "lineItemId")
	if !ok {
		return
	}

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": err.Error()})
		return
	}

	price, err := resolvePriceCents(req.UnitPriceCents, req.UnitPrice)
	if err != nil {
		h.respondError(c, err)
		return
	}

	preview, err := h.edits.UpdateItem(c.Request.Context(), sessionID, lineItemID, req.Quantity, price)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, preview)
}

// AddEditShipping handles POST /api/edits/:id/shipping
func (h *Handler) AddEditShipping(c *gin.Context) {
	sessionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req shippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": err.Error()})
		return
	}

	amount := resolveAmountCents(req.CustomAmountCents, req.CustomAmount)
	preview, err := h.edits.AddShipping(c.Request.Context(), sessionID, req.ShippingOptionID, amount)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, preview)
}

// UpdateEditShipping handles POST /api/edits/:id/shipping/:actionId
func (h *Handler) UpdateEditShipping(c *gin.Context) {
	if _, ok := parseID(c, "id"); !ok {
		return
	}
	actionID, ok := parseID(c, "actionId")
	if !ok {
		return
	}

	var req shippingPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": err.Error()})
		return
	}

	amount := resolveAmountCents(req.CustomAmountCents, req.CustomAmount)
	preview, err := h.edits.UpdateShipping(c.Request.Context(), actionID, amount)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, preview)
}

// RemoveEditShipping handles DELETE /api/edits/:id/shipping/:actionId
func (h *Handler) RemoveEditShipping(c *gin.Context) {
	if _, ok := parseID(c, "id"); !ok {
		return
	}
	actionID, ok := parseID(c, "actionId")
	if !ok {
		return
	}

	preview, err := h.edits.RemoveShipping(c.Request.Context(), actionID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, preview)
}

// AddEditPromotions handles POST /api/edits/:id/promotions
func (h *Handler) AddEditPromotions(c *gin.Context) {
	sessionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req promotionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": err.Error()})
		return
	}

	preview, err := h.edits.AddPromotions(c.Request.Context(), sessionID, req.Codes)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, preview)
}

// RemoveEditPromotions handles DELETE /api/edits/:id/promotions
func (h *Handler) RemoveEditPromotions(c *gin.Context) {
	sessionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req promotionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": err.Error()})
		return
	}

	preview, err := h.edits.RemovePromotions(c.Request.Context(), sessionID, req.Codes)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, preview)
}
