package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Lookup handlers pass through to collaborator services so the admin
// console can populate pickers without talking to them directly.

// ListShippingOptions handles GET /api/lookups/shipping-options
func (h *Handler) ListShippingOptions(c *gin.Context) {
	options, err := h.shipping.ListOptions(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shipping_options": options})
}

// ListStockLocations handles GET /api/lookups/stock-locations
func (h *Handler) ListStockLocations(c *gin.Context) {
	locations, err := h.locations.ListLocations(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stock_locations": locations})
}

// ListReturnReasons handles GET /api/lookups/return-reasons
func (h *Handler) ListReturnReasons(c *gin.Context) {
	reasons, err := h.reasons.ListReasons(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"return_reasons": reasons})
}

// SearchVariants handles GET /api/lookups/variants?q=
func (h *Handler) SearchVariants(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": "query parameter q is required"})
		return
	}

	variants, err := h.variants.SearchVariants(c.Request.Context(), query)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"variants": variants})
}
