package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/commerce-platform/order-edit-service/internal/models"
	"github.com/commerce-platform/order-edit-service/internal/service"
	"github.com/commerce-platform/order-edit-service/internal/slip"
)

type Handler struct {
	sessions  *service.SessionService
	edits     *service.EditService
	returns   *service.ReturnService
	exchanges *service.ExchangeService
	orders    *service.OrderService
	variants  service.VariantCatalog
	shipping  service.ShippingCatalog
	locations service.LocationDirectory
	reasons   service.ReasonDirectory
	slips     *slip.Generator
	logger    *zap.Logger
}

func NewHandler(
	sessions *service.SessionService,
	edits *service.EditService,
	returns *service.ReturnService,
	exchanges *service.ExchangeService,
	orders *service.OrderService,
	variants service.VariantCatalog,
	shipping service.ShippingCatalog,
	locations service.LocationDirectory,
	reasons service.ReasonDirectory,
	slips *slip.Generator,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		sessions:  sessions,
		edits:     edits,
		returns:   returns,
		exchanges: exchanges,
		orders:    orders,
		variants:  variants,
		shipping:  shipping,
		locations: locations,
		reasons:   reasons,
		slips:     slips,
		logger:    logger,
	}
}

// respondError maps the service error taxonomy onto HTTP responses.
// Untyped errors are logged and surfaced as opaque 500s.
func (h *Handler) respondError(c *gin.Context, err error) {
	var apiErr *models.APIError
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.StatusCode, gin.H{"code": apiErr.Code, "error": apiErr.Message})
		return
	}
	h.logger.Error("unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"code": "INTERNAL_ERROR", "error": "an internal error occurred"})
}

// resolvePriceCents picks the unit price from a request that may carry
// it either as integer minor units or as a decimal major-unit string
// ("19.99"). Minor units win when both are present.
func resolvePriceCents(cents *int64, major *string) (*int64, error) {
	if cents != nil || major == nil {
		return cents, nil
	}
	v, err := models.ParseCents(*major)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// resolveAmountCents does the same for shipping amounts, whose
// major-unit form arrives as a JSON number.
func resolveAmountCents(cents *int64, major *float64) *int64 {
	if cents != nil || major == nil {
		return cents
	}
	v := models.MajorToCents(*major)
	return &v
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": "invalid " + param})
		return uuid.Nil, false
	}
	return id, true
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// SwaggerUI serves the Swagger UI page
func (h *Handler) SwaggerUI(c *gin.Context) {
	SwaggerUI(c)
}

// OpenAPIJSON serves the OpenAPI JSON specification
func (h *Handler) OpenAPIJSON(c *gin.Context) {
	OpenAPIJSON(c)
}

// IngestOrder handles POST /internal/orders
// Accepts the same payload as the ORDER_CREATED Kafka event.
func (h *Handler) IngestOrder(c *gin.Context) {
	var req models.IngestOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "VALIDATION_ERROR", "error": err.Error()})
		return
	}

	order, err := h.orders.Ingest(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order_id": order.ID, "version": order.Version})
}

// GetOrder handles GET /api/orders/:id
func (h *Handler) GetOrder(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}
