// File: internal/product/handler.go
package product

import (
	"net/http"

	"marketplace_backend/internal/common"
	"marketplace_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for product handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new product handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.Named("product_handler"),
	}
}

// RegisterRoutes mounts the vendor product endpoints behind mws (auth, vendor
// role, ...). Each path accepts a single method; anything else gets 405 before
// any of mws runs.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, mws ...gin.HandlerFunc) {
	productGroup := router.Group("/products")
	{
		productGroup.Any("/create", chain(middleware.AllowMethods(http.MethodPost), mws, h.createProduct)...)
		productGroup.Any("", chain(middleware.AllowMethods(http.MethodGet), mws, h.listProducts)...)
	}
}

func chain(guard gin.HandlerFunc, mws []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(mws)+2)
	out = append(out, guard)
	out = append(out, mws...)
	return append(out, handler)
}

func (h *Handler) createProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Create product: invalid request body", zap.Error(err))
		common.RespondWithError(c, invalidProductData(err))
		return
	}

	created, err := h.service.CreateProduct(c.Request.Context(), common.GetAccountIDFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.service.ListVendorProducts(c.Request.Context(), common.GetAccountIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	resp := ListProductsResponse{Products: make([]ProductSummary, 0, len(products))}
	for _, p := range products {
		resp.Products = append(resp.Products, ToSummary(p))
	}
	c.JSON(http.StatusOK, resp)
}
