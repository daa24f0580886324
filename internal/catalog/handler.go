package catalog

import (
	"net/http"

	"marketplace_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the buyer catalog.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new catalog handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("catalog_handler")}
}

// RegisterRoutes mounts GET /catalog behind the given middlewares.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, mws ...gin.HandlerFunc) {
	router.GET("/catalog", append(append([]gin.HandlerFunc{}, mws...), h.search)...)
}

func (h *Handler) search(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)
	items, pagination, err := h.service.Search(c.Request.Context(), c.Query("q"), page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, SearchResponse{Products: items, Pagination: pagination})
}
