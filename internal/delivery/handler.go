package delivery

import (
	"net/http"

	"marketplace_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Delivery is one drop-off assigned to a rider.
type Delivery struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Address   string `json:"address"`
	Status    string `json:"status"`
}

// ListResponse is the body of GET /api/rider/deliveries.
type ListResponse struct {
	Message    string     `json:"message"`
	Deliveries []Delivery `json:"deliveries"`
}

// Handler serves the rider's assigned deliveries. Assignment is not tracked
// yet, so every rider gets an empty schedule.
type Handler struct {
	logger *zap.Logger
}

// NewHandler creates a new delivery handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger.Named("delivery_handler")}
}

// RegisterRoutes mounts GET /rider/deliveries behind the given middlewares.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, mws ...gin.HandlerFunc) {
	router.GET("/rider/deliveries", append(append([]gin.HandlerFunc{}, mws...), h.list)...)
}

func (h *Handler) list(c *gin.Context) {
	h.logger.Debug("Listing deliveries", zap.String("riderID", common.GetAccountIDFromContext(c)))
	c.JSON(http.StatusOK, ListResponse{Message: "Your assigned deliveries", Deliveries: []Delivery{}})
}
