// File: internal/user/handler.go
package user

import (
	"errors"
	"net/http"

	"marketplace_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for profile handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new user handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.Named("user_handler"),
	}
}

// RegisterRoutes mounts /users. tokenMWs only verify the bearer token (the
// profile does not exist yet when it is created); authMWs also load the profile.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, tokenMWs, authMWs []gin.HandlerFunc) {
	userGroup := router.Group("/users")
	{
		userGroup.POST("/profile", append(append([]gin.HandlerFunc{}, tokenMWs...), h.createProfile)...)
		userGroup.GET("/me", append(append([]gin.HandlerFunc{}, authMWs...), h.getMe)...)
	}
}

func (h *Handler) createProfile(c *gin.Context) {
	var req CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Create profile: invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Request body must be valid JSON."))
		return
	}

	acc, err := h.service.CreateProfile(c.Request.Context(),
		common.GetAccountIDFromContext(c),
		common.GetAccountEmailFromContext(c),
		req,
	)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, acc)
}

func (h *Handler) getMe(c *gin.Context) {
	acc, err := h.service.GetAccount(c.Request.Context(), common.GetAccountIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}
