package auth

import (
	"context"

	"marketplace_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RefreshTokenRevoker revokes every refresh token of an account.
type RefreshTokenRevoker interface {
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// Handler serves the server side of logout.
type Handler struct {
	blocklist TokenBlocklistService
	revoker   RefreshTokenRevoker
	logger    *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(blocklist TokenBlocklistService, revoker RefreshTokenRevoker, logger *zap.Logger) *Handler {
	return &Handler{
		blocklist: blocklist,
		revoker:   revoker,
		logger:    logger.Named("auth_handler"),
	}
}

// RegisterRoutes mounts /auth/logout behind the token-only middlewares.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, tokenMWs ...gin.HandlerFunc) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/logout", append(append([]gin.HandlerFunc{}, tokenMWs...), h.logout)...)
	}
}

// logout blocks the presented token for its remaining lifetime and revokes the
// account's refresh tokens, so neither can mint a new session.
func (h *Handler) logout(c *gin.Context) {
	ctx := c.Request.Context()
	uid := common.GetAccountIDFromContext(c)

	if err := h.blocklist.AddToBlocklist(ctx, common.GetRawTokenFromContext(c), common.GetTokenExpiryFromContext(c)); err != nil {
		h.logger.Error("Failed to blocklist token", zap.Error(err), zap.String("accountID", uid))
		common.RespondWithError(c, err)
		return
	}
	if err := h.revoker.RevokeRefreshTokens(ctx, uid); err != nil {
		common.RespondWithError(c, err)
		return
	}

	h.logger.Info("Account logged out", zap.String("accountID", uid))
	common.RespondNoContent(c)
}
