// File: internal/common/context_helpers.go
package common

import (
	"strings"
	"time"

	"marketplace_backend/internal/domain"

	"github.com/gin-gonic/gin"
)

// GetTokenFromHeader retrieves the bearer token from the Authorization header.
// Returns an empty string if the header is missing or not of the form "Bearer <token>".
func GetTokenFromHeader(c *gin.Context) string {
	authHeader := strings.TrimSpace(c.GetHeader(AuthorizationHeader))
	if authHeader == "" {
		return ""
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], AuthorizationTypeBearer) {
		return ""
	}
	return parts[1]
}

// GetAccountIDFromContext retrieves the verified account ID from the Gin context.
func GetAccountIDFromContext(c *gin.Context) string {
	return c.GetString(AccountIDKey)
}

// GetAccountEmailFromContext retrieves the verified account email from the Gin context.
func GetAccountEmailFromContext(c *gin.Context) string {
	return c.GetString(AccountEmailKey)
}

// GetAccountRoleFromContext retrieves the account role. ok is false when the
// request did not pass the profile-loading auth middleware.
func GetAccountRoleFromContext(c *gin.Context) (domain.Role, bool) {
	val, exists := c.Get(AccountRoleKey)
	if !exists {
		return 0, false
	}
	role, ok := val.(domain.Role)
	if !ok || !role.Valid() {
		return 0, false
	}
	return role, true
}

// GetRawTokenFromContext returns the bearer token stored by the auth middleware.
func GetRawTokenFromContext(c *gin.Context) string {
	return c.GetString(RawTokenKey)
}

// GetTokenExpiryFromContext returns the verified token's expiry.
func GetTokenExpiryFromContext(c *gin.Context) time.Time {
	return c.GetTime(TokenExpiryKey)
}
