package middleware

import (
	"net/http"
	"strings"

	"marketplace_backend/internal/common"

	"github.com/gin-gonic/gin"
)

// AllowMethods rejects any method not listed with 405 METHOD_NOT_ALLOWED and an
// Allow header. It is meant to run first on routes registered with Any, so the
// method check happens before authentication. OPTIONS is left to the
// preflight middleware.
func AllowMethods(methods ...string) gin.HandlerFunc {
	allow := strings.Join(methods, ", ")
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		for _, m := range methods {
			if c.Request.Method == m {
				c.Next()
				return
			}
		}
		c.Header("Allow", allow)
		common.RespondWithError(c, common.ErrMethodNotAllowed)
	}
}
