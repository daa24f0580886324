package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Preflight answers every OPTIONS request with 200 and an empty body. CORS
// headers are added earlier in the chain by the cors middleware.
func Preflight() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}
