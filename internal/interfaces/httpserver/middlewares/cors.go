package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Preflight answers CORS probes on the webhook with an empty 200.
func Preflight() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		h.Set("Access-Control-Max-Age", "86400")
		c.AbortWithStatus(http.StatusOK)
	}
}
