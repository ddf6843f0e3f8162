package responses

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error" example:"Method not allowed"`
}

// OKResponse acknowledges a webhook update.
type OKResponse struct {
	OK bool `json:"ok" example:"true"`
}

// HandleError replies 500 with the error text. Telegram retries on non-2xx.
func HandleError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}

// MethodNotAllowed is installed as the engine's NoMethod handler.
func MethodNotAllowed(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
}

// OK acknowledges an update.
func OK(c *gin.Context) {
	c.JSON(http.StatusOK, OKResponse{OK: true})
}
