package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/ogonki/streak-api/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers      *handlers.Provider
	webhookSecret string
}

// NewRoutes builds the v1 route registrar.
func NewRoutes(handlerProvider *handlers.Provider, webhookSecret string) *Routes {
	return &Routes{
		handlers:      handlerProvider,
		webhookSecret: webhookSecret,
	}
}

// Register attaches all v1 routes under /v1 prefix.
func (r *Routes) Register(engine *gin.Engine) {
	group := engine.Group("/v1")
	registerTelegramRoutes(group, r.handlers.Telegram, r.webhookSecret)
}
