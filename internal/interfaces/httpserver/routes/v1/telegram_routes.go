package v1

import (
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/ogonki/streak-api/internal/infrastructure/telegram"
	"github.com/ogonki/streak-api/internal/interfaces/httpserver/handlers"
	"github.com/ogonki/streak-api/internal/interfaces/httpserver/middlewares"
	"github.com/ogonki/streak-api/internal/interfaces/httpserver/responses"
)

const webhookPath = "/telegram/webhook"

func registerTelegramRoutes(router *gin.RouterGroup, handler *handlers.TelegramHandler, secret string) {
	router.OPTIONS(webhookPath, middlewares.Preflight())
	router.POST(webhookPath, middlewares.SecretToken(secret), postWebhook(handler))
}

// postWebhook godoc
// @Summary      Receive a Telegram update
// @Description  Runs the bot command carried by the update and replies through the Bot API.
// @Description  Updates without a message are acknowledged without action.
// @Tags         telegram
// @Accept       json
// @Produce      json
// @Param        X-Telegram-Bot-Api-Secret-Token  header  string           false  "webhook secret"
// @Param        update                           body    telegram.Update  true   "Telegram update"
// @Success      200  {object}  responses.OKResponse
// @Failure      401  {object}  responses.ErrorResponse
// @Failure      405  {object}  responses.ErrorResponse
// @Failure      500  {object}  responses.ErrorResponse
// @Router       /v1/telegram/webhook [post]
func postWebhook(handler *handlers.TelegramHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.GetRawData()
		if err != nil {
			responses.HandleError(c, fmt.Errorf("read body: %w", err))
			return
		}

		var update telegram.Update
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &update); err != nil {
				responses.HandleError(c, err)
				return
			}
		}

		if err := handler.HandleUpdate(c.Request.Context(), update); err != nil {
			responses.HandleError(c, err)
			return
		}
		responses.OK(c)
	}
}
