package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gin-gonic/gin"

	"github.com/chatbotchef/chatbotchef/internal/http/middleware"
	"github.com/chatbotchef/chatbotchef/internal/queue"
)

// Webhook godoc
//
// @ID          telegramWebhook
// @Summary     Receive a Telegram update
// @Description Accepts one Bot API update and queues it. Always answers 200 so Telegram does not redeliver; duplicates are dropped downstream.
// @Tags        Telegram
// @Accept      json
// @Param       X-Telegram-Bot-Api-Secret-Token  header  string  false  "Webhook secret"
// @Success     200
// @Failure     401  {object}  handlers.ErrorResponse  "Secret mismatch"
// @Router      /telegram/webhook [post]
func (h *Handlers) Webhook(c *gin.Context) {
	lg := middleware.LoggerFrom(c)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		lg.Warn().Err(err).Msg("webhook body read failed")
		c.Status(http.StatusOK)
		return
	}
	var u tgbotapi.Update
	if err := json.Unmarshal(body, &u); err != nil {
		lg.Warn().Err(err).Int("bytes", len(body)).Msg("webhook update parse failed")
		c.Status(http.StatusOK)
		return
	}

	if !h.queue.Enqueue(queue.Job{UpdateID: int64(u.UpdateID), Update: u}) {
		lg.Warn().Int("update_id", u.UpdateID).Msg("work queue unavailable; update dropped")
	}
	c.Status(http.StatusOK)
}
