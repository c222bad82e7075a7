package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"giftbot/pkg/telegram"
)

// WebhookHandler принимает обновления Telegram
type WebhookHandler struct {
	bot *BotHandler
	log *slog.Logger
}

func NewWebhookHandler(bot *BotHandler, log *slog.Logger) *WebhookHandler {
	return &WebhookHandler{bot: bot, log: log}
}

func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ev, ok, err := telegram.DecodeUpdate(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if ok {
		// обрыв соединения с Telegram не должен прерывать начатую операцию
		h.bot.HandleEvent(context.WithoutCancel(c.Request.Context()), ev)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Health отвечает на проверку живости; ping проверяет хранилище
func Health(ping func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
