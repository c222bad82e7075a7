package handlers

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"giftbot/internal/services"
)

// RouterDeps - зависимости HTTP маршрутов
type RouterDeps struct {
	Webhook     *WebhookHandler
	Groups      *GroupHandler
	Auth        *AuthHandler
	AuthService *services.AuthService
	Ping        func(context.Context) error
	Log         *slog.Logger
}

// NewRouter собирает gin: health, webhook Telegram и API организатора
func NewRouter(d RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(d.Log))

	router.GET("/health", Health(d.Ping))

	// Webhook для Telegram
	router.POST("/webhook", d.Webhook.Handle)

	api := router.Group("/api")
	api.POST("/auth/telegram", d.Auth.TelegramAuth)

	protected := api.Group("/")
	protected.Use(AdminMiddleware(d.AuthService))
	d.Groups.Register(protected)

	return router
}
