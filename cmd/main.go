package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"giftbot/internal/config"
	"giftbot/internal/conversation"
	"giftbot/internal/draw"
	"giftbot/internal/handlers"
	"giftbot/internal/repository"
	"giftbot/internal/services"
	"giftbot/internal/telemetry"
	"giftbot/pkg/database"
	"giftbot/pkg/storage"
	"giftbot/pkg/telegram"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("giftbot stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Метрики: без OTEL_ENABLED счетчики остаются no-op
	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:        cfg.TelemetryEnabled,
		ExporterURL:    cfg.TelemetryExporterURL,
		Interval:       cfg.TelemetryInterval,
		ServiceVersion: cfg.ServiceVersion,
	}, logger)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		flushCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		if err := shutdownTelemetry(flushCtx); err != nil {
			logger.Warn("failed to flush metrics", "error", err)
		}
	}()

	// Подключаемся к базе данных
	db, err := database.NewDatabase(cfg.DBDriver, cfg.DBPath, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	// Хранилище архивов отчётов
	archive, err := storage.NewStorage(cfg.ReportPath, cfg.ReportMaxSize)
	if err != nil {
		return err
	}

	// Инициализируем Telegram бота
	bot, err := telegram.NewBot(cfg.TelegramBotToken, cfg.TelegramWebhookURL)
	if err != nil {
		return fmt.Errorf("init telegram bot: %w", err)
	}
	if err := bot.SetCommands(); err != nil {
		logger.Warn("failed to set bot commands", "error", err)
	}

	inviteBase := cfg.InviteBase()
	if cfg.BotUsername == "" {
		inviteBase = "https://t.me/" + bot.Username()
	}

	engine, err := draw.NewSeededEngine(cfg.DrawMaxAttempts)
	if err != nil {
		return err
	}

	// Создаем репозитории
	groupRepo := repository.NewGroupRepository(db.DB)
	participantRepo := repository.NewParticipantRepository(db.DB)
	assignmentRepo := repository.NewAssignmentRepository(db.DB)
	notificationRepo := repository.NewNotificationRepository(db.DB)

	// Создаем сервисы
	notifier := services.NewNotificationService(notificationRepo, bot, cfg.ReportChunkSize, cfg.NotifyConcurrency, logger)
	groupService := services.NewGroupService(groupRepo, participantRepo, assignmentRepo, notificationRepo,
		notifier, engine, archive, inviteBase, logger)
	participantService := services.NewParticipantService(groupRepo, participantRepo, assignmentRepo,
		notifier, cfg.AutoConfirm, cfg.CapacityCountsPending, logger)
	authService := services.NewAuthService(cfg.JWTSecret, cfg.JWTExpiration, cfg.AdminTelegramID, cfg.TelegramBotToken)

	sessions := conversation.NewStore(cfg.SessionTTL)
	botHandler := handlers.NewBotHandler(bot, groupService, participantService,
		conversation.NewEngine(sessions), cfg.AdminTelegramID, cfg.ReportChunkSize, logger)

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(handlers.RouterDeps{
		Webhook:     handlers.NewWebhookHandler(botHandler, logger),
		Groups:      handlers.NewGroupHandler(groupService, participantService, notifier, cfg.AdminTelegramID),
		Auth:        handlers.NewAuthHandler(authService),
		AuthService: authService,
		Ping:        db.Ping,
		Log:         logger,
	})

	go sweep(ctx, cfg, sessions, notifier, archive, logger)

	// Без webhook URL читаем обновления long polling
	if cfg.TelegramWebhookURL != "" {
		if err := bot.SetWebhook(); err != nil {
			logger.Error("failed to set webhook", "error", err)
		}
	} else {
		if err := bot.RemoveWebhook(); err != nil {
			logger.Warn("failed to remove webhook", "error", err)
		}
		go poll(ctx, bot, botHandler, logger)
	}

	server := &http.Server{
		Addr:              cfg.Host + ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting giftbot server", "addr", server.Addr, "bot", bot.Username(),
			"auto_confirm", cfg.AutoConfirm, "admin_id", cfg.AdminTelegramID)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	return server.Shutdown(shutdownCtx)
}

// poll читает обновления и обрабатывает их по одному, сохраняя порядок событий
func poll(ctx context.Context, bot *telegram.Bot, h *handlers.BotHandler, logger *slog.Logger) {
	updates := bot.GetUpdates()
	defer bot.StopUpdates()

	logger.Info("polling telegram updates")
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if ev, ok := telegram.EventFromUpdate(update); ok {
				h.HandleEvent(ctx, ev)
			}
		}
	}
}

// sweep периодически удаляет просроченные анкеты и старые данные
func sweep(
	ctx context.Context,
	cfg *config.Config,
	sessions *conversation.Store,
	notifier services.NotificationService,
	archive *storage.Storage,
	logger *slog.Logger,
) {
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := sessions.Sweep(now); n > 0 {
				logger.Info("expired sessions removed", "count", n)
			}
			if err := notifier.CleanupOld(ctx, cfg.Retention); err != nil {
				logger.Warn("failed to cleanup notifications", "error", err)
			}
			if err := archive.CleanupOldFiles(cfg.Retention); err != nil {
				logger.Warn("failed to cleanup reports", "error", err)
			}
		}
	}
}
