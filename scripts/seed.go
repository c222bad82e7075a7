package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"giftbot/internal/config"
	"giftbot/internal/draw"
	"giftbot/internal/models"
	"giftbot/internal/repository"
	"giftbot/internal/services"
	"giftbot/pkg/database"
)

// logMessenger пишет исходящие сообщения в лог вместо Telegram
type logMessenger struct {
	log *slog.Logger
}

func (m logMessenger) SendMessage(chatID int64, text string) error {
	m.log.Info("message", "chat_id", chatID, "text", text)
	return nil
}

func main() {
	runDraw := flag.Bool("draw", false, "провести жеребьёвку в демо-группе")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	if err := seed(context.Background(), logger, *runDraw); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func seed(ctx context.Context, logger *slog.Logger, runDraw bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Подключаемся к базе данных
	db, err := database.NewDatabase(cfg.DBDriver, cfg.DBPath, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, err := draw.NewSeededEngine(cfg.DrawMaxAttempts)
	if err != nil {
		return err
	}

	groupRepo := repository.NewGroupRepository(db.DB)
	participantRepo := repository.NewParticipantRepository(db.DB)
	assignmentRepo := repository.NewAssignmentRepository(db.DB)
	notificationRepo := repository.NewNotificationRepository(db.DB)

	notifier := services.NewNotificationService(notificationRepo, logMessenger{log: logger}, cfg.ReportChunkSize, 1, logger)
	groups := services.NewGroupService(groupRepo, participantRepo, assignmentRepo, notificationRepo,
		notifier, engine, nil, cfg.InviteBase(), logger)
	participants := services.NewParticipantService(groupRepo, participantRepo, assignmentRepo,
		notifier, true, false, logger)

	adminID := cfg.AdminTelegramID
	if adminID == 0 {
		adminID = 123456789
	}

	// Создаем демо-группу
	group, err := groups.CreateGroup(ctx, adminID, models.GroupDraft{
		Name:             "Новогодний офис",
		OrganizerContact: "Анна Петрова, @anna_hr",
		Budget:           "1000-1500 руб",
		MaxParticipants:  10,
		RegDeadline:      "15 декабря",
		SendDeadline:     "25 декабря",
	})
	if err != nil {
		return fmt.Errorf("create group: %w", err)
	}

	// Создаем тестовых участников
	demo := []struct {
		telegramID int64
		username   string
		draft      models.ParticipantDraft
	}{
		{987654321, "ivan", models.ParticipantDraft{FullName: "Иванов Иван", Nickname: "Снежный_Санта", PickupAddress: "Москва, ТЦ Авиапарк", Wishlist: "книги, настольные игры"}},
		{111222333, "maria", models.ParticipantDraft{FullName: "Петрова Мария", Nickname: "Снегурочка", PickupAddress: "Москва, м. Сокол", PostalAddress: "125315, Москва, ул. Ленина, д. 10"}},
		{444555666, "", models.ParticipantDraft{FullName: "Сидоров Пётр", Nickname: "Дед_Мороз", PickupAddress: "Химки, ПВЗ Ozon", Wishlist: "размер L, без шоколада"}},
		{777888999, "olga", models.ParticipantDraft{FullName: "Кузнецова Ольга", Nickname: "Ёлочка", PickupAddress: "Москва, ТЦ Европейский"}},
	}
	for _, d := range demo {
		if _, err := participants.Register(ctx, group.ID, d.telegramID, d.username, d.draft); err != nil {
			return fmt.Errorf("register %s: %w", d.draft.FullName, err)
		}
	}

	logger.Info("demo group created", "group_id", group.ID, "invite", groups.InviteLink(group.ID), "participants", len(demo))

	if !runDraw {
		return nil
	}
	out, err := groups.CompleteDraw(ctx, group.ID)
	if err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	logger.Info("demo draw completed", "pairs", len(out.Pairs), "fallback", out.Fallback, "attempts", out.Attempts)
	return nil
}
