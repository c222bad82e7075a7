package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"giftbot/internal/models"
	"giftbot/internal/repository"
)

// Messenger отправляет текст в личный чат. Реализуется telegram.Bot.
type Messenger interface {
	SendMessage(chatID int64, text string) error
}

// DeliveryFailure - неудачная доставка одному адресату
type DeliveryFailure struct {
	TelegramID int64  `json:"telegram_id"`
	Name       string `json:"name"`
	Reason     string `json:"reason"`
}

// DeliveryReport - итог рассылки: сколько доставлено из скольких и кому не удалось
type DeliveryReport struct {
	Attempted int               `json:"attempted"`
	Succeeded int               `json:"succeeded"`
	Failures  []DeliveryFailure `json:"failures,omitempty"`
}

type NotificationService interface {
	// Deliver отправляет одно сообщение и пишет попытку в журнал
	Deliver(ctx context.Context, groupID string, chatID int64, kind models.NotificationType, text string) error

	NotifyRegistration(ctx context.Context, group *models.Group, p *models.Participant, total int64) error
	NotifyDecision(ctx context.Context, group *models.Group, p *models.Participant, confirmed bool) error

	// DispatchAssignments рассылает дарителям их получателей. Ошибка одной
	// доставки не прерывает остальные.
	DispatchAssignments(ctx context.Context, group *models.Group, pairs []Pair) DeliveryReport

	// SendReport отправляет отчет частями по порядку, возвращает число отправленных частей
	SendReport(ctx context.Context, groupID string, chatID int64, report *Report) (int, error)

	Failures(ctx context.Context, groupID string) ([]*models.Notification, error)
	CleanupOld(ctx context.Context, olderThan time.Duration) error
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	messenger        Messenger
	chunkSize        int
	concurrency      int
	metrics          *instruments
	log              *slog.Logger
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	messenger Messenger,
	chunkSize int,
	concurrency int,
	log *slog.Logger,
) NotificationService {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &notificationService{
		notificationRepo: notificationRepo,
		messenger:        messenger,
		chunkSize:        chunkSize,
		concurrency:      concurrency,
		metrics:          newInstruments(),
		log:              log,
	}
}

func (s *notificationService) Deliver(ctx context.Context, groupID string, chatID int64, kind models.NotificationType, text string) error {
	n := &models.Notification{
		ID:         uuid.New(),
		GroupID:    groupID,
		TelegramID: chatID,
		Type:       kind,
		Message:    text,
		Status:     models.NotificationStatusPending,
	}
	// журнал вторичен: сообщение уходит даже если запись не сохранилась
	logged := true
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		logged = false
		s.log.Warn("failed to record notification", "group_id", groupID, "telegram_id", chatID, "error", err)
	}

	sendErr := ctx.Err()
	if sendErr == nil {
		sendErr = s.messenger.SendMessage(chatID, text)
	}
	s.metrics.delivered(ctx, string(kind), sendErr == nil)

	if sendErr != nil {
		s.log.Error("failed to deliver message",
			"group_id", groupID, "telegram_id", chatID, "type", kind, "error", sendErr)
		if logged {
			if err := s.notificationRepo.MarkAsFailed(context.WithoutCancel(ctx), n.ID, sendErr.Error()); err != nil {
				s.log.Warn("failed to mark notification failed", "id", n.ID, "error", err)
			}
		}
		return fmt.Errorf("failed to send message to %d: %w", chatID, sendErr)
	}

	if logged {
		if err := s.notificationRepo.MarkAsSent(ctx, n.ID); err != nil {
			s.log.Warn("failed to mark notification sent", "id", n.ID, "error", err)
		}
	}
	return nil
}

func (s *notificationService) NotifyRegistration(ctx context.Context, group *models.Group, p *models.Participant, total int64) error {
	text := fmt.Sprintf("👤 НОВЫЙ УЧАСТНИК В ГРУППЕ '%s':\nИмя: %s\nНик: %s\nTelegram: %s\nВсего участников: %d/%d",
		group.Name, p.FullName, p.Nickname, handle(p), total, group.MaxParticipants)
	if !p.IsConfirmed() {
		text += "\n\n⏳ Ожидает подтверждения: /approve " + p.ID.String() + " или /reject " + p.ID.String()
	}
	return s.Deliver(ctx, group.ID, group.AdminID, models.NotificationTypeRegistration, text)
}

func (s *notificationService) NotifyDecision(ctx context.Context, group *models.Group, p *models.Participant, confirmed bool) error {
	if confirmed {
		text := fmt.Sprintf("✅ Организатор подтвердил ваше участие в группе '%s'.\nОжидайте начала жеребьёвки!", group.Name)
		return s.Deliver(ctx, group.ID, p.TelegramID, models.NotificationTypeConfirmed, text)
	}
	text := fmt.Sprintf("❌ Организатор отклонил вашу заявку в группу '%s'.", group.Name)
	return s.Deliver(ctx, group.ID, p.TelegramID, models.NotificationTypeRejected, text)
}

func (s *notificationService) DispatchAssignments(ctx context.Context, group *models.Group, pairs []Pair) DeliveryReport {
	errs := make([]error, len(pairs))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, pair := range pairs {
		g.Go(func() error {
			errs[i] = s.Deliver(ctx, group.ID, pair.Giver.TelegramID,
				models.NotificationTypeAssignment, GiftMessage(group, pair.Receiver))
			return nil
		})
	}
	_ = g.Wait()

	report := DeliveryReport{Attempted: len(pairs)}
	for i, err := range errs {
		if err == nil {
			report.Succeeded++
			continue
		}
		report.Failures = append(report.Failures, DeliveryFailure{
			TelegramID: pairs[i].Giver.TelegramID,
			Name:       pairs[i].Giver.DisplayHandle(),
			Reason:     err.Error(),
		})
	}

	s.log.Info("assignments dispatched",
		"group_id", group.ID,
		"succeeded", report.Succeeded,
		"attempted", report.Attempted)
	return report
}

func (s *notificationService) SendReport(ctx context.Context, groupID string, chatID int64, report *Report) (int, error) {
	chunks := report.Chunks(s.chunkSize)
	for i, chunk := range chunks {
		if err := s.Deliver(ctx, groupID, chatID, models.NotificationTypeReport, chunk); err != nil {
			return i, fmt.Errorf("failed to send report part %d/%d: %w", i+1, len(chunks), err)
		}
	}
	return len(chunks), nil
}

func (s *notificationService) Failures(ctx context.Context, groupID string) ([]*models.Notification, error) {
	ns, err := s.notificationRepo.ListFailedByGroup(ctx, groupID)
	return ns, storeErr("list failed notifications", err)
}

func (s *notificationService) CleanupOld(ctx context.Context, olderThan time.Duration) error {
	return storeErr("cleanup notifications", s.notificationRepo.CleanupOld(ctx, time.Now().Add(-olderThan)))
}
