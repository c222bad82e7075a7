package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"giftbot/internal/models"
	"giftbot/internal/repository"
)

type ParticipantService interface {
	// CheckEligibility проверяет, можно ли начать регистрацию в группе
	CheckEligibility(ctx context.Context, groupID string, telegramID int64) (*models.Group, error)
	Register(ctx context.Context, groupID string, telegramID int64, username string, draft models.ParticipantDraft) (*models.Participant, error)
	// Confirm и Reject идемпотентны: повтор возвращает changed=false без ошибки
	Confirm(ctx context.Context, id uuid.UUID) (*models.Participant, bool, error)
	Reject(ctx context.Context, id uuid.UUID) (*models.Participant, bool, error)

	GetParticipant(ctx context.Context, id uuid.UUID) (*models.Participant, error)
	ListParticipants(ctx context.Context, groupID string) ([]*models.Participant, error)
	ListConfirmed(ctx context.Context, groupID string) ([]*models.Participant, error)
	CountConfirmed(ctx context.Context, groupID string) (int64, error)
	Memberships(ctx context.Context, telegramID int64) ([]*models.Participant, error)

	// MarkGiftSent отмечает подарок дарителя отправленным; groupID может быть пустым,
	// если участник состоит ровно в одной разыгранной группе.
	MarkGiftSent(ctx context.Context, telegramID int64, groupID, trackNumber string) (*models.Assignment, error)
	MarkGiftReceived(ctx context.Context, telegramID int64, groupID string) (*models.Assignment, error)
}

type participantService struct {
	groupRepo       repository.GroupRepository
	participantRepo repository.ParticipantRepository
	assignmentRepo  repository.AssignmentRepository
	notifier        NotificationService
	autoConfirm     bool
	policy          repository.CapacityPolicy
	metrics         *instruments
	log             *slog.Logger
}

func NewParticipantService(
	groupRepo repository.GroupRepository,
	participantRepo repository.ParticipantRepository,
	assignmentRepo repository.AssignmentRepository,
	notifier NotificationService,
	autoConfirm bool,
	countPending bool,
	log *slog.Logger,
) ParticipantService {
	if log == nil {
		log = slog.Default()
	}
	return &participantService{
		groupRepo:       groupRepo,
		participantRepo: participantRepo,
		assignmentRepo:  assignmentRepo,
		notifier:        notifier,
		autoConfirm:     autoConfirm,
		policy:          repository.CapacityPolicy{CountPending: countPending},
		metrics:         newInstruments(),
		log:             log,
	}
}

func (s *participantService) CheckEligibility(ctx context.Context, groupID string, telegramID int64) (*models.Group, error) {
	g, err := s.groupRepo.GetByID(ctx, normalizeGroupID(groupID))
	if err != nil {
		return nil, storeErr("get group", err)
	}
	if !g.IsOpen() {
		return g, ErrGroupClosed
	}
	if _, err := s.participantRepo.GetByTelegram(ctx, g.ID, telegramID); err == nil {
		return g, ErrAlreadyRegistered
	} else if !errors.Is(err, ErrParticipantNotFound) {
		return nil, storeErr("get participant", err)
	}

	status := models.ParticipantStatusConfirmed
	if s.policy.CountPending {
		status = ""
	}
	taken, err := s.countTaken(ctx, g.ID, status)
	if err != nil {
		return nil, err
	}
	if taken >= int64(g.MaxParticipants) {
		return g, ErrCapacityExceeded
	}
	return g, nil
}

func (s *participantService) countTaken(ctx context.Context, groupID string, status models.ParticipantStatus) (int64, error) {
	if status != "" {
		n, err := s.participantRepo.CountByStatus(ctx, groupID, status)
		return n, storeErr("count participants", err)
	}
	ps, err := s.participantRepo.ListByGroup(ctx, groupID)
	return int64(len(ps)), storeErr("count participants", err)
}

func (s *participantService) Register(ctx context.Context, groupID string, telegramID int64, username string, draft models.ParticipantDraft) (*models.Participant, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	p := &models.Participant{
		ID:            uuid.New(),
		GroupID:       normalizeGroupID(groupID),
		TelegramID:    telegramID,
		Username:      username,
		FullName:      draft.FullName,
		Nickname:      draft.Nickname,
		PickupAddress: draft.PickupAddress,
		PostalAddress: draft.PostalAddress,
		Wishlist:      draft.Wishlist,
		Status:        models.ParticipantStatusPending,
	}
	if p.PostalAddress == "" {
		p.PostalAddress = models.NotProvided
	}
	if s.autoConfirm {
		p.Status = models.ParticipantStatusConfirmed
	}

	if err := s.participantRepo.Register(ctx, p, s.policy); err != nil {
		return nil, storeErr("register participant", err)
	}
	s.metrics.registered(ctx, string(p.Status))
	s.log.Info("participant registered",
		"group_id", p.GroupID,
		"participant_id", p.ID,
		"telegram_id", telegramID,
		"status", p.Status)

	s.alertOrganizer(ctx, p)
	return p, nil
}

// alertOrganizer сообщает организатору о новой заявке; ошибки только логируются
func (s *participantService) alertOrganizer(ctx context.Context, p *models.Participant) {
	g, err := s.groupRepo.GetByID(ctx, p.GroupID)
	if err != nil {
		s.log.Warn("failed to load group for registration alert", "group_id", p.GroupID, "error", err)
		return
	}
	total, err := s.countTaken(ctx, g.ID, "")
	if err != nil {
		s.log.Warn("failed to count participants", "group_id", g.ID, "error", err)
	}
	if err := s.notifier.NotifyRegistration(ctx, g, p, total); err != nil {
		s.log.Warn("registration alert not delivered", "group_id", g.ID, "error", err)
	}
}

func (s *participantService) Confirm(ctx context.Context, id uuid.UUID) (*models.Participant, bool, error) {
	p, changed, err := s.participantRepo.Confirm(ctx, id)
	if err != nil {
		return nil, false, storeErr("confirm participant", err)
	}
	if changed {
		s.log.Info("participant confirmed", "group_id", p.GroupID, "participant_id", p.ID)
		s.notifyDecision(ctx, p, true)
	}
	return p, changed, nil
}

func (s *participantService) Reject(ctx context.Context, id uuid.UUID) (*models.Participant, bool, error) {
	p, changed, err := s.participantRepo.Reject(ctx, id)
	if err != nil {
		return nil, false, storeErr("reject participant", err)
	}
	if changed {
		s.log.Info("participant rejected", "group_id", p.GroupID, "participant_id", p.ID)
		s.notifyDecision(ctx, p, false)
	}
	return p, changed, nil
}

func (s *participantService) notifyDecision(ctx context.Context, p *models.Participant, confirmed bool) {
	g, err := s.groupRepo.GetByID(ctx, p.GroupID)
	if err != nil {
		s.log.Warn("failed to load group for decision", "group_id", p.GroupID, "error", err)
		return
	}
	if err := s.notifier.NotifyDecision(ctx, g, p, confirmed); err != nil {
		s.log.Warn("decision not delivered", "participant_id", p.ID, "error", err)
	}
}

func (s *participantService) GetParticipant(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
	p, err := s.participantRepo.GetByID(ctx, id)
	return p, storeErr("get participant", err)
}

func (s *participantService) ListParticipants(ctx context.Context, groupID string) ([]*models.Participant, error) {
	ps, err := s.participantRepo.ListByGroup(ctx, normalizeGroupID(groupID))
	return ps, storeErr("list participants", err)
}

func (s *participantService) ListConfirmed(ctx context.Context, groupID string) ([]*models.Participant, error) {
	ps, err := s.participantRepo.ListConfirmed(ctx, normalizeGroupID(groupID))
	return ps, storeErr("list confirmed", err)
}

func (s *participantService) CountConfirmed(ctx context.Context, groupID string) (int64, error) {
	n, err := s.participantRepo.CountByStatus(ctx, normalizeGroupID(groupID), models.ParticipantStatusConfirmed)
	return n, storeErr("count confirmed", err)
}

func (s *participantService) Memberships(ctx context.Context, telegramID int64) ([]*models.Participant, error) {
	ps, err := s.participantRepo.ListByTelegram(ctx, telegramID)
	return ps, storeErr("list memberships", err)
}

func (s *participantService) MarkGiftSent(ctx context.Context, telegramID int64, groupID, trackNumber string) (*models.Assignment, error) {
	a, err := s.resolveAssignment(ctx, telegramID, groupID, s.assignmentRepo.GetByGiver)
	if err != nil {
		return nil, err
	}
	if err := s.assignmentRepo.MarkSent(ctx, a.ID, trackNumber); err != nil {
		return nil, storeErr("mark gift sent", err)
	}
	a.GiftSent = true
	a.TrackNumber = trackNumber

	text := "🚚 Ваш Тайный Санта отправил подарок!"
	if trackNumber != "" {
		text += "\nТрек-номер: " + trackNumber
	}
	text += fmt.Sprintf("\n\nКогда получите, напишите /received %s", a.GroupID)
	if err := s.notifier.Deliver(ctx, a.GroupID, a.Receiver.TelegramID, models.NotificationTypeShipment, text); err != nil {
		s.log.Warn("shipment notice not delivered", "assignment_id", a.ID, "error", err)
	}
	return a, nil
}

func (s *participantService) MarkGiftReceived(ctx context.Context, telegramID int64, groupID string) (*models.Assignment, error) {
	a, err := s.resolveAssignment(ctx, telegramID, groupID, s.assignmentRepo.GetByReceiver)
	if err != nil {
		return nil, err
	}
	if err := s.assignmentRepo.MarkReceived(ctx, a.ID); err != nil {
		return nil, storeErr("mark gift received", err)
	}
	a.GiftReceived = true

	text := fmt.Sprintf("🎉 %s получил(а) ваш подарок!", a.Receiver.Nickname)
	if err := s.notifier.Deliver(ctx, a.GroupID, a.Giver.TelegramID, models.NotificationTypeShipment, text); err != nil {
		s.log.Warn("receipt notice not delivered", "assignment_id", a.ID, "error", err)
	}
	return a, nil
}

// resolveAssignment находит пару участника по его членствам в группах
func (s *participantService) resolveAssignment(
	ctx context.Context,
	telegramID int64,
	groupID string,
	lookup func(context.Context, uuid.UUID) (*models.Assignment, error),
) (*models.Assignment, error) {
	memberships, err := s.participantRepo.ListByTelegram(ctx, telegramID)
	if err != nil {
		return nil, storeErr("list memberships", err)
	}
	groupID = normalizeGroupID(groupID)

	var found []*models.Assignment
	for _, m := range memberships {
		if groupID != "" && m.GroupID != groupID {
			continue
		}
		a, err := lookup(ctx, m.ID)
		if errors.Is(err, ErrAssignmentNotFound) {
			continue
		}
		if err != nil {
			return nil, storeErr("get assignment", err)
		}
		found = append(found, a)
	}

	switch len(found) {
	case 0:
		return nil, ErrAssignmentNotFound
	case 1:
		return found[0], nil
	}
	return nil, ErrAmbiguousGroup
}
