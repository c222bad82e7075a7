package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"giftbot/internal/draw"
	"giftbot/internal/models"
	"giftbot/internal/repository"
)

const (
	groupIDLength   = 8
	groupIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	groupIDRetries  = 5
)

// ReportArchive сохраняет копию отчета о жеребьёвке
type ReportArchive interface {
	SaveReport(groupID string, content string) (string, error)
	DeleteReports(groupID string) error
}

// DrawOutcome - результат жеребьёвки после фиксации
type DrawOutcome struct {
	Group       *models.Group  `json:"group"`
	Pairs       []Pair         `json:"-"`
	Attempts    int            `json:"attempts"`
	Fallback    bool           `json:"fallback"`
	Delivery    DeliveryReport `json:"delivery"`
	ReportParts int            `json:"report_parts"`
	ArchivePath string         `json:"archive_path,omitempty"`
}

// GroupSummary - строка списка групп организатора
type GroupSummary struct {
	Group      *models.Group `json:"group"`
	Confirmed  int64         `json:"confirmed"`
	Pending    int64         `json:"pending"`
	InviteLink string        `json:"invite_link"`
}

// GroupDetail - карточка группы в меню организатора
type GroupDetail struct {
	GroupSummary
	Pairs int64 `json:"pairs"`
}

// Stats - сводка по всем группам
type Stats struct {
	OpenGroups          int64 `json:"open_groups"`
	DrawnGroups         int64 `json:"drawn_groups"`
	Participants        int64 `json:"participants"`
	Assignments         int64 `json:"assignments"`
	GiftsSent           int64 `json:"gifts_sent"`
	FailedNotifications int64 `json:"failed_notifications"`
}

type GroupService interface {
	CreateGroup(ctx context.Context, adminID int64, draft models.GroupDraft) (*models.Group, error)
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	ListGroups(ctx context.Context, adminID int64) ([]GroupSummary, error)
	GroupDetail(ctx context.Context, id string) (*GroupDetail, error)
	DeleteGroup(ctx context.Context, id string) error

	// CompleteDraw атомарно строит и сохраняет пары, затем рассылает
	// назначения и отчет. Сбой рассылки не откатывает жеребьёвку.
	CompleteDraw(ctx context.Context, id string) (*DrawOutcome, error)

	Pairs(ctx context.Context, id string) ([]*models.Assignment, error)
	FullReport(ctx context.Context, id string) (*Report, error)
	SendFullReport(ctx context.Context, id string, chatID int64) (int, error)
	ShipmentStatus(ctx context.Context, id string) (*Report, error)
	Stats(ctx context.Context) (*Stats, error)

	InviteLink(groupID string) string
	ResolveInvite(payload string) (string, bool)
}

type groupService struct {
	groupRepo        repository.GroupRepository
	participantRepo  repository.ParticipantRepository
	assignmentRepo   repository.AssignmentRepository
	notificationRepo repository.NotificationRepository
	notifier         NotificationService
	engine           *draw.Engine
	archive          ReportArchive
	inviteBase       string
	metrics          *instruments
	log              *slog.Logger
}

func NewGroupService(
	groupRepo repository.GroupRepository,
	participantRepo repository.ParticipantRepository,
	assignmentRepo repository.AssignmentRepository,
	notificationRepo repository.NotificationRepository,
	notifier NotificationService,
	engine *draw.Engine,
	archive ReportArchive,
	inviteBase string,
	log *slog.Logger,
) GroupService {
	if log == nil {
		log = slog.Default()
	}
	return &groupService{
		groupRepo:        groupRepo,
		participantRepo:  participantRepo,
		assignmentRepo:   assignmentRepo,
		notificationRepo: notificationRepo,
		notifier:         notifier,
		engine:           engine,
		archive:          archive,
		inviteBase:       strings.TrimRight(inviteBase, "/"),
		metrics:          newInstruments(),
		log:              log,
	}
}

func (s *groupService) CreateGroup(ctx context.Context, adminID int64, draft models.GroupDraft) (*models.Group, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	id, err := s.uniqueID(ctx)
	if err != nil {
		return nil, err
	}

	group := &models.Group{
		ID:               id,
		Name:             draft.Name,
		AdminID:          adminID,
		OrganizerContact: draft.OrganizerContact,
		Budget:           draft.Budget,
		RegDeadline:      draft.RegDeadline,
		SendDeadline:     draft.SendDeadline,
		MaxParticipants:  draft.MaxParticipants,
		Status:           models.GroupStatusOpen,
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, storeErr("create group", err)
	}

	s.log.Info("group created", "group_id", group.ID, "admin_id", adminID, "max_participants", group.MaxParticipants)
	return group, nil
}

// uniqueID подбирает свободный код группы
func (s *groupService) uniqueID(ctx context.Context) (string, error) {
	for i := 0; i < groupIDRetries; i++ {
		id, err := newGroupID()
		if err != nil {
			return "", fmt.Errorf("failed to generate group id: %w", err)
		}
		exists, err := s.groupRepo.Exists(ctx, id)
		if err != nil {
			return "", storeErr("check group id", err)
		}
		if !exists {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique group id after %d attempts", groupIDRetries)
}

func newGroupID() (string, error) {
	base := big.NewInt(int64(len(groupIDAlphabet)))
	var b strings.Builder
	for i := 0; i < groupIDLength; i++ {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", err
		}
		b.WriteByte(groupIDAlphabet[n.Int64()])
	}
	return b.String(), nil
}

func (s *groupService) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	g, err := s.groupRepo.GetByID(ctx, normalizeGroupID(id))
	return g, storeErr("get group", err)
}

func (s *groupService) ListGroups(ctx context.Context, adminID int64) ([]GroupSummary, error) {
	groups, err := s.groupRepo.ListByAdmin(ctx, adminID)
	if err != nil {
		return nil, storeErr("list groups", err)
	}
	out := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		sum, err := s.summary(ctx, g)
		if err != nil {
			return nil, err
		}
		out = append(out, *sum)
	}
	return out, nil
}

func (s *groupService) summary(ctx context.Context, g *models.Group) (*GroupSummary, error) {
	confirmed, err := s.participantRepo.CountByStatus(ctx, g.ID, models.ParticipantStatusConfirmed)
	if err != nil {
		return nil, storeErr("count confirmed", err)
	}
	pending, err := s.participantRepo.CountByStatus(ctx, g.ID, models.ParticipantStatusPending)
	if err != nil {
		return nil, storeErr("count pending", err)
	}
	return &GroupSummary{
		Group:      g,
		Confirmed:  confirmed,
		Pending:    pending,
		InviteLink: s.InviteLink(g.ID),
	}, nil
}

func (s *groupService) GroupDetail(ctx context.Context, id string) (*GroupDetail, error) {
	g, err := s.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	sum, err := s.summary(ctx, g)
	if err != nil {
		return nil, err
	}
	pairs, err := s.assignmentRepo.CountByGroup(ctx, g.ID)
	if err != nil {
		return nil, storeErr("count pairs", err)
	}
	return &GroupDetail{GroupSummary: *sum, Pairs: pairs}, nil
}

func (s *groupService) DeleteGroup(ctx context.Context, id string) error {
	id = normalizeGroupID(id)
	if err := s.groupRepo.DeleteCascade(ctx, id); err != nil {
		return storeErr("delete group", err)
	}
	if s.archive != nil {
		if err := s.archive.DeleteReports(id); err != nil {
			s.log.Warn("failed to delete archived reports", "group_id", id, "error", err)
		}
	}
	s.log.Info("group deleted", "group_id", id)
	return nil
}

func (s *groupService) CompleteDraw(ctx context.Context, id string) (*DrawOutcome, error) {
	id = normalizeGroupID(id)

	var (
		result draw.Result[uuid.UUID]
		byID   map[uuid.UUID]*models.Participant
	)
	plan := func(group *models.Group, confirmed []models.Participant) ([]models.Assignment, error) {
		if len(confirmed) < models.MinParticipants {
			return nil, ErrInsufficientParticipants
		}
		ids := make([]uuid.UUID, len(confirmed))
		byID = make(map[uuid.UUID]*models.Participant, len(confirmed))
		for i := range confirmed {
			ids[i] = confirmed[i].ID
			byID[confirmed[i].ID] = &confirmed[i]
		}

		var err error
		result, err = draw.Derange(s.engine, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to draw: %w", err)
		}

		assignments := make([]models.Assignment, len(result.Edges))
		for i, e := range result.Edges {
			assignments[i] = models.Assignment{
				ID:         uuid.New(),
				GroupID:    group.ID,
				GiverID:    e.Giver,
				ReceiverID: e.Receiver,
			}
		}
		return assignments, nil
	}

	group, _, err := s.groupRepo.CompleteDraw(ctx, id, plan)
	if err != nil {
		return nil, storeErr("complete draw", err)
	}

	s.metrics.drawCompleted(ctx, result.Fallback)
	s.log.Info("draw completed",
		"group_id", group.ID,
		"pairs", len(result.Edges),
		"attempts", result.Attempts,
		"fallback", result.Fallback)

	pairs := make([]Pair, len(result.Edges))
	for i, e := range result.Edges {
		pairs[i] = Pair{Giver: byID[e.Giver], Receiver: byID[e.Receiver]}
	}

	outcome := &DrawOutcome{
		Group:    group,
		Pairs:    pairs,
		Attempts: result.Attempts,
		Fallback: result.Fallback,
	}

	// жеребьёвка уже зафиксирована; рассылка не зависит от отмены вызывающего
	ctx = context.WithoutCancel(ctx)
	outcome.Delivery = s.notifier.DispatchAssignments(ctx, group, pairs)

	report := DrawReport(group, pairs, outcome.Delivery, time.Now())
	if s.archive != nil {
		path, err := s.archive.SaveReport(group.ID, report.String())
		if err != nil {
			s.log.Warn("failed to archive draw report", "group_id", group.ID, "error", err)
		}
		outcome.ArchivePath = path
	}
	parts, err := s.notifier.SendReport(ctx, group.ID, group.AdminID, report)
	if err != nil {
		s.log.Error("failed to send draw report", "group_id", group.ID, "error", err)
	}
	outcome.ReportParts = parts

	return outcome, nil
}

func (s *groupService) Pairs(ctx context.Context, id string) ([]*models.Assignment, error) {
	id = normalizeGroupID(id)
	if _, err := s.groupRepo.GetByID(ctx, id); err != nil {
		return nil, storeErr("get group", err)
	}
	as, err := s.assignmentRepo.ListByGroup(ctx, id)
	return as, storeErr("list pairs", err)
}

func (s *groupService) FullReport(ctx context.Context, id string) (*Report, error) {
	g, err := s.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	participants, err := s.participantRepo.ListByGroup(ctx, g.ID)
	if err != nil {
		return nil, storeErr("list participants", err)
	}
	as, err := s.assignmentRepo.ListByGroup(ctx, g.ID)
	if err != nil {
		return nil, storeErr("list pairs", err)
	}
	return FullReport(g, participants, as), nil
}

func (s *groupService) SendFullReport(ctx context.Context, id string, chatID int64) (int, error) {
	report, err := s.FullReport(ctx, id)
	if err != nil {
		return 0, err
	}
	return s.notifier.SendReport(ctx, normalizeGroupID(id), chatID, report)
}

func (s *groupService) ShipmentStatus(ctx context.Context, id string) (*Report, error) {
	g, err := s.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	as, err := s.assignmentRepo.ListByGroup(ctx, g.ID)
	if err != nil {
		return nil, storeErr("list pairs", err)
	}
	return ShipmentReport(g, as), nil
}

func (s *groupService) Stats(ctx context.Context) (*Stats, error) {
	var (
		st  Stats
		err error
	)
	if st.OpenGroups, err = s.groupRepo.CountByStatus(ctx, models.GroupStatusOpen); err != nil {
		return nil, storeErr("count groups", err)
	}
	if st.DrawnGroups, err = s.groupRepo.CountByStatus(ctx, models.GroupStatusDrawn); err != nil {
		return nil, storeErr("count groups", err)
	}
	if st.Participants, err = s.participantRepo.CountAll(ctx); err != nil {
		return nil, storeErr("count participants", err)
	}
	if st.Assignments, err = s.assignmentRepo.CountAll(ctx); err != nil {
		return nil, storeErr("count pairs", err)
	}
	if st.GiftsSent, err = s.assignmentRepo.CountSent(ctx); err != nil {
		return nil, storeErr("count gifts", err)
	}
	if st.FailedNotifications, err = s.notificationRepo.CountByStatus(ctx, models.NotificationStatusFailed); err != nil {
		return nil, storeErr("count notifications", err)
	}
	return &st, nil
}

// InviteLink возвращает ссылку вида https://t.me/<bot>?start=<groupID>
func (s *groupService) InviteLink(groupID string) string {
	return s.inviteBase + "?start=" + groupID
}

// ResolveInvite извлекает код группы из payload команды /start или из ссылки
func (s *groupService) ResolveInvite(payload string) (string, bool) {
	payload = strings.TrimSpace(payload)
	if i := strings.LastIndex(payload, "start="); i >= 0 {
		payload = payload[i+len("start="):]
	}
	if i := strings.IndexAny(payload, "&# "); i >= 0 {
		payload = payload[:i]
	}
	id := normalizeGroupID(payload)
	if id == "" || len(id) > 16 {
		return "", false
	}
	for _, r := range id {
		if !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return "", false
		}
	}
	return id, true
}

func normalizeGroupID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
