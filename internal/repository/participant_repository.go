package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"giftbot/internal/models"
)

// CapacityPolicy определяет, какие регистрации занимают место в группе
type CapacityPolicy struct {
	CountPending bool
}

type ParticipantRepository interface {
	Register(ctx context.Context, p *models.Participant, policy CapacityPolicy) error
	Confirm(ctx context.Context, id uuid.UUID) (*models.Participant, bool, error)
	Reject(ctx context.Context, id uuid.UUID) (*models.Participant, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Participant, error)
	GetByTelegram(ctx context.Context, groupID string, telegramID int64) (*models.Participant, error)
	ListByGroup(ctx context.Context, groupID string) ([]*models.Participant, error)
	ListConfirmed(ctx context.Context, groupID string) ([]*models.Participant, error)
	ListByTelegram(ctx context.Context, telegramID int64) ([]*models.Participant, error)
	CountByStatus(ctx context.Context, groupID string, status models.ParticipantStatus) (int64, error)
	CountAll(ctx context.Context) (int64, error)
}

type participantRepository struct{ db *gorm.DB }

func NewParticipantRepository(db *gorm.DB) ParticipantRepository {
	return &participantRepository{db: db}
}

// Register вставляет участника под блокировкой строки группы: проверка
// вместимости и вставка выполняются в одной транзакции, а уникальный индекс
// (group_id, telegram_id) страхует от повторной регистрации.
func (r *participantRepository) Register(ctx context.Context, p *models.Participant, policy CapacityPolicy) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.RegisteredAt.IsZero() {
		p.RegisteredAt = time.Now()
	}
	if p.Status == "" {
		p.Status = models.ParticipantStatusPending
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		g, err := findGroup(tx, p.GroupID, true)
		if err != nil {
			return err
		}
		if !g.IsOpen() {
			return ErrGroupClosed
		}

		var existing int64
		if err := tx.Model(&models.Participant{}).
			Where("group_id = ? AND telegram_id = ?", p.GroupID, p.TelegramID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyRegistered
		}

		taken, err := countTaken(tx, p.GroupID, policy)
		if err != nil {
			return err
		}
		if taken >= int64(g.MaxParticipants) {
			return ErrCapacityExceeded
		}

		return tx.Create(p).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyRegistered
	}
	return err
}

// Confirm переводит участника в confirmed. Второе значение false, если
// участника нет или он уже подтвержден.
func (r *participantRepository) Confirm(ctx context.Context, id uuid.UUID) (*models.Participant, bool, error) {
	var (
		result  *models.Participant
		changed bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := findParticipant(tx, id)
		if err != nil {
			if errors.Is(err, ErrParticipantNotFound) {
				return nil
			}
			return err
		}
		result = p
		if p.IsConfirmed() {
			return nil
		}

		g, err := findGroup(tx, p.GroupID, true)
		if err != nil {
			return err
		}
		if !g.IsOpen() {
			return ErrGroupClosed
		}
		confirmed, err := countTaken(tx, p.GroupID, CapacityPolicy{})
		if err != nil {
			return err
		}
		if confirmed >= int64(g.MaxParticipants) {
			return ErrCapacityExceeded
		}

		now := time.Now()
		if err := tx.Model(&models.Participant{}).Where("id = ?", id).
			Updates(map[string]interface{}{"status": models.ParticipantStatusConfirmed, "updated_at": now}).Error; err != nil {
			return err
		}
		p.Status = models.ParticipantStatusConfirmed
		p.UpdatedAt = now
		changed = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, changed, nil
}

// Reject удаляет заявку. Второе значение false, если участника уже нет.
func (r *participantRepository) Reject(ctx context.Context, id uuid.UUID) (*models.Participant, bool, error) {
	var result *models.Participant
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := findParticipant(tx, id)
		if err != nil {
			if errors.Is(err, ErrParticipantNotFound) {
				return nil
			}
			return err
		}
		g, err := findGroup(tx, p.GroupID, true)
		if err != nil {
			return err
		}
		if !g.IsOpen() {
			return ErrGroupClosed
		}
		if err := tx.Delete(&models.Participant{}, "id = ?", id).Error; err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, result != nil, nil
}

func (r *participantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
	return findParticipant(r.db.WithContext(ctx), id)
}

func (r *participantRepository) GetByTelegram(ctx context.Context, groupID string, telegramID int64) (*models.Participant, error) {
	var p models.Participant
	err := r.db.WithContext(ctx).Where("group_id = ? AND telegram_id = ?", groupID, telegramID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *participantRepository) ListByGroup(ctx context.Context, groupID string) ([]*models.Participant, error) {
	var ps []*models.Participant
	err := r.db.WithContext(ctx).Where("group_id = ?", groupID).Order("registered_at ASC").Find(&ps).Error
	return ps, err
}

func (r *participantRepository) ListConfirmed(ctx context.Context, groupID string) ([]*models.Participant, error) {
	var ps []*models.Participant
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND status = ?", groupID, models.ParticipantStatusConfirmed).
		Order("registered_at ASC").
		Find(&ps).Error
	return ps, err
}

func (r *participantRepository) ListByTelegram(ctx context.Context, telegramID int64) ([]*models.Participant, error) {
	var ps []*models.Participant
	err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).Order("registered_at DESC").Find(&ps).Error
	return ps, err
}

func (r *participantRepository) CountByStatus(ctx context.Context, groupID string, status models.ParticipantStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Participant{}).
		Where("group_id = ? AND status = ?", groupID, status).
		Count(&count).Error
	return count, err
}

func (r *participantRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Participant{}).Count(&count).Error
	return count, err
}

func countTaken(tx *gorm.DB, groupID string, policy CapacityPolicy) (int64, error) {
	q := tx.Model(&models.Participant{}).Where("group_id = ?", groupID)
	if !policy.CountPending {
		q = q.Where("status = ?", models.ParticipantStatusConfirmed)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}

func findParticipant(db *gorm.DB, id uuid.UUID) (*models.Participant, error) {
	var p models.Participant
	if err := db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return &p, nil
}
