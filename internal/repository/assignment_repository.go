package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"giftbot/internal/models"
)

type AssignmentRepository interface {
	ListByGroup(ctx context.Context, groupID string) ([]*models.Assignment, error)
	GetByGiver(ctx context.Context, giverID uuid.UUID) (*models.Assignment, error)
	GetByReceiver(ctx context.Context, receiverID uuid.UUID) (*models.Assignment, error)
	MarkSent(ctx context.Context, id uuid.UUID, trackNumber string) error
	MarkReceived(ctx context.Context, id uuid.UUID) error
	CountByGroup(ctx context.Context, groupID string) (int64, error)
	CountSent(ctx context.Context) (int64, error)
	CountAll(ctx context.Context) (int64, error)
}

type assignmentRepository struct{ db *gorm.DB }

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

// ListByGroup возвращает пары группы в порядке регистрации дарителей
func (r *assignmentRepository) ListByGroup(ctx context.Context, groupID string) ([]*models.Assignment, error) {
	var as []*models.Assignment
	err := r.db.WithContext(ctx).
		Preload("Giver").
		Preload("Receiver").
		Where("group_id = ?", groupID).
		Find(&as).Error
	if err != nil {
		return nil, err
	}
	sort.SliceStable(as, func(i, j int) bool {
		return as[i].Giver.RegisteredAt.Before(as[j].Giver.RegisteredAt)
	})
	return as, nil
}

func (r *assignmentRepository) GetByGiver(ctx context.Context, giverID uuid.UUID) (*models.Assignment, error) {
	return r.findOne(ctx, "giver_id = ?", giverID)
}

func (r *assignmentRepository) GetByReceiver(ctx context.Context, receiverID uuid.UUID) (*models.Assignment, error) {
	return r.findOne(ctx, "receiver_id = ?", receiverID)
}

func (r *assignmentRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.Assignment, error) {
	var a models.Assignment
	err := r.db.WithContext(ctx).Preload("Giver").Preload("Receiver").Where(query, arg).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepository) MarkSent(ctx context.Context, id uuid.UUID, trackNumber string) error {
	now := time.Now()
	return r.update(ctx, id, map[string]interface{}{
		"gift_sent":    true,
		"track_number": trackNumber,
		"sent_at":      &now,
		"updated_at":   now,
	})
}

func (r *assignmentRepository) MarkReceived(ctx context.Context, id uuid.UUID) error {
	return r.update(ctx, id, map[string]interface{}{
		"gift_received": true,
		"updated_at":    time.Now(),
	})
}

func (r *assignmentRepository) update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Assignment{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

func (r *assignmentRepository) CountByGroup(ctx context.Context, groupID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Assignment{}).Where("group_id = ?", groupID).Count(&count).Error
	return count, err
}

func (r *assignmentRepository) CountSent(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Assignment{}).Where("gift_sent = ?", true).Count(&count).Error
	return count, err
}

func (r *assignmentRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Assignment{}).Count(&count).Error
	return count, err
}
