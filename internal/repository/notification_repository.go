package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"giftbot/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	MarkAsSent(ctx context.Context, id uuid.UUID) error
	MarkAsFailed(ctx context.Context, id uuid.UUID, reason string) error
	ListFailedByGroup(ctx context.Context, groupID string) ([]*models.Notification, error)
	CountByStatus(ctx context.Context, status models.NotificationStatus) (int64, error)
	CleanupOld(ctx context.Context, olderThan time.Time) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	if notification.Status == "" {
		notification.Status = models.NotificationStatusPending
	}
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) MarkAsSent(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.NotificationStatusSent,
			"sent_at":    &now,
			"updated_at": now,
		}).Error
}

func (r *notificationRepository) MarkAsFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.NotificationStatusFailed,
			"error":      reason,
			"updated_at": time.Now(),
		}).Error
}

func (r *notificationRepository) ListFailedByGroup(ctx context.Context, groupID string) ([]*models.Notification, error) {
	var notifications []*models.Notification
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND status = ?", groupID, models.NotificationStatusFailed).
		Order("created_at ASC").
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) CountByStatus(ctx context.Context, status models.NotificationStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *notificationRepository) CleanupOld(ctx context.Context, olderThan time.Time) error {
	return r.db.WithContext(ctx).Where("created_at < ? AND status IN (?)",
		olderThan,
		[]models.NotificationStatus{models.NotificationStatusSent, models.NotificationStatusFailed}).
		Delete(&models.Notification{}).Error
}
