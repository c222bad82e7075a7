package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType определяет типы уведомлений
type NotificationType string

const (
	NotificationTypeAssignment   NotificationType = "assignment"
	NotificationTypeRegistration NotificationType = "registration"
	NotificationTypeConfirmed    NotificationType = "confirmed"
	NotificationTypeRejected     NotificationType = "rejected"
	NotificationTypeReport       NotificationType = "report"
	NotificationTypeShipment     NotificationType = "shipment"
)

// NotificationStatus определяет статусы доставки
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// Notification хранит одну попытку доставки сообщения в Telegram
type Notification struct {
	ID         uuid.UUID          `json:"id" gorm:"type:varchar(36);primaryKey"`
	GroupID    string             `json:"group_id" gorm:"type:varchar(16);index"`
	TelegramID int64              `json:"telegram_id" gorm:"not null;index"`
	Type       NotificationType   `json:"type" gorm:"type:varchar(30);not null"`
	Message    string             `json:"message" gorm:"type:text;not null"`
	Status     NotificationStatus `json:"status" gorm:"type:varchar(10);default:'pending';index"`
	Error      string             `json:"error,omitempty" gorm:"type:text"`
	SentAt     *time.Time         `json:"sent_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}
