package models

import (
	"time"

	"github.com/google/uuid"
)

// ParticipantStatus определяет статус подтверждения участника
type ParticipantStatus string

const (
	ParticipantStatusPending   ParticipantStatus = "pending"
	ParticipantStatusConfirmed ParticipantStatus = "confirmed"
)

// NotProvided подставляется вместо пропущенного почтового адреса
const NotProvided = "Не указан"

// Participant представляет зарегистрированного участника группы.
// Пара (GroupID, TelegramID) уникальна: один человек регистрируется в группе один раз.
type Participant struct {
	ID            uuid.UUID         `json:"id" gorm:"type:varchar(36);primaryKey"`
	GroupID       string            `json:"group_id" gorm:"type:varchar(16);not null;uniqueIndex:idx_group_member"`
	TelegramID    int64             `json:"telegram_id" gorm:"not null;uniqueIndex:idx_group_member"`
	Username      string            `json:"username" gorm:"type:varchar(100)"`
	FullName      string            `json:"full_name" gorm:"type:varchar(100);not null"`
	Nickname      string            `json:"nickname" gorm:"type:varchar(50);not null"`
	PickupAddress string            `json:"pickup_address" gorm:"type:text;not null"`
	PostalAddress string            `json:"postal_address" gorm:"type:text"`
	Wishlist      string            `json:"wishlist" gorm:"type:text"`
	Status        ParticipantStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	RegisteredAt  time.Time         `json:"registered_at" gorm:"index"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// IsConfirmed сообщает, участвует ли регистрант в жеребьёвке
func (p *Participant) IsConfirmed() bool { return p.Status == ParticipantStatusConfirmed }

// DisplayHandle возвращает @username или ФИО, если username нет
func (p *Participant) DisplayHandle() string {
	if p.Username != "" {
		return "@" + p.Username
	}
	return p.FullName
}

// ParticipantDraft содержит ответы диалога регистрации
type ParticipantDraft struct {
	FullName      string `json:"full_name" validate:"required,max=100"`
	Nickname      string `json:"nickname" validate:"required,max=50"`
	PickupAddress string `json:"pickup_address" validate:"required"`
	PostalAddress string `json:"postal_address"`
	Wishlist      string `json:"wishlist"`
}
