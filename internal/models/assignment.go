package models

import (
	"time"

	"github.com/google/uuid"
)

// Assignment представляет ребро "даритель -> получатель" в жеребьёвке группы
type Assignment struct {
	ID           uuid.UUID  `json:"id" gorm:"type:varchar(36);primaryKey"`
	GroupID      string     `json:"group_id" gorm:"type:varchar(16);not null;index"`
	GiverID      uuid.UUID  `json:"giver_id" gorm:"type:varchar(36);not null;uniqueIndex"`
	ReceiverID   uuid.UUID  `json:"receiver_id" gorm:"type:varchar(36);not null;uniqueIndex"`
	GiftSent     bool       `json:"gift_sent" gorm:"default:false"`
	GiftReceived bool       `json:"gift_received" gorm:"default:false"`
	TrackNumber  string     `json:"track_number" gorm:"type:varchar(50)"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Связи
	Giver    Participant `json:"giver" gorm:"foreignKey:GiverID;constraint:OnDelete:CASCADE"`
	Receiver Participant `json:"receiver" gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE"`
}
