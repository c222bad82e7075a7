package models

import (
	"time"
)

// GroupStatus определяет стадию жизненного цикла группы
type GroupStatus string

const (
	GroupStatusOpen  GroupStatus = "open"
	GroupStatusDrawn GroupStatus = "drawn"
)

// Минимальное и максимальное число участников группы
const (
	MinParticipants = 3
	MaxParticipants = 100
)

// Group представляет одну игру "Тайный Санта"
type Group struct {
	ID               string      `json:"id" gorm:"type:varchar(16);primaryKey"`
	Name             string      `json:"name" gorm:"type:varchar(100);not null"`
	AdminID          int64       `json:"admin_id" gorm:"not null;index"`
	OrganizerContact string      `json:"organizer_contact" gorm:"type:varchar(200)"`
	Budget           string      `json:"budget" gorm:"type:varchar(100)"`
	RegDeadline      string      `json:"reg_deadline" gorm:"type:varchar(100)"`
	SendDeadline     string      `json:"send_deadline" gorm:"type:varchar(100)"`
	MaxParticipants  int         `json:"max_participants" gorm:"not null"`
	Status           GroupStatus `json:"status" gorm:"type:varchar(20);not null;default:'open'"`
	DrawnAt          *time.Time  `json:"drawn_at,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`

	// Связи
	Participants []Participant `json:"participants,omitempty" gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	Assignments  []Assignment  `json:"assignments,omitempty" gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
}

// IsOpen сообщает, принимает ли группа регистрации
func (g *Group) IsOpen() bool { return g.Status == GroupStatusOpen }

// GroupDraft содержит поля, собранные диалогом создания группы
type GroupDraft struct {
	Name             string `json:"name" validate:"required,max=100"`
	OrganizerContact string `json:"organizer_contact" validate:"required,max=200"`
	Budget           string `json:"budget" validate:"required,max=100"`
	MaxParticipants  int    `json:"max_participants" validate:"min=3,max=100"`
	RegDeadline      string `json:"reg_deadline" validate:"required,max=100"`
	SendDeadline     string `json:"send_deadline" validate:"max=100"`
}
