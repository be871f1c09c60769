package models

import "time"

type Ticket struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	EventID   uint       `gorm:"not null;index" json:"event_id"`
	OwnerID   uint       `gorm:"not null;index" json:"owner_id"`
	Entered   bool       `gorm:"not null;default:false" json:"entered"`
	EnteredAt *time.Time `json:"entered_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}
