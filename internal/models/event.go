package models

import "time"

// Event is a local replica synced from the event service over RabbitMQ.
// The check-in service never creates events itself.
type Event struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Location  string    `json:"location"`
	Price     float64   `gorm:"not null" json:"price"`
	Date      time.Time `gorm:"not null" json:"date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
