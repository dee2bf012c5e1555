package models

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:char(36);not null;index" json:"user_id"`
	Type      string     `gorm:"size:50;not null;index" json:"type"`
	Title     string     `gorm:"size:255" json:"title"`
	Body      string     `gorm:"type:text" json:"body"`
	Data      string     `gorm:"type:text" json:"data"` // JSON payload
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
