package models

import (
	"time"

	"github.com/google/uuid"
)

// Streak tracks consecutive days with at least one triage action.
// LastActionDate is a calendar date in UTC (YYYY-MM-DD).
type Streak struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:char(36);uniqueIndex;not null" json:"user_id"`
	CurrentStreak  int       `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak  int       `gorm:"not null;default:0" json:"longest_streak"`
	LastActionDate string    `gorm:"size:10" json:"last_action_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Streak) TableName() string { return "streaks" }
