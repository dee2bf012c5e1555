package models

import (
	"time"

	"realones/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Credit is one earned onboarding action. Rows are never updated or deleted.
// The unique index on (user_id, credit_type, source_key) is what stops a referred
// friend or a single-grant action from being credited twice under concurrent writes.
type Credit struct {
	ID         uuid.UUID         `gorm:"type:char(36);primaryKey" json:"id"`
	UserID     uuid.UUID         `gorm:"type:char(36);not null;uniqueIndex:idx_credits_dedup,priority:1" json:"user_id"`
	CreditType domain.CreditType `gorm:"size:32;not null;uniqueIndex:idx_credits_dedup,priority:2" json:"credit_type"`
	SourceID   *string           `gorm:"size:64" json:"source_id,omitempty"`
	SourceKey  string            `gorm:"size:64;not null;default:'';uniqueIndex:idx_credits_dedup,priority:3" json:"-"`
	CreatedAt  time.Time         `gorm:"index" json:"created_at"`
}

func (Credit) TableName() string { return "pioneer_credits" }

func (c *Credit) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// PioneerStatus caches the activation decision per user. Credits is a floor and
// IsActivated never goes back to false once set.
type PioneerStatus struct {
	ID          uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:char(36);uniqueIndex;not null" json:"user_id"`
	Credits     int        `gorm:"not null;default:0" json:"credits"`
	IsActivated bool       `gorm:"not null;default:false" json:"is_activated"`
	ActivatedAt *time.Time `json:"activated_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (PioneerStatus) TableName() string { return "pioneer_status" }

func (s *PioneerStatus) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
