package models

import (
	"time"

	"realones/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExternalContact holds what we know about a friend who is not (yet) a registered user.
type ExternalContact struct {
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	ProfileURL string `json:"profile_url,omitempty"`
	Timestamp  int64  `json:"timestamp,omitempty"`
}

// Friend is a directed edge from OwnerUserID to someone they consider a friend.
// TargetUserID is nil for imported contacts that have no account.
type Friend struct {
	ID           uuid.UUID           `gorm:"type:char(36);primaryKey" json:"id"`
	OwnerUserID  uuid.UUID           `gorm:"type:char(36);not null;index;uniqueIndex:idx_friends_contact,priority:1" json:"user_id"`
	TargetUserID *uuid.UUID          `gorm:"type:char(36);index" json:"friend_id"`
	Status       domain.FriendStatus `gorm:"size:20;not null;index" json:"status"`
	Source       domain.FriendSource `gorm:"size:20;not null;default:'manual'" json:"source"`
	Tier         *domain.Tier        `gorm:"size:20" json:"tier,omitempty"`
	External     *ExternalContact    `gorm:"type:text;serializer:json" json:"external_contact,omitempty"`
	ContactKey   *string             `gorm:"size:64;uniqueIndex:idx_friends_contact,priority:2" json:"-"`
	CreatedAt    time.Time           `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	ArchivedAt   *time.Time          `json:"archived_at,omitempty"`
}

func (Friend) TableName() string { return "friends" }

func (f *Friend) BeforeCreate(_ *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
