package models

import (
	"time"

	"realones/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is a DM or group chat. DMKey is set only for DMs and makes the pair
// unique regardless of who started it.
type Conversation struct {
	ID        uuid.UUID               `gorm:"type:char(36);primaryKey" json:"id"`
	Type      domain.ConversationType `gorm:"size:16;not null" json:"type"`
	Name      *string                 `gorm:"size:100" json:"name"`
	CreatedBy uuid.UUID               `gorm:"type:char(36);not null" json:"created_by"`
	DMKey     *string                 `gorm:"size:73;uniqueIndex" json:"-"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `gorm:"index" json:"updated_at"`
}

func (c *Conversation) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ConversationMember tracks membership and how far the member has read.
type ConversationMember struct {
	ID             uint       `gorm:"primaryKey" json:"-"`
	ConversationID uuid.UUID  `gorm:"type:char(36);not null;uniqueIndex:idx_conversation_member,priority:1" json:"conversation_id"`
	UserID         uuid.UUID  `gorm:"type:char(36);not null;index;uniqueIndex:idx_conversation_member,priority:2" json:"user_id"`
	LastReadAt     *time.Time `json:"last_read_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

type Message struct {
	ID             uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:char(36);not null;index:idx_messages_conversation,priority:1" json:"conversation_id"`
	SenderID       uuid.UUID `gorm:"type:char(36);not null" json:"sender_id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time `gorm:"index:idx_messages_conversation,priority:2" json:"created_at"`
}

func (m *Message) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
