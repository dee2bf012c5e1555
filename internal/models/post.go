package models

import (
	"time"

	"realones/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is a feed entry shown to the author's active friends, newest first.
type Post struct {
	ID         uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	UserID     uuid.UUID       `gorm:"type:char(36);not null;index:idx_posts_author,priority:1" json:"user_id"`
	Content    string          `gorm:"type:text" json:"content"`
	MediaURLs  []string        `gorm:"type:text;serializer:json" json:"media_urls,omitempty"`
	PostType   domain.PostType `gorm:"size:16;not null;default:'text'" json:"post_type"`
	Visibility string          `gorm:"size:16;not null;default:'circle'" json:"visibility"`
	CreatedAt  time.Time       `gorm:"index:idx_posts_author,priority:2" json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Reaction is one user's reaction to a post. A user holds at most one per post.
type Reaction struct {
	ID        uint                `gorm:"primaryKey" json:"-"`
	PostID    uuid.UUID           `gorm:"type:char(36);not null;uniqueIndex:idx_reactions_post_user,priority:1" json:"post_id"`
	UserID    uuid.UUID           `gorm:"type:char(36);not null;uniqueIndex:idx_reactions_post_user,priority:2" json:"user_id"`
	Type      domain.ReactionType `gorm:"size:16;not null" json:"type"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}
