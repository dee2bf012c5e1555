package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the public part of a user account. ID is the auth user id.
type Profile struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	FullName  string    `gorm:"size:255" json:"full_name"`
	AvatarURL string    `gorm:"size:512" json:"avatar_url"`
	Bio       string    `gorm:"type:text" json:"bio"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

// IsComplete reports whether the profile qualifies for the profile_complete credit.
func (p *Profile) IsComplete() bool {
	return p.AvatarURL != "" && p.Bio != ""
}
