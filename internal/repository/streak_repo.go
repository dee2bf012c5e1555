package repository

import (
	"context"

	"realones/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StreakRepository struct {
	db *gorm.DB
}

func NewStreakRepository(db *gorm.DB) *StreakRepository {
	return &StreakRepository{db: db}
}

// Find returns the user's streak, or nil if they never acted.
func (r *StreakRepository) Find(ctx context.Context, userID uuid.UUID) (*models.Streak, error) {
	var list []models.Streak
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

// Save upserts the streak row keyed by user.
func (r *StreakRepository) Save(ctx context.Context, s *models.Streak) error {
	row := *s
	row.ID = 0
	return translate(r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"current_streak", "longest_streak", "last_action_date", "updated_at"}),
	}).Create(&row).Error)
}
