package repository

import (
	"context"
	"time"

	"realones/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PioneerStatusRepository struct {
	db *gorm.DB
}

func NewPioneerStatusRepository(db *gorm.DB) *PioneerStatusRepository {
	return &PioneerStatusRepository{db: db}
}

// Find returns the cached status, or nil if the user has none yet.
func (r *PioneerStatusRepository) Find(ctx context.Context, userID uuid.UUID) (*models.PioneerStatus, error) {
	var list []models.PioneerStatus
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&list).Error; err != nil {
		return nil, translate(err)
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

// Raise moves the cached status up to credits/activated. It never lowers the
// count and never clears activation. newlyActivated is true only for the call
// that flipped the flag.
func (r *PioneerStatusRepository) Raise(ctx context.Context, userID uuid.UUID, credits int, activated bool, now time.Time) (newlyActivated bool, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.PioneerStatus{UserID: userID}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&row).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.PioneerStatus{}).
			Where("user_id = ? AND credits < ?", userID, credits).
			Updates(map[string]interface{}{"credits": credits, "updated_at": now}).Error; err != nil {
			return err
		}
		if !activated {
			return nil
		}
		res := tx.Model(&models.PioneerStatus{}).
			Where("user_id = ? AND is_activated = ?", userID, false).
			Updates(map[string]interface{}{"is_activated": true, "activated_at": now, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		newlyActivated = res.RowsAffected > 0
		return nil
	})
	return newlyActivated, translate(err)
}
