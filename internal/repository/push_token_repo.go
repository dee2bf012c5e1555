package repository

import (
	"context"
	"time"

	"realones/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PushTokenRepository struct {
	db *gorm.DB
}

func NewPushTokenRepository(db *gorm.DB) *PushTokenRepository {
	return &PushTokenRepository{db: db}
}

// Register stores a device token. A token re-registered by another user moves to them.
func (r *PushTokenRepository) Register(ctx context.Context, userID uuid.UUID, token string) error {
	now := time.Now().UTC()
	pt := models.PushToken{UserID: userID, Token: token, CreatedAt: now, UpdatedAt: now}
	return translate(r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "updated_at"}),
	}).Create(&pt).Error)
}

func (r *PushTokenRepository) TokensForUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var tokens []string
	err := r.db.WithContext(ctx).Model(&models.PushToken{}).Where("user_id = ?", userID).Pluck("token", &tokens).Error
	return tokens, translate(err)
}

// Delete drops a token FCM reported as unregistered.
func (r *PushTokenRepository) Delete(ctx context.Context, token string) error {
	return translate(r.db.WithContext(ctx).Where("token = ?", token).Delete(&models.PushToken{}).Error)
}
