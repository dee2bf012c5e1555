package repository

import (
	"context"
	"time"

	"realones/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetOrCreate returns the profile, creating an empty one on first access.
func (r *ProfileRepository) GetOrCreate(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	db := r.db.WithContext(ctx)
	p := models.Profile{ID: id}
	if err := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).Create(&p).Error; err != nil {
		return nil, translate(err)
	}
	if err := db.First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// Update writes the given columns and returns the fresh row.
func (r *ProfileRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Profile, error) {
	db := r.db.WithContext(ctx)
	fields["updated_at"] = time.Now().UTC()
	res := db.Model(&models.Profile{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	var p models.Profile
	if err := db.First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *ProfileRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var list []models.Profile
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error
	return list, translate(err)
}
