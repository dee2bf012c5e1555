package repository

import (
	"context"

	"realones/internal/domain"
	"realones/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreditRepository is the append-only credit ledger.
type CreditRepository struct {
	db *gorm.DB
}

func NewCreditRepository(db *gorm.DB) *CreditRepository {
	return &CreditRepository{db: db}
}

// ListByUser returns the user's credits, oldest first.
func (r *CreditRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Credit, error) {
	var list []models.Credit
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&list).Error
	return list, translate(err)
}

func (r *CreditRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Credit{}).Where("user_id = ?", userID).Count(&n).Error
	return int(n), translate(err)
}

// Exists checks for a credit with the given dedup key.
func (r *CreditRepository) Exists(ctx context.Context, userID uuid.UUID, t domain.CreditType, sourceKey string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Credit{}).
		Where("user_id = ? AND credit_type = ? AND source_key = ?", userID, t, sourceKey).
		Count(&n).Error
	return n > 0, translate(err)
}

// HasType reports whether the user holds any credit of type t.
func (r *CreditRepository) HasType(ctx context.Context, userID uuid.UUID, t domain.CreditType) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Credit{}).
		Where("user_id = ? AND credit_type = ?", userID, t).
		Count(&n).Error
	return n > 0, translate(err)
}

// Create inserts a credit. A concurrent duplicate surfaces as domain.ErrUniquenessViolation.
func (r *CreditRepository) Create(ctx context.Context, c *models.Credit) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}
