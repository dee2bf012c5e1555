package repository

import (
	"context"
	"time"

	"realones/internal/domain"
	"realones/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// importBatchSize caps rows per INSERT when pooling imported contacts.
const importBatchSize = 200

type FriendRepository struct {
	db *gorm.DB
}

func NewFriendRepository(db *gorm.DB) *FriendRepository {
	return &FriendRepository{db: db}
}

// ListByOwner returns every relationship owned by the user, newest first.
func (r *FriendRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Friend, error) {
	var list []models.Friend
	err := r.db.WithContext(ctx).
		Where("owner_user_id = ?", ownerID).
		Order("created_at DESC").Order("id").
		Find(&list).Error
	return list, translate(err)
}

// GetOwned loads one relationship, scoped to its owner.
func (r *FriendRepository) GetOwned(ctx context.Context, ownerID, id uuid.UUID) (*models.Friend, error) {
	var f models.Friend
	err := r.db.WithContext(ctx).Where("id = ? AND owner_user_id = ?", id, ownerID).First(&f).Error
	if err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

// HasTarget reports whether the owner already has a relationship with target.
func (r *FriendRepository) HasTarget(ctx context.Context, ownerID, targetID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Friend{}).
		Where("owner_user_id = ? AND target_user_id = ?", ownerID, targetID).
		Count(&n).Error
	return n > 0, translate(err)
}

func (r *FriendRepository) Create(ctx context.Context, f *models.Friend) error {
	return translate(r.db.WithContext(ctx).Create(f).Error)
}

// SaveStatus writes the status fields of an already transitioned relationship.
func (r *FriendRepository) SaveStatus(ctx context.Context, f *models.Friend) error {
	res := r.db.WithContext(ctx).Model(&models.Friend{}).
		Where("id = ? AND owner_user_id = ?", f.ID, f.OwnerUserID).
		Updates(map[string]interface{}{
			"status":      f.Status,
			"archived_at": f.ArchivedAt,
			"updated_at":  f.UpdatedAt,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// BulkUpdateStatus loads the owner's relationships with the given ids, hands them
// to apply and writes the result with one UPDATE, all inside a transaction. If any
// id is missing or apply fails, nothing is written. apply must move every row to
// the same status.
func (r *FriendRepository) BulkUpdateStatus(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID,
	apply func([]models.Friend) ([]models.Friend, error)) ([]models.Friend, error) {
	var out []models.Friend
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current []models.Friend
		if err := tx.Where("owner_user_id = ? AND id IN ?", ownerID, ids).
			Order("created_at DESC").Order("id").
			Find(&current).Error; err != nil {
			return err
		}
		if len(current) != len(ids) {
			return domain.ErrNotFound
		}
		next, err := apply(current)
		if err != nil {
			return err
		}
		if len(next) == 0 {
			return nil
		}
		res := tx.Model(&models.Friend{}).
			Where("owner_user_id = ? AND id IN ?", ownerID, ids).
			Updates(map[string]interface{}{
				"status":      next[0].Status,
				"archived_at": next[0].ArchivedAt,
				"updated_at":  next[0].UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if int(res.RowsAffected) != len(ids) {
			return domain.ErrNotFound
		}
		out = next
		return nil
	})
	if err != nil {
		return nil, translatePassthrough(err)
	}
	return out, nil
}

// SetTier assigns or clears (tier == nil) the tier of a relationship.
func (r *FriendRepository) SetTier(ctx context.Context, ownerID, id uuid.UUID, tier *domain.Tier, now time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Friend{}).
		Where("id = ? AND owner_user_id = ?", id, ownerID).
		Updates(map[string]interface{}{"tier": tier, "updated_at": now})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete hard-deletes a relationship.
func (r *FriendRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND owner_user_id = ?", id, ownerID).Delete(&models.Friend{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// InsertImported pools imported contacts, skipping any whose contact key the owner
// already has. It returns how many rows were inserted.
func (r *FriendRepository) InsertImported(ctx context.Context, rows []models.Friend) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_user_id"}, {Name: "contact_key"}},
		DoNothing: true,
	}).CreateInBatches(&rows, importBatchSize)
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	return int(res.RowsAffected), nil
}

// ActiveTargets returns the registered users the owner keeps active.
func (r *FriendRepository) ActiveTargets(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.Friend{}).
		Where("owner_user_id = ? AND status = ? AND target_user_id IS NOT NULL", ownerID, domain.FriendActive).
		Pluck("target_user_id", &ids).Error
	return ids, translate(err)
}

// ActiveFollowers returns the owners who keep target active in their circle.
func (r *FriendRepository) ActiveFollowers(ctx context.Context, targetID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.Friend{}).
		Where("target_user_id = ? AND status = ?", targetID, domain.FriendActive).
		Pluck("owner_user_id", &ids).Error
	return ids, translate(err)
}
