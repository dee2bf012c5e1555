package repository

import (
	"context"

	"realones/internal/domain"
	"realones/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, p *models.Post) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *PostRepository) Get(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var p models.Post
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// DeleteOwned removes the author's post and its reactions.
func (r *PostRepository) DeleteOwned(ctx context.Context, userID, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return tx.Where("post_id = ?", id).Delete(&models.Reaction{}).Error
	})
	return translate(err)
}

// ListByAuthors pages through circle posts of the given authors, newest first.
func (r *PostRepository) ListByAuthors(ctx context.Context, authorIDs []uuid.UUID, limit, offset int) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	var list []models.Post
	err := r.db.WithContext(ctx).
		Where("user_id IN ? AND visibility = ?", authorIDs, domain.VisibilityCircle).
		Order("created_at DESC").Order("id").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, translate(err)
}

type reactionCountRow struct {
	PostID uuid.UUID
	N      int
}

func (r *PostRepository) ReactionCounts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var rows []reactionCountRow
	err := r.db.WithContext(ctx).Model(&models.Reaction{}).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, row := range rows {
		out[row.PostID] = row.N
	}
	return out, nil
}

// UserReactions returns the user's reaction on each of the posts they reacted to.
func (r *PostRepository) UserReactions(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]domain.ReactionType, error) {
	out := make(map[uuid.UUID]domain.ReactionType, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var list []models.Reaction
	err := r.db.WithContext(ctx).Where("user_id = ? AND post_id IN ?", userID, postIDs).Find(&list).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, re := range list {
		out[re.PostID] = re.Type
	}
	return out, nil
}

// UpsertReaction sets the user's reaction, replacing any earlier one on the post.
func (r *PostRepository) UpsertReaction(ctx context.Context, re *models.Reaction) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"type", "updated_at"}),
	}).Create(re).Error
	return translate(err)
}

// DeleteReaction is idempotent.
func (r *PostRepository) DeleteReaction(ctx context.Context, postID, userID uuid.UUID) error {
	return translate(r.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Reaction{}).Error)
}
