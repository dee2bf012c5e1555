package repository

import (
	"context"
	"time"

	"realones/internal/domain"
	"realones/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// CreateWithMembers inserts the conversation and one member row per user id in a
// single transaction.
func (r *ConversationRepository) CreateWithMembers(ctx context.Context, c *models.Conversation, memberIDs []uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		members := make([]models.ConversationMember, 0, len(memberIDs))
		for _, id := range memberIDs {
			members = append(members, models.ConversationMember{ConversationID: c.ID, UserID: id, CreatedAt: c.CreatedAt})
		}
		return tx.Create(&members).Error
	})
	return translate(err)
}

// FindDM looks a direct conversation up by its pair key.
func (r *ConversationRepository) FindDM(ctx context.Context, key string) (*models.Conversation, error) {
	var c models.Conversation
	if err := r.db.WithContext(ctx).Where("dm_key = ?", key).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// ListForUser returns the user's conversations, most recently active first.
func (r *ConversationRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	var list []models.Conversation
	err := r.db.WithContext(ctx).
		Joins("JOIN conversation_members cm ON cm.conversation_id = conversations.id AND cm.user_id = ?", userID).
		Order("conversations.updated_at DESC").Order("conversations.id").
		Find(&list).Error
	return list, translate(err)
}

// Members returns the member rows of the given conversations.
func (r *ConversationRepository) Members(ctx context.Context, conversationIDs []uuid.UUID) ([]models.ConversationMember, error) {
	if len(conversationIDs) == 0 {
		return nil, nil
	}
	var list []models.ConversationMember
	err := r.db.WithContext(ctx).Where("conversation_id IN ?", conversationIDs).
		Order("created_at").Order("id").
		Find(&list).Error
	return list, translate(err)
}

func (r *ConversationRepository) MemberIDs(ctx context.Context, conversationID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.ConversationMember{}).
		Where("conversation_id = ?", conversationID).
		Order("id").
		Pluck("user_id", &ids).Error
	return ids, translate(err)
}

func (r *ConversationRepository) IsMember(ctx context.Context, conversationID, userID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.ConversationMember{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&n).Error
	return n > 0, translate(err)
}

// LatestMessages returns the newest message of each conversation that has one.
func (r *ConversationRepository) LatestMessages(ctx context.Context, conversationIDs []uuid.UUID) (map[uuid.UUID]models.Message, error) {
	out := make(map[uuid.UUID]models.Message, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return out, nil
	}
	var list []models.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id IN ?", conversationIDs).
		Where("created_at = (SELECT MAX(m2.created_at) FROM messages m2 WHERE m2.conversation_id = messages.conversation_id)").
		Order("id").
		Find(&list).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, m := range list {
		if _, ok := out[m.ConversationID]; !ok {
			out[m.ConversationID] = m
		}
	}
	return out, nil
}

type unreadRow struct {
	ConversationID uuid.UUID
	N              int
}

// UnreadCounts counts messages from other members newer than the user's read mark.
func (r *ConversationRepository) UnreadCounts(ctx context.Context, userID uuid.UUID, conversationIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return out, nil
	}
	var rows []unreadRow
	err := r.db.WithContext(ctx).Table("messages").
		Select("messages.conversation_id AS conversation_id, COUNT(*) AS n").
		Joins("JOIN conversation_members cm ON cm.conversation_id = messages.conversation_id AND cm.user_id = ?", userID).
		Where("messages.conversation_id IN ?", conversationIDs).
		Where("messages.sender_id <> ?", userID).
		Where("(cm.last_read_at IS NULL OR messages.created_at > cm.last_read_at)").
		Group("messages.conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, row := range rows {
		out[row.ConversationID] = row.N
	}
	return out, nil
}

// AddMessage stores the message, bumps the conversation and marks it read for the
// sender, all in one transaction.
func (r *ConversationRepository) AddMessage(ctx context.Context, m *models.Message) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Conversation{}).Where("id = ?", m.ConversationID).
			Update("updated_at", m.CreatedAt).Error; err != nil {
			return err
		}
		return tx.Model(&models.ConversationMember{}).
			Where("conversation_id = ? AND user_id = ?", m.ConversationID, m.SenderID).
			Update("last_read_at", m.CreatedAt).Error
	})
	return translate(err)
}

// ListMessages pages through a conversation newest first.
func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]models.Message, error) {
	var list []models.Message
	err := r.db.WithContext(ctx).Where("conversation_id = ?", conversationID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, translate(err)
}

func (r *ConversationRepository) MarkRead(ctx context.Context, conversationID, userID uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.ConversationMember{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Update("last_read_at", at)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
