package service

import (
	"context"
	"encoding/json"

	"realones/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxPushBodyRunes = 100
	defaultPageSize  = 20
	maxPageSize      = 100
)

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id uint, userID uuid.UUID) error
}

type PushTokenStore interface {
	Register(ctx context.Context, userID uuid.UUID, token string) error
	TokensForUser(ctx context.Context, userID uuid.UUID) ([]string, error)
	Delete(ctx context.Context, token string) error
}

// Pusher delivers a push to one device.
type Pusher interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
	IsUnregistered(err error) bool
}

type NotificationService struct {
	repo    NotificationStore
	tokens  PushTokenStore
	push    Pusher
	backend Backend
	log     *zap.Logger
}

// NewNotificationService wires notifications. push may be nil when FCM is not configured.
func NewNotificationService(repo NotificationStore, tokens PushTokenStore, push Pusher, backend Backend, log *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, tokens: tokens, push: push, backend: backend, log: log}
}

// TruncateBody shortens a push body to 100 characters, ending in "...".
func TruncateBody(body string) string {
	r := []rune(body)
	if len(r) <= maxPushBodyRunes {
		return body
	}
	return string(r[:maxPushBodyRunes-3]) + "..."
}

// Notify stores a notification and pushes it to every registered device of the user.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, notifType, title, body string, data map[string]interface{}) error {
	body = TruncateBody(body)
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	bctx, cancel := s.backend.bound(ctx)
	defer cancel()
	if err := s.repo.Create(bctx, &models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	}); err != nil {
		return err
	}
	s.sendPush(bctx, userID, notifType, title, body, data)
	return nil
}

func (s *NotificationService) sendPush(ctx context.Context, userID uuid.UUID, notifType, title, body string, data map[string]interface{}) {
	if s.push == nil || s.tokens == nil {
		return
	}
	tokens, err := s.tokens.TokensForUser(ctx, userID)
	if err != nil {
		s.log.Warn("load push tokens failed", zap.String("user_id", userID.String()), zap.Error(err))
		return
	}
	payload := stringData(notifType, data)
	for _, t := range tokens {
		err := s.push.Send(ctx, t, title, body, payload)
		if err == nil {
			continue
		}
		if s.push.IsUnregistered(err) {
			if derr := s.tokens.Delete(ctx, t); derr != nil {
				s.log.Warn("drop unregistered token failed", zap.Error(derr))
			}
		}
	}
}

func (s *NotificationService) RegisterToken(ctx context.Context, userID uuid.UUID, token string) error {
	ctx, cancel := s.backend.bound(ctx)
	defer cancel()
	return s.tokens.Register(ctx, userID, token)
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	ctx, cancel := s.backend.bound(ctx)
	defer cancel()
	list, err := s.repo.ListByUserID(ctx, userID, limit, offset)
	if list == nil {
		list = []models.Notification{}
	}
	return list, err
}

func (s *NotificationService) MarkRead(ctx context.Context, userID uuid.UUID, id uint) error {
	ctx, cancel := s.backend.bound(ctx)
	defer cancel()
	return s.repo.MarkRead(ctx, id, userID)
}
