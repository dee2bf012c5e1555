package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"realones/internal/circle"
	"realones/internal/domain"
	"realones/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxMessageLength          = 4000
	maxConversationNameLength = 100
	defaultMessagePage        = 50
)

type ConversationStore interface {
	CreateWithMembers(ctx context.Context, c *models.Conversation, memberIDs []uuid.UUID) error
	FindDM(ctx context.Context, key string) (*models.Conversation, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error)
	Members(ctx context.Context, conversationIDs []uuid.UUID) ([]models.ConversationMember, error)
	MemberIDs(ctx context.Context, conversationID uuid.UUID) ([]uuid.UUID, error)
	IsMember(ctx context.Context, conversationID, userID uuid.UUID) (bool, error)
	LatestMessages(ctx context.Context, conversationIDs []uuid.UUID) (map[uuid.UUID]models.Message, error)
	UnreadCounts(ctx context.Context, userID uuid.UUID, conversationIDs []uuid.UUID) (map[uuid.UUID]int, error)
	AddMessage(ctx context.Context, m *models.Message) error
	ListMessages(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]models.Message, error)
	MarkRead(ctx context.Context, conversationID, userID uuid.UUID, at time.Time) error
}

// CircleDirectory answers who is in whose active circle.
type CircleDirectory interface {
	ActiveTargets(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error)
	ActiveFollowers(ctx context.Context, targetID uuid.UUID) ([]uuid.UUID, error)
}

type ProfileDirectory interface {
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Profile, error)
}

// NewConversation is a create request. MemberIDs excludes the creator.
type NewConversation struct {
	Type      domain.ConversationType `json:"type"`
	MemberIDs []uuid.UUID             `json:"member_ids"`
	Name      *string                 `json:"name"`
}

// MemberView is the public face of a user inside chats and the feed.
type MemberView struct {
	UserID    uuid.UUID `json:"user_id"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url"`
}

// ConversationView is a conversation as listed for one member: the other members,
// the newest message and how many messages that member has not read.
type ConversationView struct {
	models.Conversation
	Members     []MemberView    `json:"members"`
	LastMessage *models.Message `json:"last_message"`
	UnreadCount int             `json:"unread_count"`
}

type MessageView struct {
	models.Message
	SenderName string `json:"sender_name"`
	IsMine     bool   `json:"is_mine"`
}

type MessagingService struct {
	conversations ConversationStore
	circles       CircleDirectory
	profiles      ProfileDirectory
	events        ChangePublisher
	backend       Backend
	log           *zap.Logger
	now           func() time.Time
}

func NewMessagingService(conversations ConversationStore, circles CircleDirectory, profiles ProfileDirectory, events ChangePublisher, backend Backend, log *zap.Logger) *MessagingService {
	if events == nil {
		events = nopPublisher{}
	}
	return &MessagingService{
		conversations: conversations,
		circles:       circles,
		profiles:      profiles,
		events:        events,
		backend:       backend,
		log:           log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// groupCapacity is how many people besides the creator a group may hold. Besties
// chats are sized like the ride-or-dies tier, squad chats like the squad tier.
func groupCapacity(t domain.ConversationType) int {
	switch t {
	case domain.ConversationBesties:
		return circle.TierCapacity(domain.TierRideOrDies)
	case domain.ConversationSquad:
		return circle.TierCapacity(domain.TierSquad)
	}
	return 1
}

// dmKey identifies a direct conversation independent of who opened it.
func dmKey(a, b uuid.UUID) string {
	x, y := a.String(), b.String()
	if y < x {
		x, y = y, x
	}
	return x + ":" + y
}

// CreateConversation opens a chat with people from the caller's active circle. A DM
// with someone the caller already talks to returns the existing conversation and
// created == false.
func (s *MessagingService) CreateConversation(ctx context.Context, userID uuid.UUID, in NewConversation) (*ConversationView, bool, error) {
	if !in.Type.Valid() {
		return nil, false, fmt.Errorf("%w: unknown type %q", domain.ErrInvalidConversation, in.Type)
	}
	others := make([]uuid.UUID, 0, len(in.MemberIDs))
	seen := map[uuid.UUID]bool{userID: true}
	for _, id := range in.MemberIDs {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		others = append(others, id)
	}
	if len(others) == 0 {
		return nil, false, fmt.Errorf("%w: no members", domain.ErrInvalidConversation)
	}
	if limit := groupCapacity(in.Type); len(others) > limit {
		return nil, false, fmt.Errorf("%w: %s holds at most %d members besides you", domain.ErrInvalidConversation, in.Type, limit)
	}
	var name *string
	if in.Type != domain.ConversationDM && in.Name != nil {
		n := strings.TrimSpace(*in.Name)
		if len([]rune(n)) > maxConversationNameLength {
			return nil, false, fmt.Errorf("%w: name longer than %d characters", domain.ErrInvalidConversation, maxConversationNameLength)
		}
		if n != "" {
			name = &n
		}
	}

	bctx, cancel := s.backend.bound(ctx)
	active, err := s.circles.ActiveTargets(bctx, userID)
	cancel()
	if err != nil {
		return nil, false, err
	}
	inCircle := make(map[uuid.UUID]bool, len(active))
	for _, id := range active {
		inCircle[id] = true
	}
	for _, id := range others {
		if !inCircle[id] {
			return nil, false, fmt.Errorf("%w: %s is not in your active circle", domain.ErrInvalidConversation, id)
		}
	}

	now := s.now()
	c := &models.Conversation{Type: in.Type, Name: name, CreatedBy: userID, CreatedAt: now, UpdatedAt: now}
	if in.Type == domain.ConversationDM {
		key := dmKey(userID, others[0])
		existing, err := s.findDM(ctx, key)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			v, err := s.view(ctx, userID, *existing)
			return v, false, err
		}
		c.DMKey = &key
	}

	bctx, cancel = s.backend.bound(ctx)
	err = s.conversations.CreateWithMembers(bctx, c, append([]uuid.UUID{userID}, others...))
	cancel()
	if errors.Is(err, domain.ErrUniquenessViolation) && c.DMKey != nil {
		// The other side opened the same DM concurrently.
		existing, ferr := s.findDM(ctx, *c.DMKey)
		if ferr != nil {
			return nil, false, ferr
		}
		if existing != nil {
			v, verr := s.view(ctx, userID, *existing)
			return v, false, verr
		}
	}
	if err != nil {
		return nil, false, err
	}

	for _, id := range others {
		s.events.Publish(id, domain.EventConversationCreated, conversationRef(c.ID, userID))
	}
	s.log.Info("conversation created", zap.String("conversation_id", c.ID.String()), zap.String("type", string(c.Type)))
	v, err := s.view(ctx, userID, *c)
	return v, true, err
}

func conversationRef(conversationID, userID uuid.UUID) map[string]string {
	return map[string]string{"conversation_id": conversationID.String(), "user_id": userID.String()}
}

func (s *MessagingService) findDM(ctx context.Context, key string) (*models.Conversation, error) {
	bctx, cancel := s.backend.bound(ctx)
	defer cancel()
	c, err := s.conversations.FindDM(bctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return c, err
}

func (s *MessagingService) view(ctx context.Context, userID uuid.UUID, c models.Conversation) (*ConversationView, error) {
	views, err := s.views(ctx, userID, []models.Conversation{c})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListConversations returns the caller's conversations, most recently active first.
func (s *MessagingService) ListConversations(ctx context.Context, userID uuid.UUID) ([]ConversationView, error) {
	bctx, cancel := s.backend.bound(ctx)
	list, err := s.conversations.ListForUser(bctx, userID)
	cancel()
	if err != nil {
		return nil, err
	}
	return s.views(ctx, userID, list)
}

func (s *MessagingService) views(ctx context.Context, userID uuid.UUID, list []models.Conversation) ([]ConversationView, error) {
	out := make([]ConversationView, 0, len(list))
	if len(list) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, 0, len(list))
	for _, c := range list {
		ids = append(ids, c.ID)
	}

	ctx, cancel := s.backend.bound(ctx)
	defer cancel()
	members, err := s.conversations.Members(ctx, ids)
	if err != nil {
		return nil, err
	}
	latest, err := s.conversations.LatestMessages(ctx, ids)
	if err != nil {
		return nil, err
	}
	unread, err := s.conversations.UnreadCounts(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	byConversation := make(map[uuid.UUID][]uuid.UUID, len(list))
	var userIDs []uuid.UUID
	for _, m := range members {
		if m.UserID == userID {
			continue
		}
		byConversation[m.ConversationID] = append(byConversation[m.ConversationID], m.UserID)
		userIDs = append(userIDs, m.UserID)
	}
	people, err := s.memberViews(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	for _, c := range list {
		v := ConversationView{Conversation: c, Members: []MemberView{}, UnreadCount: unread[c.ID]}
		for _, id := range byConversation[c.ID] {
			v.Members = append(v.Members, people[id])
		}
		if m, ok := latest[c.ID]; ok {
			m := m
			v.LastMessage = &m
		}
		out = append(out, v)
	}
	return out, nil
}

// memberViews resolves profiles; users without a profile row get a bare view.
func (s *MessagingService) memberViews(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]MemberView, error) {
	return lookupMembers(ctx, s.profiles, ids)
}

func lookupMembers(ctx context.Context, profiles ProfileDirectory, ids []uuid.UUID) (map[uuid.UUID]MemberView, error) {
	out := make(map[uuid.UUID]MemberView, len(ids))
	for _, id := range ids {
		out[id] = MemberView{UserID: id}
	}
	if len(ids) == 0 {
		return out, nil
	}
	list, err := profiles.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		out[p.ID] = MemberView{UserID: p.ID, FullName: p.FullName, AvatarURL: p.AvatarURL}
	}
	return out, nil
}

func (s *MessagingService) requireMember(ctx context.Context, userID, conversationID uuid.UUID) error {
	bctx, cancel := s.backend.bound(ctx)
	defer cancel()
	ok, err := s.conversations.IsMember(bctx, conversationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// SendMessage stores a message and pushes it to every member's open connections.
func (s *MessagingService) SendMessage(ctx context.Context, userID, conversationID uuid.UUID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty message", domain.ErrInvalidMessage)
	}
	if len([]rune(content)) > maxMessageLength {
		return nil, fmt.Errorf("%w: longer than %d characters", domain.ErrInvalidMessage, maxMessageLength)
	}
	if err := s.requireMember(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	m := &models.Message{ConversationID: conversationID, SenderID: userID, Content: content, CreatedAt: s.now()}
	bctx, cancel := s.backend.bound(ctx)
	err := s.conversations.AddMessage(bctx, m)
	cancel()
	if err != nil {
		return nil, err
	}

	bctx, cancel = s.backend.bound(ctx)
	members, err := s.conversations.MemberIDs(bctx, conversationID)
	cancel()
	if err != nil {
		// Stored; members pick it up on their next fetch.
		s.log.Warn("message fan-out", zap.String("conversation_id", conversationID.String()), zap.Error(err))
		return m, nil
	}
	for _, id := range members {
		s.events.Publish(id, domain.EventMessageCreated, m)
	}
	return m, nil
}

// Messages returns a page of the conversation oldest first and marks it read.
func (s *MessagingService) Messages(ctx context.Context, userID, conversationID uuid.UUID, limit, offset int) ([]MessageView, error) {
	if limit <= 0 {
		limit = defaultMessagePage
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	if err := s.requireMember(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	bctx, cancel := s.backend.bound(ctx)
	defer cancel()
	list, err := s.conversations.ListMessages(bctx, conversationID, limit, offset)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}

	var senders []uuid.UUID
	seen := map[uuid.UUID]bool{}
	for _, m := range list {
		if !seen[m.SenderID] {
			seen[m.SenderID] = true
			senders = append(senders, m.SenderID)
		}
	}
	people, err := s.memberViews(bctx, senders)
	if err != nil {
		return nil, err
	}
	out := make([]MessageView, 0, len(list))
	for _, m := range list {
		out = append(out, MessageView{Message: m, SenderName: people[m.SenderID].FullName, IsMine: m.SenderID == userID})
	}

	if err := s.conversations.MarkRead(bctx, conversationID, userID, s.now()); err != nil {
		s.log.Warn("mark conversation read", zap.String("conversation_id", conversationID.String()), zap.Error(err))
	}
	return out, nil
}

func (s *MessagingService) MarkRead(ctx context.Context, userID, conversationID uuid.UUID) error {
	ctx, cancel := s.backend.bound(ctx)
	defer cancel()
	return s.conversations.MarkRead(ctx, conversationID, userID, s.now())
}

// Typing relays a typing indicator to the other members. Nothing is stored.
func (s *MessagingService) Typing(ctx context.Context, userID, conversationID uuid.UUID) error {
	ctx, cancel := s.backend.bound(ctx)
	defer cancel()
	members, err := s.conversations.MemberIDs(ctx, conversationID)
	if err != nil {
		return err
	}
	isMember := false
	for _, id := range members {
		if id == userID {
			isMember = true
		}
	}
	if !isMember {
		return domain.ErrNotFound
	}
	for _, id := range members {
		if id != userID {
			s.events.Publish(id, domain.EventTyping, conversationRef(conversationID, userID))
		}
	}
	return nil
}
