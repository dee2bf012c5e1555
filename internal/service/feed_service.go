package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"realones/internal/domain"
	"realones/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	feedPageSize     = 20
	maxPostLength    = 5000
	maxPostMediaURLs = 10
)

type PostStore interface {
	Create(ctx context.Context, p *models.Post) error
	Get(ctx context.Context, id uuid.UUID) (*models.Post, error)
	DeleteOwned(ctx context.Context, userID, id uuid.UUID) error
	ListByAuthors(ctx context.Context, authorIDs []uuid.UUID, limit, offset int) ([]models.Post, error)
	ReactionCounts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int, error)
	UserReactions(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]domain.ReactionType, error)
	UpsertReaction(ctx context.Context, r *models.Reaction) error
	DeleteReaction(ctx context.Context, postID, userID uuid.UUID) error
}

type NewPost struct {
	Content   string          `json:"content"`
	MediaURLs []string        `json:"media_urls"`
	PostType  domain.PostType `json:"post_type"`
}

type PostView struct {
	models.Post
	Author         MemberView           `json:"author"`
	ReactionsCount int                  `json:"reactions_count"`
	UserReaction   *domain.ReactionType `json:"user_reaction"`
}

type FeedPage struct {
	Posts   []PostView `json:"posts"`
	Page    int        `json:"page"`
	HasMore bool       `json:"has_more"`
}

// FeedService serves posts from the caller and the people in their active circle.
type FeedService struct {
	posts    PostStore
	circles  CircleDirectory
	profiles ProfileDirectory
	events   ChangePublisher
	backend  Backend
	log      *zap.Logger
	now      func() time.Time
}

func NewFeedService(posts PostStore, circles CircleDirectory, profiles ProfileDirectory, events ChangePublisher, backend Backend, log *zap.Logger) *FeedService {
	if events == nil {
		events = nopPublisher{}
	}
	return &FeedService{
		posts:    posts,
		circles:  circles,
		profiles: profiles,
		events:   events,
		backend:  backend,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Feed returns one page (0-based) of the caller's feed, newest first.
func (s *FeedService) Feed(ctx context.Context, userID uuid.UUID, page int) (*FeedPage, error) {
	if page < 0 {
		page = 0
	}
	ctx, cancel := s.backend.bound(ctx)
	defer cancel()
	authors, err := s.circles.ActiveTargets(ctx, userID)
	if err != nil {
		return nil, err
	}
	authors = append(authors, userID)

	list, err := s.posts.ListByAuthors(ctx, authors, feedPageSize+1, page*feedPageSize)
	if err != nil {
		return nil, err
	}
	out := &FeedPage{Posts: []PostView{}, Page: page}
	if len(list) > feedPageSize {
		out.HasMore = true
		list = list[:feedPageSize]
	}
	if len(list) == 0 {
		return out, nil
	}

	postIDs := make([]uuid.UUID, 0, len(list))
	var authorIDs []uuid.UUID
	seen := map[uuid.UUID]bool{}
	for _, p := range list {
		postIDs = append(postIDs, p.ID)
		if !seen[p.UserID] {
			seen[p.UserID] = true
			authorIDs = append(authorIDs, p.UserID)
		}
	}
	people, err := lookupMembers(ctx, s.profiles, authorIDs)
	if err != nil {
		return nil, err
	}
	counts, err := s.posts.ReactionCounts(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	mine, err := s.posts.UserReactions(ctx, userID, postIDs)
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		v := PostView{Post: p, Author: people[p.UserID], ReactionsCount: counts[p.ID]}
		if rt, ok := mine[p.ID]; ok {
			rt := rt
			v.UserReaction = &rt
		}
		out.Posts = append(out.Posts, v)
	}
	return out, nil
}

func validatePost(in NewPost) (NewPost, error) {
	in.Content = strings.TrimSpace(in.Content)
	if in.PostType == "" {
		in.PostType = domain.PostText
	}
	if !in.PostType.Valid() {
		return in, fmt.Errorf("%w: unknown post type %q", domain.ErrInvalidPost, in.PostType)
	}
	if len([]rune(in.Content)) > maxPostLength {
		return in, fmt.Errorf("%w: longer than %d characters", domain.ErrInvalidPost, maxPostLength)
	}
	if len(in.MediaURLs) > maxPostMediaURLs {
		return in, fmt.Errorf("%w: at most %d media items", domain.ErrInvalidPost, maxPostMediaURLs)
	}
	for _, raw := range in.MediaURLs {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
			return in, fmt.Errorf("%w: bad media url %q", domain.ErrInvalidPost, raw)
		}
	}
	if in.Content == "" && len(in.MediaURLs) == 0 {
		return in, fmt.Errorf("%w: empty post", domain.ErrInvalidPost)
	}
	return in, nil
}

// CreatePost publishes a circle post and tells everyone who keeps the author active.
func (s *FeedService) CreatePost(ctx context.Context, userID uuid.UUID, in NewPost) (*models.Post, error) {
	in, err := validatePost(in)
	if err != nil {
		return nil, err
	}
	now := s.now()
	p := &models.Post{
		UserID:     userID,
		Content:    in.Content,
		MediaURLs:  in.MediaURLs,
		PostType:   in.PostType,
		Visibility: domain.VisibilityCircle,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	bctx, cancel := s.backend.bound(ctx)
	err = s.posts.Create(bctx, p)
	cancel()
	if err != nil {
		return nil, err
	}

	bctx, cancel = s.backend.bound(ctx)
	followers, err := s.circles.ActiveFollowers(bctx, userID)
	cancel()
	if err != nil {
		s.log.Warn("post fan-out", zap.String("post_id", p.ID.String()), zap.Error(err))
		return p, nil
	}
	for _, id := range followers {
		s.events.Publish(id, domain.EventPostCreated, p)
	}
	return p, nil
}

func (s *FeedService) DeletePost(ctx context.Context, userID, postID uuid.UUID) error {
	ctx, cancel := s.backend.bound(ctx)
	defer cancel()
	return s.posts.DeleteOwned(ctx, userID, postID)
}

// React sets the caller's reaction on a post they can see in their feed.
func (s *FeedService) React(ctx context.Context, userID, postID uuid.UUID, t domain.ReactionType) (*models.Reaction, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown reaction %q", domain.ErrInvalidReaction, t)
	}
	ctx, cancel := s.backend.bound(ctx)
	defer cancel()
	p, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		active, err := s.circles.ActiveTargets(ctx, userID)
		if err != nil {
			return nil, err
		}
		visible := false
		for _, id := range active {
			if id == p.UserID {
				visible = true
				break
			}
		}
		if !visible {
			return nil, domain.ErrNotFound
		}
	}
	now := s.now()
	r := &models.Reaction{PostID: postID, UserID: userID, Type: t, CreatedAt: now, UpdatedAt: now}
	if err := s.posts.UpsertReaction(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// RemoveReaction is idempotent.
func (s *FeedService) RemoveReaction(ctx context.Context, userID, postID uuid.UUID) error {
	ctx, cancel := s.backend.bound(ctx)
	defer cancel()
	return s.posts.DeleteReaction(ctx, postID, userID)
}
