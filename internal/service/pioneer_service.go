package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"realones/internal/domain"
	"realones/internal/models"
	"realones/internal/pioneer"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreditStore is the append-only credit ledger.
type CreditStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Credit, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	Exists(ctx context.Context, userID uuid.UUID, t domain.CreditType, sourceKey string) (bool, error)
	HasType(ctx context.Context, userID uuid.UUID, t domain.CreditType) (bool, error)
	Create(ctx context.Context, c *models.Credit) error
}

// PioneerStatusStore caches the activation decision.
type PioneerStatusStore interface {
	Find(ctx context.Context, userID uuid.UUID) (*models.PioneerStatus, error)
	Raise(ctx context.Context, userID uuid.UUID, credits int, activated bool, now time.Time) (bool, error)
}

// Outcome reports what EarnCredit did.
type Outcome struct {
	Granted        bool                `json:"granted"`
	Activation     *pioneer.Activation `json:"activation,omitempty"`
	NewlyActivated bool                `json:"newly_activated"`
}

// PioneerSnapshot is everything the onboarding screen needs in one read.
type PioneerSnapshot struct {
	Activation pioneer.Activation `json:"activation"`
	Experience domain.Experience  `json:"experience"`
	Progress   pioneer.Progress   `json:"progress"`
	Credits    []models.Credit    `json:"credits"`
}

type PioneerService struct {
	credits  CreditStore
	status   PioneerStatusStore
	events   ChangePublisher
	notifier Notifier
	backend  Backend
	log      *zap.Logger
	now      func() time.Time
}

// NewPioneerService wires the ledger. events and notifier may be nil.
func NewPioneerService(credits CreditStore, status PioneerStatusStore, events ChangePublisher, notifier Notifier, backend Backend, log *zap.Logger) *PioneerService {
	if events == nil {
		events = nopPublisher{}
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &PioneerService{
		credits:  credits,
		status:   status,
		events:   events,
		notifier: notifier,
		backend:  backend,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func validateType(t domain.CreditType, sourceID string) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidCreditType, t)
	}
	if len(sourceID) > pioneer.MaxSourceIDLength {
		return fmt.Errorf("%w: longer than %d bytes", domain.ErrInvalidSource, pioneer.MaxSourceIDLength)
	}
	return nil
}

func validateGrant(t domain.CreditType, sourceID string) error {
	if err := validateType(t, sourceID); err != nil {
		return err
	}
	if t.MultiGrant() && sourceID == "" {
		return domain.ErrSourceRequired
	}
	return nil
}

// HasEarnedCredit checks the ledger for a grant. For friend_joined the source must match,
// or, when sourceID is empty, any friend_joined credit counts. Other types match
// regardless of source.
func (s *PioneerService) HasEarnedCredit(ctx context.Context, userID uuid.UUID, t domain.CreditType, sourceID string) (bool, error) {
	if err := validateType(t, sourceID); err != nil {
		return false, err
	}
	ctx, cancel := s.backend.bound(ctx)
	defer cancel()
	if t.MultiGrant() && sourceID == "" {
		return s.credits.HasType(ctx, userID, t)
	}
	return s.credits.Exists(ctx, userID, t, pioneer.SourceKey(t, sourceID))
}

// ClaimCredit is EarnCredit for credits the client asserts itself. friend_joined and
// profile_complete are rejected; they are granted by InviteService and ProfileService.
func (s *PioneerService) ClaimCredit(ctx context.Context, userID uuid.UUID, t domain.CreditType, sourceID string) (Outcome, error) {
	if err := validateType(t, sourceID); err != nil {
		return Outcome{}, err
	}
	if !pioneer.ClientClaimable(t) {
		return Outcome{}, fmt.Errorf("%w: %s", domain.ErrCreditNotClaimable, t)
	}
	return s.EarnCredit(ctx, userID, t, sourceID)
}

// EarnCredit grants a credit unless it was already earned. Losing a concurrent
// insert race is reported as Granted=false, not as an error.
func (s *PioneerService) EarnCredit(ctx context.Context, userID uuid.UUID, t domain.CreditType, sourceID string) (Outcome, error) {
	if err := validateGrant(t, sourceID); err != nil {
		return Outcome{}, err
	}
	earned, err := s.HasEarnedCredit(ctx, userID, t, sourceID)
	if err != nil {
		return Outcome{}, err
	}
	if earned {
		return Outcome{Granted: false}, nil
	}

	c := &models.Credit{
		UserID:     userID,
		CreditType: t,
		SourceKey:  pioneer.SourceKey(t, sourceID),
		CreatedAt:  s.now(),
	}
	if sourceID != "" {
		src := sourceID
		c.SourceID = &src
	}
	insertCtx, cancel := s.backend.bound(ctx)
	err = s.credits.Create(insertCtx, c)
	cancel()
	if errors.Is(err, domain.ErrUniquenessViolation) {
		s.log.Debug("credit already granted concurrently",
			zap.String("user_id", userID.String()), zap.String("credit_type", string(t)))
		return Outcome{Granted: false}, nil
	}
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Granted: true}
	a, newly, err := s.recompute(ctx, userID)
	if err != nil {
		// The credit landed; the next read repairs the cache.
		s.log.Warn("recompute activation after grant failed",
			zap.String("user_id", userID.String()), zap.Error(err))
		return out, nil
	}
	out.Activation = &a
	out.NewlyActivated = newly

	s.events.Publish(userID, domain.EventCreditsChanged, creditsPayload(a, t))
	if newly {
		s.events.Publish(userID, domain.EventActivated, a)
		if err := s.notifier.Notify(ctx, userID, domain.NotifyActivated, "You're in!",
			"You earned enough credits to unlock REALones. Welcome to the main app.", nil); err != nil {
			s.log.Warn("activation notification failed", zap.String("user_id", userID.String()), zap.Error(err))
		}
	}
	return out, nil
}

func creditsPayload(a pioneer.Activation, t domain.CreditType) map[string]interface{} {
	return map[string]interface{}{
		"credit_type":    t,
		"credits_count":  a.CreditsCount,
		"credits_needed": a.CreditsNeeded,
		"is_activated":   a.IsActivated,
	}
}

// ComputeActivation derives the activation decision from the ledger and the cache,
// and raises the cache when the ledger is ahead of it.
func (s *PioneerService) ComputeActivation(ctx context.Context, userID uuid.UUID) (pioneer.Activation, error) {
	a, _, err := s.recompute(ctx, userID)
	return a, err
}

func (s *PioneerService) recompute(ctx context.Context, userID uuid.UUID) (pioneer.Activation, bool, error) {
	ctx, cancel := s.backend.bound(ctx)
	defer cancel()

	count, err := s.credits.CountByUser(ctx, userID)
	if err != nil {
		return pioneer.Activation{}, false, err
	}
	cached, err := s.status.Find(ctx, userID)
	if err != nil {
		return pioneer.Activation{}, false, err
	}
	a := pioneer.ComputeActivation(count, cached)
	newly := false
	if pioneer.ShouldPersist(cached, a) {
		newly, err = s.status.Raise(ctx, userID, a.CreditsCount, a.IsActivated, s.now())
		if err != nil {
			s.log.Warn("raise pioneer status failed", zap.String("user_id", userID.String()), zap.Error(err))
			newly = false
		}
	}
	return a, newly, nil
}

// Refresh re-reads the ledger and returns a full snapshot.
func (s *PioneerService) Refresh(ctx context.Context, userID uuid.UUID) (*PioneerSnapshot, error) {
	a, _, err := s.recompute(ctx, userID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.backend.bound(ctx)
	defer cancel()
	credits, err := s.credits.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if credits == nil {
		credits = []models.Credit{}
	}
	return &PioneerSnapshot{
		Activation: a,
		Experience: pioneer.ExperienceFor(a),
		Progress:   pioneer.ComputeProgress(credits),
		Credits:    credits,
	}, nil
}
