package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"realones/internal/circle"
	"realones/internal/domain"
	"realones/internal/models"
	"realones/pkg/contacts"
	"realones/pkg/facebook"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FriendStore persists relationships. Every call is scoped to the owner.
type FriendStore interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Friend, error)
	GetOwned(ctx context.Context, ownerID, id uuid.UUID) (*models.Friend, error)
	HasTarget(ctx context.Context, ownerID, targetID uuid.UUID) (bool, error)
	Create(ctx context.Context, f *models.Friend) error
	SaveStatus(ctx context.Context, f *models.Friend) error
	BulkUpdateStatus(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID, apply func([]models.Friend) ([]models.Friend, error)) ([]models.Friend, error)
	SetTier(ctx context.Context, ownerID, id uuid.UUID, tier *domain.Tier, now time.Time) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	InsertImported(ctx context.Context, rows []models.Friend) (int, error)
}

// FacebookGraph lists the caller's Facebook friends.
type FacebookGraph interface {
	Friends(ctx context.Context, accessToken string) ([]facebook.Friend, error)
}

// CircleSnapshot is the full circle view: relationships grouped by status plus
// the free-tier and tier capacity reports.
type CircleSnapshot struct {
	circle.Partition
	ActiveCount   int                 `json:"active_count"`
	ArchivedCount int                 `json:"archived_count"`
	Overage       circle.Overage      `json:"overage"`
	Tiers         []circle.TierSlot   `json:"tiers"`
	Upgrade       circle.UpgradeQuote `json:"upgrade"`
}

// ImportResult reports what an import pooled.
type ImportResult struct {
	Source    domain.FriendSource `json:"source"`
	Received  int                 `json:"received"`
	Imported  int                 `json:"imported"`
	Skipped   int                 `json:"skipped"`
	Claimable domain.CreditType   `json:"claimable_credit,omitempty"`
}

type CircleService struct {
	friends FriendStore
	streaks *StreakService
	graph   FacebookGraph
	events  ChangePublisher
	backend Backend
	log     *zap.Logger
	now     func() time.Time
}

// NewCircleService wires the circle. streaks, graph and events may be nil.
func NewCircleService(friends FriendStore, streaks *StreakService, graph FacebookGraph, events ChangePublisher, backend Backend, log *zap.Logger) *CircleService {
	if events == nil {
		events = nopPublisher{}
	}
	return &CircleService{
		friends: friends,
		streaks: streaks,
		graph:   graph,
		events:  events,
		backend: backend,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Refresh re-reads the owner's relationships and recomputes every report.
func (s *CircleService) Refresh(ctx context.Context, ownerID uuid.UUID) (*CircleSnapshot, error) {
	ctx, cancel := s.backend.bound(ctx)
	defer cancel()

	list, err := s.friends.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	p := circle.PartitionByStatus(list)
	ov := circle.ComputeOverage(len(p.Active), len(p.Archived))
	return &CircleSnapshot{
		Partition:     p,
		ActiveCount:   len(p.Active),
		ArchivedCount: len(p.Archived),
		Overage:       ov,
		Tiers:         circle.TierUsage(list),
		Upgrade:       circle.QuoteUpgrade(ov, len(list)),
	}, nil
}

// UpgradeQuote prices the owner's current overage.
func (s *CircleService) UpgradeQuote(ctx context.Context, ownerID uuid.UUID) (circle.UpgradeQuote, error) {
	snap, err := s.Refresh(ctx, ownerID)
	if err != nil {
		return circle.UpgradeQuote{}, err
	}
	return snap.Upgrade, nil
}

// AddFriend creates a pending relationship to a registered user. Capacity is never
// checked here.
func (s *CircleService) AddFriend(ctx context.Context, ownerID, targetID uuid.UUID, tier *domain.Tier) (*models.Friend, error) {
	if ownerID == targetID {
		return nil, domain.ErrSelfRelationship
	}
	if tier != nil && !tier.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidTier, *tier)
	}
	ctx, cancel := s.backend.bound(ctx)
	defer cancel()

	exists, err := s.friends.HasTarget(ctx, ownerID, targetID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrAlreadyInCircle
	}
	now := s.now()
	target := targetID
	f := &models.Friend{
		OwnerUserID:  ownerID,
		TargetUserID: &target,
		Status:       domain.FriendPending,
		Source:       domain.SourceManual,
		Tier:         tier,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.friends.Create(ctx, f); err != nil {
		return nil, err
	}
	s.changed(ownerID, "added", f.ID)
	return f, nil
}

func (s *CircleService) Archive(ctx context.Context, ownerID, id uuid.UUID) (*models.Friend, error) {
	return s.transition(ctx, ownerID, id, domain.FriendArchived)
}

func (s *CircleService) Activate(ctx context.Context, ownerID, id uuid.UUID) (*models.Friend, error) {
	return s.transition(ctx, ownerID, id, domain.FriendActive)
}

func (s *CircleService) transition(ctx context.Context, ownerID, id uuid.UUID, to domain.FriendStatus) (*models.Friend, error) {
	bctx, cancel := s.backend.bound(ctx)
	defer cancel()

	current, err := s.friends.GetOwned(bctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	next, err := circle.Transition(*current, to, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.friends.SaveStatus(bctx, &next); err != nil {
		return nil, err
	}
	if current.Status == domain.FriendImportPool {
		s.recordTriage(ctx, ownerID)
	}
	s.changed(ownerID, string(to), id)
	return &next, nil
}

// Remove hard-deletes a relationship.
func (s *CircleService) Remove(ctx context.Context, ownerID, id uuid.UUID) error {
	ctx, cancel := s.backend.bound(ctx)
	defer cancel()

	if err := s.friends.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.changed(ownerID, "removed", id)
	return nil
}

func (s *CircleService) BulkArchive(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]models.Friend, error) {
	return s.bulk(ctx, ownerID, ids, domain.FriendArchived)
}

func (s *CircleService) BulkActivate(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]models.Friend, error) {
	return s.bulk(ctx, ownerID, ids, domain.FriendActive)
}

// bulk moves every listed relationship or none of them.
func (s *CircleService) bulk(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID, to domain.FriendStatus) ([]models.Friend, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	bctx, cancel := s.backend.bound(ctx)
	defer cancel()

	now := s.now()
	triaged := false
	out, err := s.friends.BulkUpdateStatus(bctx, ownerID, ids, func(current []models.Friend) ([]models.Friend, error) {
		for i := range current {
			if current[i].Status == domain.FriendImportPool {
				triaged = true
			}
		}
		return circle.BulkTransition(current, to, now)
	})
	if err != nil {
		return nil, err
	}
	if triaged {
		s.recordTriage(ctx, ownerID)
	}
	s.events.Publish(ownerID, domain.EventCircleChanged, map[string]interface{}{
		"action": "bulk_" + string(to),
		"count":  len(out),
	})
	return out, nil
}

// SetTier assigns a tier, or clears it when tier is nil. Tier capacity is informational.
func (s *CircleService) SetTier(ctx context.Context, ownerID, id uuid.UUID, tier *domain.Tier) (*models.Friend, error) {
	if tier != nil && !tier.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidTier, *tier)
	}
	ctx, cancel := s.backend.bound(ctx)
	defer cancel()

	if err := s.friends.SetTier(ctx, ownerID, id, tier, s.now()); err != nil {
		return nil, err
	}
	f, err := s.friends.GetOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	s.changed(ownerID, "tier", id)
	return f, nil
}

// ImportContacts pools address-book entries for triage.
func (s *CircleService) ImportContacts(ctx context.Context, ownerID uuid.UUID, entries []circle.ImportEntry) (*ImportResult, error) {
	return s.importEntries(ctx, ownerID, domain.SourceContactsImport, entries)
}

// ImportFacebookExport pools the friends file of a Facebook data download.
func (s *CircleService) ImportFacebookExport(ctx context.Context, ownerID uuid.UUID, r io.Reader) (*ImportResult, error) {
	entries, err := circle.ParseFacebookExport(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImport, err)
	}
	return s.importEntries(ctx, ownerID, domain.SourceFacebookImport, entries)
}

// ImportFacebookGraph pools the friends visible to a Facebook user access token.
func (s *CircleService) ImportFacebookGraph(ctx context.Context, ownerID uuid.UUID, accessToken string) (*ImportResult, error) {
	if s.graph == nil {
		return nil, fmt.Errorf("%w: facebook graph not configured", domain.ErrBackendUnavailable)
	}
	friends, err := s.graph.Friends(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	entries := make([]circle.ImportEntry, 0, len(friends))
	for _, f := range friends {
		link := f.Link
		if link == "" && f.ID != "" {
			link = "https://facebook.com/" + f.ID
		}
		entries = append(entries, circle.ImportEntry{Name: f.Name, ProfileURL: link})
	}
	return s.importEntries(ctx, ownerID, domain.SourceFacebookImport, entries)
}

func (s *CircleService) importEntries(ctx context.Context, ownerID uuid.UUID, source domain.FriendSource, entries []circle.ImportEntry) (*ImportResult, error) {
	now := s.now()
	seen := make(map[string]bool, len(entries))
	rows := make([]models.Friend, 0, len(entries))
	for _, e := range entries {
		key := contacts.Key(e.Name, e.Phone, e.ProfileURL)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		k := key
		rows = append(rows, models.Friend{
			OwnerUserID: ownerID,
			Status:      domain.FriendImportPool,
			Source:      source,
			External: &models.ExternalContact{
				Name:       e.Name,
				Phone:      contacts.NormalizePhone(e.Phone),
				ProfileURL: e.ProfileURL,
				Timestamp:  e.Timestamp,
			},
			ContactKey: &k,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	bctx, cancel := s.backend.bound(ctx)
	defer cancel()
	n, err := s.friends.InsertImported(bctx, rows)
	if err != nil {
		return nil, err
	}
	res := &ImportResult{Source: source, Received: len(entries), Imported: n, Skipped: len(entries) - n}
	if c, ok := circle.SourceCredit(source); ok {
		res.Claimable = c
	}
	s.log.Info("contacts imported",
		zap.String("user_id", ownerID.String()),
		zap.String("source", string(source)),
		zap.Int("received", res.Received),
		zap.Int("imported", n))
	if n > 0 {
		s.events.Publish(ownerID, domain.EventCircleChanged, map[string]interface{}{"action": "imported", "count": n})
	}
	return res, nil
}

func (s *CircleService) recordTriage(ctx context.Context, ownerID uuid.UUID) {
	if s.streaks == nil {
		return
	}
	if _, err := s.streaks.RecordAction(ctx, ownerID); err != nil {
		s.log.Warn("record triage streak failed", zap.String("user_id", ownerID.String()), zap.Error(err))
	}
}

func (s *CircleService) changed(ownerID uuid.UUID, action string, id uuid.UUID) {
	s.events.Publish(ownerID, domain.EventCircleChanged, map[string]interface{}{
		"action":    action,
		"friend_id": id,
	})
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
