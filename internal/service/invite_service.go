package service

import (
	"context"
	"errors"

	"realones/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InviteService handles a new user joining through someone's invite link.
type InviteService struct {
	pioneer  *PioneerService
	circle   *CircleService
	profiles ProfileStore
	notifier Notifier
	backend  Backend
	log      *zap.Logger
}

func NewInviteService(p *PioneerService, c *CircleService, profiles ProfileStore, notifier Notifier, backend Backend, log *zap.Logger) *InviteService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &InviteService{pioneer: p, circle: c, profiles: profiles, notifier: notifier, backend: backend, log: log}
}

// InviteResult reports what accepting an invite did for the inviter.
type InviteResult struct {
	InviterID uuid.UUID `json:"inviter_id"`
	Outcome   Outcome   `json:"outcome"`
}

// Accept credits the inviter with friend_joined for joinerID. Processing the same
// join twice grants nothing the second time. The referral credit is only ever
// granted here.
func (s *InviteService) Accept(ctx context.Context, inviterID, joinerID uuid.UUID) (*InviteResult, error) {
	if inviterID == joinerID {
		return nil, domain.ErrSelfInvite
	}
	// Inviters who never opened their profile still get credited.
	bctx, cancel := s.backend.bound(ctx)
	_, err := s.profiles.GetOrCreate(bctx, inviterID)
	cancel()
	if err != nil {
		return nil, err
	}

	out, err := s.pioneer.EarnCredit(ctx, inviterID, domain.CreditFriendJoined, joinerID.String())
	if err != nil {
		return nil, err
	}
	res := &InviteResult{InviterID: inviterID, Outcome: out}
	if !out.Granted {
		return res, nil
	}

	if s.circle != nil {
		if _, err := s.circle.AddFriend(ctx, inviterID, joinerID, nil); err != nil && !errors.Is(err, domain.ErrAlreadyInCircle) {
			s.log.Warn("add joined friend to inviter circle failed",
				zap.String("inviter_id", inviterID.String()), zap.Error(err))
		}
	}

	name := "A friend"
	bctx, cancel = s.backend.bound(ctx)
	if p, err := s.profiles.GetOrCreate(bctx, joinerID); err == nil && p.FullName != "" {
		name = p.FullName
	}
	cancel()
	if err := s.notifier.Notify(ctx, inviterID, domain.NotifyFriendJoined, "Friend joined",
		name+" joined REALones with your invite. That's a Pioneer credit!",
		map[string]interface{}{"friend_id": joinerID.String()}); err != nil {
		s.log.Warn("friend joined notification failed", zap.String("inviter_id", inviterID.String()), zap.Error(err))
	}
	return res, nil
}
