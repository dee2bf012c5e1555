package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"realones/internal/domain"
	"realones/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBioLength = 500

type ProfileStore interface {
	GetOrCreate(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Profile, error)
}

// AvatarStorage stores profile pictures.
type AvatarStorage interface {
	UploadAvatar(ctx context.Context, file io.Reader, folder, publicID string) (string, error)
	DeleteByURL(ctx context.Context, url string) error
}

// ProfileUpdate carries the editable fields; nil means unchanged.
type ProfileUpdate struct {
	FullName *string `json:"full_name"`
	Bio      *string `json:"bio"`
}

// ProfileView is a profile plus whether it earned the profile_complete credit.
type ProfileView struct {
	*models.Profile
	IsComplete    bool `json:"is_complete"`
	CreditGranted bool `json:"credit_granted"`
}

type ProfileService struct {
	profiles ProfileStore
	storage  AvatarStorage
	pioneer  *PioneerService
	folder   string
	backend  Backend
	log      *zap.Logger
}

// NewProfileService wires profiles. storage may be nil when uploads are not configured.
func NewProfileService(profiles ProfileStore, storage AvatarStorage, p *PioneerService, folder string, backend Backend, log *zap.Logger) *ProfileService {
	return &ProfileService{profiles: profiles, storage: storage, pioneer: p, folder: folder, backend: backend, log: log}
}

func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (*ProfileView, error) {
	ctx, cancel := s.backend.bound(ctx)
	defer cancel()
	p, err := s.profiles.GetOrCreate(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProfileView{Profile: p, IsComplete: p.IsComplete()}, nil
}

func (s *ProfileService) Update(ctx context.Context, id uuid.UUID, in ProfileUpdate) (*ProfileView, error) {
	fields := map[string]interface{}{}
	if in.FullName != nil {
		fields["full_name"] = strings.TrimSpace(*in.FullName)
	}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if len([]rune(bio)) > maxBioLength {
			return nil, fmt.Errorf("%w: bio longer than %d characters", domain.ErrInvalidProfile, maxBioLength)
		}
		fields["bio"] = bio
	}
	if len(fields) == 0 {
		return s.Get(ctx, id)
	}
	return s.apply(ctx, id, fields)
}

// UploadAvatar stores a new avatar under the user's id, replacing any previous one.
func (s *ProfileService) UploadAvatar(ctx context.Context, id uuid.UUID, file io.Reader) (*ProfileView, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("%w: avatar storage not configured", domain.ErrBackendUnavailable)
	}
	url, err := s.storage.UploadAvatar(ctx, file, s.folder+"/avatars", id.String())
	if err != nil {
		return nil, fmt.Errorf("%w: upload avatar: %v", domain.ErrBackendUnavailable, err)
	}
	return s.apply(ctx, id, map[string]interface{}{"avatar_url": url})
}

// RemoveAvatar deletes the stored avatar and clears the URL. The profile_complete
// credit, once earned, stays.
func (s *ProfileService) RemoveAvatar(ctx context.Context, id uuid.UUID) (*ProfileView, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.AvatarURL == "" {
		return current, nil
	}
	if s.storage != nil {
		if err := s.storage.DeleteByURL(ctx, current.AvatarURL); err != nil {
			s.log.Warn("delete avatar failed", zap.String("user_id", id.String()), zap.Error(err))
		}
	}
	return s.apply(ctx, id, map[string]interface{}{"avatar_url": ""})
}

func (s *ProfileService) apply(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*ProfileView, error) {
	bctx, cancel := s.backend.bound(ctx)
	defer cancel()
	if _, err := s.profiles.GetOrCreate(bctx, id); err != nil {
		return nil, err
	}
	p, err := s.profiles.Update(bctx, id, fields)
	if err != nil {
		return nil, err
	}
	view := &ProfileView{Profile: p, IsComplete: p.IsComplete()}
	if view.IsComplete && s.pioneer != nil {
		out, err := s.pioneer.EarnCredit(ctx, id, domain.CreditProfileComplete, "")
		if err != nil {
			s.log.Warn("profile_complete credit failed", zap.String("user_id", id.String()), zap.Error(err))
		} else {
			view.CreditGranted = out.Granted
		}
	}
	return view, nil
}
