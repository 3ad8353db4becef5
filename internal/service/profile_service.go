package service

import (
	"bytes"
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/00yuyi00/ChongYu/internal/common"
	"github.com/00yuyi00/ChongYu/internal/domain"
	"github.com/00yuyi00/ChongYu/internal/repository"
	pkgcache "github.com/00yuyi00/ChongYu/pkg/cache"
	pkglogger "github.com/00yuyi00/ChongYu/pkg/logger"
	"github.com/00yuyi00/ChongYu/pkg/storage"
)

// ProfileService business logic for user profiles
type ProfileService interface {
	Get(ctx context.Context, userID string) (*domain.ProfileResponse, error)
	Update(ctx context.Context, userID string, req *domain.UpdateProfileRequest) (*domain.ProfileResponse, error)
	UpdateAvatar(ctx context.Context, userID string, data []byte, contentType string) (*domain.ProfileResponse, error)
}

type profileService struct {
	repo     repository.ProfileRepository
	uploader ImageUploader
	cache    pkgcache.Service
}

// NewProfileService creates a new ProfileService
func NewProfileService(repo repository.ProfileRepository, uploader ImageUploader, cache pkgcache.Service) ProfileService {
	return &profileService{repo: repo, uploader: uploader, cache: cache}
}

// Get returns a public profile, falling back to a placeholder when the
// row is missing so other users' pages never 404 on a bare account.
func (s *profileService) Get(ctx context.Context, userID string) (*domain.ProfileResponse, error) {
	if s.cache != nil {
		var cached domain.ProfileResponse
		if err := s.cache.Get(ctx, pkgcache.PrefixProfile+userID, &cached); err == nil {
			return &cached, nil
		}
	}

	profile, err := s.repo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.PlaceholderProfile(userID), nil
		}
		return nil, err
	}

	resp := profile.ToResponse()
	if s.cache != nil {
		if err := s.cache.Set(ctx, pkgcache.PrefixProfile+userID, resp, pkgcache.TTLProfile); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Str("user_id", userID).Msg("profile cache write failed")
		}
	}
	return resp, nil
}

// Update applies display field changes
func (s *profileService) Update(ctx context.Context, userID string, req *domain.UpdateProfileRequest) (*domain.ProfileResponse, error) {
	fields := map[string]interface{}{}
	if req.Name != "" {
		fields["name"] = req.Name
	}
	if req.Bio != "" {
		fields["bio"] = req.Bio
	}
	if req.AvatarURL != "" {
		fields["avatar_url"] = req.AvatarURL
	}
	if len(fields) == 0 {
		return nil, common.ErrInvalidInput
	}

	if err := s.repo.Update(userID, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}

	s.invalidate(ctx, userID)

	profile, err := s.repo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	return profile.ToResponse(), nil
}

// UpdateAvatar uploads a new avatar image and points the profile at it.
// The previous object is left in place; avatar URLs may still be
// referenced from cached pages.
func (s *profileService) UpdateAvatar(ctx context.Context, userID string, data []byte, contentType string) (*domain.ProfileResponse, error) {
	if len(data) == 0 {
		return nil, common.ErrInvalidInput
	}

	key := storage.GenerateKey("avatars", contentType)
	result, err := s.uploader.Upload(ctx, key, bytes.NewReader(data), contentType, int64(len(data)))
	if err != nil {
		return nil, common.ErrUploadFailed
	}

	if err := s.repo.Update(userID, map[string]interface{}{"avatar_url": result.URL}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}

	s.invalidate(ctx, userID)

	profile, err := s.repo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	return profile.ToResponse(), nil
}

func (s *profileService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, pkgcache.PrefixProfile+userID); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("user_id", userID).Msg("profile cache invalidation failed")
	}
}
