package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/00yuyi00/ChongYu/internal/common"
	"github.com/00yuyi00/ChongYu/internal/domain"
	"github.com/00yuyi00/ChongYu/internal/repository"
	pkgcache "github.com/00yuyi00/ChongYu/pkg/cache"
	pkglogger "github.com/00yuyi00/ChongYu/pkg/logger"
)

// DashboardStats aggregate counters for the admin landing page
type DashboardStats struct {
	TotalUsers    int64 `json:"total_users"`
	NewUsers7d    int64 `json:"new_users_7d"`
	TotalPosts    int64 `json:"total_posts"`
	SeekPosts     int64 `json:"seek_posts"`
	FoundPosts    int64 `json:"found_posts"`
	AdoptPosts    int64 `json:"adopt_posts"`
	LivePosts     int64 `json:"live_posts"`
	ResolvedPosts int64 `json:"resolved_posts"`
	TakenDown     int64 `json:"taken_down_posts"`
	Feedbacks     int64 `json:"feedbacks"`
}

// AdminService back-office operations. All entry points sit behind the
// admin middleware; none of them re-check the role themselves.
type AdminService interface {
	Stats() (*DashboardStats, error)
	ListUsers(page, limit int) ([]*domain.ProfileResponse, *common.Meta, error)
	TakeDownPost(ctx context.Context, postID string) error
	RestorePost(ctx context.Context, postID string) error
	ListPostsByUser(ctx context.Context, userID string, page, limit int) ([]*domain.PostResponse, *common.Meta, error)
}

type adminService struct {
	profileRepo  repository.ProfileRepository
	postRepo     repository.PostRepository
	feedbackRepo repository.FeedbackRepository
	cache        pkgcache.Service
	search       SearchService
}

// NewAdminService creates a new AdminService
func NewAdminService(profileRepo repository.ProfileRepository, postRepo repository.PostRepository, feedbackRepo repository.FeedbackRepository, cache pkgcache.Service, search SearchService) AdminService {
	return &adminService{
		profileRepo:  profileRepo,
		postRepo:     postRepo,
		feedbackRepo: feedbackRepo,
		cache:        cache,
		search:       search,
	}
}

// Stats gathers the dashboard counters. Counts run sequentially; the
// dashboard is low-traffic and the queries are all indexed.
func (s *adminService) Stats() (*DashboardStats, error) {
	stats := &DashboardStats{}
	var err error

	if stats.TotalUsers, err = s.profileRepo.Count(); err != nil {
		return nil, err
	}
	if stats.NewUsers7d, err = s.profileRepo.CountSince(7); err != nil {
		return nil, err
	}
	if stats.TotalPosts, err = s.postRepo.Count(); err != nil {
		return nil, err
	}
	if stats.SeekPosts, err = s.postRepo.CountByType(domain.PostTypeSeek); err != nil {
		return nil, err
	}
	if stats.FoundPosts, err = s.postRepo.CountByType(domain.PostTypeFound); err != nil {
		return nil, err
	}
	if stats.AdoptPosts, err = s.postRepo.CountByType(domain.PostTypeAdopt); err != nil {
		return nil, err
	}
	if stats.LivePosts, err = s.postRepo.CountByStatus(domain.PostStatusLive); err != nil {
		return nil, err
	}
	if stats.ResolvedPosts, err = s.postRepo.CountByStatus(domain.PostStatusResolved); err != nil {
		return nil, err
	}
	if stats.TakenDown, err = s.postRepo.CountByStatus(domain.PostStatusTakenDown); err != nil {
		return nil, err
	}
	if stats.Feedbacks, err = s.feedbackRepo.Count(); err != nil {
		return nil, err
	}

	return stats, nil
}

// ListUsers pages through registered profiles
func (s *adminService) ListUsers(page, limit int) ([]*domain.ProfileResponse, *common.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	profiles, total, err := s.profileRepo.List(page, limit)
	if err != nil {
		return nil, nil, err
	}

	responses := make([]*domain.ProfileResponse, len(profiles))
	for i, p := range profiles {
		resp := p.ToResponse()
		resp.Email = p.Email
		responses[i] = resp
	}

	meta := &common.Meta{Page: page, Limit: limit, Total: total}
	return responses, meta, nil
}

// TakeDownPost delists a post. The row is kept so the owner can still
// see it in their own list; it just stops appearing publicly.
func (s *adminService) TakeDownPost(ctx context.Context, postID string) error {
	if err := s.postRepo.UpdateStatus(postID, domain.PostStatusTakenDown); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrPostNotFound
		}
		return err
	}

	if s.search != nil {
		s.search.RemovePost(ctx, postID)
	}
	s.invalidatePosts(ctx)
	return nil
}

// RestorePost puts a delisted post back into the public listing
func (s *adminService) RestorePost(ctx context.Context, postID string) error {
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrPostNotFound
		}
		return err
	}
	if post.Status != domain.PostStatusTakenDown {
		return common.ErrInvalidInput
	}

	if err := s.postRepo.UpdateStatus(postID, domain.PostStatusLive); err != nil {
		return err
	}

	if s.search != nil {
		post.Status = domain.PostStatusLive
		s.search.IndexPost(ctx, post)
	}
	s.invalidatePosts(ctx)
	return nil
}

// ListPostsByUser shows one user's posts, delisted ones included
func (s *adminService) ListPostsByUser(ctx context.Context, userID string, page, limit int) ([]*domain.PostResponse, *common.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	posts, total, err := s.postRepo.FindByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, nil, err
	}

	responses := make([]*domain.PostResponse, len(posts))
	for i, p := range posts {
		responses[i] = p.ToResponse()
	}

	meta := &common.Meta{Page: page, Limit: limit, Total: total}
	return responses, meta, nil
}

func (s *adminService) invalidatePosts(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePosts(ctx); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("post cache invalidation failed")
	}
}
