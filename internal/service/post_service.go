package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/00yuyi00/ChongYu/internal/common"
	"github.com/00yuyi00/ChongYu/internal/domain"
	"github.com/00yuyi00/ChongYu/internal/repository"
	pkgcache "github.com/00yuyi00/ChongYu/pkg/cache"
	pkglogger "github.com/00yuyi00/ChongYu/pkg/logger"
)

// PostService business logic for pet listings
type PostService interface {
	List(ctx context.Context, q *domain.ListPostsQuery) ([]*domain.PostResponse, *common.Meta, error)
	GetByID(id string) (*domain.PostResponse, error)
	GetByUser(ctx context.Context, userID string, page, limit int) ([]*domain.PostResponse, *common.Meta, error)
	MarkResolved(id, userID string) error
}

type postService struct {
	repo        repository.PostRepository
	profileRepo repository.ProfileRepository
	cache       pkgcache.Service
	search      SearchService
}

// NewPostService creates a new PostService
func NewPostService(repo repository.PostRepository, profileRepo repository.ProfileRepository, cache pkgcache.Service, search SearchService) PostService {
	return &postService{
		repo:        repo,
		profileRepo: profileRepo,
		cache:       cache,
		search:      search,
	}
}

// List returns the public listing. Keyword queries go through the search
// index when one is attached; plain filter queries hit MySQL behind a
// short-TTL cache.
func (s *postService) List(ctx context.Context, q *domain.ListPostsQuery) ([]*domain.PostResponse, *common.Meta, error) {
	normalizeQuery(q)

	if q.Keyword != "" && s.search != nil && s.search.IsAvailable() {
		responses, meta, err := s.search.SearchPosts(ctx, q)
		if err == nil {
			return responses, meta, nil
		}
		pkglogger.GetLogger().Warn().Err(err).Msg("post search fell back to database")
	}

	cacheKey := fmt.Sprintf("%s:%s:%s:%d:%d", q.PostType, q.PetType, q.Keyword, q.Page, q.Limit)
	if s.cache != nil {
		if data, err := s.cache.GetPosts(ctx, cacheKey); err == nil {
			var cached struct {
				Posts []*domain.PostResponse `json:"posts"`
				Meta  *common.Meta           `json:"meta"`
			}
			if json.Unmarshal(data, &cached) == nil {
				return cached.Posts, cached.Meta, nil
			}
		}
	}

	posts, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, nil, err
	}

	responses := make([]*domain.PostResponse, len(posts))
	for i, p := range posts {
		responses[i] = p.ToResponse()
	}

	meta := &common.Meta{Page: q.Page, Limit: q.Limit, Total: total}

	if s.cache != nil {
		payload := map[string]interface{}{"posts": responses, "meta": meta}
		if err := s.cache.SetPosts(ctx, cacheKey, payload); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Msg("post list cache write failed")
		}
	}

	return responses, meta, nil
}

// GetByID returns a post with its author profile attached. A missing
// author profile degrades to a placeholder instead of failing the page.
func (s *postService) GetByID(id string) (*domain.PostResponse, error) {
	post, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrPostNotFound
		}
		return nil, err
	}

	resp := post.ToResponse()
	if profile, err := s.profileRepo.FindByID(post.UserID); err == nil {
		resp.Author = profile.ToResponse()
	} else {
		resp.Author = domain.PlaceholderProfile(post.UserID)
	}
	return resp, nil
}

// GetByUser returns a user's own posts, all statuses included
func (s *postService) GetByUser(ctx context.Context, userID string, page, limit int) ([]*domain.PostResponse, *common.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	posts, total, err := s.repo.FindByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, nil, err
	}

	responses := make([]*domain.PostResponse, len(posts))
	for i, p := range posts {
		responses[i] = p.ToResponse()
	}

	return responses, &common.Meta{Page: page, Limit: limit, Total: total}, nil
}

// MarkResolved closes a listing (已结案); only the owner may do it
func (s *postService) MarkResolved(id, userID string) error {
	err := s.repo.UpdateStatusByOwner(id, userID, domain.PostStatusResolved)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.ErrPostNotFound
	}
	if err == nil && s.cache != nil {
		if cerr := s.cache.InvalidatePosts(context.Background()); cerr != nil {
			pkglogger.GetLogger().Warn().Err(cerr).Msg("post cache invalidation failed")
		}
	}
	return err
}

func normalizeQuery(q *domain.ListPostsQuery) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 50 {
		q.Limit = 20
	}
}
