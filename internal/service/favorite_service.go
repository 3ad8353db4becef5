package service

import (
	"context"
	"time"

	"github.com/00yuyi00/ChongYu/internal/common"
	"github.com/00yuyi00/ChongYu/internal/domain"
	"github.com/00yuyi00/ChongYu/internal/repository"
	pkglogger "github.com/00yuyi00/ChongYu/pkg/logger"
)

// FavoriteService business logic for bookmarked posts
type FavoriteService interface {
	Add(userID, postID string) error
	Remove(userID, postID string) error
	List(ctx context.Context, userID string, page, limit int) ([]*domain.FavoriteResponse, *common.Meta, error)
	IsFavorited(userID, postID string) (bool, error)
}

type favoriteService struct {
	repo     repository.FavoriteRepository
	postRepo repository.PostRepository
}

// NewFavoriteService creates a new FavoriteService
func NewFavoriteService(repo repository.FavoriteRepository, postRepo repository.PostRepository) FavoriteService {
	return &favoriteService{repo: repo, postRepo: postRepo}
}

// Add bookmarks a post. Adding twice is a no-op rather than an error,
// matching the toggle semantics of the listing UI.
func (s *favoriteService) Add(userID, postID string) error {
	if _, err := s.postRepo.FindByID(postID); err != nil {
		return common.ErrPostNotFound
	}

	exists, err := s.repo.Exists(userID, postID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	_, err = s.repo.Create(userID, postID)
	return err
}

// Remove deletes a bookmark
func (s *favoriteService) Remove(userID, postID string) error {
	return s.repo.Delete(userID, postID)
}

// IsFavorited reports whether the user has bookmarked the post
func (s *favoriteService) IsFavorited(userID, postID string) (bool, error) {
	return s.repo.Exists(userID, postID)
}

// List returns the user's bookmarks with their posts attached. A post
// deleted since bookmarking leaves a bare entry instead of failing the
// whole page; resolved posts are flagged so the UI can gray them out.
func (s *favoriteService) List(ctx context.Context, userID string, page, limit int) ([]*domain.FavoriteResponse, *common.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	favorites, total, err := s.repo.FindByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, nil, err
	}

	postIDs := make([]string, len(favorites))
	for i, f := range favorites {
		postIDs[i] = f.PostID
	}

	posts, err := s.postRepo.FindByIDs(ctx, postIDs)
	if err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("user_id", userID).Msg("failed to load favorited posts")
		posts = nil
	}
	byID := make(map[string]*domain.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}

	responses := make([]*domain.FavoriteResponse, len(favorites))
	for i, f := range favorites {
		resp := &domain.FavoriteResponse{
			PostID:    f.PostID,
			CreatedAt: f.CreatedAt.Format(time.RFC3339),
		}
		if post, ok := byID[f.PostID]; ok {
			resp.Post = post.ToResponse()
			resp.IsResolved = post.Status != domain.PostStatusLive
		}
		responses[i] = resp
	}

	meta := &common.Meta{Page: page, Limit: limit, Total: total}
	return responses, meta, nil
}
