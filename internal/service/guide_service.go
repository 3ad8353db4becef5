package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/00yuyi00/ChongYu/internal/common"
	"github.com/00yuyi00/ChongYu/internal/domain"
	"github.com/00yuyi00/ChongYu/internal/repository"
	pkgcache "github.com/00yuyi00/ChongYu/pkg/cache"
	pkglogger "github.com/00yuyi00/ChongYu/pkg/logger"
)

// GuideService business logic for care guides. Published guides are
// read-heavy editorial content, so list and count reads sit behind the
// Redis cache; admin writes invalidate.
type GuideService interface {
	ListPublished(ctx context.Context, category string) ([]*domain.GuideListItem, error)
	CategoryCounts(ctx context.Context) (map[string]int64, error)
	GetByID(id uint) (*domain.Guide, error)
	Create(ctx context.Context, req *domain.SaveGuideRequest) (*domain.Guide, error)
	Update(ctx context.Context, id uint, req *domain.SaveGuideRequest) error
	ListAll(ctx context.Context, page, limit int) ([]*domain.Guide, *common.Meta, error)
}

// GuideCategories the fixed set shown on the guide landing page
var GuideCategories = []string{"dog", "cat"}

type guideService struct {
	repo  repository.GuideRepository
	cache pkgcache.Service
}

// NewGuideService creates a new GuideService
func NewGuideService(repo repository.GuideRepository, cache pkgcache.Service) GuideService {
	return &guideService{repo: repo, cache: cache}
}

// ListPublished returns published guides in a category, without bodies
func (s *guideService) ListPublished(ctx context.Context, category string) ([]*domain.GuideListItem, error) {
	if s.cache != nil {
		if data, err := s.cache.GetGuides(ctx, category); err == nil {
			var cached []*domain.GuideListItem
			if json.Unmarshal(data, &cached) == nil {
				return cached, nil
			}
		}
	}

	guides, err := s.repo.FindPublishedByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	items := make([]*domain.GuideListItem, len(guides))
	for i, g := range guides {
		items[i] = g.ToListItem()
	}

	if s.cache != nil {
		if err := s.cache.SetGuides(ctx, category, items); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Str("category", category).Msg("guide cache write failed")
		}
	}
	return items, nil
}

// CategoryCounts returns the published guide count per category
func (s *guideService) CategoryCounts(ctx context.Context) (map[string]int64, error) {
	if s.cache != nil {
		if data, err := s.cache.GetGuideCounts(ctx); err == nil {
			var cached map[string]int64
			if json.Unmarshal(data, &cached) == nil {
				return cached, nil
			}
		}
	}

	counts := make(map[string]int64, len(GuideCategories))
	for _, category := range GuideCategories {
		count, err := s.repo.CountPublishedByCategory(ctx, category)
		if err != nil {
			return nil, err
		}
		counts[category] = count
	}

	if s.cache != nil {
		if err := s.cache.SetGuideCounts(ctx, counts); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Msg("guide count cache write failed")
		}
	}
	return counts, nil
}

// GetByID returns a guide with its full body
func (s *guideService) GetByID(id uint) (*domain.Guide, error) {
	return s.repo.FindByID(id)
}

// Create inserts a guide. Status defaults to draft so unfinished
// editorial content never leaks into the public listing.
func (s *guideService) Create(ctx context.Context, req *domain.SaveGuideRequest) (*domain.Guide, error) {
	status := req.Status
	if status == "" {
		status = domain.GuideStatusDraft
	}

	guide := &domain.Guide{
		Title:     req.Title,
		Category:  req.Category,
		Content:   req.Content,
		CoverURL:  req.CoverURL,
		Status:    status,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(guide); err != nil {
		return nil, err
	}

	s.invalidate(ctx, guide.Category)
	return guide, nil
}

// Update rewrites a guide's editable fields
func (s *guideService) Update(ctx context.Context, id uint, req *domain.SaveGuideRequest) error {
	existing, err := s.repo.FindByID(id)
	if err != nil {
		return err
	}

	fields := map[string]interface{}{
		"title":     req.Title,
		"category":  req.Category,
		"content":   req.Content,
		"cover_url": req.CoverURL,
	}
	if req.Status != "" {
		fields["status"] = req.Status
	}
	if err := s.repo.Update(id, fields); err != nil {
		return err
	}

	// A category move must drop both the old and new category lists.
	s.invalidate(ctx, existing.Category)
	if req.Category != existing.Category {
		s.invalidate(ctx, req.Category)
	}
	return nil
}

// ListAll returns every guide, drafts included (admin)
func (s *guideService) ListAll(ctx context.Context, page, limit int) ([]*domain.Guide, *common.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	guides, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, nil, err
	}

	meta := &common.Meta{Page: page, Limit: limit, Total: total}
	return guides, meta, nil
}

func (s *guideService) invalidate(ctx context.Context, category string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateGuides(ctx, category); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("category", category).Msg("guide cache invalidation failed")
	}
}
