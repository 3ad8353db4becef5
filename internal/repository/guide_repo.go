package repository

import (
	"context"

	"github.com/00yuyi00/ChongYu/internal/domain"
	"gorm.io/gorm"
)

// GuideRepository guide data access interface
type GuideRepository interface {
	Create(guide *domain.Guide) error
	Update(id uint, fields map[string]interface{}) error
	FindByID(id uint) (*domain.Guide, error)
	FindPublishedByCategory(ctx context.Context, category string) ([]*domain.Guide, error)
	CountPublishedByCategory(ctx context.Context, category string) (int64, error)
	List(ctx context.Context, page, limit int) ([]*domain.Guide, int64, error)
}

type guideRepository struct {
	db *gorm.DB
}

// NewGuideRepository creates a new GuideRepository
func NewGuideRepository(db *gorm.DB) GuideRepository {
	return &guideRepository{db: db}
}

// Create inserts a guide row
func (r *guideRepository) Create(guide *domain.Guide) error {
	return r.db.Create(guide).Error
}

// Update applies the given fields to a guide row
func (r *guideRepository) Update(id uint, fields map[string]interface{}) error {
	result := r.db.Model(&domain.Guide{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByID finds a guide by id
func (r *guideRepository) FindByID(id uint) (*domain.Guide, error) {
	var guide domain.Guide
	if err := r.db.Where("id = ?", id).First(&guide).Error; err != nil {
		return nil, err
	}
	return &guide, nil
}

// FindPublishedByCategory returns published guides in a category, newest first
func (r *guideRepository) FindPublishedByCategory(ctx context.Context, category string) ([]*domain.Guide, error) {
	var guides []*domain.Guide
	err := r.db.WithContext(ctx).Where("category = ? AND status = ?", category, domain.GuideStatusPublished).
		Order("created_at DESC").
		Find(&guides).Error
	return guides, err
}

// CountPublishedByCategory counts published guides in a category
func (r *guideRepository) CountPublishedByCategory(ctx context.Context, category string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Guide{}).
		Where("category = ? AND status = ?", category, domain.GuideStatusPublished).
		Count(&count).Error
	return count, err
}

// List returns all guides with pagination, newest first (admin)
func (r *guideRepository) List(ctx context.Context, page, limit int) ([]*domain.Guide, int64, error) {
	var guides []*domain.Guide
	var total int64

	r.db.WithContext(ctx).Model(&domain.Guide{}).Count(&total)

	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&guides).Error
	return guides, total, err
}
