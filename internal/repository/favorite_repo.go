package repository

import (
	"context"
	"time"

	"github.com/00yuyi00/ChongYu/internal/domain"
	"gorm.io/gorm"
)

// FavoriteRepository favorite data access interface
type FavoriteRepository interface {
	Create(userID, postID string) (*domain.Favorite, error)
	Delete(userID, postID string) error
	FindByUser(ctx context.Context, userID string, page, limit int) ([]*domain.Favorite, int64, error)
	Exists(userID, postID string) (bool, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository creates a new FavoriteRepository
func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// Create adds a favorite
func (r *favoriteRepository) Create(userID, postID string) (*domain.Favorite, error) {
	fav := &domain.Favorite{
		UserID:    userID,
		PostID:    postID,
		CreatedAt: time.Now(),
	}
	if err := r.db.Create(fav).Error; err != nil {
		return nil, err
	}
	return fav, nil
}

// Delete removes a favorite
func (r *favoriteRepository) Delete(userID, postID string) error {
	result := r.db.Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&domain.Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByUser returns favorites for a user with pagination, newest first
func (r *favoriteRepository) FindByUser(ctx context.Context, userID string, page, limit int) ([]*domain.Favorite, int64, error) {
	var favorites []*domain.Favorite
	var total int64

	r.db.WithContext(ctx).Model(&domain.Favorite{}).Where("user_id = ?", userID).Count(&total)

	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&favorites).Error
	return favorites, total, err
}

// Exists checks if a favorite already exists
func (r *favoriteRepository) Exists(userID, postID string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.Favorite{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}
