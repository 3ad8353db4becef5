package repository

import (
	"context"

	"github.com/00yuyi00/ChongYu/internal/domain"
	"gorm.io/gorm"
)

// PostRepository post data access interface. List reads take a context
// so handler-side deadlines bound the database leg too.
type PostRepository interface {
	Create(post *domain.Post) error
	FindByID(id string) (*domain.Post, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Post, error)
	List(ctx context.Context, q *domain.ListPostsQuery) ([]*domain.Post, int64, error)
	FindByUser(ctx context.Context, userID string, page, limit int) ([]*domain.Post, int64, error)
	UpdateStatus(id string, status string) error
	UpdateStatusByOwner(id, userID, status string) error
	Count() (int64, error)
	CountByType(postType string) (int64, error)
	CountByStatus(status string) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts a post row
func (r *postRepository) Create(post *domain.Post) error {
	return r.db.Create(post).Error
}

// FindByID finds a post by id
func (r *postRepository) FindByID(id string) (*domain.Post, error) {
	var post domain.Post
	if err := r.db.Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// FindByIDs batch-fetches posts, preserving no particular order
func (r *postRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var posts []*domain.Post
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// List returns posts matching the filters, newest first.
// Taken-down posts never appear in the public listing.
func (r *postRepository) List(ctx context.Context, q *domain.ListPostsQuery) ([]*domain.Post, int64, error) {
	var posts []*domain.Post
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Post{}).Where("status <> ?", domain.PostStatusTakenDown)
	if q.PostType != "" {
		query = query.Where("post_type = ?", q.PostType)
	}
	if q.PetType != "" {
		query = query.Where("pet_type = ?", q.PetType)
	}
	if q.Keyword != "" {
		kw := "%" + q.Keyword + "%"
		query = query.Where("title LIKE ? OR description LIKE ? OR location LIKE ?", kw, kw, kw)
	}

	query.Count(&total)

	offset := (q.Page - 1) * q.Limit
	err := query.Order("created_at DESC").
		Offset(offset).Limit(q.Limit).
		Find(&posts).Error
	return posts, total, err
}

// FindByUser returns a user's own posts, newest first, all statuses
func (r *postRepository) FindByUser(ctx context.Context, userID string, page, limit int) ([]*domain.Post, int64, error) {
	var posts []*domain.Post
	var total int64

	r.db.WithContext(ctx).Model(&domain.Post{}).Where("user_id = ?", userID).Count(&total)

	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	return posts, total, err
}

// UpdateStatus sets a post's status (admin path)
func (r *postRepository) UpdateStatus(id string, status string) error {
	result := r.db.Model(&domain.Post{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateStatusByOwner sets a post's status only when userID owns it
func (r *postRepository) UpdateStatusByOwner(id, userID, status string) error {
	result := r.db.Model(&domain.Post{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Count returns the total number of posts
func (r *postRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&domain.Post{}).Count(&count).Error
	return count, err
}

// CountByType counts posts of one post_type
func (r *postRepository) CountByType(postType string) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Post{}).Where("post_type = ?", postType).Count(&count).Error
	return count, err
}

// CountByStatus counts posts in one status
func (r *postRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Post{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
