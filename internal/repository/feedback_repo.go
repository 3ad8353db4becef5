package repository

import (
	"github.com/00yuyi00/ChongYu/internal/domain"
	"gorm.io/gorm"
)

// FeedbackRepository feedback data access interface
type FeedbackRepository interface {
	Create(feedback *domain.Feedback) error
	FindByUser(userID string) ([]*domain.Feedback, error)
	List(page, limit int) ([]*domain.Feedback, int64, error)
	UpdateStatus(id uint, status string) error
	Count() (int64, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository creates a new FeedbackRepository
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

// Create inserts a feedback row
func (r *feedbackRepository) Create(feedback *domain.Feedback) error {
	return r.db.Create(feedback).Error
}

// FindByUser returns a user's feedback submissions, newest first
func (r *feedbackRepository) FindByUser(userID string) ([]*domain.Feedback, error) {
	var feedbacks []*domain.Feedback
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&feedbacks).Error
	return feedbacks, err
}

// List returns all feedback with pagination, newest first (admin)
func (r *feedbackRepository) List(page, limit int) ([]*domain.Feedback, int64, error) {
	var feedbacks []*domain.Feedback
	var total int64

	r.db.Model(&domain.Feedback{}).Count(&total)

	offset := (page - 1) * limit
	err := r.db.Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&feedbacks).Error
	return feedbacks, total, err
}

// UpdateStatus sets a feedback's processing status
func (r *feedbackRepository) UpdateStatus(id uint, status string) error {
	result := r.db.Model(&domain.Feedback{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Count returns the total number of feedback rows
func (r *feedbackRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&domain.Feedback{}).Count(&count).Error
	return count, err
}
