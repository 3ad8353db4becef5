package service

import (
	"time"

	"github.com/00yuyi00/ChongYu/internal/common"
	"github.com/00yuyi00/ChongYu/internal/domain"
	"github.com/00yuyi00/ChongYu/internal/repository"
)

// FeedbackService business logic for user feedback
type FeedbackService interface {
	Submit(userID string, req *domain.SubmitFeedbackRequest) (*domain.Feedback, error)
	ListByUser(userID string) ([]*domain.Feedback, error)
	ListAll(page, limit int) ([]*domain.Feedback, *common.Meta, error)
	MarkResolved(id uint) error
}

type feedbackService struct {
	repo repository.FeedbackRepository
}

// NewFeedbackService creates a new FeedbackService
func NewFeedbackService(repo repository.FeedbackRepository) FeedbackService {
	return &feedbackService{repo: repo}
}

// Submit records a feedback entry in the pending state
func (s *feedbackService) Submit(userID string, req *domain.SubmitFeedbackRequest) (*domain.Feedback, error) {
	feedback := &domain.Feedback{
		UserID:    userID,
		Content:   req.Content,
		Contact:   req.Contact,
		Status:    domain.FeedbackStatusPending,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

// ListByUser returns the user's own submissions, newest first
func (s *feedbackService) ListByUser(userID string) ([]*domain.Feedback, error) {
	return s.repo.FindByUser(userID)
}

// ListAll returns all feedback for the admin console
func (s *feedbackService) ListAll(page, limit int) ([]*domain.Feedback, *common.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	feedbacks, total, err := s.repo.List(page, limit)
	if err != nil {
		return nil, nil, err
	}

	meta := &common.Meta{Page: page, Limit: limit, Total: total}
	return feedbacks, meta, nil
}

// MarkResolved flips a feedback entry to the processed state
func (s *feedbackService) MarkResolved(id uint) error {
	return s.repo.UpdateStatus(id, domain.FeedbackStatusResolved)
}
