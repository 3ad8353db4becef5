package domain

import "time"

// Feedback statuses
const (
	FeedbackStatusPending  = "待处理"
	FeedbackStatusResolved = "已处理"
)

// Feedback represents a user feedback submission (feedbacks table)
type Feedback struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"column:user_id;index;type:varchar(36)" json:"user_id"`
	Content   string    `gorm:"column:content;type:text" json:"content"`
	Contact   string    `gorm:"column:contact" json:"contact"`
	Status    string    `gorm:"column:status" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Feedback) TableName() string {
	return "feedbacks"
}

// SubmitFeedbackRequest represents a feedback submission
type SubmitFeedbackRequest struct {
	Content string `json:"content" binding:"required"`
	Contact string `json:"contact"`
}
