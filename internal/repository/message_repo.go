package repository

import (
	"github.com/00yuyi00/ChongYu/internal/domain"
	"gorm.io/gorm"
)

// MessageRepository message data access interface.
// Messages are append-only; there is no update or delete path.
type MessageRepository interface {
	Create(msg *domain.Message) error
	FindAllByUser(userID string) ([]*domain.Message, error)
	FindConversation(userID, counterpartID string, limit int) ([]*domain.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create inserts a message row
func (r *messageRepository) Create(msg *domain.Message) error {
	return r.db.Create(msg).Error
}

// FindAllByUser returns every message the user sent or received,
// newest first. The descending order is part of the contract: the
// conversation aggregator's first-occurrence-wins grouping depends on it.
func (r *messageRepository) FindAllByUser(userID string) ([]*domain.Message, error) {
	var messages []*domain.Message
	err := r.db.Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&messages).Error
	return messages, err
}

// FindConversation returns the message history between two users in
// ascending created_at order, ready to render.
func (r *messageRepository) FindConversation(userID, counterpartID string, limit int) ([]*domain.Message, error) {
	var messages []*domain.Message
	query := r.db.Where(
		"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		userID, counterpartID, counterpartID, userID,
	).Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&messages).Error
	return messages, err
}
