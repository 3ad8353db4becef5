package domain

import "time"

// Message represents a chat message (messages table).
// Rows are immutable once created: never updated, never deleted.
type Message struct {
	ID         string    `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	SenderID   string    `gorm:"column:sender_id;index;type:varchar(36)" json:"sender_id"`
	ReceiverID string    `gorm:"column:receiver_id;index;type:varchar(36)" json:"receiver_id"`
	Content    string    `gorm:"column:content;type:text" json:"content"`
	CreatedAt  time.Time `gorm:"column:created_at;index" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

// SendMessageRequest represents a send message request
type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

// MessageResponse represents a message in API responses
type MessageResponse struct {
	ID         string `json:"id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
	CreatedAt  string `json:"created_at"`
}

// ToResponse converts Message to MessageResponse
func (m *Message) ToResponse() *MessageResponse {
	return &MessageResponse{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt.Format(time.RFC3339),
	}
}

// Counterpart returns the other participant relative to userID.
func (m *Message) Counterpart(userID string) string {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// ConversationPreview is a derived, non-persisted summary of a
// conversation's latest activity. UnreadCount is a placeholder and is
// always zero: there is no read-receipt model.
type ConversationPreview struct {
	CounterpartID   string `json:"counterpart_id"`
	DisplayName     string `json:"display_name"`
	AvatarURL       string `json:"avatar_url"`
	LastMessageText string `json:"last_message_text"`
	LastMessageTime string `json:"last_message_time"`
	UnreadCount     int    `json:"unread_count"`
}
