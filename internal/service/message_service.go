package service

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/00yuyi00/ChongYu/internal/common"
	"github.com/00yuyi00/ChongYu/internal/domain"
	"github.com/00yuyi00/ChongYu/internal/repository"
	pkglogger "github.com/00yuyi00/ChongYu/pkg/logger"
)

// MessagePublisher pushes a newly created message to the receiver's open
// connections. Satisfied by the ws hub.
type MessagePublisher interface {
	PublishMessage(msg *domain.MessageResponse)
}

// MessageService business logic for chat messages
type MessageService interface {
	Send(senderID string, req *domain.SendMessageRequest) (*domain.MessageResponse, error)
	GetConversation(userID, counterpartID string) ([]*domain.MessageResponse, error)
	ListConversations(userID string) ([]*domain.ConversationPreview, error)
}

type messageService struct {
	repo        repository.MessageRepository
	profileRepo repository.ProfileRepository
	publisher   MessagePublisher
}

// NewMessageService creates a new MessageService
func NewMessageService(repo repository.MessageRepository, profileRepo repository.ProfileRepository, publisher MessagePublisher) MessageService {
	return &messageService{
		repo:        repo,
		profileRepo: profileRepo,
		publisher:   publisher,
	}
}

// Send creates a message and notifies the receiver's realtime feed
func (s *messageService) Send(senderID string, req *domain.SendMessageRequest) (*domain.MessageResponse, error) {
	if senderID == req.ReceiverID {
		return nil, common.ErrMessageToSelf
	}
	if err := common.ValidateLinks(req.Content, false); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
		CreatedAt:  time.Now(),
	}

	if err := s.repo.Create(msg); err != nil {
		return nil, err
	}

	resp := msg.ToResponse()
	if s.publisher != nil {
		s.publisher.PublishMessage(resp)
	}
	return resp, nil
}

// GetConversation returns the message history between two users in
// ascending created_at order
func (s *messageService) GetConversation(userID, counterpartID string) ([]*domain.MessageResponse, error) {
	messages, err := s.repo.FindConversation(userID, counterpartID, 0)
	if err != nil {
		return nil, err
	}

	responses := make([]*domain.MessageResponse, len(messages))
	for i, m := range messages {
		responses[i] = m.ToResponse()
	}
	return responses, nil
}

// ListConversations derives one preview per counterpart, most recently
// active first.
//
// The grouping is a single pass over the user's messages sorted newest
// first: the first time a counterpart appears is, by that order, its most
// recent message, and later occurrences of the same counterpart are
// skipped. The descending order is therefore a correctness requirement,
// not an optimization, so it is re-checked here instead of trusting the
// repository's stated ordering.
func (s *messageService) ListConversations(userID string) ([]*domain.ConversationPreview, error) {
	messages, err := s.repo.FindAllByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return []*domain.ConversationPreview{}, nil
	}

	if !sort.SliceIsSorted(messages, func(i, j int) bool {
		return messages[i].CreatedAt.After(messages[j].CreatedAt)
	}) {
		sort.SliceStable(messages, func(i, j int) bool {
			return messages[i].CreatedAt.After(messages[j].CreatedAt)
		})
	}

	seen := make(map[string]bool)
	previews := make([]*domain.ConversationPreview, 0)
	counterparts := make([]string, 0)

	for _, m := range messages {
		cp := m.Counterpart(userID)
		if seen[cp] {
			continue
		}
		seen[cp] = true
		counterparts = append(counterparts, cp)
		previews = append(previews, &domain.ConversationPreview{
			CounterpartID:   cp,
			LastMessageText: m.Content,
			LastMessageTime: m.CreatedAt.Format(time.RFC3339),
			UnreadCount:     0, // placeholder, no read-receipt model
		})
	}

	s.attachProfiles(previews, counterparts)
	return previews, nil
}

// attachProfiles resolves display name and avatar for every counterpart
// in one batch query. A missing or failed profile never aborts the
// listing; that row just falls back to a deterministic placeholder.
func (s *messageService) attachProfiles(previews []*domain.ConversationPreview, counterparts []string) {
	byID := make(map[string]*domain.Profile)

	profiles, err := s.profileRepo.FindByIDs(counterparts)
	if err != nil && err != gorm.ErrRecordNotFound {
		pkglogger.GetLogger().Warn().Err(err).Msg("conversation profile batch fetch failed, using placeholders")
	}
	for _, p := range profiles {
		byID[p.ID] = p
	}

	for _, preview := range previews {
		if p, ok := byID[preview.CounterpartID]; ok {
			preview.DisplayName = p.Name
			preview.AvatarURL = p.AvatarURL
			continue
		}
		placeholder := domain.PlaceholderProfile(preview.CounterpartID)
		preview.DisplayName = placeholder.Name
		preview.AvatarURL = placeholder.AvatarURL
	}
}
