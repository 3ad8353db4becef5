package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/00yuyi00/ChongYu/internal/common"
	"github.com/00yuyi00/ChongYu/internal/domain"
)

// --- Mock MessageRepository ---

type mockMessageRepo struct {
	mock.Mock
}

func (m *mockMessageRepo) Create(msg *domain.Message) error {
	return m.Called(msg).Error(0)
}

func (m *mockMessageRepo) FindAllByUser(userID string) ([]*domain.Message, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

func (m *mockMessageRepo) FindConversation(userID, counterpartID string, limit int) ([]*domain.Message, error) {
	args := m.Called(userID, counterpartID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

// --- Mock ProfileRepository ---

type mockProfileRepo struct {
	mock.Mock
}

func (m *mockProfileRepo) Create(profile *domain.Profile) error {
	return m.Called(profile).Error(0)
}

func (m *mockProfileRepo) FindByID(id string) (*domain.Profile, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *mockProfileRepo) FindByIDs(ids []string) ([]*domain.Profile, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Profile), args.Error(1)
}

func (m *mockProfileRepo) FindByEmail(email string) (*domain.Profile, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *mockProfileRepo) Update(id string, fields map[string]interface{}) error {
	return m.Called(id, fields).Error(0)
}

func (m *mockProfileRepo) List(page, limit int) ([]*domain.Profile, int64, error) {
	args := m.Called(page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Profile), args.Get(1).(int64), args.Error(2)
}

func (m *mockProfileRepo) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockProfileRepo) CountSince(days int) (int64, error) {
	args := m.Called(days)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishMessage(msg *domain.MessageResponse) {
	m.Called(msg)
}

func msgAt(sender, receiver, content string, t time.Time) *domain.Message {
	return &domain.Message{
		ID:         sender + "-" + receiver + "-" + content,
		SenderID:   sender,
		ReceiverID: receiver,
		Content:    content,
		CreatedAt:  t,
	}
}

func TestListConversations_GroupsByCounterpart(t *testing.T) {
	repo := new(mockMessageRepo)
	profileRepo := new(mockProfileRepo)
	svc := NewMessageService(repo, profileRepo, nil)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// Newest first: C1 sent "B" at t3, U sent "C" to C2 at t2, C1 sent "A" at t1.
	repo.On("FindAllByUser", "U").Return([]*domain.Message{
		msgAt("C1", "U", "B", base.Add(3*time.Minute)),
		msgAt("U", "C2", "C", base.Add(2*time.Minute)),
		msgAt("C1", "U", "A", base.Add(1*time.Minute)),
	}, nil)
	profileRepo.On("FindByIDs", []string{"C1", "C2"}).Return([]*domain.Profile{
		{ID: "C1", Name: "阿花", AvatarURL: "https://cdn/a.png"},
		{ID: "C2", Name: "小白"},
	}, nil)

	previews, err := svc.ListConversations("U")

	assert.NoError(t, err)
	assert.Len(t, previews, 2)
	assert.Equal(t, "C1", previews[0].CounterpartID)
	assert.Equal(t, "B", previews[0].LastMessageText)
	assert.Equal(t, "阿花", previews[0].DisplayName)
	assert.Equal(t, "C2", previews[1].CounterpartID)
	assert.Equal(t, "C", previews[1].LastMessageText)
	assert.Equal(t, 0, previews[0].UnreadCount)
	assert.Equal(t, 0, previews[1].UnreadCount)
}

func TestListConversations_ReSortsUnorderedInput(t *testing.T) {
	repo := new(mockMessageRepo)
	profileRepo := new(mockProfileRepo)
	svc := NewMessageService(repo, profileRepo, nil)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// Oldest first: the grouping must still pick the newest per counterpart.
	repo.On("FindAllByUser", "U").Return([]*domain.Message{
		msgAt("C1", "U", "old", base),
		msgAt("C1", "U", "new", base.Add(time.Hour)),
	}, nil)
	profileRepo.On("FindByIDs", mock.Anything).Return([]*domain.Profile{}, nil)

	previews, err := svc.ListConversations("U")

	assert.NoError(t, err)
	assert.Len(t, previews, 1)
	assert.Equal(t, "new", previews[0].LastMessageText)
}

func TestListConversations_EmptyIsNotAnError(t *testing.T) {
	repo := new(mockMessageRepo)
	profileRepo := new(mockProfileRepo)
	svc := NewMessageService(repo, profileRepo, nil)

	repo.On("FindAllByUser", "U").Return([]*domain.Message{}, nil)

	previews, err := svc.ListConversations("U")

	assert.NoError(t, err)
	assert.NotNil(t, previews)
	assert.Empty(t, previews)
	profileRepo.AssertNotCalled(t, "FindByIDs")
}

func TestListConversations_PlaceholderWhenProfileMissing(t *testing.T) {
	repo := new(mockMessageRepo)
	profileRepo := new(mockProfileRepo)
	svc := NewMessageService(repo, profileRepo, nil)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.On("FindAllByUser", "U").Return([]*domain.Message{
		msgAt("C1", "U", "hi", base.Add(time.Minute)),
		msgAt("C2", "U", "yo", base),
	}, nil)
	// Only C1 has a profiles row.
	profileRepo.On("FindByIDs", []string{"C1", "C2"}).Return([]*domain.Profile{
		{ID: "C1", Name: "阿花"},
	}, nil)

	previews, err := svc.ListConversations("U")

	assert.NoError(t, err)
	assert.Len(t, previews, 2)
	assert.Equal(t, "阿花", previews[0].DisplayName)
	assert.NotEmpty(t, previews[1].DisplayName)
	assert.Contains(t, previews[1].AvatarURL, "ui-avatars.com")
}

func TestListConversations_ProfileFetchFailureDegrades(t *testing.T) {
	repo := new(mockMessageRepo)
	profileRepo := new(mockProfileRepo)
	svc := NewMessageService(repo, profileRepo, nil)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.On("FindAllByUser", "U").Return([]*domain.Message{
		msgAt("C1", "U", "hi", base),
	}, nil)
	profileRepo.On("FindByIDs", mock.Anything).Return(nil, errors.New("db down"))

	previews, err := svc.ListConversations("U")

	assert.NoError(t, err)
	assert.Len(t, previews, 1)
	assert.NotEmpty(t, previews[0].DisplayName)
}

func TestListConversations_RepoErrorPropagates(t *testing.T) {
	repo := new(mockMessageRepo)
	profileRepo := new(mockProfileRepo)
	svc := NewMessageService(repo, profileRepo, nil)

	repo.On("FindAllByUser", "U").Return(nil, errors.New("timeout"))

	previews, err := svc.ListConversations("U")

	assert.Error(t, err)
	assert.Nil(t, previews)
}

func TestSend_RejectsSelfMessage(t *testing.T) {
	repo := new(mockMessageRepo)
	svc := NewMessageService(repo, new(mockProfileRepo), nil)

	_, err := svc.Send("U", &domain.SendMessageRequest{ReceiverID: "U", Content: "hi"})

	assert.ErrorIs(t, err, common.ErrMessageToSelf)
	repo.AssertNotCalled(t, "Create")
}

func TestSend_PublishesAfterInsert(t *testing.T) {
	repo := new(mockMessageRepo)
	publisher := new(mockPublisher)
	svc := NewMessageService(repo, new(mockProfileRepo), publisher)

	repo.On("Create", mock.AnythingOfType("*domain.Message")).Return(nil)
	publisher.On("PublishMessage", mock.AnythingOfType("*domain.MessageResponse")).Return()

	resp, err := svc.Send("U", &domain.SendMessageRequest{ReceiverID: "C", Content: "你好"})

	assert.NoError(t, err)
	assert.Equal(t, "U", resp.SenderID)
	assert.Equal(t, "C", resp.ReceiverID)
	assert.NotEmpty(t, resp.ID)
	publisher.AssertCalled(t, "PublishMessage", mock.Anything)
}

func TestSend_InsertFailureDoesNotPublish(t *testing.T) {
	repo := new(mockMessageRepo)
	publisher := new(mockPublisher)
	svc := NewMessageService(repo, new(mockProfileRepo), publisher)

	repo.On("Create", mock.Anything).Return(errors.New("insert failed"))

	_, err := svc.Send("U", &domain.SendMessageRequest{ReceiverID: "C", Content: "你好"})

	assert.Error(t, err)
	publisher.AssertNotCalled(t, "PublishMessage")
}
