package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/00yuyi00/ChongYu/internal/domain"
)

func seedMessage(t *testing.T, repo MessageRepository, id, sender, receiver, content string, createdAt time.Time) {
	t.Helper()
	err := repo.Create(&domain.Message{
		ID:         id,
		SenderID:   sender,
		ReceiverID: receiver,
		Content:    content,
		CreatedAt:  createdAt,
	})
	if err != nil {
		t.Fatalf("seed message %s: %v", id, err)
	}
}

func TestMessageRepository_FindAllByUserDescending(t *testing.T) {
	repo := NewMessageRepository(setupTestDB(t))
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seedMessage(t, repo, "m1", "U", "C1", "oldest", base)
	seedMessage(t, repo, "m2", "C1", "U", "middle", base.Add(time.Minute))
	seedMessage(t, repo, "m3", "C2", "U", "newest", base.Add(2*time.Minute))
	seedMessage(t, repo, "m4", "C1", "C2", "unrelated", base.Add(3*time.Minute))

	messages, err := repo.FindAllByUser("U")
	assert.NoError(t, err)
	assert.Len(t, messages, 3)
	assert.Equal(t, "newest", messages[0].Content)
	assert.Equal(t, "middle", messages[1].Content)
	assert.Equal(t, "oldest", messages[2].Content)
}

func TestMessageRepository_FindConversationAscending(t *testing.T) {
	repo := NewMessageRepository(setupTestDB(t))
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seedMessage(t, repo, "m1", "U", "C", "first", base)
	seedMessage(t, repo, "m2", "C", "U", "second", base.Add(time.Minute))
	seedMessage(t, repo, "m3", "U", "X", "other thread", base.Add(2*time.Minute))

	messages, err := repo.FindConversation("U", "C", 0)
	assert.NoError(t, err)
	assert.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "second", messages[1].Content)
}

func TestFavoriteRepository_ExistsAndDelete(t *testing.T) {
	repo := NewFavoriteRepository(setupTestDB(t))

	_, err := repo.Create("U", "p1")
	assert.NoError(t, err)

	exists, err := repo.Exists("U", "p1")
	assert.NoError(t, err)
	assert.True(t, exists)

	assert.NoError(t, repo.Delete("U", "p1"))

	exists, err = repo.Exists("U", "p1")
	assert.NoError(t, err)
	assert.False(t, exists)

	// Deleting a missing row reports not found.
	assert.Error(t, repo.Delete("U", "p1"))
}
