package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/00yuyi00/ChongYu/internal/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.Profile{},
		&domain.Post{},
		&domain.Message{},
		&domain.Favorite{},
		&domain.Feedback{},
		&domain.Guide{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seedPost(t *testing.T, repo PostRepository, id, userID, postType, petType, title, status string, createdAt time.Time) {
	t.Helper()
	err := repo.Create(&domain.Post{
		ID:          id,
		UserID:      userID,
		PostType:    postType,
		PetType:     petType,
		Title:       title,
		Description: "desc " + title,
		Location:    "上海市",
		Phone:       "13800000000",
		Status:      status,
		CreatedAt:   createdAt,
	})
	if err != nil {
		t.Fatalf("seed post %s: %v", id, err)
	}
}

func TestPostRepository_ListFiltersAndOrder(t *testing.T) {
	repo := NewPostRepository(setupTestDB(t))
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seedPost(t, repo, "p1", "u1", domain.PostTypeSeek, "dog", "豆豆", domain.PostStatusLive, base)
	seedPost(t, repo, "p2", "u1", domain.PostTypeAdopt, "cat", "咪咪", domain.PostStatusLive, base.Add(time.Minute))
	seedPost(t, repo, "p3", "u2", domain.PostTypeSeek, "dog", "旺财", domain.PostStatusResolved, base.Add(2*time.Minute))
	seedPost(t, repo, "p4", "u2", domain.PostTypeSeek, "dog", "黑子", domain.PostStatusTakenDown, base.Add(3*time.Minute))

	ctx := context.Background()

	// Default listing: newest first, taken-down rows excluded.
	posts, total, err := repo.List(ctx, &domain.ListPostsQuery{Page: 1, Limit: 10})
	assert.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, "p3", posts[0].ID)
	assert.Equal(t, "p1", posts[2].ID)

	// Type filters combine.
	posts, total, err = repo.List(ctx, &domain.ListPostsQuery{PostType: domain.PostTypeSeek, PetType: "dog", Page: 1, Limit: 10})
	assert.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, p := range posts {
		assert.Equal(t, domain.PostTypeSeek, p.PostType)
	}

	// Keyword matches title.
	posts, total, err = repo.List(ctx, &domain.ListPostsQuery{Keyword: "咪", Page: 1, Limit: 10})
	assert.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "p2", posts[0].ID)
}

func TestPostRepository_ListHonorsContextDeadline(t *testing.T) {
	repo := NewPostRepository(setupTestDB(t))
	seedPost(t, repo, "p1", "u1", domain.PostTypeSeek, "dog", "豆豆", domain.PostStatusLive, time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := repo.List(ctx, &domain.ListPostsQuery{Page: 1, Limit: 10})
	assert.ErrorIs(t, err, context.Canceled)

	_, _, err = repo.FindByUser(ctx, "u1", 1, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPostRepository_UpdateStatusByOwner(t *testing.T) {
	repo := NewPostRepository(setupTestDB(t))
	seedPost(t, repo, "p1", "owner", domain.PostTypeSeek, "dog", "豆豆", domain.PostStatusLive, time.Now())

	// Someone else cannot close the listing.
	err := repo.UpdateStatusByOwner("p1", "intruder", domain.PostStatusResolved)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = repo.UpdateStatusByOwner("p1", "owner", domain.PostStatusResolved)
	assert.NoError(t, err)

	post, err := repo.FindByID("p1")
	assert.NoError(t, err)
	assert.Equal(t, domain.PostStatusResolved, post.Status)
}

func TestPostRepository_ImagesRoundTrip(t *testing.T) {
	repo := NewPostRepository(setupTestDB(t))

	err := repo.Create(&domain.Post{
		ID:       "p1",
		UserID:   "u1",
		PostType: domain.PostTypeAdopt,
		PetType:  "cat",
		Title:    "咪咪",
		Status:   domain.PostStatusLive,
		Images:   domain.StringArray{"https://cdn/1.jpg", "https://cdn/2.jpg"},
	})
	assert.NoError(t, err)

	post, err := repo.FindByID("p1")
	assert.NoError(t, err)
	assert.Equal(t, domain.StringArray{"https://cdn/1.jpg", "https://cdn/2.jpg"}, post.Images)
}

func TestPostRepository_CountsByTypeAndStatus(t *testing.T) {
	repo := NewPostRepository(setupTestDB(t))
	base := time.Now()

	seedPost(t, repo, "p1", "u1", domain.PostTypeSeek, "dog", "a", domain.PostStatusLive, base)
	seedPost(t, repo, "p2", "u1", domain.PostTypeSeek, "dog", "b", domain.PostStatusResolved, base)
	seedPost(t, repo, "p3", "u1", domain.PostTypeFound, "cat", "c", domain.PostStatusLive, base)

	seek, err := repo.CountByType(domain.PostTypeSeek)
	assert.NoError(t, err)
	assert.EqualValues(t, 2, seek)

	live, err := repo.CountByStatus(domain.PostStatusLive)
	assert.NoError(t, err)
	assert.EqualValues(t, 2, live)
}
