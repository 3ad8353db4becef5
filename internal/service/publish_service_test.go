package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/00yuyi00/ChongYu/internal/common"
	"github.com/00yuyi00/ChongYu/internal/domain"
	"github.com/00yuyi00/ChongYu/pkg/storage"
)

// --- Mock PostRepository ---

type mockPostRepo struct {
	mock.Mock
}

func (m *mockPostRepo) Create(post *domain.Post) error {
	return m.Called(post).Error(0)
}

func (m *mockPostRepo) FindByID(id string) (*domain.Post, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *mockPostRepo) FindByIDs(ctx context.Context, ids []string) ([]*domain.Post, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Post), args.Error(1)
}

func (m *mockPostRepo) List(ctx context.Context, q *domain.ListPostsQuery) ([]*domain.Post, int64, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Post), args.Get(1).(int64), args.Error(2)
}

func (m *mockPostRepo) FindByUser(ctx context.Context, userID string, page, limit int) ([]*domain.Post, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Post), args.Get(1).(int64), args.Error(2)
}

func (m *mockPostRepo) UpdateStatus(id string, status string) error {
	return m.Called(id, status).Error(0)
}

func (m *mockPostRepo) UpdateStatusByOwner(id, userID, status string) error {
	return m.Called(id, userID, status).Error(0)
}

func (m *mockPostRepo) Count() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPostRepo) CountByType(postType string) (int64, error) {
	args := m.Called(postType)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPostRepo) CountByStatus(status string) (int64, error) {
	args := m.Called(status)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock uploader ---

// failAfter fails the upload whose 1-based index exceeds it; 0 never fails.
type fakeUploader struct {
	calls     int
	failAt    int
	uploaded  []string
	uploadErr error
}

func (f *fakeUploader) Upload(_ context.Context, key string, _ io.Reader, contentType string, _ int64) (*storage.UploadResult, error) {
	f.calls++
	if f.failAt > 0 && f.calls == f.failAt {
		if f.uploadErr == nil {
			f.uploadErr = errors.New("storage unavailable")
		}
		return nil, f.uploadErr
	}
	url := "https://cdn.example.com/" + key
	f.uploaded = append(f.uploaded, url)
	return &storage.UploadResult{Key: key, URL: url, ContentType: contentType}, nil
}

func validDraft(fileCount int) *domain.DraftPost {
	d := &domain.DraftPost{
		PublishType: domain.PostTypeSeek,
		PetType:     "dog",
		Nickname:    "豆豆",
		Location:    "上海市浦东新区",
		Description: "走失于世纪公园附近",
		Phone:       "13800000000",
	}
	for i := 0; i < fileCount; i++ {
		d.Files = append(d.Files, domain.DraftFile{
			Name:        "photo.jpg",
			ContentType: "image/jpeg",
			Data:        []byte{0xFF, 0xD8, byte(i)},
		})
	}
	return d
}

func TestStashDraft_RequiresFiles(t *testing.T) {
	svc := NewPublishService(new(mockPostRepo), &fakeUploader{}, nil, nil)

	_, err := svc.StashDraft("U", validDraft(0))

	assert.ErrorIs(t, err, common.ErrNoAttachedFiles)
}

func TestStashDraft_DefaultsHealthFields(t *testing.T) {
	svc := NewPublishService(new(mockPostRepo), &fakeUploader{}, nil, nil)

	draft := validDraft(1)
	id, err := svc.StashDraft("U", draft)

	assert.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, "unknown", draft.Vaccine)
	assert.Equal(t, "unknown", draft.Sterilization)
}

func TestGetDraft_MissingDraftIsSentinel(t *testing.T) {
	svc := NewPublishService(new(mockPostRepo), &fakeUploader{}, nil, nil)

	_, err := svc.GetDraft("U", "nope")
	assert.ErrorIs(t, err, common.ErrDraftNotFound)

	// Stashed under a different id still misses.
	id, _ := svc.StashDraft("U", validDraft(1))
	_, err = svc.GetDraft("U", id+"x")
	assert.ErrorIs(t, err, common.ErrDraftNotFound)
}

func TestSubmit_AllUploadsSucceed(t *testing.T) {
	repo := new(mockPostRepo)
	uploader := &fakeUploader{}
	svc := NewPublishService(repo, uploader, nil, nil)

	var inserted *domain.Post
	repo.On("Create", mock.AnythingOfType("*domain.Post")).Run(func(args mock.Arguments) {
		inserted = args.Get(0).(*domain.Post)
	}).Return(nil)

	id, _ := svc.StashDraft("U", validDraft(3))
	resp, err := svc.Submit(context.Background(), "U", id)

	assert.NoError(t, err)
	assert.Equal(t, 3, uploader.calls)
	repo.AssertNumberOfCalls(t, "Create", 1)
	assert.Len(t, inserted.Images, 3)
	assert.Equal(t, uploader.uploaded, []string(inserted.Images))
	assert.Equal(t, domain.PostStatusLive, inserted.Status)
	assert.Equal(t, "豆豆", resp.Title)

	// Draft consumed: a second submit redirects back to compose.
	_, err = svc.Submit(context.Background(), "U", id)
	assert.ErrorIs(t, err, common.ErrDraftNotFound)
}

func TestSubmit_SecondUploadFailureAbortsInsert(t *testing.T) {
	repo := new(mockPostRepo)
	uploader := &fakeUploader{failAt: 2}
	svc := NewPublishService(repo, uploader, nil, nil)

	id, _ := svc.StashDraft("U", validDraft(3))
	_, err := svc.Submit(context.Background(), "U", id)

	assert.ErrorIs(t, err, common.ErrUploadFailed)
	assert.Equal(t, 2, uploader.calls) // third upload never attempted
	repo.AssertNotCalled(t, "Create")

	// Draft retained for retry; no compensating deletes for the first object.
	draft, err := svc.GetDraft("U", id)
	assert.NoError(t, err)
	assert.Len(t, draft.Files, 3)
}

func TestSubmit_InsertFailureRetainsDraft(t *testing.T) {
	repo := new(mockPostRepo)
	svc := NewPublishService(repo, &fakeUploader{}, nil, nil)

	repo.On("Create", mock.Anything).Return(errors.New("insert failed"))

	id, _ := svc.StashDraft("U", validDraft(1))
	_, err := svc.Submit(context.Background(), "U", id)

	assert.Error(t, err)
	_, err = svc.GetDraft("U", id)
	assert.NoError(t, err)
}

func TestSubmit_TitleFallsBackToBreed(t *testing.T) {
	repo := new(mockPostRepo)
	svc := NewPublishService(repo, &fakeUploader{}, nil, nil)

	var inserted *domain.Post
	repo.On("Create", mock.Anything).Run(func(args mock.Arguments) {
		inserted = args.Get(0).(*domain.Post)
	}).Return(nil)

	draft := validDraft(1)
	draft.Nickname = ""
	draft.Breed = "柯基"
	id, _ := svc.StashDraft("U", draft)
	_, err := svc.Submit(context.Background(), "U", id)

	assert.NoError(t, err)
	assert.Equal(t, "柯基", inserted.Title)
}

func TestSubmit_GenericTitleWhenNoNames(t *testing.T) {
	repo := new(mockPostRepo)
	svc := NewPublishService(repo, &fakeUploader{}, nil, nil)

	var inserted *domain.Post
	repo.On("Create", mock.Anything).Run(func(args mock.Arguments) {
		inserted = args.Get(0).(*domain.Post)
	}).Return(nil)

	draft := validDraft(1)
	draft.Nickname = ""
	draft.Breed = ""
	id, _ := svc.StashDraft("U", draft)
	_, err := svc.Submit(context.Background(), "U", id)

	assert.NoError(t, err)
	assert.Equal(t, "寻宠/送养信息", inserted.Title)
}

// blockingUploader parks the first upload until released, so a second
// submit can be issued while the first is mid-flight.
type blockingUploader struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingUploader) Upload(_ context.Context, key string, _ io.Reader, contentType string, _ int64) (*storage.UploadResult, error) {
	close(b.entered)
	<-b.release
	return &storage.UploadResult{Key: key, URL: "https://cdn.example.com/" + key, ContentType: contentType}, nil
}

func TestSubmit_ReentrantSubmitRejected(t *testing.T) {
	repo := new(mockPostRepo)
	uploader := &blockingUploader{entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewPublishService(repo, uploader, nil, nil)

	repo.On("Create", mock.Anything).Return(nil)

	id, _ := svc.StashDraft("U", validDraft(1))

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), "U", id)
		done <- err
	}()

	<-uploader.entered
	_, err := svc.Submit(context.Background(), "U", id)
	assert.ErrorIs(t, err, common.ErrSubmitInFlight)

	close(uploader.release)
	assert.NoError(t, <-done)
	repo.AssertNumberOfCalls(t, "Create", 1)
}

// backdateDraft pushes a stashed draft past its TTL.
func backdateDraft(svc PublishService, userID string) {
	ps := svc.(*publishService)
	ps.mu.Lock()
	ps.drafts[userID].stashed = time.Now().Add(-draftTTL - time.Minute)
	ps.mu.Unlock()
}

func TestGetDraft_ExpiredDraftEvicted(t *testing.T) {
	svc := NewPublishService(new(mockPostRepo), &fakeUploader{}, nil, nil)

	id, _ := svc.StashDraft("U", validDraft(1))
	backdateDraft(svc, "U")

	_, err := svc.GetDraft("U", id)
	assert.ErrorIs(t, err, common.ErrDraftNotFound)

	// Eviction freed the entry, not just hid it.
	svc.(*publishService).mu.Lock()
	_, held := svc.(*publishService).drafts["U"]
	svc.(*publishService).mu.Unlock()
	assert.False(t, held)
}

func TestSubmit_ExpiredDraftRejected(t *testing.T) {
	repo := new(mockPostRepo)
	uploader := &fakeUploader{}
	svc := NewPublishService(repo, uploader, nil, nil)

	id, _ := svc.StashDraft("U", validDraft(1))
	backdateDraft(svc, "U")

	_, err := svc.Submit(context.Background(), "U", id)

	assert.ErrorIs(t, err, common.ErrDraftNotFound)
	assert.Zero(t, uploader.calls)
	repo.AssertNotCalled(t, "Create")
}

func TestStashDraft_SweepsStaleDraftsOfOtherUsers(t *testing.T) {
	svc := NewPublishService(new(mockPostRepo), &fakeUploader{}, nil, nil)

	svc.StashDraft("A", validDraft(1))
	backdateDraft(svc, "A")

	// Any stash pass doubles as the janitor.
	svc.StashDraft("B", validDraft(1))

	ps := svc.(*publishService)
	ps.mu.Lock()
	_, held := ps.drafts["A"]
	ps.mu.Unlock()
	assert.False(t, held)
}

func TestSubmit_ReStashReplacesDraft(t *testing.T) {
	svc := NewPublishService(new(mockPostRepo), &fakeUploader{}, nil, nil)

	first, _ := svc.StashDraft("U", validDraft(1))
	second, _ := svc.StashDraft("U", validDraft(2))

	_, err := svc.GetDraft("U", first)
	assert.ErrorIs(t, err, common.ErrDraftNotFound)

	draft, err := svc.GetDraft("U", second)
	assert.NoError(t, err)
	assert.Len(t, draft.Files, 2)
}
