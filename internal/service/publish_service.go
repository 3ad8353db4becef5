package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/00yuyi00/ChongYu/internal/common"
	"github.com/00yuyi00/ChongYu/internal/domain"
	"github.com/00yuyi00/ChongYu/internal/repository"
	pkgcache "github.com/00yuyi00/ChongYu/pkg/cache"
	pkglogger "github.com/00yuyi00/ChongYu/pkg/logger"
	"github.com/00yuyi00/ChongYu/pkg/storage"
)

// ImageUploader uploads one object and returns its public URL.
// Satisfied by *storage.S3Client.
type ImageUploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*storage.UploadResult, error)
}

// PostIndexer mirrors published posts into the search index.
type PostIndexer interface {
	IndexPost(ctx context.Context, post *domain.Post)
}

// PublishService implements the two-step publish wizard: the compose step
// stashes a draft (text fields plus in-memory file blobs), the agreement
// step consumes it with an all-or-nothing upload-then-insert submission.
//
// Drafts live only in memory. A confirm request that arrives without a
// stashed draft (direct navigation, reload, another instance) gets
// ErrDraftNotFound, which the handler turns into a redirect back to the
// compose step.
type PublishService interface {
	StashDraft(userID string, draft *domain.DraftPost) (string, error)
	GetDraft(userID, draftID string) (*domain.DraftPost, error)
	DiscardDraft(userID string)
	Submit(ctx context.Context, userID, draftID string) (*domain.PostResponse, error)
}

// draftTTL bounds how long an abandoned draft pins its image blobs in
// memory. A wizard hop takes seconds; anything older is stale.
const draftTTL = 30 * time.Minute

type draftEntry struct {
	id       string
	draft    *domain.DraftPost
	inFlight bool
	stashed  time.Time
}

func (e *draftEntry) expired(now time.Time) bool {
	return now.Sub(e.stashed) > draftTTL
}

type publishService struct {
	postRepo repository.PostRepository
	uploader ImageUploader
	cache    pkgcache.Service
	indexer  PostIndexer

	mu     sync.Mutex
	drafts map[string]*draftEntry // one active draft per user
}

// NewPublishService creates a new PublishService
func NewPublishService(postRepo repository.PostRepository, uploader ImageUploader, cache pkgcache.Service, indexer PostIndexer) PublishService {
	return &publishService{
		postRepo: postRepo,
		uploader: uploader,
		cache:    cache,
		indexer:  indexer,
		drafts:   make(map[string]*draftEntry),
	}
}

// StashDraft stores the compose step's output and returns the draft id
// the confirm step must present. Re-stashing replaces the previous draft.
func (s *publishService) StashDraft(userID string, draft *domain.DraftPost) (string, error) {
	if len(draft.Files) == 0 {
		return "", common.ErrNoAttachedFiles
	}
	if err := common.ValidateLinks(draft.Description, false); err != nil {
		return "", err
	}
	if draft.Vaccine == "" {
		draft.Vaccine = "unknown"
	}
	if draft.Sterilization == "" {
		draft.Sterilization = "unknown"
	}

	entry := &draftEntry{
		id:      uuid.NewString(),
		draft:   draft,
		stashed: time.Now(),
	}

	s.mu.Lock()
	s.drafts[userID] = entry
	s.sweepExpiredLocked(time.Now())
	s.mu.Unlock()

	return entry.id, nil
}

// sweepExpiredLocked evicts stale drafts from every user. In-flight
// entries are skipped; Submit settles their fate. Caller holds s.mu.
func (s *publishService) sweepExpiredLocked(now time.Time) {
	for userID, entry := range s.drafts {
		if !entry.inFlight && entry.expired(now) {
			delete(s.drafts, userID)
		}
	}
}

// GetDraft returns the stashed draft for the confirm step
func (s *publishService) GetDraft(userID, draftID string) (*domain.DraftPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.drafts[userID]
	if !ok || entry.id != draftID {
		return nil, common.ErrDraftNotFound
	}
	if entry.expired(time.Now()) {
		delete(s.drafts, userID)
		return nil, common.ErrDraftNotFound
	}
	return entry.draft, nil
}

// DiscardDraft drops the user's stashed draft, if any
func (s *publishService) DiscardDraft(userID string) {
	s.mu.Lock()
	delete(s.drafts, userID)
	s.mu.Unlock()
}

// Submit performs the all-or-nothing publish:
//
//  1. upload every attached file in order, collecting public URLs;
//  2. any upload failure aborts before any row insert, draft retained;
//  3. on full success insert exactly one posts row with status 展示中;
//  4. insert failure also retains the draft for retry.
//
// A submit while another submit of the same draft is in flight is
// rejected without side effects. Already-uploaded objects from a failed
// attempt are left behind on purpose; the wasted objects are cheaper
// than a compensating-delete path.
func (s *publishService) Submit(ctx context.Context, userID, draftID string) (*domain.PostResponse, error) {
	s.mu.Lock()
	entry, ok := s.drafts[userID]
	if !ok || entry.id != draftID {
		s.mu.Unlock()
		return nil, common.ErrDraftNotFound
	}
	if !entry.inFlight && entry.expired(time.Now()) {
		delete(s.drafts, userID)
		s.mu.Unlock()
		return nil, common.ErrDraftNotFound
	}
	if entry.inFlight {
		s.mu.Unlock()
		return nil, common.ErrSubmitInFlight
	}
	entry.inFlight = true
	draft := entry.draft
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		entry.inFlight = false
		s.mu.Unlock()
	}()

	imageURLs := make([]string, 0, len(draft.Files))
	for i, file := range draft.Files {
		key := storage.GenerateKey("posts", file.ContentType)
		result, err := s.uploader.Upload(ctx, key, bytes.NewReader(file.Data), file.ContentType, int64(len(file.Data)))
		if err != nil {
			pkglogger.GetLogger().Warn().Err(err).Int("file_index", i).Msg("image upload failed, aborting publish")
			return nil, fmt.Errorf("%w: 第%d张图片上传失败", common.ErrUploadFailed, i+1)
		}
		imageURLs = append(imageURLs, result.URL)
	}

	post := &domain.Post{
		ID:            uuid.NewString(),
		UserID:        userID,
		PostType:      draft.PublishType,
		PetType:       draft.PetType,
		Title:         draft.Title(),
		Description:   draft.Description,
		Images:        imageURLs,
		Location:      draft.Location,
		Status:        domain.PostStatusLive,
		Nickname:      draft.Nickname,
		Breed:         draft.Breed,
		Age:           draft.Age,
		Phone:         draft.Phone,
		IsPrivate:     draft.IsPrivate,
		RewardAmount:  draft.RewardAmount,
		Vaccine:       draft.Vaccine,
		Sterilization: draft.Sterilization,
		Requirements:  draft.Requirements,
		CreatedAt:     time.Now(),
	}

	if err := s.postRepo.Create(post); err != nil {
		return nil, err
	}

	// Draft consumed exactly once, only after the row exists
	s.mu.Lock()
	if current, ok := s.drafts[userID]; ok && current.id == draftID {
		delete(s.drafts, userID)
	}
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.InvalidatePosts(ctx); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Msg("post cache invalidation failed")
		}
	}
	if s.indexer != nil {
		s.indexer.IndexPost(ctx, post)
	}

	return post.ToResponse(), nil
}
