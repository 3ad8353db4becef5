package service

import (
	"context"

	"github.com/00yuyi00/ChongYu/internal/common"
	"github.com/00yuyi00/ChongYu/internal/domain"
	"github.com/00yuyi00/ChongYu/internal/repository"
	es "github.com/00yuyi00/ChongYu/pkg/elasticsearch"
	pkglogger "github.com/00yuyi00/ChongYu/pkg/logger"
)

const PostsIndex = "chongyu_posts"

// PostDocument represents a post indexed in Elasticsearch
type PostDocument struct {
	UserID      string `json:"user_id"`
	PostType    string `json:"post_type"`
	PetType     string `json:"pet_type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Breed       string `json:"breed"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

// SearchService provides Elasticsearch-based keyword search over posts.
// The index only mirrors searchable text; hits are hydrated from the
// database so responses carry images and the privacy-filtered fields.
type SearchService interface {
	IsAvailable() bool
	IndexPost(ctx context.Context, post *domain.Post)
	RemovePost(ctx context.Context, postID string)
	SearchPosts(ctx context.Context, q *domain.ListPostsQuery) ([]*domain.PostResponse, *common.Meta, error)
}

type searchService struct {
	esClient *es.Client
	postRepo repository.PostRepository
}

// NewSearchService creates a new SearchService
func NewSearchService(esClient *es.Client, postRepo repository.PostRepository) SearchService {
	return &searchService{esClient: esClient, postRepo: postRepo}
}

// IsAvailable reports whether a search backend is attached
func (s *searchService) IsAvailable() bool {
	return s != nil && s.esClient != nil
}

// IndexPost mirrors one post into the index. Failures are logged and
// swallowed so an index outage never blocks publishing.
func (s *searchService) IndexPost(ctx context.Context, post *domain.Post) {
	if !s.IsAvailable() {
		return
	}
	doc := &PostDocument{
		UserID:      post.UserID,
		PostType:    post.PostType,
		PetType:     post.PetType,
		Title:       post.Title,
		Description: post.Description,
		Location:    post.Location,
		Breed:       post.Breed,
		Status:      post.Status,
		CreatedAt:   post.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if err := s.esClient.IndexDocument(ctx, PostsIndex, post.ID, doc); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("post_id", post.ID).Msg("failed to index post")
	}
}

// RemovePost drops a post from the index. Used on admin takedown so
// delisted posts stop matching keyword queries immediately.
func (s *searchService) RemovePost(ctx context.Context, postID string) {
	if !s.IsAvailable() {
		return
	}
	if err := s.esClient.DeleteDocument(ctx, PostsIndex, postID); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Str("post_id", postID).Msg("failed to remove post from index")
	}
}

// SearchPosts runs a keyword query with the same type filters as the
// plain listing, then loads the matching rows from the database.
func (s *searchService) SearchPosts(ctx context.Context, q *domain.ListPostsQuery) ([]*domain.PostResponse, *common.Meta, error) {
	must := []map[string]interface{}{
		{
			"multi_match": map[string]interface{}{
				"query":  q.Keyword,
				"fields": []string{"title^3", "description", "location", "breed"},
				"type":   "best_fields",
			},
		},
	}

	var filter []map[string]interface{}
	if q.PostType != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"post_type": q.PostType},
		})
	}
	if q.PetType != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"pet_type": q.PetType},
		})
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
				"must_not": []map[string]interface{}{
					{"term": map[string]interface{}{"status": domain.PostStatusTakenDown}},
				},
			},
		},
		"sort": []interface{}{
			"_score",
			map[string]interface{}{"created_at": map[string]interface{}{"order": "desc"}},
		},
	}

	from := (q.Page - 1) * q.Limit
	result, err := s.esClient.Search(ctx, PostsIndex, query, from, q.Limit)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]string, 0, len(result.Results))
	for _, hit := range result.Results {
		ids = append(ids, hit.ID)
	}

	posts, err := s.postRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	// Preserve relevance order from the index; skip hits whose row has
	// been deleted since indexing.
	byID := make(map[string]*domain.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	responses := make([]*domain.PostResponse, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			responses = append(responses, p.ToResponse())
		}
	}

	meta := &common.Meta{Page: q.Page, Limit: q.Limit, Total: result.Total}
	return responses, meta, nil
}
