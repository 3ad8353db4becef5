package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTLs per data class
const (
	TTLGuides      = 10 * time.Minute // editorial content, changes rarely
	TTLGuideCounts = 10 * time.Minute
	TTLPosts       = 30 * time.Second // listing pages, refreshed often
	TTLProfile     = 5 * time.Minute
	TTLDefault     = 5 * time.Minute
)

// Cache key prefixes
const (
	PrefixGuides      = "guides:"
	PrefixGuideCounts = "guide_counts:"
	PrefixPosts       = "posts:"
	PrefixProfile     = "profile:"
)

// Service Redis cache interface. All operations tolerate a nil client so
// the API keeps working when Redis is down or disabled.
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	GetGuides(ctx context.Context, category string) ([]byte, error)
	SetGuides(ctx context.Context, category string, data interface{}) error
	InvalidateGuides(ctx context.Context, category string) error

	GetGuideCounts(ctx context.Context) ([]byte, error)
	SetGuideCounts(ctx context.Context, data interface{}) error

	GetPosts(ctx context.Context, cacheKey string) ([]byte, error)
	SetPosts(ctx context.Context, cacheKey string, data interface{}) error
	InvalidatePosts(ctx context.Context) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

// NewService creates a new cache service
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

// IsAvailable reports whether a Redis client is attached
func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

// Ping checks the Redis connection
func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

// Get reads and unmarshals a cached value
func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return fmt.Errorf("redis not available")
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// Set marshals and stores a value
func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes cache entries
func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) guidesKey(category string) string {
	return PrefixGuides + category
}

func (c *redisCache) GetGuides(ctx context.Context, category string) ([]byte, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis not available")
	}
	return c.client.Get(ctx, c.guidesKey(category)).Bytes()
}

func (c *redisCache) SetGuides(ctx context.Context, category string, data interface{}) error {
	if c.client == nil {
		return nil
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.guidesKey(category), jsonData, TTLGuides).Err()
}

func (c *redisCache) InvalidateGuides(ctx context.Context, category string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.guidesKey(category), PrefixGuideCounts+"all").Err()
}

func (c *redisCache) GetGuideCounts(ctx context.Context) ([]byte, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis not available")
	}
	return c.client.Get(ctx, PrefixGuideCounts+"all").Bytes()
}

func (c *redisCache) SetGuideCounts(ctx context.Context, data interface{}) error {
	if c.client == nil {
		return nil
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, PrefixGuideCounts+"all", jsonData, TTLGuideCounts).Err()
}

func (c *redisCache) GetPosts(ctx context.Context, cacheKey string) ([]byte, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis not available")
	}
	return c.client.Get(ctx, PrefixPosts+cacheKey).Bytes()
}

func (c *redisCache) SetPosts(ctx context.Context, cacheKey string, data interface{}) error {
	if c.client == nil {
		return nil
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, PrefixPosts+cacheKey, jsonData, TTLPosts).Err()
}

// InvalidatePosts drops every cached listing page. Called after a publish
// or a status change so the new state shows up within one page load.
func (c *redisCache) InvalidatePosts(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	iter := c.client.Scan(ctx, 0, PrefixPosts+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
