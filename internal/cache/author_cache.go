package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/config"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/domain"
)

// ErrCacheMiss is returned when the key is not in the cache.
var ErrCacheMiss = errors.New("cache miss")

// AuthorCache caches resolved author summaries.
type AuthorCache interface {
	Get(ctx context.Context, userID string) (*domain.AuthorSummary, error)
	Set(ctx context.Context, author *domain.AuthorSummary) error
}

// RedisAuthorCache implements AuthorCache backed by Redis. Cache failures
// are surfaced as errors but callers treat them as misses; author lookups
// always fall through to the user store.
type RedisAuthorCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient creates the shared Redis client and verifies connectivity.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// NewRedisAuthorCache creates a new author cache with the given TTL.
func NewRedisAuthorCache(client *redis.Client, ttl time.Duration) *RedisAuthorCache {
	return &RedisAuthorCache{client: client, ttl: ttl}
}

func authorKey(userID string) string {
	return "author:" + userID
}

func (c *RedisAuthorCache) Get(ctx context.Context, userID string) (*domain.AuthorSummary, error) {
	data, err := c.client.Get(ctx, authorKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get author from cache: %w", err)
	}

	var author domain.AuthorSummary
	if err := json.Unmarshal(data, &author); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached author: %w", err)
	}

	return &author, nil
}

func (c *RedisAuthorCache) Set(ctx context.Context, author *domain.AuthorSummary) error {
	data, err := json.Marshal(author)
	if err != nil {
		return fmt.Errorf("failed to marshal author: %w", err)
	}

	if err := c.client.Set(ctx, authorKey(author.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache author: %w", err)
	}
	return nil
}
