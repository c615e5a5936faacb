package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/studytrack/core/internal/infrastructure/logger"
)

// RedisSubjectCache caches each owner's distinct-subject list in Redis. Cache
// trouble is never surfaced to callers: a failed read is a miss and a failed
// write is dropped, so the repository remains the source of truth.
type RedisSubjectCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// NewRedisSubjectCache creates a subject cache with the given entry TTL.
func NewRedisSubjectCache(client *redis.Client, ttl time.Duration, logger *logger.Logger) *RedisSubjectCache {
	return &RedisSubjectCache{client: client, ttl: ttl, logger: logger}
}

func subjectKey(owner uuid.UUID) string {
	return "subjects:" + owner.String()
}

// Get returns the cached subject list for the owner, if present.
func (c *RedisSubjectCache) Get(ctx context.Context, owner uuid.UUID) ([]string, bool) {
	data, err := c.client.Get(ctx, subjectKey(owner)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Subject cache read failed", "error", err, "owner_id", owner)
		}
		return nil, false
	}

	var subjects []string
	if err := json.Unmarshal(data, &subjects); err != nil {
		c.logger.Warn("Subject cache entry corrupt", "error", err, "owner_id", owner)
		return nil, false
	}

	return subjects, true
}

// Set stores the owner's subject list.
func (c *RedisSubjectCache) Set(ctx context.Context, owner uuid.UUID, subjects []string) {
	data, err := json.Marshal(subjects)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, subjectKey(owner), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Subject cache write failed", "error", err, "owner_id", owner)
	}
}

// Invalidate drops the owner's cached subject list. Called after every task
// mutation since any of them can change the distinct set.
func (c *RedisSubjectCache) Invalidate(ctx context.Context, owner uuid.UUID) {
	if err := c.client.Del(ctx, subjectKey(owner)).Err(); err != nil {
		c.logger.Warn("Subject cache invalidation failed", "error", err, "owner_id", owner)
	}
}

// NoopSubjectCache satisfies ports.SubjectCache when caching is disabled.
type NoopSubjectCache struct{}

func (NoopSubjectCache) Get(ctx context.Context, owner uuid.UUID) ([]string, bool) { return nil, false }
func (NoopSubjectCache) Set(ctx context.Context, owner uuid.UUID, subjects []string) {}
func (NoopSubjectCache) Invalidate(ctx context.Context, owner uuid.UUID)             {}
