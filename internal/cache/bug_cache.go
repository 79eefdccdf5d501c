// Package cache keeps recently read bugs close to the API.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/bug-tracker/internal/domain"
)

const keyPrefix = "bug:"

// BugCache is a best-effort read-through cache for single bugs.
// Failures are logged and reported as misses.
type BugCache interface {
	Get(ctx context.Context, id string) (*domain.Bug, bool)
	Set(ctx context.Context, bug *domain.Bug)
	Invalidate(ctx context.Context, id string)
}

type redisBugCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisBugCache builds a cache on top of an existing client.
func NewRedisBugCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) BugCache {
	return &redisBugCache{client: client, ttl: ttl, logger: logger}
}

func (c *redisBugCache) Get(ctx context.Context, id string) (*domain.Bug, bool) {
	raw, err := c.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("bug cache get failed", zap.String("bug_id", id), zap.Error(err))
		}
		return nil, false
	}
	var bug domain.Bug
	if err := json.Unmarshal(raw, &bug); err != nil {
		c.logger.Warn("bug cache entry corrupt", zap.String("bug_id", id), zap.Error(err))
		return nil, false
	}
	return &bug, true
}

func (c *redisBugCache) Set(ctx context.Context, bug *domain.Bug) {
	raw, err := json.Marshal(bug)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, keyPrefix+bug.ID, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("bug cache set failed", zap.String("bug_id", bug.ID), zap.Error(err))
	}
}

func (c *redisBugCache) Invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		c.logger.Warn("bug cache invalidate failed", zap.String("bug_id", id), zap.Error(err))
	}
}
