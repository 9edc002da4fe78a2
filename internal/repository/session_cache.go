package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wahid-dev1/semina/internal/domain"
)

// SessionCache is the ephemeral session lookup. Read and delete failures are
// logged and reported as a miss. Write failures are returned so a session is
// never handed out without a live cache entry.
type SessionCache interface {
	Set(ctx context.Context, token string, entry domain.SessionEntry, ttl time.Duration) error
	Get(ctx context.Context, token string) (*domain.SessionEntry, bool)
	Delete(ctx context.Context, token string)
}

const sessionKeyPrefix = "session:"

// SessionKey is the cache key for a session token.
func SessionKey(token string) string {
	return sessionKeyPrefix + token
}

type redisSessionCache struct {
	client redis.UniversalClient
	logger *zap.Logger
}

// NewRedisSessionCache builds a SessionCache on client.
func NewRedisSessionCache(client redis.UniversalClient, logger *zap.Logger) SessionCache {
	return &redisSessionCache{client: client, logger: logger}
}

func (c *redisSessionCache) Set(ctx context.Context, token string, entry domain.SessionEntry, ttl time.Duration) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode session entry: %w", err)
	}
	if err := c.client.Set(ctx, SessionKey(token), payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache session: %w", err)
	}
	return nil
}

func (c *redisSessionCache) Get(ctx context.Context, token string) (*domain.SessionEntry, bool) {
	payload, err := c.client.Get(ctx, SessionKey(token)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("session cache get failed", zap.Error(err))
		}
		return nil, false
	}
	var entry domain.SessionEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		c.logger.Warn("session cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return &entry, true
}

func (c *redisSessionCache) Delete(ctx context.Context, token string) {
	if err := c.client.Del(ctx, SessionKey(token)).Err(); err != nil {
		c.logger.Error("session cache delete failed", zap.Error(err))
	}
}
