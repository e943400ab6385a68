// Package cache provides a Redis read-through cache for mint metadata.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/anandameyer/Raydium-Concentrated-Liquidity-Pool-Indexer/internal/model"
)

const defaultTTL = 24 * time.Hour

// Config represents Redis client configuration options.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Resolver resolves mint metadata.
type Resolver interface {
	Resolve(ctx context.Context, mint string) (model.TokenMeta, error)
}

// TokenMetaCache serves metadata from Redis and falls back to the wrapped
// resolver on a miss. Redis failures degrade to the fallback.
type TokenMetaCache struct {
	client *redis.Client
	next   Resolver
	ttl    time.Duration
	logger *zap.Logger
}

// New wraps next with a Redis cache. An empty address disables caching.
func New(cfg Config, next Resolver, logger *zap.Logger) *TokenMetaCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	c := &TokenMetaCache{next: next, ttl: ttl, logger: logger}
	if cfg.Addr != "" {
		c.client = redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	}
	return c
}

// Ping checks connectivity when caching is enabled.
func (c *TokenMetaCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

func (c *TokenMetaCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func key(mint string) string {
	return fmt.Sprintf("token:%s:meta", mint)
}

// Resolve returns cached metadata or resolves and caches it. Errors from the
// wrapped resolver, including not found, are returned uncached.
func (c *TokenMetaCache) Resolve(ctx context.Context, mint string) (model.TokenMeta, error) {
	if c.next == nil {
		return model.TokenMeta{}, fmt.Errorf("metadata resolver is nil")
	}
	if meta, ok := c.get(ctx, mint); ok {
		return meta, nil
	}

	meta, err := c.next.Resolve(ctx, mint)
	if err != nil {
		return model.TokenMeta{}, err
	}
	c.set(ctx, mint, meta)
	return meta, nil
}

func (c *TokenMetaCache) get(ctx context.Context, mint string) (model.TokenMeta, bool) {
	if c.client == nil {
		return model.TokenMeta{}, false
	}
	payload, err := c.client.Get(ctx, key(mint)).Result()
	if errors.Is(err, redis.Nil) {
		return model.TokenMeta{}, false
	}
	if err != nil {
		c.logger.Warn("metadata cache read failed", zap.String("mint", mint), zap.Error(err))
		return model.TokenMeta{}, false
	}

	var meta model.TokenMeta
	if err := json.Unmarshal([]byte(payload), &meta); err != nil {
		c.logger.Warn("metadata cache entry invalid", zap.String("mint", mint), zap.Error(err))
		return model.TokenMeta{}, false
	}
	return meta, true
}

func (c *TokenMetaCache) set(ctx context.Context, mint string, meta model.TokenMeta) {
	if c.client == nil {
		return
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(mint), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("metadata cache write failed", zap.String("mint", mint), zap.Error(err))
	}
}
