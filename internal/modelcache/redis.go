// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package modelcache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tomtom215/jobmatch/internal/ml"
	"github.com/tomtom215/jobmatch/internal/models"
)

// DefaultKeyPrefix namespaces model cache keys in Redis.
const DefaultKeyPrefix = "jobmatch:model:"

// redisEntry is the value stored under each key.
type redisEntry struct {
	Version   string    `json:"version"`
	ExpiresAt time.Time `json:"expires_at"`
	Artifact  []byte    `json:"artifact"`
}

// RedisCache is a Cache shared through Redis. The serialized bundle lives in
// Redis with a TTL; a decoded copy is kept locally and reused while Redis
// still holds the same version and deadline. Redis failures are logged and
// read as misses.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger

	mu    sync.RWMutex
	local map[models.ModelType]*Entry
}

// NewRedisCache wraps client. An empty prefix uses DefaultKeyPrefix.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration, logger zerolog.Logger) *RedisCache {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		now:    time.Now,
		logger: logger.With().Str("component", "model_cache").Str("backend", "redis").Logger(),
		local:  make(map[models.ModelType]*Entry),
	}
}

// DialRedis connects to addr and verifies the connection.
func DialRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close() //nolint:errcheck // ping error takes precedence
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

func (c *RedisCache) key(mt models.ModelType) string {
	return c.prefix + string(mt)
}

func (c *RedisCache) dropLocal(mt models.ModelType) {
	c.mu.Lock()
	delete(c.local, mt)
	c.mu.Unlock()
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, mt models.ModelType) (*Entry, bool) {
	raw, err := c.client.Get(ctx, c.key(mt)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.dropLocal(mt)
		return nil, false
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("model_type", string(mt)).Msg("redis cache read failed")
		return nil, false
	}

	var stored redisEntry
	if err := json.Unmarshal(raw, &stored); err != nil {
		c.logger.Warn().Err(err).Str("model_type", string(mt)).Msg("corrupt cache entry")
		c.Invalidate(ctx, mt)
		return nil, false
	}
	if !c.now().Before(stored.ExpiresAt) {
		c.dropLocal(mt)
		return nil, false
	}

	c.mu.RLock()
	local, ok := c.local[mt]
	c.mu.RUnlock()
	if ok && local.Version == stored.Version && local.ExpiresAt.Equal(stored.ExpiresAt) {
		return local, true
	}

	bundle, err := ml.DecodeBundle(stored.Artifact)
	if err != nil {
		c.logger.Warn().Err(err).Str("model_type", string(mt)).Msg("cached artifact does not decode")
		c.Invalidate(ctx, mt)
		return nil, false
	}
	entry := &Entry{Bundle: bundle, Version: stored.Version, ExpiresAt: stored.ExpiresAt}
	c.mu.Lock()
	c.local[mt] = entry
	c.mu.Unlock()
	return entry, true
}

// Set implements Cache. The entry is always cached locally; a failed Redis
// write only costs other instances a registry round-trip.
func (c *RedisCache) Set(ctx context.Context, mt models.ModelType, bundle *ml.Bundle, version string) *Entry {
	expires := c.now().Add(c.ttl).UTC()
	entry := &Entry{Bundle: bundle, Version: version, ExpiresAt: expires}

	c.mu.Lock()
	c.local[mt] = entry
	c.mu.Unlock()

	artifact, err := bundle.Encode()
	if err != nil {
		c.logger.Warn().Err(err).Str("model_type", string(mt)).Msg("encode model for cache")
		return entry
	}
	data, err := json.Marshal(redisEntry{Version: version, ExpiresAt: expires, Artifact: artifact})
	if err != nil {
		c.logger.Warn().Err(err).Str("model_type", string(mt)).Msg("marshal cache entry")
		return entry
	}
	if err := c.client.Set(ctx, c.key(mt), data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("model_type", string(mt)).Msg("redis cache write failed")
	}
	return entry
}

// Invalidate implements Cache.
func (c *RedisCache) Invalidate(ctx context.Context, mt models.ModelType) {
	c.dropLocal(mt)
	if err := c.client.Del(ctx, c.key(mt)).Err(); err != nil {
		c.logger.Warn().Err(err).Str("model_type", string(mt)).Msg("redis cache delete failed")
	}
}

// InvalidateAll implements Cache.
func (c *RedisCache) InvalidateAll(ctx context.Context) {
	c.mu.Lock()
	c.local = make(map[models.ModelType]*Entry)
	c.mu.Unlock()

	keys := make([]string, 0, len(models.AllModelTypes()))
	for _, mt := range models.AllModelTypes() {
		keys = append(keys, c.key(mt))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("redis cache delete failed")
	}
}
