// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

// Package modelcache holds the deployed model for each model type with a
// fixed time-to-live.
//
// Expiry is lazy: an entry past its deadline is dropped on the next Get and
// there is no background sweep. Entries are invalidated eagerly on promotion,
// rollback and manual request.
//
// MemoryCache is the single-instance implementation. RedisCache shares the
// serialized artifact across instances and keeps a decoded local copy so a
// hit does not deserialize the model again.
package modelcache

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/jobmatch/internal/ml"
	"github.com/tomtom215/jobmatch/internal/models"
)

// DefaultTTL is the lifetime of a cached model.
const DefaultTTL = time.Hour

// Entry is a cached deployed model.
type Entry struct {
	Bundle    *ml.Bundle
	Version   string
	ExpiresAt time.Time
}

// Expired reports whether the entry is past its deadline at now.
func (e *Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Cache stores one deployed model per model type. Implementations are safe
// for concurrent use.
type Cache interface {
	// Get returns the live entry for mt. Repeated calls within the TTL return
	// the same *Entry.
	Get(ctx context.Context, mt models.ModelType) (*Entry, bool)

	// Set caches bundle as version with a fresh TTL and returns the entry.
	Set(ctx context.Context, mt models.ModelType, bundle *ml.Bundle, version string) *Entry

	// Invalidate drops the entry for mt only.
	Invalidate(ctx context.Context, mt models.ModelType)

	// InvalidateAll drops every entry.
	InvalidateAll(ctx context.Context)
}

// MemoryCache is an in-process Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[models.ModelType]*Entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates a cache whose entries live for ttl (DefaultTTL when
// ttl is not positive).
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{
		entries: make(map[models.ModelType]*Entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	return c
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, mt models.ModelType) (*Entry, bool) {
	c.mu.RLock()
	entry, exists := c.entries[mt]
	c.mu.RUnlock()

	if !exists {
		return nil, false
	}

	if entry.Expired(c.now()) {
		c.mu.Lock()
		// Only drop the entry we saw; a concurrent Set may have replaced it.
		if c.entries[mt] == entry {
			delete(c.entries, mt)
		}
		c.mu.Unlock()
		return nil, false
	}
	return entry, true
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, mt models.ModelType, bundle *ml.Bundle, version string) *Entry {
	entry := &Entry{
		Bundle:    bundle,
		Version:   version,
		ExpiresAt: c.now().Add(c.ttl),
	}
	c.mu.Lock()
	c.entries[mt] = entry
	c.mu.Unlock()
	return entry
}

// Invalidate implements Cache.
func (c *MemoryCache) Invalidate(_ context.Context, mt models.ModelType) {
	c.mu.Lock()
	delete(c.entries, mt)
	c.mu.Unlock()
}

// InvalidateAll implements Cache.
func (c *MemoryCache) InvalidateAll(_ context.Context) {
	c.mu.Lock()
	c.entries = make(map[models.ModelType]*Entry)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
