// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package modelcache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/jobmatch/internal/ml"
	"github.com/tomtom215/jobmatch/internal/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testBundle(mt models.ModelType) *ml.Bundle {
	return &ml.Bundle{ModelType: mt, Estimator: &ml.MeanRegressor{Mean: 20}}
}

func TestMemoryCache_HitWithinTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	c := NewMemoryCache(time.Hour).WithClock(clock.Now)
	ctx := context.Background()

	set := c.Set(ctx, models.JobRecommendation, testBundle(models.JobRecommendation), "3")
	clock.Advance(10 * time.Minute)

	first, ok := c.Get(ctx, models.JobRecommendation)
	if !ok {
		t.Fatal("expected hit")
	}
	second, ok := c.Get(ctx, models.JobRecommendation)
	if !ok {
		t.Fatal("expected second hit")
	}
	if first != set || second != set {
		t.Error("Get should return the cached instance")
	}
	if first.Version != "3" {
		t.Errorf("Version = %s, want 3", first.Version)
	}
}

func TestMemoryCache_LazyExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	c := NewMemoryCache(time.Hour).WithClock(clock.Now)
	ctx := context.Background()

	c.Set(ctx, models.JobPayPrediction, testBundle(models.JobPayPrediction), "1")
	clock.Advance(time.Hour)

	if c.Len() != 1 {
		t.Fatalf("expired entry swept before read: len = %d", c.Len())
	}
	if _, ok := c.Get(ctx, models.JobPayPrediction); ok {
		t.Fatal("expected miss at TTL boundary")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry kept after read: len = %d", c.Len())
	}
}

func TestMemoryCache_InvalidateIsPerType(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	ctx := context.Background()
	for _, mt := range models.AllModelTypes() {
		c.Set(ctx, mt, testBundle(mt), "1")
	}

	c.Invalidate(ctx, models.JobRecommendation)

	if _, ok := c.Get(ctx, models.JobRecommendation); ok {
		t.Error("invalidated type still cached")
	}
	for _, mt := range []models.ModelType{models.StudentRecommendation, models.JobPayPrediction} {
		if _, ok := c.Get(ctx, mt); !ok {
			t.Errorf("%s evicted by unrelated invalidation", mt)
		}
	}

	c.InvalidateAll(ctx)
	if c.Len() != 0 {
		t.Errorf("len after InvalidateAll = %d", c.Len())
	}
}

func TestMemoryCache_DefaultTTL(t *testing.T) {
	c := NewMemoryCache(0)
	if c.ttl != DefaultTTL {
		t.Errorf("ttl = %v, want %v", c.ttl, DefaultTTL)
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			mt := models.AllModelTypes()[i%3]
			for j := 0; j < 100; j++ {
				switch j % 3 {
				case 0:
					c.Set(ctx, mt, testBundle(mt), "1")
				case 1:
					c.Get(ctx, mt)
				default:
					c.Invalidate(ctx, mt)
				}
			}
		}(i)
	}
	wg.Wait()
}
