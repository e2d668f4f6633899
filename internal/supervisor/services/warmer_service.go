// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/jobmatch/internal/modelcache"
	"github.com/tomtom215/jobmatch/internal/models"
)

// ModelLoader loads deployed models through the model cache.
type ModelLoader interface {
	LoadProductionModel(ctx context.Context, mt models.ModelType) (*modelcache.Entry, error)
}

// WarmerServiceConfig holds configuration for the cache warmer.
type WarmerServiceConfig struct {
	// Interval between warm passes. Zero warms once at startup and then
	// idles until shutdown.
	Interval time.Duration

	// Timeout bounds one pass. Default: 1m
	Timeout time.Duration
}

// WarmerService keeps the production model of every type loaded so the
// first recommendation after a restart or a cache expiry does not pay the
// registry round trip.
type WarmerService struct {
	loader ModelLoader
	config WarmerServiceConfig
	logger zerolog.Logger
}

// NewWarmerService creates a cache warmer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewWarmerService(loader ModelLoader, cfg WarmerServiceConfig, logger zerolog.Logger) *WarmerService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	return &WarmerService{
		loader: loader,
		config: cfg,
		logger: logger.With().Str("service", "model-warmer").Logger(),
	}
}

// Serve implements suture.Service.
func (s *WarmerService) Serve(ctx context.Context) error {
	s.Warm(ctx)

	if s.config.Interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Warm(ctx)
		}
	}
}

// Warm loads every model type once and reports how many are deployed.
// Failures are logged; a missing model is not a failure.
func (s *WarmerService) Warm(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	loaded := 0
	for _, mt := range models.AllModelTypes() {
		entry, err := s.loader.LoadProductionModel(ctx, mt)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Str("model_type", string(mt)).Msg("warming production model failed")
		case entry != nil:
			loaded++
		}
	}
	s.logger.Debug().
		Int("loaded", loaded).
		Dur("duration", time.Since(start)).
		Msg("model cache warmed")
	return loaded
}

// String returns the service name for logging.
func (s *WarmerService) String() string {
	return "model-warmer"
}
