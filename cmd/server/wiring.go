// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package main

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/jobmatch/internal/artifacts"
	"github.com/tomtom215/jobmatch/internal/config"
	"github.com/tomtom215/jobmatch/internal/events"
	"github.com/tomtom215/jobmatch/internal/modelcache"
	"github.com/tomtom215/jobmatch/internal/registry"
	"github.com/tomtom215/jobmatch/internal/store"
)

// cleanup collects close functions and runs them in reverse order.
type cleanup []func()

func (c *cleanup) add(fn func()) { *c = append(*c, fn) }

func (c cleanup) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func openStore(ctx context.Context, cfg config.StoreConfig, logger zerolog.Logger, done *cleanup) (*store.DB, error) {
	db, err := store.Open(ctx, cfg.Path)
	if err != nil {
		return nil, err
	}
	done.add(func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing store")
		}
	})

	if cfg.SeedFile != "" {
		if err := db.Seed(ctx, cfg.SeedFile); err != nil {
			return nil, fmt.Errorf("seed store: %w", err)
		}
		logger.Info().Str("seed_file", cfg.SeedFile).Msg("Store seeded")
	}
	return db, nil
}

// openArtifacts returns the local artifact copy and the store the registry
// writes to. With the file backend they are the same.
func openArtifacts(ctx context.Context, cfg config.ArtifactsConfig) (*artifacts.FileStore, artifacts.Store, error) {
	local, err := artifacts.NewFileStore(cfg.LocalDir)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Backend != "minio" {
		return local, local, nil
	}
	remote, err := artifacts.NewMinioStore(ctx, artifacts.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, nil, err
	}
	return local, remote, nil
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func openRegistry(cfg config.RegistryConfig, store artifacts.Store, logger zerolog.Logger, done *cleanup) (registry.Client, error) {
	var client registry.Client
	switch cfg.Backend {
	case "mlflow":
		client = registry.NewMLflowClient(cfg.MLflowURL, cfg.Timeout)
		logger.Info().Str("url", cfg.MLflowURL).Msg("Using MLflow model registry")
	default:
		db, err := registry.OpenBadger(cfg.BadgerPath)
		if err != nil {
			return nil, err
		}
		done.add(func() {
			if err := db.Close(); err != nil {
				logger.Error().Err(err).Msg("Error closing registry")
			}
		})
		client = registry.NewBadgerClient(db, store)
		logger.Info().Str("path", cfg.BadgerPath).Msg("Using embedded model registry")
	}

	return registry.NewBreaker(client, registry.BreakerSettings{
		Name:        "model-registry",
		MaxFailures: cfg.BreakerMaxFailures,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
	}, logger), nil
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func openCache(ctx context.Context, cfg config.CacheConfig, logger zerolog.Logger, done *cleanup) (modelcache.Cache, error) {
	if cfg.Backend != "redis" {
		return modelcache.NewMemoryCache(cfg.TTL), nil
	}
	client, err := modelcache.DialRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	done.add(func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing redis client")
		}
	})
	logger.Info().Str("addr", cfg.RedisAddr).Msg("Using redis model cache")
	return modelcache.NewRedisCache(client, cfg.KeyPrefix, cfg.TTL, logger), nil
}

// openEvents returns the lifecycle publisher and, when events are enabled,
// the subscriber side of the same bus.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func openEvents(cfg config.EventsConfig, logger zerolog.Logger, done *cleanup) (events.Publisher, message.Subscriber) {
	if !cfg.Enabled {
		return events.Discard{}, nil
	}
	bus := events.NewGoChannel(logger)
	done.add(func() {
		if err := bus.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing event bus")
		}
	})
	return events.NewTopicPublisher(bus, cfg.Topic, logger), bus
}
