// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package config

import (
	"errors"
	"fmt"
)

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks ranges and enum values.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateLogging,
		c.validateScheduler,
		c.validateTraining,
		c.validateCache,
		c.validateRegistry,
		c.validateArtifacts,
		c.validateStore,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RateLimitReqs < 0 {
		return errors.New("RATE_LIMIT_REQS must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func (c *Config) validateScheduler() error {
	if _, _, err := c.Scheduler.ClockTime(); err != nil {
		return fmt.Errorf("SCHEDULER_TIME_OF_DAY: %w", err)
	}
	if c.Scheduler.Cooldown <= 0 {
		return errors.New("SCHEDULER_COOLDOWN must be positive")
	}
	return nil
}

func (c *Config) validateTraining() error {
	t := c.Training
	switch {
	case t.MinSamples < 1:
		return errors.New("training.min_samples must be at least 1")
	case t.TestFraction <= 0 || t.TestFraction >= 1:
		return fmt.Errorf("training.test_fraction must be in (0,1), got %v", t.TestFraction)
	case t.Epochs < 1:
		return errors.New("training.epochs must be at least 1")
	case t.LearningRate <= 0:
		return errors.New("training.learning_rate must be positive")
	case t.L2 < 0 || t.RidgeL2 < 0:
		return errors.New("training.l2 and training.ridge_l2 must not be negative")
	case t.KNNNeighbors < 1:
		return errors.New("training.knn_neighbors must be at least 1")
	case t.ImprovementThreshold < 0:
		return errors.New("training.improvement_threshold must not be negative")
	case t.TieTolerance < 0:
		return errors.New("training.tie_tolerance must not be negative")
	case t.PayCeiling <= 0:
		return errors.New("training.pay_ceiling must be positive")
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required when CACHE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be memory or redis, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return errors.New("CACHE_TTL must be positive")
	}
	return nil
}

func (c *Config) validateRegistry() error {
	switch c.Registry.Backend {
	case "badger":
		if c.Registry.BadgerPath == "" {
			return errors.New("BADGER_PATH is required when REGISTRY_BACKEND=badger")
		}
	case "mlflow":
		if c.Registry.MLflowURL == "" {
			return errors.New("MLFLOW_TRACKING_URI is required when REGISTRY_BACKEND=mlflow")
		}
	default:
		return fmt.Errorf("REGISTRY_BACKEND must be badger or mlflow, got %q", c.Registry.Backend)
	}
	if c.Registry.BreakerMaxFailures == 0 {
		return errors.New("registry.breaker_max_failures must be at least 1")
	}
	return nil
}

func (c *Config) validateArtifacts() error {
	switch c.Artifacts.Backend {
	case "file":
		if c.Artifacts.LocalDir == "" {
			return errors.New("ARTIFACTS_DIR is required when ARTIFACTS_BACKEND=file")
		}
	case "minio":
		if c.Artifacts.MinioEndpoint == "" || c.Artifacts.MinioBucket == "" {
			return errors.New("MINIO_ENDPOINT and MINIO_BUCKET are required when ARTIFACTS_BACKEND=minio")
		}
	default:
		return fmt.Errorf("ARTIFACTS_BACKEND must be file or minio, got %q", c.Artifacts.Backend)
	}
	return nil
}

func (c *Config) validateStore() error {
	if c.Store.Path == "" {
		return errors.New("DUCKDB_PATH is required")
	}
	return nil
}
