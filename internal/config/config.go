// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Training  TrainingConfig  `koanf:"training"`
	Cache     CacheConfig     `koanf:"cache"`
	Registry  RegistryConfig  `koanf:"registry"`
	Artifacts ArtifactsConfig `koanf:"artifacts"`
	Store     StoreConfig     `koanf:"store"`
	Events    EventsConfig    `koanf:"events"`
}

// ServerConfig holds HTTP harness settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	Caller bool `koanf:"caller"`
}

// SchedulerConfig controls the daily training loop.
type SchedulerConfig struct {
	Enabled bool `koanf:"enabled"`

	// TimeOfDay is the local wall-clock time of the daily run, "HH:MM".
	TimeOfDay string `koanf:"time_of_day"`

	// Cooldown is how long the loop waits after an unexpected failure.
	Cooldown time.Duration `koanf:"cooldown"`

	TrainOnStartup bool `koanf:"train_on_startup"`
}

// ClockTime parses TimeOfDay into hour and minute.
func (s SchedulerConfig) ClockTime() (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s.TimeOfDay), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("time_of_day %q must be HH:MM", s.TimeOfDay)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("time_of_day %q has invalid hour", s.TimeOfDay)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time_of_day %q has invalid minute", s.TimeOfDay)
	}
	return hour, minute, nil
}

// TrainingConfig holds data thresholds, optimizer settings and promotion thresholds.
type TrainingConfig struct {
	// MinSamples is the number of labeled samples below which learned
	// scoring falls back to the heuristic.
	MinSamples   int     `koanf:"min_samples"`
	TestFraction float64 `koanf:"test_fraction"`
	Seed         int64   `koanf:"seed"`
	Epochs       int     `koanf:"epochs"`
	LearningRate float64 `koanf:"learning_rate"`
	L2           float64 `koanf:"l2"`
	RidgeL2      float64 `koanf:"ridge_l2"`
	KNNNeighbors int     `koanf:"knn_neighbors"`

	ImprovementThreshold float64 `koanf:"improvement_threshold"`
	TieTolerance         float64 `koanf:"tie_tolerance"`

	// PayCeiling normalizes hourly pay into [0,1].
	PayCeiling float64 `koanf:"pay_ceiling"`
}

// CacheConfig selects the production model cache.
type CacheConfig struct {
	Backend   string        `koanf:"backend"` // memory or redis
	TTL       time.Duration `koanf:"ttl"`
	RedisAddr string        `koanf:"redis_addr"`
	RedisDB   int           `koanf:"redis_db"`
	KeyPrefix string        `koanf:"key_prefix"`
}

// RegistryConfig selects the model registry.
type RegistryConfig struct {
	Backend    string        `koanf:"backend"` // badger or mlflow
	BadgerPath string        `koanf:"badger_path"`
	MLflowURL  string        `koanf:"mlflow_url"`
	Timeout    time.Duration `koanf:"timeout"`

	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerInterval    time.Duration `koanf:"breaker_interval"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// ArtifactsConfig selects where model artifacts are written.
type ArtifactsConfig struct {
	Backend  string `koanf:"backend"` // file or minio
	LocalDir string `koanf:"local_dir"`

	MinioEndpoint  string `koanf:"minio_endpoint"`
	MinioAccessKey string `koanf:"minio_access_key"`
	MinioSecretKey string `koanf:"minio_secret_key"`
	MinioBucket    string `koanf:"minio_bucket"`
	MinioUseSSL    bool   `koanf:"minio_use_ssl"`
}

// StoreConfig points at the DuckDB document store.
type StoreConfig struct {
	Path string `koanf:"path"`

	// SeedFile is an optional JSON snapshot loaded into an empty store.
	SeedFile string `koanf:"seed_file"`
}

// EventsConfig controls the lifecycle event bus.
type EventsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Topic   string `koanf:"topic"`
}
