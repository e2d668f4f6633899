// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/jobmatch/config.yaml",
	"/etc/jobmatch/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8085,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Scheduler: SchedulerConfig{
			Enabled:        true,
			TimeOfDay:      "03:00",
			Cooldown:       5 * time.Minute,
			TrainOnStartup: false,
		},
		Training: TrainingConfig{
			MinSamples:           10,
			TestFraction:         0.2,
			Seed:                 42,
			Epochs:               400,
			LearningRate:         0.5,
			L2:                   0.001,
			RidgeL2:              0.1,
			KNNNeighbors:         5,
			ImprovementThreshold: 0.05,
			TieTolerance:         0.01,
			PayCeiling:           50,
		},
		Cache: CacheConfig{
			Backend:   "memory",
			TTL:       time.Hour,
			RedisAddr: "localhost:6379",
			RedisDB:   0,
			KeyPrefix: "jobmatch:model:",
		},
		Registry: RegistryConfig{
			Backend:            "badger",
			BadgerPath:         "/data/registry",
			MLflowURL:          "http://localhost:5000",
			Timeout:            30 * time.Second,
			BreakerMaxFailures: 5,
			BreakerInterval:    time.Minute,
			BreakerTimeout:     30 * time.Second,
		},
		Artifacts: ArtifactsConfig{
			Backend:     "file",
			LocalDir:    "/data/artifacts",
			MinioBucket: "jobmatch-models",
		},
		Store: StoreConfig{
			Path: "/data/jobmatch.duckdb",
		},
		Events: EventsConfig{
			Enabled: true,
			Topic:   "model.lifecycle",
		},
	}
}

// Load reads configuration in three layers:
//
//  1. Defaults
//  2. Config file (optional)
//  3. Environment variables
func Load() (*Config, error) {
	return load(findConfigFile())
}

// LoadFile is Load with an explicit config file path.
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// SCHEDULER_TIME_OF_DAY -> scheduler.time_of_day
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

var envMappings = map[string]string{
	"http_host":              "server.host",
	"http_port":              "server.port",
	"http_timeout":           "server.timeout",
	"cors_origins":           "server.cors_origins",
	"rate_limit_reqs":        "server.rate_limit_reqs",
	"rate_limit_window":      "server.rate_limit_window",
	"log_level":              "logging.level",
	"log_format":             "logging.format",
	"log_caller":             "logging.caller",
	"scheduler_enabled":      "scheduler.enabled",
	"scheduler_time_of_day":  "scheduler.time_of_day",
	"scheduler_cooldown":     "scheduler.cooldown",
	"train_on_startup":       "scheduler.train_on_startup",
	"training_min_samples":   "training.min_samples",
	"training_test_fraction": "training.test_fraction",
	"training_seed":          "training.seed",
	"training_epochs":        "training.epochs",
	"training_pay_ceiling":   "training.pay_ceiling",
	"cache_backend":          "cache.backend",
	"cache_ttl":              "cache.ttl",
	"redis_addr":             "cache.redis_addr",
	"redis_db":               "cache.redis_db",
	"registry_backend":       "registry.backend",
	"badger_path":            "registry.badger_path",
	"mlflow_tracking_uri":    "registry.mlflow_url",
	"registry_timeout":       "registry.timeout",
	"artifacts_backend":      "artifacts.backend",
	"artifacts_dir":          "artifacts.local_dir",
	"minio_endpoint":         "artifacts.minio_endpoint",
	"minio_access_key":       "artifacts.minio_access_key",
	"minio_secret_key":       "artifacts.minio_secret_key",
	"minio_bucket":           "artifacts.minio_bucket",
	"minio_use_ssl":          "artifacts.minio_use_ssl",
	"duckdb_path":            "store.path",
	"store_seed_file":        "store.seed_file",
	"events_enabled":         "events.enabled",
}

// envTransformFunc maps environment variable names to koanf paths. Unmapped
// variables return "" and are ignored.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
