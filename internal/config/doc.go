// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

/*
Package config loads Jobmatch configuration with koanf v2.

# Configuration Sources

Layers are applied in order, later layers overriding earlier ones:
 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, then config.yaml, config.yml,
    /etc/jobmatch/config.yaml
 3. Environment variables listed in envMappings

# Sections

  - server: HTTP harness bind address, timeout, CORS and rate limit
  - logging: zerolog level, format and caller
  - scheduler: daily training time, cooldown after failures, startup run
  - training: sample thresholds, split, optimizer and promotion thresholds
  - cache: production model cache backend (memory or redis) and TTL
  - registry: model registry backend (badger or mlflow) and circuit breaker
  - artifacts: model artifact storage (file or minio)
  - store: DuckDB document store path and optional seed file
  - events: in-process lifecycle event bus

# Environment Variables

Common overrides:
  - HTTP_PORT, HTTP_HOST
  - LOG_LEVEL, LOG_FORMAT
  - SCHEDULER_ENABLED, SCHEDULER_TIME_OF_DAY
  - TRAINING_MIN_SAMPLES, TRAINING_SEED
  - CACHE_BACKEND, CACHE_TTL, REDIS_ADDR
  - REGISTRY_BACKEND, MLFLOW_TRACKING_URI, BADGER_PATH
  - ARTIFACTS_BACKEND, ARTIFACTS_DIR, MINIO_ENDPOINT, MINIO_BUCKET
  - DUCKDB_PATH, STORE_SEED_FILE

Config is immutable after Load and safe for concurrent reads.
*/
package config
