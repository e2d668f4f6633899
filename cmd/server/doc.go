// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

/*
Command server runs the Jobmatch model lifecycle and recommendation service.

# Startup

 1. Configuration: defaults, optional config.yaml, then environment (koanf v2)
 2. Logging: zerolog, json or console
 3. Store: DuckDB document store, optionally seeded from a JSON file
 4. Artifacts: local directory, plus MinIO when configured
 5. Registry: embedded BadgerDB or an MLflow tracking server, behind a
    circuit breaker
 6. Model cache: in-process or Redis
 7. Events: in-process watermill bus feeding the model reloader
 8. Orchestrator, scheduler, scorer and HTTP API
 9. Supervisor tree: event consumers, training services, HTTP server

# Configuration

Environment variables override the config file. Examples:

	SERVER_PORT=8085
	SCHEDULER_TIME_OF_DAY=03:00
	REGISTRY_BACKEND=mlflow
	REGISTRY_MLFLOW_URL=http://mlflow:5000
	CACHE_BACKEND=redis
	CACHE_REDIS_ADDR=redis:6379
	ARTIFACTS_BACKEND=minio
	STORE_SEED_FILE=/data/seed.json

CONFIG_PATH selects the config file.

# Signals

SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
server gracefully and lets a running training cycle observe cancellation
between model types.
*/
package main
