// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

/*
Package metrics defines the Prometheus instrumentation for Jobmatch.

All collectors are registered on the default registry through promauto and
exposed at /metrics by the HTTP harness.

# Training

  - jobmatch_training_runs_total{model_type,status}: status is finished or failed
  - jobmatch_training_duration_seconds{model_type}
  - jobmatch_training_in_progress: 1 while the scheduler holds the training token
  - jobmatch_promotions_total{model_type,decision}: promoted, rejected, manual, rollback

# Serving

  - jobmatch_model_cache_requests_total{model_type,result}: hit, miss, expired
  - jobmatch_recommendations_total{kind,mode}
  - jobmatch_recommendation_duration_seconds{kind}

# Resilience

  - jobmatch_registry_circuit_breaker_state{name}: 0 closed, 1 half-open, 2 open
  - jobmatch_registry_circuit_breaker_requests_total{name,result}

# HTTP

  - jobmatch_api_requests_total{method,endpoint,status}
  - jobmatch_api_request_duration_seconds{method,endpoint}
*/
package metrics
