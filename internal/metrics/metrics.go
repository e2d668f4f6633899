// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Training Metrics
	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmatch_training_runs_total",
			Help: "Total number of training runs by model type and final status",
		},
		[]string{"model_type", "status"},
	)

	TrainingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobmatch_training_duration_seconds",
			Help:    "Duration of a single model type's train-and-evaluate cycle",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300},
		},
		[]string{"model_type"},
	)

	TrainingInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jobmatch_training_in_progress",
			Help: "1 while a training cycle holds the exclusive training token",
		},
	)

	Promotions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmatch_promotions_total",
			Help: "Promotion decisions by model type",
		},
		[]string{"model_type", "decision"},
	)

	// Serving Metrics
	ModelCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmatch_model_cache_requests_total",
			Help: "Production model cache lookups by result",
		},
		[]string{"model_type", "result"},
	)

	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmatch_recommendations_total",
			Help: "Recommendation requests by kind and scoring mode",
		},
		[]string{"kind", "mode"},
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobmatch_recommendation_duration_seconds",
			Help:    "Duration of recommendation requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jobmatch_registry_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmatch_registry_circuit_breaker_requests_total",
			Help: "Total number of requests through the registry circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobmatch_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobmatch_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordTraining records one model type's training outcome.
func RecordTraining(modelType string, success bool, duration time.Duration) {
	status := "finished"
	if !success {
		status = "failed"
	}
	TrainingRuns.WithLabelValues(modelType, status).Inc()
	TrainingDuration.WithLabelValues(modelType).Observe(duration.Seconds())
}

// RecordPromotion records a promotion decision.
func RecordPromotion(modelType, decision string) {
	Promotions.WithLabelValues(modelType, decision).Inc()
}

// SetTrainingInProgress flips the in-progress gauge.
func SetTrainingInProgress(active bool) {
	if active {
		TrainingInProgress.Set(1)
		return
	}
	TrainingInProgress.Set(0)
}

// RecordCacheLookup records a model cache lookup; result is hit, miss or expired.
func RecordCacheLookup(modelType, result string) {
	ModelCacheRequests.WithLabelValues(modelType, result).Inc()
}

// RecordRecommendation records one recommendation request.
func RecordRecommendation(kind, mode string, duration time.Duration) {
	Recommendations.WithLabelValues(kind, mode).Inc()
	RecommendationDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
