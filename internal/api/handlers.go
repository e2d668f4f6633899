// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/jobmatch/internal/apperr"
	"github.com/tomtom215/jobmatch/internal/lifecycle"
	"github.com/tomtom215/jobmatch/internal/models"
)

// Trainer runs training cycles.
type Trainer interface {
	TrainAll(ctx context.Context) models.TrainAllResult
	TrainOne(ctx context.Context, mt models.ModelType) models.TrainingResult
	Status() models.TrainingStatus
}

// Registry manages registered model versions.
type Registry interface {
	ListTypes() []lifecycle.Definition
	GetVersions(ctx context.Context, mt models.ModelType) ([]models.ModelVersion, error)
	GetProduction(ctx context.Context, mt models.ModelType) (*models.ModelVersion, error)
	Promote(ctx context.Context, mt models.ModelType, version string) (*models.ModelVersion, error)
	Rollback(ctx context.Context, mt models.ModelType) (*models.ModelVersion, error)
	InvalidateCache(ctx context.Context, mt models.ModelType) error
}

// Recommender scores recommendations and pay.
type Recommender interface {
	RecommendJobs(ctx context.Context, studentID string, mode models.ScoringMode, limit int) ([]models.RecommendationResult, error)
	RecommendStudents(ctx context.Context, jobID string, mode models.ScoringMode, limit int) ([]models.RecommendationResult, error)
	PredictPay(ctx context.Context, algorithm string, in models.PayInput) (*models.PayPrediction, error)
}

// Handler serves the HTTP API.
type Handler struct {
	trainer     Trainer
	registry    Registry
	recommender Recommender

	// trainTimeout bounds detached training requests.
	trainTimeout time.Duration
	startTime    time.Time
}

// NewHandler creates a Handler. A zero trainTimeout leaves training
// requests unbounded.
func NewHandler(trainer Trainer, registry Registry, recommender Recommender, trainTimeout time.Duration) *Handler {
	return &Handler{
		trainer:      trainer,
		registry:     registry,
		recommender:  recommender,
		trainTimeout: trainTimeout,
		startTime:    time.Now(),
	}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status     string                `json:"status"`
	Uptime     float64               `json:"uptime_seconds"`
	Training   models.TrainingStatus `json:"training"`
	ModelTypes int                   `json:"model_types"`
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(HealthResponse{
		Status:     "healthy",
		Uptime:     time.Since(h.startTime).Seconds(),
		Training:   h.trainer.Status(),
		ModelTypes: len(h.registry.ListTypes()),
	})
}

// modelType reads and validates the {type} path parameter.
func modelType(r *http.Request) (models.ModelType, error) {
	mt := models.ModelType(chi.URLParam(r, "type"))
	if _, err := lifecycle.Lookup(mt); err != nil {
		return "", err
	}
	return mt, nil
}

// limitParam parses ?limit=, 0 when absent.
func limitParam(r *http.Request) (int, error) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, apperr.E(apperr.KindInvalidInput, "api.limit", "limit must be a non-negative integer, got %q", s)
	}
	return n, nil
}

// detach runs training work on a context that survives the client going
// away but keeps the request's values for logging.
func (h *Handler) detach(r *http.Request) (context.Context, context.CancelFunc) {
	ctx := context.WithoutCancel(r.Context())
	if h.trainTimeout > 0 {
		return context.WithTimeout(ctx, h.trainTimeout)
	}
	return context.WithCancel(ctx)
}
