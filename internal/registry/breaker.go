// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/jobmatch/internal/apperr"
	"github.com/tomtom215/jobmatch/internal/metrics"
	"github.com/tomtom215/jobmatch/internal/models"
)

// BreakerSettings configures the registry circuit breaker.
type BreakerSettings struct {
	Name        string
	MaxFailures uint32        // consecutive failures that open the circuit
	Interval    time.Duration // closed-state count reset period
	Timeout     time.Duration // open-state duration before a half-open trial request
}

// Breaker decorates a Client with a circuit breaker. Only transient
// failures count against the circuit; not-found, conflict and invalid-input
// answers mean the registry is healthy.
type Breaker struct {
	next   Client
	cb     *gobreaker.CircuitBreaker[any]
	name   string
	logger zerolog.Logger
}

// NewBreaker wraps next.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBreaker(next Client, s BreakerSettings, logger zerolog.Logger) *Breaker {
	if s.Name == "" {
		s.Name = "model-registry"
	}
	if s.MaxFailures == 0 {
		s.MaxFailures = 5
	}
	logger = logger.With().Str("component", "registry_breaker").Str("breaker", s.Name).Logger()

	metrics.CircuitBreakerState.WithLabelValues(s.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			switch apperr.KindOf(err) {
			case apperr.KindNotFound, apperr.KindConflict, apperr.KindInvalidInput:
				return true
			default:
				return errors.Is(err, context.Canceled)
			}
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("registry circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &Breaker{next: next, cb: cb, name: s.Name, logger: logger}
}

// State returns the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func (b *Breaker) execute(op string, fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			return nil, apperr.Wrap(apperr.KindUnavailable, op, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

func castResult[T any](op string, result any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("%s: circuit breaker: unexpected result type %T", op, result)
	}
	return typed, nil
}

// GetOrCreateExperiment implements Client.
func (b *Breaker) GetOrCreateExperiment(ctx context.Context, name string) (string, error) {
	const op = "registry.GetOrCreateExperiment"
	r, err := b.execute(op, func() (any, error) { return b.next.GetOrCreateExperiment(ctx, name) })
	return castResult[string](op, r, err)
}

// CreateRun implements Client.
func (b *Breaker) CreateRun(ctx context.Context, experimentID string, tags map[string]string) (*models.TrainingRun, error) {
	const op = "registry.CreateRun"
	r, err := b.execute(op, func() (any, error) { return b.next.CreateRun(ctx, experimentID, tags) })
	return castResult[*models.TrainingRun](op, r, err)
}

// LogParams implements Client.
func (b *Breaker) LogParams(ctx context.Context, runID string, params map[string]string) error {
	_, err := b.execute("registry.LogParams", func() (any, error) { return nil, b.next.LogParams(ctx, runID, params) })
	return err
}

// LogMetrics implements Client.
func (b *Breaker) LogMetrics(ctx context.Context, runID string, task models.Task, m models.ModelMetrics) error {
	_, err := b.execute("registry.LogMetrics", func() (any, error) { return nil, b.next.LogMetrics(ctx, runID, task, m) })
	return err
}

// SetTerminated implements Client.
func (b *Breaker) SetTerminated(ctx context.Context, runID string, status models.RunStatus) error {
	_, err := b.execute("registry.SetTerminated", func() (any, error) { return nil, b.next.SetTerminated(ctx, runID, status) })
	return err
}

// GetRun implements Client.
func (b *Breaker) GetRun(ctx context.Context, runID string) (*models.TrainingRun, error) {
	const op = "registry.GetRun"
	r, err := b.execute(op, func() (any, error) { return b.next.GetRun(ctx, runID) })
	return castResult[*models.TrainingRun](op, r, err)
}

// CreateRegisteredModel implements Client.
func (b *Breaker) CreateRegisteredModel(ctx context.Context, name string) error {
	_, err := b.execute("registry.CreateRegisteredModel", func() (any, error) { return nil, b.next.CreateRegisteredModel(ctx, name) })
	return err
}

// CreateModelVersion implements Client.
func (b *Breaker) CreateModelVersion(ctx context.Context, name, source, runID string) (*models.ModelVersion, error) {
	const op = "registry.CreateModelVersion"
	r, err := b.execute(op, func() (any, error) { return b.next.CreateModelVersion(ctx, name, source, runID) })
	return castResult[*models.ModelVersion](op, r, err)
}

// SetVersionTag implements Client.
func (b *Breaker) SetVersionTag(ctx context.Context, name, version, key, value string) error {
	_, err := b.execute("registry.SetVersionTag", func() (any, error) {
		return nil, b.next.SetVersionTag(ctx, name, version, key, value)
	})
	return err
}

// TransitionStage implements Client.
func (b *Breaker) TransitionStage(ctx context.Context, name, version string, stage models.Stage, archiveExisting bool) (*models.ModelVersion, error) {
	const op = "registry.TransitionStage"
	r, err := b.execute(op, func() (any, error) {
		return b.next.TransitionStage(ctx, name, version, stage, archiveExisting)
	})
	return castResult[*models.ModelVersion](op, r, err)
}

// GetLatestVersions implements Client.
func (b *Breaker) GetLatestVersions(ctx context.Context, name string, stages ...models.Stage) ([]models.ModelVersion, error) {
	const op = "registry.GetLatestVersions"
	r, err := b.execute(op, func() (any, error) { return b.next.GetLatestVersions(ctx, name, stages...) })
	return castResult[[]models.ModelVersion](op, r, err)
}

// SearchVersions implements Client.
func (b *Breaker) SearchVersions(ctx context.Context, name string) ([]models.ModelVersion, error) {
	const op = "registry.SearchVersions"
	r, err := b.execute(op, func() (any, error) { return b.next.SearchVersions(ctx, name) })
	return castResult[[]models.ModelVersion](op, r, err)
}

// UploadArtifact implements Client.
func (b *Breaker) UploadArtifact(ctx context.Context, runID, path string, data []byte) (string, error) {
	const op = "registry.UploadArtifact"
	r, err := b.execute(op, func() (any, error) { return b.next.UploadArtifact(ctx, runID, path, data) })
	return castResult[string](op, r, err)
}

// DownloadArtifact implements Client.
func (b *Breaker) DownloadArtifact(ctx context.Context, runID, path string) ([]byte, error) {
	const op = "registry.DownloadArtifact"
	r, err := b.execute(op, func() (any, error) { return b.next.DownloadArtifact(ctx, runID, path) })
	return castResult[[]byte](op, r, err)
}
