// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

// Package scheduler runs the daily training cycle and on-demand training.
//
// One exclusive token guards all training in the process: a scheduled cycle,
// a manual train-all and a manual single-type run never overlap, and a
// request that finds the token taken is answered at once with
// models.MessageTrainingInProgress instead of being queued.
//
// The Scheduler is a suture.Service. Between cycles it sleeps until the
// configured wall-clock time; cancellation is observed while sleeping and
// between model types, but a model that has started fitting runs to the end.
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/jobmatch/internal/config"
	"github.com/tomtom215/jobmatch/internal/lifecycle"
	"github.com/tomtom215/jobmatch/internal/logging"
	"github.com/tomtom215/jobmatch/internal/metrics"
	"github.com/tomtom215/jobmatch/internal/models"
)

// DefaultCooldown is the pause after a cycle fails unexpectedly.
const DefaultCooldown = 5 * time.Minute

// Orchestrator runs one training cycle for a model type.
type Orchestrator interface {
	TrainAndEvaluate(ctx context.Context, mt models.ModelType, train lifecycle.TrainFunc) models.TrainingResult
}

// Pipelines returns the training function of a model type.
type Pipelines func(mt models.ModelType) lifecycle.TrainFunc

// Scheduler owns the training token and the daily loop.
type Scheduler struct {
	orch      Orchestrator
	pipelines Pipelines
	logger    zerolog.Logger

	enabled        bool
	hour, minute   int
	cooldown       time.Duration
	trainOnStartup bool

	training atomic.Bool
	lastRun  atomic.Int64 // unix nanoseconds, 0 before the first cycle

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) bool
}

// New creates a Scheduler from the scheduler section of the configuration.
func New(orch Orchestrator, pipelines Pipelines, cfg config.SchedulerConfig, logger zerolog.Logger) (*Scheduler, error) {
	hour, minute, err := cfg.ClockTime()
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Scheduler{
		orch:           orch,
		pipelines:      pipelines,
		logger:         logger.With().Str("component", "scheduler").Logger(),
		enabled:        cfg.Enabled,
		hour:           hour,
		minute:         minute,
		cooldown:       cooldown,
		trainOnStartup: cfg.TrainOnStartup,
		now:            time.Now,
		sleep:          sleepCtx,
	}, nil
}

// Serve implements suture.Service.
func (s *Scheduler) Serve(ctx context.Context) error {
	if !s.enabled {
		s.logger.Info().Msg("scheduled training disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	s.logger.Info().
		Str("time_of_day", s.scheduledTime()).
		Dur("cooldown", s.cooldown).
		Bool("train_on_startup", s.trainOnStartup).
		Msg("training scheduler starting")

	if s.trainOnStartup {
		s.runCycle(ctx)
	}

	for {
		if err := s.cycle(ctx); err != nil {
			if ctx.Err() != nil {
				s.logger.Info().Msg("training scheduler stopped")
				return ctx.Err()
			}
			s.logger.Error().Err(err).Dur("cooldown", s.cooldown).Msg("training cycle failed, cooling down")
			if !s.sleep(ctx, s.cooldown) {
				s.logger.Info().Msg("training scheduler stopped")
				return ctx.Err()
			}
		}
	}
}

// String implements fmt.Stringer for suture logs.
func (s *Scheduler) String() string {
	return "training-scheduler"
}

// cycle waits for the next scheduled time and trains every model type. A
// panic inside the cycle is returned as an error so the loop survives it.
func (s *Scheduler) cycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("training cycle panicked: %v", r)
		}
	}()

	now := s.now()
	next := s.NextRun(now)
	s.logger.Debug().Time("next_run", next).Msg("waiting for next training cycle")
	if !s.sleep(ctx, next.Sub(now)) {
		return ctx.Err()
	}
	s.runCycle(ctx)
	return nil
}

func (s *Scheduler) runCycle(ctx context.Context) {
	ctx = logging.ContextWithNewCorrelationID(ctx)
	res := s.TrainAll(ctx)
	logging.Ctx(ctx).Info().
		Str("component", "scheduler").
		Bool("success", res.Success).
		Int("models", len(res.Results)).
		Msg(res.Message)
}

// TrainAll trains every model type in turn. Failures of one type do not
// stop the others.
func (s *Scheduler) TrainAll(ctx context.Context) models.TrainAllResult {
	if !s.acquire() {
		return models.TrainAllResult{Message: models.MessageTrainingInProgress}
	}
	defer s.release()

	var (
		results  []models.TrainingResult
		promoted int
		failed   int
	)
	for _, mt := range models.AllModelTypes() {
		if ctx.Err() != nil {
			s.logger.Info().Str("model_type", string(mt)).Msg("cycle canceled before model type")
			break
		}
		res := s.orch.TrainAndEvaluate(ctx, mt, s.pipelines(mt))
		if !res.Success {
			failed++
		}
		if res.PromotedToProduction {
			promoted++
		}
		results = append(results, res)
	}
	s.lastRun.Store(s.now().UnixNano())

	msg := fmt.Sprintf("Trained %d model types: %d promoted, %d failed", len(results), promoted, failed)
	if skipped := len(models.AllModelTypes()) - len(results); skipped > 0 {
		msg += fmt.Sprintf(", %d skipped", skipped)
	}
	return models.TrainAllResult{
		Success: failed == 0 && len(results) > 0,
		Message: msg,
		Results: results,
	}
}

// TrainOne trains a single model type.
func (s *Scheduler) TrainOne(ctx context.Context, mt models.ModelType) models.TrainingResult {
	if _, err := lifecycle.Lookup(mt); err != nil {
		return models.TrainingResult{ModelType: mt, Message: err.Error()}
	}
	if !s.acquire() {
		return models.TrainingResult{ModelType: mt, Message: models.MessageTrainingInProgress}
	}
	defer s.release()

	res := s.orch.TrainAndEvaluate(ctx, mt, s.pipelines(mt))
	s.lastRun.Store(s.now().UnixNano())
	return res
}

// IsTraining reports whether a training run holds the token.
func (s *Scheduler) IsTraining() bool {
	return s.training.Load()
}

// Status describes the scheduler for operators.
func (s *Scheduler) Status() models.TrainingStatus {
	st := models.TrainingStatus{
		IsTraining:    s.IsTraining(),
		IsEnabled:     s.enabled,
		ScheduledTime: s.scheduledTime(),
		NextRun:       s.NextRun(s.now()),
	}
	if ns := s.lastRun.Load(); ns != 0 {
		st.LastRunAt = time.Unix(0, ns)
	}
	return st
}

// NextRun returns the first scheduled time strictly after now, in now's
// location.
func (s *Scheduler) NextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (s *Scheduler) scheduledTime() string {
	return fmt.Sprintf("%02d:%02d", s.hour, s.minute)
}

func (s *Scheduler) acquire() bool {
	if !s.training.CompareAndSwap(false, true) {
		return false
	}
	metrics.SetTrainingInProgress(true)
	return true
}

func (s *Scheduler) release() {
	metrics.SetTrainingInProgress(false)
	s.training.Store(false)
}

// sleepCtx waits for d or until ctx is done. It reports whether the full
// duration elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
