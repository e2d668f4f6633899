// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/jobmatch/internal/config"
	"github.com/tomtom215/jobmatch/internal/lifecycle"
	"github.com/tomtom215/jobmatch/internal/models"
)

// mockOrchestrator records calls and can block until released.
type mockOrchestrator struct {
	mu      sync.Mutex
	calls   []models.ModelType
	fail    map[models.ModelType]bool
	block   chan struct{}
	started chan models.ModelType
	panics  bool
}

func (m *mockOrchestrator) TrainAndEvaluate(_ context.Context, mt models.ModelType, _ lifecycle.TrainFunc) models.TrainingResult {
	if m.panics {
		panic("registry client exploded")
	}
	if m.started != nil {
		m.started <- mt
	}
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	m.calls = append(m.calls, mt)
	m.mu.Unlock()
	if m.fail[mt] {
		return models.TrainingResult{ModelType: mt, Message: "boom"}
	}
	return models.TrainingResult{ModelType: mt, Success: true, PromotedToProduction: true}
}

func (m *mockOrchestrator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func noPipelines(models.ModelType) lifecycle.TrainFunc { return nil }

func newTestScheduler(t *testing.T, orch Orchestrator, cfg config.SchedulerConfig) *Scheduler {
	t.Helper()
	if cfg.TimeOfDay == "" {
		cfg.TimeOfDay = "03:00"
	}
	s, err := New(orch, noPipelines, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNew_RejectsBadTime(t *testing.T) {
	t.Parallel()
	if _, err := New(&mockOrchestrator{}, noPipelines, config.SchedulerConfig{TimeOfDay: "3am"}, zerolog.Nop()); err == nil {
		t.Error("expected error for malformed time of day")
	}
}

func TestNextRun(t *testing.T) {
	t.Parallel()

	s := newTestScheduler(t, &mockOrchestrator{}, config.SchedulerConfig{TimeOfDay: "03:00"})
	loc := time.UTC
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"before today's slot", time.Date(2026, 3, 10, 1, 30, 0, 0, loc), time.Date(2026, 3, 10, 3, 0, 0, 0, loc)},
		{"after today's slot", time.Date(2026, 3, 10, 9, 0, 0, 0, loc), time.Date(2026, 3, 11, 3, 0, 0, 0, loc)},
		{"exactly at the slot", time.Date(2026, 3, 10, 3, 0, 0, 0, loc), time.Date(2026, 3, 11, 3, 0, 0, 0, loc)},
		{"month rollover", time.Date(2026, 3, 31, 23, 0, 0, 0, loc), time.Date(2026, 4, 1, 3, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.NextRun(tt.now); !got.Equal(tt.want) {
				t.Errorf("NextRun(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestTrainAll_IsolatesFailures(t *testing.T) {
	t.Parallel()

	orch := &mockOrchestrator{fail: map[models.ModelType]bool{models.StudentRecommendation: true}}
	s := newTestScheduler(t, orch, config.SchedulerConfig{})

	res := s.TrainAll(context.Background())
	if len(res.Results) != len(models.AllModelTypes()) {
		t.Fatalf("results = %d, want every model type", len(res.Results))
	}
	if res.Success {
		t.Error("a failed model type should make the cycle unsuccessful")
	}
	if !strings.Contains(res.Message, "1 failed") {
		t.Errorf("message = %q", res.Message)
	}
	if s.IsTraining() {
		t.Error("token not released")
	}
	if s.Status().LastRunAt.IsZero() {
		t.Error("last run not recorded")
	}
}

func TestTrainAll_RejectsConcurrentRun(t *testing.T) {
	t.Parallel()

	orch := &mockOrchestrator{block: make(chan struct{}), started: make(chan models.ModelType, 3)}
	s := newTestScheduler(t, orch, config.SchedulerConfig{})

	done := make(chan models.TrainAllResult, 1)
	go func() { done <- s.TrainAll(context.Background()) }()
	<-orch.started

	second := s.TrainAll(context.Background())
	if second.Success || second.Message != models.MessageTrainingInProgress {
		t.Errorf("second = %+v, want in-progress rejection", second)
	}
	one := s.TrainOne(context.Background(), models.JobPayPrediction)
	if one.Success || one.Message != models.MessageTrainingInProgress {
		t.Errorf("TrainOne = %+v, want in-progress rejection", one)
	}
	if !s.Status().IsTraining {
		t.Error("status should report training")
	}

	close(orch.block)
	if first := <-done; !first.Success {
		t.Errorf("first = %+v", first)
	}
	if s.IsTraining() {
		t.Error("token not released")
	}
}

func TestTrainOne(t *testing.T) {
	t.Parallel()

	orch := &mockOrchestrator{}
	s := newTestScheduler(t, orch, config.SchedulerConfig{})

	res := s.TrainOne(context.Background(), models.JobPayPrediction)
	if !res.Success || orch.callCount() != 1 {
		t.Errorf("result = %+v, calls = %d", res, orch.callCount())
	}

	bad := s.TrainOne(context.Background(), models.ModelType("bogus"))
	if bad.Success || orch.callCount() != 1 {
		t.Errorf("unknown type should not train: %+v", bad)
	}
}

func TestTrainAll_StopsBetweenTypesOnCancel(t *testing.T) {
	t.Parallel()

	orch := &mockOrchestrator{block: make(chan struct{}), started: make(chan models.ModelType, 3)}
	s := newTestScheduler(t, orch, config.SchedulerConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan models.TrainAllResult, 1)
	go func() { done <- s.TrainAll(ctx) }()

	<-orch.started
	cancel()
	close(orch.block)

	res := <-done
	if len(res.Results) != 1 {
		t.Errorf("results = %d, want only the in-flight model", len(res.Results))
	}
	if !strings.Contains(res.Message, "skipped") {
		t.Errorf("message = %q", res.Message)
	}
}

func TestServe_Disabled(t *testing.T) {
	t.Parallel()

	orch := &mockOrchestrator{}
	s := newTestScheduler(t, orch, config.SchedulerConfig{Enabled: false, TrainOnStartup: true})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ctx) }()
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve = %v, want context.Canceled", err)
	}
	if orch.callCount() != 0 {
		t.Error("disabled scheduler trained")
	}
	if s.Status().IsEnabled {
		t.Error("status reports enabled")
	}
}

func TestServe_RunsScheduledCycle(t *testing.T) {
	t.Parallel()

	orch := &mockOrchestrator{}
	s := newTestScheduler(t, orch, config.SchedulerConfig{Enabled: true, TimeOfDay: "03:00"})
	s.now = func() time.Time { return time.Date(2026, 3, 10, 2, 59, 59, 0, time.UTC) }

	var waits []time.Duration
	var mu sync.Mutex
	ctx, cancel := context.WithCancel(context.Background())
	s.sleep = func(_ context.Context, d time.Duration) bool {
		mu.Lock()
		defer mu.Unlock()
		waits = append(waits, d)
		if len(waits) > 1 {
			cancel()
			return false
		}
		return true
	}

	if err := s.Serve(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve = %v, want context.Canceled", err)
	}
	if orch.callCount() != len(models.AllModelTypes()) {
		t.Errorf("calls = %d, want one full cycle", orch.callCount())
	}
	if waits[0] != time.Second {
		t.Errorf("first wait = %v, want 1s", waits[0])
	}
}

func TestServe_CoolsDownAfterPanic(t *testing.T) {
	t.Parallel()

	orch := &mockOrchestrator{panics: true}
	s := newTestScheduler(t, orch, config.SchedulerConfig{Enabled: true, Cooldown: 2 * time.Minute})
	s.now = func() time.Time { return time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC) }

	var waits []time.Duration
	ctx, cancel := context.WithCancel(context.Background())
	s.sleep = func(_ context.Context, d time.Duration) bool {
		waits = append(waits, d)
		if len(waits) == 2 {
			cancel()
			return false
		}
		return true
	}

	if err := s.Serve(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve = %v, want context.Canceled", err)
	}
	if len(waits) != 2 || waits[1] != 2*time.Minute {
		t.Errorf("waits = %v, want the schedule wait then the cooldown", waits)
	}
	if s.IsTraining() {
		t.Error("token leaked after panic")
	}
}

func TestSleepCtx(t *testing.T) {
	t.Parallel()

	if !sleepCtx(context.Background(), time.Millisecond) {
		t.Error("short sleep should complete")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if sleepCtx(ctx, time.Hour) {
		t.Error("canceled sleep should report false")
	}
	if sleepCtx(ctx, 0) {
		t.Error("zero sleep on a canceled context should report false")
	}
}
