// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/jobmatch/internal/apperr"
	"github.com/tomtom215/jobmatch/internal/evaluation"
	"github.com/tomtom215/jobmatch/internal/features"
	"github.com/tomtom215/jobmatch/internal/lifecycle"
	"github.com/tomtom215/jobmatch/internal/ml"
	"github.com/tomtom215/jobmatch/internal/modelcache"
	"github.com/tomtom215/jobmatch/internal/models"
	"github.com/tomtom215/jobmatch/internal/store"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

// mockModels implements ModelSource for testing.
type mockModels struct {
	entries map[models.ModelType]*modelcache.Entry
	err     error
	calls   int
}

func (m *mockModels) LoadProductionModel(_ context.Context, mt models.ModelType) (*modelcache.Entry, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.entries[mt], nil
}

func newTestTrainer() *lifecycle.Trainer {
	return lifecycle.NewTrainer(features.New(features.DefaultPayCeiling), evaluation.New(zerolog.Nop()), lifecycle.TrainerConfig{})
}

func newTestScorer(snap *models.Snapshot, src ModelSource) *Scorer {
	s := NewScorer(Options{
		Snapshots: &store.Static{Snap: *snap},
		Models:    src,
		Trainer:   newTestTrainer(),
		Logger:    zerolog.Nop(),
	})
	s.now = func() time.Time { return testNow }
	return s
}

func fixture() *models.Snapshot {
	return store.Fixture(store.DefaultFixtureConfig(testNow))
}

// tinySnapshot has one student with one labeled application, far below
// the training minimum.
func tinySnapshot() *models.Snapshot {
	return &models.Snapshot{
		Students:  []models.Student{{ID: "s1", Traits: map[string]models.TraitFeedback{"punctual": {Positive: 4, Total: 5}}}},
		Companies: []models.Company{{ID: "c1", ThumbsUp: 8, ThumbsTotal: 10}},
		Jobs: []models.Job{
			{ID: "past", CompanyID: "c1", Type: "barista", HourlyPay: 15, RequiredTraits: []string{"punctual"}, StartsAt: testNow.AddDate(0, 0, -10)},
			{ID: "open1", CompanyID: "c1", Type: "barista", HourlyPay: 18, RequiredTraits: []string{"punctual"}, StartsAt: testNow.AddDate(0, 0, 3)},
			{ID: "open2", CompanyID: "c1", Type: "mover", HourlyPay: 25, RequiredTraits: []string{"strong"}, StartsAt: testNow.AddDate(0, 0, 5)},
		},
		Applications: []models.Application{
			{ID: "a1", StudentID: "s1", JobID: "past", Status: models.StatusFinished, CreatedAt: testNow.AddDate(0, 0, -12)},
		},
	}
}

func TestRecommendJobs_MissingStudentIsEmpty(t *testing.T) {
	t.Parallel()

	s := newTestScorer(fixture(), nil)
	for _, mode := range []models.ScoringMode{models.ModeHeuristic, models.ModeLearned} {
		got, err := s.RecommendJobs(context.Background(), "nobody", mode, 10)
		if err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("%s: got %v, want empty list", mode, got)
		}
	}
}

func TestRecommendJobs_NoHistoryNoOpenJobsIsEmpty(t *testing.T) {
	t.Parallel()

	snap := &models.Snapshot{
		Students: []models.Student{{ID: "new"}},
		Jobs:     []models.Job{{ID: "old", Type: "barista", StartsAt: testNow.AddDate(0, 0, -1)}},
	}
	s := newTestScorer(snap, nil)
	got, err := s.RecommendJobs(context.Background(), "new", models.ModeLearned, 10)
	if err != nil {
		t.Fatalf("RecommendJobs: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d results, want none", len(got))
	}
}

func TestRecommendJobs_Heuristic(t *testing.T) {
	t.Parallel()

	snap := fixture()
	s := newTestScorer(snap, nil)
	got, err := s.RecommendJobs(context.Background(), "s00", models.ModeHeuristic, 100)
	if err != nil {
		t.Fatalf("RecommendJobs: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected open jobs")
	}

	applied := map[string]bool{}
	for _, a := range snap.Applications {
		if a.StudentID == "s00" {
			applied[a.JobID] = true
		}
	}
	for i, r := range got {
		if r.Mode != models.ModeHeuristic || r.Explanations != nil || r.ModelVersion != "" {
			t.Errorf("result %d = %+v, want bare heuristic result", i, r)
		}
		if r.Job == nil || !r.Job.StartsAt.After(testNow) || applied[r.Job.ID] {
			t.Errorf("result %d is not an eligible job: %+v", i, r.Job)
		}
		if i > 0 && r.Score > got[i-1].Score {
			t.Errorf("results not sorted at %d", i)
		}
	}
}

func TestHeuristicScore(t *testing.T) {
	t.Parallel()

	row := features.Row{TraitMatch: 1, Experience: 0.5, CompanyRating: 0.5, Pay: 0}
	want := 0.4 + 0.2*0.5 + 0.2*0.5
	if got := HeuristicScore(row, JobHeuristicWeights); math.Abs(got-want) > 1e-9 {
		t.Errorf("HeuristicScore = %v, want %v", got, want)
	}
	for name, ws := range map[string]models.FeatureWeights{"jobs": JobHeuristicWeights, "students": StudentHeuristicWeights} {
		var sum float64
		for _, w := range ws {
			sum += w
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("%s weights sum to %v", name, sum)
		}
	}
}

func TestHeuristicScore_FixedSummationOrder(t *testing.T) {
	t.Parallel()

	row := features.Row{Experience: 0.1, TraitMatch: 0.7, CompanyRating: 0.3, Pay: 0.9, TrackRecord: 0.6}
	tests := []struct {
		name    string
		weights models.FeatureWeights
	}{
		{"jobs", JobHeuristicWeights},
		{"students", StudentHeuristicWeights},
		{"uneven", models.FeatureWeights{
			features.Experience:    0.1,
			features.TraitMatch:    0.2,
			features.CompanyRating: 0.3,
			features.Pay:           1e-17,
			features.TrackRecord:   0.4,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var want float64
			for _, name := range features.RowFeatureNames {
				want += tt.weights[name] * row.Get(name)
			}
			for i := 0; i < 200; i++ {
				if got := HeuristicScore(row, tt.weights); got != want {
					t.Fatalf("call %d: HeuristicScore = %v, want exactly %v", i, got, want)
				}
			}
		})
	}
}

func TestRecommendJobs_LearnedEphemeral(t *testing.T) {
	t.Parallel()

	src := &mockModels{}
	s := newTestScorer(fixture(), src)
	got, err := s.RecommendJobs(context.Background(), "s03", models.ModeLearned, 3)
	if err != nil {
		t.Fatalf("RecommendJobs: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d results, want limit 3", len(got))
	}
	if src.calls != 1 {
		t.Errorf("production lookups = %d, want 1", src.calls)
	}
	for _, r := range got {
		if r.Mode != models.ModeLearned || r.ModelVersion != EphemeralVersion {
			t.Errorf("result = %+v, want ephemeral learned", r)
		}
		if len(r.Explanations) != len(lifecycle.JobFeatures) {
			t.Fatalf("explanations = %d", len(r.Explanations))
		}
		for i := 1; i < len(r.Explanations); i++ {
			if r.Explanations[i].Contribution > r.Explanations[i-1].Contribution {
				t.Errorf("explanations not sorted: %+v", r.Explanations)
			}
		}
	}
}

func TestRecommendJobs_ProductionModel(t *testing.T) {
	t.Parallel()

	snap := fixture()
	bundle, err := newTestTrainer().FitRanker(context.Background(), models.JobRecommendation, snap, 1)
	if err != nil {
		t.Fatalf("FitRanker: %v", err)
	}
	src := &mockModels{entries: map[models.ModelType]*modelcache.Entry{
		models.JobRecommendation: {Bundle: bundle, Version: "7"},
	}}
	s := newTestScorer(snap, src)

	got, err := s.RecommendJobs(context.Background(), "s01", models.ModeLearned, 5)
	if err != nil {
		t.Fatalf("RecommendJobs: %v", err)
	}
	for _, r := range got {
		if r.ModelVersion != "7" || r.Mode != models.ModeLearned {
			t.Errorf("result = %+v, want production version 7", r)
		}
	}
}

func TestRecommendJobs_RegistryFailureDegrades(t *testing.T) {
	t.Parallel()

	src := &mockModels{err: apperr.E(apperr.KindUnavailable, "test", "registry down")}
	s := newTestScorer(fixture(), src)
	got, err := s.RecommendJobs(context.Background(), "s02", models.ModeLearned, 5)
	if err != nil {
		t.Fatalf("RecommendJobs should degrade, got %v", err)
	}
	if len(got) == 0 || got[0].ModelVersion != EphemeralVersion {
		t.Errorf("got %+v, want ephemeral results", got)
	}
}

func TestRecommendJobs_TooLittleHistoryFallsBack(t *testing.T) {
	t.Parallel()

	s := newTestScorer(tinySnapshot(), &mockModels{})
	got, err := s.RecommendJobs(context.Background(), "s1", models.ModeLearned, 10)
	if err != nil {
		t.Fatalf("RecommendJobs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results, want both open jobs", len(got))
	}
	for _, r := range got {
		if r.Mode != models.ModeHeuristic {
			t.Errorf("mode = %s, want heuristic fallback", r.Mode)
		}
	}
	if got[0].Job.ID != "open1" {
		t.Errorf("top job = %s, want the matching barista shift", got[0].Job.ID)
	}
}

// labeledHistory gives s1 positives finished shifts and expired expired
// applications, plus two open jobs: a matching cafe shift and a warehouse
// shift paying above the pay ceiling.
func labeledHistory(positives, expired int) *models.Snapshot {
	start := testNow.AddDate(0, -2, 0)
	snap := &models.Snapshot{
		Students:  []models.Student{{ID: "s1", Traits: map[string]models.TraitFeedback{"punctual": {Positive: 3, Total: 4}}}},
		Companies: []models.Company{{ID: "c1", ThumbsUp: 7, ThumbsTotal: 10}},
		Jobs: []models.Job{
			{ID: "open-cafe", CompanyID: "c1", Type: "barista", HourlyPay: 18, RequiredTraits: []string{"punctual"}, StartsAt: testNow.AddDate(0, 0, 2)},
			{ID: "open-warehouse", CompanyID: "c1", Type: "mover", HourlyPay: 80, RequiredTraits: []string{"strong"}, StartsAt: testNow.AddDate(0, 0, 4)},
		},
	}
	for i := 0; i < positives+expired; i++ {
		status := models.StatusFinished
		if i >= positives {
			status = models.StatusExpired
		}
		jobID := fmt.Sprintf("past%02d", i)
		at := start.AddDate(0, 0, i)
		snap.Jobs = append(snap.Jobs, models.Job{
			ID: jobID, CompanyID: "c1", Type: "barista", HourlyPay: float64(12 + i),
			RequiredTraits: []string{"punctual"}, StartsAt: at.AddDate(0, 0, 1),
		})
		snap.Applications = append(snap.Applications, models.Application{
			ID: "a-" + jobID, StudentID: "s1", JobID: jobID, Status: status, CreatedAt: at,
		})
	}
	return snap
}

func TestRecommendJobs_LearnedModeMinimumSamples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		positives   int
		expired     int
		wantMode    models.ScoringMode
		wantVersion string
	}{
		{"one short of the minimum", 9, 0, models.ModeHeuristic, ""},
		{"exactly the minimum", 10, 0, models.ModeLearned, EphemeralVersion},
		{"positives and expired", 10, 5, models.ModeLearned, EphemeralVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScorer(labeledHistory(tt.positives, tt.expired), &mockModels{})
			got, err := s.RecommendJobs(context.Background(), "s1", models.ModeLearned, 10)
			if err != nil {
				t.Fatalf("RecommendJobs: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("got %d results, want both open jobs", len(got))
			}
			for _, r := range got {
				if r.Mode != tt.wantMode || r.ModelVersion != tt.wantVersion {
					t.Errorf("%s: mode = %s version = %q, want %s %q", r.Job.ID, r.Mode, r.ModelVersion, tt.wantMode, tt.wantVersion)
				}
				if tt.wantMode != models.ModeLearned {
					continue
				}
				wantPay := fmt.Sprintf("$%.2f/hour", r.Job.HourlyPay)
				var found bool
				for _, e := range r.Explanations {
					if e.Feature == features.Pay {
						found = true
						if !strings.Contains(e.Description, wantPay) {
							t.Errorf("%s: pay explanation %q, want %s", r.Job.ID, e.Description, wantPay)
						}
					}
				}
				if !found {
					t.Errorf("%s: no pay explanation in %+v", r.Job.ID, r.Explanations)
				}
			}
		})
	}
}

func TestRecommendStudents(t *testing.T) {
	t.Parallel()

	snap := fixture()
	s := newTestScorer(snap, nil)

	applicants := map[string]string{}
	for _, a := range snap.Applications {
		if a.JobID == "j000" {
			applicants[a.StudentID] = a.ID
		}
	}
	for _, mode := range []models.ScoringMode{models.ModeHeuristic, models.ModeLearned} {
		got, err := s.RecommendStudents(context.Background(), "j000", mode, 100)
		if err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
		if len(got) != len(applicants) {
			t.Fatalf("%s: got %d, want %d applicants", mode, len(got), len(applicants))
		}
		for _, r := range got {
			if r.Student == nil || applicants[r.Student.ID] != r.ApplicationID {
				t.Errorf("%s: result %+v is not an applicant", mode, r)
			}
		}
	}

	got, err := s.RecommendStudents(context.Background(), "missing", models.ModeLearned, 10)
	if err != nil || len(got) != 0 {
		t.Errorf("missing job: %v, %v", got, err)
	}
}

func TestRecommend_InvalidMode(t *testing.T) {
	t.Parallel()

	s := newTestScorer(fixture(), nil)
	if _, err := s.RecommendJobs(context.Background(), "s00", "magic", 10); !apperr.IsInvalidInput(err) {
		t.Errorf("err = %v, want invalid input", err)
	}
}

func TestRecommend_SnapshotError(t *testing.T) {
	t.Parallel()

	s := newTestScorer(fixture(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.RecommendJobs(ctx, "s00", models.ModeHeuristic, 10); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestExplain(t *testing.T) {
	t.Parallel()

	row := features.Row{TraitMatch: 0.9, Experience: 0.2, CompanyRating: 0.1, Pay: 0.5}
	weights := ml.NormalizeWeights(lifecycle.JobFeatures, []float64{1, 1, 1, 1})
	got := Explain(row, lifecycle.JobFeatures, weights, 20)

	if got[0].Feature != features.TraitMatch || !strings.Contains(got[0].Description, "Strong match") {
		t.Errorf("top explanation = %+v", got[0])
	}
	byName := map[string]models.Explanation{}
	for _, e := range got {
		byName[e.Feature] = e
	}
	if d := byName[features.Experience].Description; d != "1 previous job of this type" {
		t.Errorf("experience = %q", d)
	}
	if d := byName[features.Pay].Description; d != "Competitive pay at $20.00/hour" {
		t.Errorf("pay = %q", d)
	}
	if d := byName[features.CompanyRating].Description; !strings.Contains(d, "mixed") {
		t.Errorf("rating = %q", d)
	}
}

func TestDescribe_Bands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		feature string
		value   float64
		want    string
	}{
		{features.TraitMatch, 0.8, "Strong match"},
		{features.TraitMatch, 0.5, "Good overlap"},
		{features.TraitMatch, 0.19, "Different skill profile"},
		{features.TrackRecord, 1, "Consistently successful"},
		{features.TrackRecord, 0, "Few successful"},
		{features.Experience, 0, "No previous jobs"},
		{features.Experience, 1, "5+ previous jobs"},
		{features.Experience, 0.6, "3 previous jobs"},
	}
	for _, tt := range tests {
		if got := Describe(tt.feature, tt.value, 50); !strings.Contains(got, tt.want) {
			t.Errorf("Describe(%s, %v) = %q, want %q", tt.feature, tt.value, got, tt.want)
		}
	}
}

func TestDescribe_PayShowsAdvertisedRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		value  float64
		hourly float64
		want   string
	}{
		{"above the ceiling", 1, 80, "Pays well at $80.00/hour"},
		{"at the ceiling", 1, 50, "Pays well at $50.00/hour"},
		{"competitive", 0.5, 25, "Competitive pay at $25.00/hour"},
		{"modest", 0.1, 5, "Modest pay at $5.00/hour"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(features.Pay, tt.value, tt.hourly); got != tt.want {
				t.Errorf("Describe = %q, want %q", got, tt.want)
			}
		})
	}
}
