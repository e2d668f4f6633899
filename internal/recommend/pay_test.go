// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package recommend

import (
	"context"
	"math"
	"testing"

	"github.com/tomtom215/jobmatch/internal/apperr"
	"github.com/tomtom215/jobmatch/internal/features"
	"github.com/tomtom215/jobmatch/internal/lifecycle"
	"github.com/tomtom215/jobmatch/internal/ml"
	"github.com/tomtom215/jobmatch/internal/modelcache"
	"github.com/tomtom215/jobmatch/internal/models"
)

var baristaShift = models.PayInput{
	JobType:        "barista",
	CompanyID:      "c01",
	DurationHours:  20,
	RequiredTraits: []string{"punctual"},
}

func TestPredictPay_Algorithms(t *testing.T) {
	t.Parallel()

	s := newTestScorer(fixture(), &mockModels{})
	for _, alg := range []string{lifecycle.AlgorithmLinear, lifecycle.AlgorithmRidge, lifecycle.AlgorithmKNN, lifecycle.AlgorithmMean} {
		p, err := s.PredictPay(context.Background(), alg, baristaShift)
		if err != nil {
			t.Fatalf("%s: %v", alg, err)
		}
		if p.Algorithm != alg || p.Mode != models.ModeLearned || p.ModelVersion != EphemeralVersion {
			t.Errorf("%s: prediction = %+v", alg, p)
		}
		if p.HourlyPay <= 0 || p.HourlyPay > 100 {
			t.Errorf("%s: hourly pay = %v", alg, p.HourlyPay)
		}
	}
}

func TestPredictPay_MeanMatchesData(t *testing.T) {
	t.Parallel()

	snap := fixture()
	s := newTestScorer(snap, nil)
	p, err := s.PredictPay(context.Background(), lifecycle.AlgorithmMean, baristaShift)
	if err != nil {
		t.Fatalf("PredictPay: %v", err)
	}
	if want := meanPay(snap); math.Abs(p.HourlyPay-want) > 1e-9 {
		t.Errorf("mean = %v, want %v", p.HourlyPay, want)
	}
}

func TestPredictPay_ProductionModel(t *testing.T) {
	t.Parallel()

	bundle := &ml.Bundle{
		ModelType:    models.JobPayPrediction,
		FeatureNames: features.PayFeatureNames,
		Estimator:    &ml.MeanRegressor{Mean: 21.5},
	}
	src := &mockModels{entries: map[models.ModelType]*modelcache.Entry{
		models.JobPayPrediction: {Bundle: bundle, Version: "3"},
	}}
	s := newTestScorer(fixture(), src)

	p, err := s.PredictPay(context.Background(), lifecycle.AlgorithmProduction, baristaShift)
	if err != nil {
		t.Fatalf("PredictPay: %v", err)
	}
	if p.HourlyPay != 21.5 || p.ModelVersion != "3" || p.Mode != models.ModeLearned {
		t.Errorf("prediction = %+v", p)
	}
}

func TestPredictPay_ProductionFallsBackToLinear(t *testing.T) {
	t.Parallel()

	s := newTestScorer(fixture(), &mockModels{})
	p, err := s.PredictPay(context.Background(), lifecycle.AlgorithmProduction, baristaShift)
	if err != nil {
		t.Fatalf("PredictPay: %v", err)
	}
	if p.Algorithm != lifecycle.AlgorithmLinear || p.ModelVersion != EphemeralVersion {
		t.Errorf("prediction = %+v, want ephemeral linear", p)
	}
}

func TestPredictPay_TooFewJobs(t *testing.T) {
	t.Parallel()

	s := newTestScorer(tinySnapshot(), nil)
	for _, alg := range lifecycle.PayAlgorithms() {
		p, err := s.PredictPay(context.Background(), alg, baristaShift)
		if err != nil {
			t.Fatalf("%s: %v", alg, err)
		}
		if p.Mode != models.ModeHeuristic || p.Algorithm != lifecycle.AlgorithmMean {
			t.Errorf("%s: prediction = %+v, want heuristic mean", alg, p)
		}
		if want := (15.0 + 18 + 25) / 3; math.Abs(p.HourlyPay-want) > 1e-9 {
			t.Errorf("%s: hourly pay = %v, want %v", alg, p.HourlyPay, want)
		}
	}

	empty := newTestScorer(&models.Snapshot{}, nil)
	p, err := empty.PredictPay(context.Background(), lifecycle.AlgorithmKNN, baristaShift)
	if err != nil || p.HourlyPay != 0 {
		t.Errorf("no jobs: %+v, %v", p, err)
	}
}

func TestPredictPay_InvalidInput(t *testing.T) {
	t.Parallel()

	s := newTestScorer(fixture(), nil)
	if _, err := s.PredictPay(context.Background(), "forest", baristaShift); !apperr.IsInvalidInput(err) {
		t.Errorf("unknown algorithm err = %v", err)
	}
	if _, err := s.PredictPay(context.Background(), lifecycle.AlgorithmMean, models.PayInput{}); !apperr.IsInvalidInput(err) {
		t.Errorf("missing job type err = %v", err)
	}
}
