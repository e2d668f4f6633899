// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package recommend

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/tomtom215/jobmatch/internal/apperr"
	"github.com/tomtom215/jobmatch/internal/features"
	"github.com/tomtom215/jobmatch/internal/lifecycle"
	"github.com/tomtom215/jobmatch/internal/logging"
	"github.com/tomtom215/jobmatch/internal/metrics"
	"github.com/tomtom215/jobmatch/internal/ml"
	"github.com/tomtom215/jobmatch/internal/models"
	"github.com/tomtom215/jobmatch/internal/validation"
)

// PredictPay predicts the hourly pay of a hypothetical job.
//
// AlgorithmProduction uses the deployed pay model and falls back to an
// ephemeral linear fit when none is deployed. With too few paid jobs to fit
// anything, every algorithm answers with the mean pay in heuristic mode.
func (s *Scorer) PredictPay(ctx context.Context, algorithm string, in models.PayInput) (*models.PayPrediction, error) {
	start := time.Now()
	if !isPayAlgorithm(algorithm) {
		return nil, apperr.E(apperr.KindInvalidInput, "recommend.PredictPay",
			"unknown algorithm %q (want one of %s)", algorithm, strings.Join(lifecycle.PayAlgorithms(), ", "))
	}
	if err := validation.Check("recommend.PredictPay", &in); err != nil {
		return nil, err
	}

	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	idx := snap.Index()
	company := idx.Companies[in.CompanyID]

	pred, err := s.predictPay(ctx, algorithm, snap, &in, company)
	if err != nil {
		return nil, err
	}
	pred.HourlyPay = math.Max(0, pred.HourlyPay)
	metrics.RecordRecommendation("pay", string(pred.Mode), time.Since(start))
	return pred, nil
}

func (s *Scorer) predictPay(ctx context.Context, algorithm string, snap *models.Snapshot, in *models.PayInput, company *models.Company) (*models.PayPrediction, error) {
	log := s.logger.With().
		Str("algorithm", algorithm).
		Str("correlation_id", logging.CorrelationIDFromContext(ctx)).
		Logger()

	fitAlgorithm := algorithm
	if algorithm == lifecycle.AlgorithmProduction {
		bundle, version := s.productionModel(ctx, models.JobPayPrediction, log)
		if bundle != nil {
			return &models.PayPrediction{
				Algorithm:    algorithm,
				HourlyPay:    predictOne(bundle, in, company),
				Mode:         models.ModeLearned,
				ModelVersion: version,
			}, nil
		}
		fitAlgorithm = lifecycle.AlgorithmLinear
	}

	bundle, err := s.trainer.FitPay(ctx, fitAlgorithm, snap, s.seed)
	if err != nil {
		if apperr.IsInsufficientData(err) {
			log.Debug().Err(err).Msg("too few paid jobs, answering with the mean")
			return &models.PayPrediction{
				Algorithm: lifecycle.AlgorithmMean,
				HourlyPay: meanPay(snap),
				Mode:      models.ModeHeuristic,
			}, nil
		}
		return nil, err
	}
	return &models.PayPrediction{
		Algorithm:    fitAlgorithm,
		HourlyPay:    predictOne(bundle, in, company),
		Mode:         models.ModeLearned,
		ModelVersion: EphemeralVersion,
	}, nil
}

func predictOne(bundle *ml.Bundle, in *models.PayInput, company *models.Company) float64 {
	enc := features.JobTypeEncoding{Means: bundle.JobTypePay, Fallback: bundle.JobTypeFallback}
	return bundle.Predict([][]float64{features.PayRow(enc, in, company)})[0]
}

// meanPay averages the positive hourly pay of every job, 0 without any.
func meanPay(snap *models.Snapshot) float64 {
	var sum float64
	var n int
	for i := range snap.Jobs {
		if p := snap.Jobs[i].HourlyPay; p > 0 {
			sum += p
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func isPayAlgorithm(s string) bool {
	for _, a := range lifecycle.PayAlgorithms() {
		if a == s {
			return true
		}
	}
	return false
}
