// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package ml

import (
	"context"
	"math"

	"github.com/tomtom215/jobmatch/internal/models"
)

// FeatureWeights fits an auxiliary linear model of y on x and returns the
// absolute coefficients L1-normalized to sum to 1. When the fit fails or
// every coefficient is zero the weights are uniform.
func FeatureWeights(ctx context.Context, names []string, x [][]float64, y []float64, cfg TrainConfig) models.FeatureWeights {
	var coef []float64
	if lin, err := FitLinear(ctx, x, y, cfg); err == nil {
		coef = lin.Weights
	}
	return NormalizeWeights(names, coef)
}

// NormalizeWeights maps raw coefficients to non-negative weights summing to 1.
// Missing or non-finite coefficients count as zero.
func NormalizeWeights(names []string, coef []float64) models.FeatureWeights {
	out := make(models.FeatureWeights, len(names))
	if len(names) == 0 {
		return out
	}

	var total float64
	abs := make([]float64, len(names))
	for i := range names {
		if i < len(coef) && !math.IsNaN(coef[i]) && !math.IsInf(coef[i], 0) {
			abs[i] = math.Abs(coef[i])
		}
		total += abs[i]
	}

	for i, name := range names {
		if total == 0 {
			out[name] = 1 / float64(len(names))
			continue
		}
		out[name] = abs[i] / total
	}
	return out
}
