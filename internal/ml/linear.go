// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package ml

import (
	"context"
	"math"
)

// LinearRegression predicts bias + w·x. Targets are standardized during the
// fit and the coefficients mapped back, so learning rate does not depend on
// the target's scale.
type LinearRegression struct {
	Weights []float64
	Bias    float64
}

// Kind implements Model.
func (m *LinearRegression) Kind() string { return "linear" }

// Predict implements Model.
func (m *LinearRegression) Predict(x []float64) float64 {
	return m.Bias + dot(m.Weights, x)
}

// FitLinear fits ordinary least squares with optional L2 (ridge) shrinkage.
func FitLinear(ctx context.Context, x [][]float64, y []float64, cfg TrainConfig) (*LinearRegression, error) {
	width, err := validate(x, y)
	if err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	n := float64(len(y))
	var mean float64
	for _, v := range y {
		mean += v
	}
	mean /= n
	var variance float64
	for _, v := range y {
		variance += (v - mean) * (v - mean)
	}
	scale := math.Sqrt(variance / n)
	if scale == 0 {
		scale = 1
	}

	w := make([]float64, width)
	grad := make([]float64, width)
	var b float64

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := range grad {
			grad[j] = 0
		}
		var gradBias float64
		for i, row := range x {
			diff := b + dot(w, row) - (y[i]-mean)/scale
			for j, v := range row {
				grad[j] += diff * v
			}
			gradBias += diff
		}
		for j := range w {
			w[j] -= cfg.LearningRate * (grad[j]/n + cfg.L2*w[j])
		}
		b -= cfg.LearningRate * gradBias / n
	}

	m := &LinearRegression{Weights: make([]float64, width), Bias: b*scale + mean}
	for j := range w {
		m.Weights[j] = w[j] * scale
	}
	return m, nil
}
