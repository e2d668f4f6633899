// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

// Package ml contains the small estimators the lifecycle trains: logistic
// regression for the recommendation classifiers and linear, k-NN and mean
// regressors for pay prediction.
//
// Fitting is plain batch gradient descent over dense rows. The estimators are
// deterministic for a fixed seed and check the context between epochs, so a
// fit can be abandoned at an epoch boundary but not mid-epoch.
package ml

import (
	"errors"
	"fmt"
	"math"
)

// Model scores one feature row.
type Model interface {
	// Kind names the estimator family ("logistic", "linear", "knn", "mean").
	Kind() string

	// Predict returns a probability for classifiers and a target value for regressors.
	Predict(x []float64) float64
}

// PredictBatch scores every row.
func PredictBatch(m Model, rows [][]float64) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = m.Predict(r)
	}
	return out
}

// ErrEmptyTrainingSet is returned when a fit receives no rows.
var ErrEmptyTrainingSet = errors.New("empty training set")

// TrainConfig controls gradient descent.
type TrainConfig struct {
	Epochs       int
	LearningRate float64
	L2           float64
	Seed         int64
}

// DefaultTrainConfig returns settings that converge on [0,1] features.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Epochs:       400,
		LearningRate: 0.5,
		L2:           0.001,
		Seed:         42,
	}
}

func (c TrainConfig) withDefaults() TrainConfig {
	d := DefaultTrainConfig()
	if c.Epochs <= 0 {
		c.Epochs = d.Epochs
	}
	if c.LearningRate <= 0 {
		c.LearningRate = d.LearningRate
	}
	if c.L2 < 0 {
		c.L2 = 0
	}
	return c
}

func validate(x [][]float64, y []float64) (int, error) {
	if len(x) == 0 {
		return 0, ErrEmptyTrainingSet
	}
	if len(x) != len(y) {
		return 0, fmt.Errorf("rows (%d) and targets (%d) differ", len(x), len(y))
	}
	width := len(x[0])
	for i, r := range x {
		if len(r) != width {
			return 0, fmt.Errorf("row %d has %d features, want %d", i, len(r), width)
		}
		for _, v := range r {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, fmt.Errorf("row %d contains a non-finite value", i)
			}
		}
	}
	return width, nil
}

func dot(w, x []float64) float64 {
	var s float64
	for i := range w {
		if i < len(x) {
			s += w[i] * x[i]
		}
	}
	return s
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
