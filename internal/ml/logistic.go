// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package ml

import "context"

// LogisticRegression is a binary classifier: P = sigmoid(bias + w·x).
type LogisticRegression struct {
	Weights []float64
	Bias    float64
}

// Kind implements Model.
func (m *LogisticRegression) Kind() string { return "logistic" }

// Predict implements Model.
func (m *LogisticRegression) Predict(x []float64) float64 {
	return sigmoid(m.Bias + dot(m.Weights, x))
}

// FitLogistic trains on 0/1 targets with class-balanced weights, so a rare
// positive class still moves the decision boundary.
func FitLogistic(ctx context.Context, x [][]float64, y []float64, cfg TrainConfig) (*LogisticRegression, error) {
	width, err := validate(x, y)
	if err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	var pos float64
	for _, v := range y {
		if v > 0.5 {
			pos++
		}
	}
	n := float64(len(y))
	neg := n - pos
	posWeight, negWeight := 1.0, 1.0
	if pos > 0 && neg > 0 {
		posWeight = n / (2 * pos)
		negWeight = n / (2 * neg)
	}

	m := &LogisticRegression{Weights: make([]float64, width)}
	grad := make([]float64, width)

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := range grad {
			grad[j] = 0
		}
		var gradBias float64
		for i, row := range x {
			w := negWeight
			if y[i] > 0.5 {
				w = posWeight
			}
			diff := w * (m.Predict(row) - y[i])
			for j, v := range row {
				grad[j] += diff * v
			}
			gradBias += diff
		}
		for j := range m.Weights {
			m.Weights[j] -= cfg.LearningRate * (grad[j]/n + cfg.L2*m.Weights[j])
		}
		m.Bias -= cfg.LearningRate * gradBias / n
	}
	return m, nil
}
