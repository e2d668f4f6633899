// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package ml

import (
	"math"
	"sort"
)

// KNNRegressor averages the targets of the K nearest training rows
// (Euclidean distance). It keeps the whole training set.
type KNNRegressor struct {
	K int
	X [][]float64
	Y []float64
}

// Kind implements Model.
func (m *KNNRegressor) Kind() string { return "knn" }

// Predict implements Model.
func (m *KNNRegressor) Predict(x []float64) float64 {
	if len(m.X) == 0 {
		return 0
	}
	type neighbour struct {
		dist float64
		y    float64
	}
	ns := make([]neighbour, len(m.X))
	for i, row := range m.X {
		var d float64
		for j := range row {
			if j < len(x) {
				d += (row[j] - x[j]) * (row[j] - x[j])
			}
		}
		ns[i] = neighbour{dist: math.Sqrt(d), y: m.Y[i]}
	}
	sort.SliceStable(ns, func(i, j int) bool { return ns[i].dist < ns[j].dist })

	k := m.K
	if k <= 0 || k > len(ns) {
		k = len(ns)
	}
	var sum float64
	for _, n := range ns[:k] {
		sum += n.y
	}
	return sum / float64(k)
}

// FitKNN copies the training data.
func FitKNN(x [][]float64, y []float64, k int) (*KNNRegressor, error) {
	if _, err := validate(x, y); err != nil {
		return nil, err
	}
	m := &KNNRegressor{K: k, X: make([][]float64, len(x)), Y: append([]float64(nil), y...)}
	for i, r := range x {
		m.X[i] = append([]float64(nil), r...)
	}
	return m, nil
}

// MeanRegressor always predicts the training mean.
type MeanRegressor struct {
	Mean float64
}

// Kind implements Model.
func (m *MeanRegressor) Kind() string { return "mean" }

// Predict implements Model.
func (m *MeanRegressor) Predict([]float64) float64 { return m.Mean }

// FitMean returns the mean of y, or 0 for an empty slice.
func FitMean(y []float64) *MeanRegressor {
	if len(y) == 0 {
		return &MeanRegressor{}
	}
	var s float64
	for _, v := range y {
		s += v
	}
	return &MeanRegressor{Mean: s / float64(len(y))}
}
