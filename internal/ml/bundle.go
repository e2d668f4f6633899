// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package ml

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/jobmatch/internal/models"
)

// Bundle is the unit that is serialized as a model artifact: the estimator
// together with everything needed to build its input rows.
type Bundle struct {
	ModelType    models.ModelType
	FeatureNames []string
	Estimator    Model
	TrainedAt    time.Time

	// JobTypePay and JobTypeFallback hold the pay pipeline's job type encoding.
	JobTypePay      map[string]float64
	JobTypeFallback float64

	// Version is filled in after registration; it is empty for ephemeral bundles.
	Version string
}

// Predict scores a batch of rows with the bundle's estimator.
func (b *Bundle) Predict(rows [][]float64) []float64 {
	return PredictBatch(b.Estimator, rows)
}

// Encode serializes the bundle with gob.
func (b *Bundle) Encode() ([]byte, error) {
	if b.Estimator == nil {
		return nil, errors.New("bundle has no estimator")
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(b); err != nil {
		return nil, fmt.Errorf("encode bundle: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeBundle is the inverse of Encode.
func DecodeBundle(data []byte) (*Bundle, error) {
	var b Bundle
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	if b.Estimator == nil {
		return nil, errors.New("decoded bundle has no estimator")
	}
	return &b, nil
}

//nolint:gochecknoinits // gob needs concrete types registered before encoding interfaces
func init() {
	gob.Register(&LogisticRegression{})
	gob.Register(&LinearRegression{})
	gob.Register(&KNNRegressor{})
	gob.Register(&MeanRegressor{})
}
