// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package lifecycle

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/jobmatch/internal/apperr"
	"github.com/tomtom215/jobmatch/internal/evaluation"
	"github.com/tomtom215/jobmatch/internal/features"
	"github.com/tomtom215/jobmatch/internal/ml"
	"github.com/tomtom215/jobmatch/internal/models"
	"github.com/tomtom215/jobmatch/internal/store"
)

// Pay prediction algorithms.
const (
	AlgorithmProduction = "production"
	AlgorithmLinear     = "linear"
	AlgorithmRidge      = "ridge"
	AlgorithmKNN        = "knn"
	AlgorithmMean       = "mean"
)

// PayAlgorithms lists the accepted pay prediction algorithm names.
func PayAlgorithms() []string {
	return []string{AlgorithmProduction, AlgorithmLinear, AlgorithmRidge, AlgorithmKNN, AlgorithmMean}
}

// DefaultMinSamples is the labeled sample count below which nothing is trained.
const DefaultMinSamples = 10

// Feature columns of the recommendation pipelines.
var (
	JobFeatures     = []string{features.Experience, features.TraitMatch, features.CompanyRating, features.Pay}
	StudentFeatures = []string{features.Experience, features.TraitMatch, features.TrackRecord}
)

// TrainerConfig holds data thresholds and optimizer settings.
type TrainerConfig struct {
	MinSamples   int
	TestFraction float64
	Optimizer    ml.TrainConfig
	RidgeL2      float64
	KNNNeighbors int
}

// DefaultTrainerConfig returns the settings used when none are configured.
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		MinSamples:   DefaultMinSamples,
		TestFraction: 0.2,
		Optimizer:    ml.DefaultTrainConfig(),
		RidgeL2:      0.1,
		KNNNeighbors: 5,
	}
}

// Trained is a fitted model together with its held-out evaluation.
type Trained struct {
	Bundle  *ml.Bundle
	Metrics models.ModelMetrics
	Samples int
	Params  map[string]string
}

// TrainFunc fits one model type. The seed drives the train/test split and
// is recorded on the run.
type TrainFunc func(ctx context.Context, seed int64) (*Trained, error)

// Trainer owns the feature pipeline and estimator of every model type.
type Trainer struct {
	extractor *features.Extractor
	evaluator *evaluation.Evaluator
	cfg       TrainerConfig
	now       func() time.Time
}

// NewTrainer creates a Trainer. Zero config fields take their defaults.
func NewTrainer(extractor *features.Extractor, evaluator *evaluation.Evaluator, cfg TrainerConfig) *Trainer {
	def := DefaultTrainerConfig()
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = def.MinSamples
	}
	if cfg.TestFraction <= 0 || cfg.TestFraction >= 1 {
		cfg.TestFraction = def.TestFraction
	}
	if cfg.Optimizer.Epochs <= 0 {
		cfg.Optimizer = def.Optimizer
	}
	if cfg.RidgeL2 <= 0 {
		cfg.RidgeL2 = def.RidgeL2
	}
	if cfg.KNNNeighbors <= 0 {
		cfg.KNNNeighbors = def.KNNNeighbors
	}
	return &Trainer{extractor: extractor, evaluator: evaluator, cfg: cfg, now: time.Now}
}

// Extractor returns the feature extractor shared by training and scoring.
func (t *Trainer) Extractor() *features.Extractor { return t.extractor }

// Config returns the effective configuration.
func (t *Trainer) Config() TrainerConfig { return t.cfg }

// For returns a TrainFunc that reads a fresh snapshot from source on every call.
func (t *Trainer) For(mt models.ModelType, source store.Reader) TrainFunc {
	return func(ctx context.Context, seed int64) (*Trained, error) {
		snap, err := source.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		return t.Train(ctx, mt, snap, seed)
	}
}

// Train fits and evaluates mt on snap.
func (t *Trainer) Train(ctx context.Context, mt models.ModelType, snap *models.Snapshot, seed int64) (*Trained, error) {
	def, err := Lookup(mt)
	if err != nil {
		return nil, err
	}
	if def.Task == models.TaskRegression {
		return t.trainPay(ctx, snap, seed)
	}
	return t.trainRanker(ctx, def, snap, seed)
}

func (t *Trainer) trainRanker(ctx context.Context, def Definition, snap *models.Snapshot, seed int64) (*Trained, error) {
	ds := t.extractor.Extract(snap)
	if ds.Len() < t.cfg.MinSamples {
		return nil, insufficient(def.Type, ds.Len(), t.cfg.MinSamples)
	}

	samples := ds.All()
	x, y := features.Matrix(samples, def.Features)
	groups := make([]uint32, len(samples))
	for i, s := range samples {
		groups[i] = def.groupKey(s)
	}
	trainIdx, testIdx := ml.SplitByGroup(groups, t.cfg.TestFraction, seed)
	xTrain, yTrain := ml.Take(x, y, trainIdx)
	xTest, yTest := ml.Take(x, y, testIdx)

	opt := t.cfg.Optimizer
	opt.Seed = seed
	est, err := ml.FitLogistic(ctx, xTrain, yTrain, opt)
	if err != nil {
		return nil, err
	}
	bundle := &ml.Bundle{
		ModelType:    def.Type,
		FeatureNames: def.Features,
		Estimator:    est,
		TrainedAt:    t.now().UTC(),
	}

	metrics, err := t.evaluator.Classification(yTest, bundle.Predict(xTest))
	if err != nil {
		return nil, err
	}

	params := t.baseParams(def, len(samples), len(trainIdx), len(testIdx))
	params["estimator"] = est.Kind()
	params["positives"] = strconv.Itoa(len(ds.Positives))
	params["negatives"] = strconv.Itoa(len(ds.Negatives))
	params["l2"] = formatFloat(opt.L2)
	return &Trained{Bundle: bundle, Metrics: metrics, Samples: len(samples), Params: params}, nil
}

func (t *Trainer) trainPay(ctx context.Context, snap *models.Snapshot, seed int64) (*Trained, error) {
	def, _ := Lookup(models.JobPayPrediction)
	samples, enc := t.extractor.ExtractPay(snap)
	if len(samples) < t.cfg.MinSamples {
		return nil, insufficient(def.Type, len(samples), t.cfg.MinSamples)
	}

	x, y := features.PayMatrix(samples)
	keys := features.NewKeyEncoder()
	groups := make([]uint32, len(samples))
	for i, s := range samples {
		groups[i] = keys.Key(s.JobID)
	}
	trainIdx, testIdx := ml.SplitByGroup(groups, t.cfg.TestFraction, seed)
	xTrain, yTrain := ml.Take(x, y, trainIdx)
	xTest, yTest := ml.Take(x, y, testIdx)

	est, err := t.fitPayEstimator(ctx, AlgorithmLinear, xTrain, yTrain, seed)
	if err != nil {
		return nil, err
	}
	bundle := t.payBundle(est, enc)

	metrics, err := t.evaluator.Regression(yTest, bundle.Predict(xTest))
	if err != nil {
		return nil, err
	}

	params := t.baseParams(def, len(samples), len(trainIdx), len(testIdx))
	params["estimator"] = est.Kind()
	params["job_types"] = strconv.Itoa(len(enc.Means))
	return &Trained{Bundle: bundle, Metrics: metrics, Samples: len(samples), Params: params}, nil
}

// FitRanker fits a recommendation model on every labeled sample in snap
// without evaluation. It backs ephemeral scoring when nothing is deployed.
func (t *Trainer) FitRanker(ctx context.Context, mt models.ModelType, snap *models.Snapshot, seed int64) (*ml.Bundle, error) {
	def, err := Lookup(mt)
	if err != nil {
		return nil, err
	}
	if def.Task != models.TaskClassification {
		return nil, apperr.E(apperr.KindInvalidInput, "lifecycle.FitRanker", "%s is not a ranking model", mt)
	}
	ds := t.extractor.Extract(snap)
	if ds.Len() < t.cfg.MinSamples {
		return nil, insufficient(mt, ds.Len(), t.cfg.MinSamples)
	}
	x, y := features.Matrix(ds.All(), def.Features)
	opt := t.cfg.Optimizer
	opt.Seed = seed
	est, err := ml.FitLogistic(ctx, x, y, opt)
	if err != nil {
		return nil, err
	}
	return &ml.Bundle{ModelType: mt, FeatureNames: def.Features, Estimator: est, TrainedAt: t.now().UTC()}, nil
}

// FitPay fits a pay model with the named algorithm on every job with pay.
// AlgorithmProduction is not accepted here; the caller resolves it first.
func (t *Trainer) FitPay(ctx context.Context, algorithm string, snap *models.Snapshot, seed int64) (*ml.Bundle, error) {
	samples, enc := t.extractor.ExtractPay(snap)
	if len(samples) < t.cfg.MinSamples {
		return nil, insufficient(models.JobPayPrediction, len(samples), t.cfg.MinSamples)
	}
	x, y := features.PayMatrix(samples)
	est, err := t.fitPayEstimator(ctx, algorithm, x, y, seed)
	if err != nil {
		return nil, err
	}
	return t.payBundle(est, enc), nil
}

func (t *Trainer) fitPayEstimator(ctx context.Context, algorithm string, x [][]float64, y []float64, seed int64) (ml.Model, error) {
	opt := t.cfg.Optimizer
	opt.Seed = seed
	switch algorithm {
	case AlgorithmLinear:
		return ml.FitLinear(ctx, x, y, opt)
	case AlgorithmRidge:
		opt.L2 = t.cfg.RidgeL2
		return ml.FitLinear(ctx, x, y, opt)
	case AlgorithmKNN:
		return ml.FitKNN(x, y, t.cfg.KNNNeighbors)
	case AlgorithmMean:
		return ml.FitMean(y), nil
	default:
		return nil, apperr.E(apperr.KindInvalidInput, "lifecycle.FitPay", "unknown algorithm %q (want one of %s)",
			algorithm, strings.Join(PayAlgorithms(), ", "))
	}
}

func (t *Trainer) payBundle(est ml.Model, enc features.JobTypeEncoding) *ml.Bundle {
	return &ml.Bundle{
		ModelType:       models.JobPayPrediction,
		FeatureNames:    features.PayFeatureNames,
		Estimator:       est,
		TrainedAt:       t.now().UTC(),
		JobTypePay:      enc.Means,
		JobTypeFallback: enc.Fallback,
	}
}

func (t *Trainer) baseParams(def Definition, samples, train, test int) map[string]string {
	return map[string]string{
		"model_type":    string(def.Type),
		"task":          def.Task.String(),
		"features":      strings.Join(def.Features, ","),
		"samples":       strconv.Itoa(samples),
		"train_size":    strconv.Itoa(train),
		"test_size":     strconv.Itoa(test),
		"test_fraction": formatFloat(t.cfg.TestFraction),
		"epochs":        strconv.Itoa(t.cfg.Optimizer.Epochs),
		"learning_rate": formatFloat(t.cfg.Optimizer.LearningRate),
	}
}

func insufficient(mt models.ModelType, have, want int) error {
	return apperr.E(apperr.KindInsufficientData, "lifecycle.Train",
		"%s has %d labeled samples, need at least %d", mt, have, want)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
