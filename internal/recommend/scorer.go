// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package recommend

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/jobmatch/internal/apperr"
	"github.com/tomtom215/jobmatch/internal/features"
	"github.com/tomtom215/jobmatch/internal/lifecycle"
	"github.com/tomtom215/jobmatch/internal/logging"
	"github.com/tomtom215/jobmatch/internal/metrics"
	"github.com/tomtom215/jobmatch/internal/ml"
	"github.com/tomtom215/jobmatch/internal/modelcache"
	"github.com/tomtom215/jobmatch/internal/models"
	"github.com/tomtom215/jobmatch/internal/store"
)

// Limits on the number of results per request.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// EphemeralVersion marks results scored by a model fitted for one request.
const EphemeralVersion = "ephemeral"

// Fixed heuristic weights. Each set sums to 1.
var (
	JobHeuristicWeights = models.FeatureWeights{
		features.TraitMatch:    0.4,
		features.Experience:    0.2,
		features.CompanyRating: 0.2,
		features.Pay:           0.2,
	}
	StudentHeuristicWeights = models.FeatureWeights{
		features.TraitMatch:  0.5,
		features.Experience:  0.2,
		features.TrackRecord: 0.3,
	}
)

// ModelSource serves deployed models.
type ModelSource interface {
	LoadProductionModel(ctx context.Context, mt models.ModelType) (*modelcache.Entry, error)
}

// Options configures a Scorer. Snapshots and Trainer are required; without
// Models learned scoring always fits an ephemeral model.
type Options struct {
	Snapshots store.Reader
	Models    ModelSource
	Trainer   *lifecycle.Trainer
	Logger    zerolog.Logger

	// Seed seeds ephemeral fits. Zero uses 42.
	Seed int64
}

// Scorer produces ranked recommendations and pay predictions.
type Scorer struct {
	snapshots store.Reader
	models    ModelSource
	trainer   *lifecycle.Trainer
	extractor *features.Extractor
	logger    zerolog.Logger
	seed      int64
	now       func() time.Time
}

// NewScorer creates a Scorer.
func NewScorer(opts Options) *Scorer {
	seed := opts.Seed
	if seed == 0 {
		seed = 42
	}
	return &Scorer{
		snapshots: opts.Snapshots,
		models:    opts.Models,
		trainer:   opts.Trainer,
		extractor: opts.Trainer.Extractor(),
		logger:    opts.Logger.With().Str("component", "recommend").Logger(),
		seed:      seed,
		now:       time.Now,
	}
}

// candidate is one scoreable student/job pair.
type candidate struct {
	student *models.Student
	job     *models.Job
	app     *models.Application
	row     features.Row
}

// request is the resolved state of one recommendation call.
type request struct {
	modelType  models.ModelType
	kind       string
	mode       models.ScoringMode
	limit      int
	snap       *models.Snapshot
	candidates []candidate
}

// RecommendJobs ranks open jobs the student has not applied to.
func (s *Scorer) RecommendJobs(ctx context.Context, studentID string, mode models.ScoringMode, limit int) ([]models.RecommendationResult, error) {
	return s.recommend(ctx, models.JobRecommendation, "jobs", mode, limit, func(snap *models.Snapshot) []candidate {
		return s.jobCandidates(snap, studentID)
	})
}

// RecommendStudents ranks the students who applied to the job.
func (s *Scorer) RecommendStudents(ctx context.Context, jobID string, mode models.ScoringMode, limit int) ([]models.RecommendationResult, error) {
	return s.recommend(ctx, models.StudentRecommendation, "students", mode, limit, func(snap *models.Snapshot) []candidate {
		return s.studentCandidates(snap, jobID)
	})
}

func (s *Scorer) recommend(
	ctx context.Context,
	mt models.ModelType,
	kind string,
	mode models.ScoringMode,
	limit int,
	collect func(*models.Snapshot) []candidate,
) ([]models.RecommendationResult, error) {
	start := time.Now()
	req, err := s.prepareRequest(mt, kind, mode, limit)
	if err != nil {
		return nil, err
	}

	req.snap, err = s.snapshots.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	req.candidates = collect(req.snap)
	if len(req.candidates) == 0 {
		metrics.RecordRecommendation(kind, string(req.mode), time.Since(start))
		return []models.RecommendationResult{}, nil
	}

	var results []models.RecommendationResult
	if req.mode == models.ModeLearned {
		results = s.scoreLearned(ctx, req)
	}
	if results == nil {
		req.mode = models.ModeHeuristic
		results = s.scoreHeuristic(req)
	}

	metrics.RecordRecommendation(kind, string(req.mode), time.Since(start))
	return results, nil
}

func (s *Scorer) prepareRequest(mt models.ModelType, kind string, mode models.ScoringMode, limit int) (*request, error) {
	switch mode {
	case "":
		mode = models.ModeLearned
	case models.ModeHeuristic, models.ModeLearned:
	default:
		return nil, apperr.E(apperr.KindInvalidInput, "recommend", "unknown scoring mode %q", mode)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return &request{modelType: mt, kind: kind, mode: mode, limit: limit}, nil
}

func (s *Scorer) jobCandidates(snap *models.Snapshot, studentID string) []candidate {
	idx := snap.Index()
	student, ok := idx.Students[studentID]
	if !ok {
		return nil
	}
	applied := make(map[string]struct{}, len(idx.ByStudent[studentID]))
	for _, app := range idx.ByStudent[studentID] {
		applied[app.JobID] = struct{}{}
	}

	now := s.now()
	var out []candidate
	for i := range snap.Jobs {
		job := &snap.Jobs[i]
		if _, done := applied[job.ID]; done || !features.IsOpen(job, now) {
			continue
		}
		out = append(out, candidate{
			student: student,
			job:     job,
			row:     s.extractor.Row(idx, student, job, nil),
		})
	}
	return out
}

func (s *Scorer) studentCandidates(snap *models.Snapshot, jobID string) []candidate {
	idx := snap.Index()
	job, ok := idx.Jobs[jobID]
	if !ok {
		return nil
	}
	var out []candidate
	for _, app := range idx.ByJob[jobID] {
		student, ok := idx.Students[app.StudentID]
		if !ok {
			continue
		}
		out = append(out, candidate{
			student: student,
			job:     job,
			app:     app,
			row:     s.extractor.Row(idx, student, job, app),
		})
	}
	return out
}

// scoreLearned returns nil when no model can be had, which sends the
// request to heuristic scoring.
func (s *Scorer) scoreLearned(ctx context.Context, req *request) []models.RecommendationResult {
	log := s.logger.With().
		Str("model_type", string(req.modelType)).
		Str("correlation_id", logging.CorrelationIDFromContext(ctx)).
		Logger()

	bundle, version := s.productionModel(ctx, req.modelType, log)
	if bundle == nil {
		var err error
		bundle, err = s.trainer.FitRanker(ctx, req.modelType, req.snap, s.seed)
		if err != nil {
			if apperr.IsInsufficientData(err) {
				log.Debug().Err(err).Msg("too little history for a learned model, using heuristic")
			} else {
				log.Warn().Err(err).Msg("ephemeral model failed, using heuristic")
			}
			return nil
		}
		version = EphemeralVersion
	}

	rows := make([][]float64, len(req.candidates))
	for i, c := range req.candidates {
		rows[i] = c.row.Select(bundle.FeatureNames)
	}
	scores := bundle.Predict(rows)

	order := rank(req.candidates, scores)
	if len(order) > req.limit {
		order = order[:req.limit]
	}

	weights := s.featureWeights(ctx, req, bundle)
	out := make([]models.RecommendationResult, 0, len(order))
	for _, i := range order {
		c := req.candidates[i]
		r := s.result(req, c, scores[i])
		r.ModelVersion = version
		r.Explanations = Explain(c.row, bundle.FeatureNames, weights, c.job.HourlyPay)
		out = append(out, r)
	}
	return out
}

func (s *Scorer) productionModel(ctx context.Context, mt models.ModelType, log zerolog.Logger) (*ml.Bundle, string) {
	if s.models == nil {
		return nil, ""
	}
	entry, err := s.models.LoadProductionModel(ctx, mt)
	if err != nil {
		log.Warn().Err(err).Msg("production model unavailable, fitting ephemeral model")
		return nil, ""
	}
	if entry == nil {
		return nil, ""
	}
	return entry.Bundle, entry.Version
}

// featureWeights fits the auxiliary linear model on the labeled history.
// Without history it falls back to the model's own coefficients.
func (s *Scorer) featureWeights(ctx context.Context, req *request, bundle *ml.Bundle) models.FeatureWeights {
	ds := s.extractor.Extract(req.snap)
	if ds.Len() > 0 {
		x, y := features.Matrix(ds.All(), bundle.FeatureNames)
		cfg := s.trainer.Config().Optimizer
		cfg.Seed = s.seed
		return ml.FeatureWeights(ctx, bundle.FeatureNames, x, y, cfg)
	}
	if lr, ok := bundle.Estimator.(*ml.LogisticRegression); ok {
		return ml.NormalizeWeights(bundle.FeatureNames, lr.Weights)
	}
	return ml.NormalizeWeights(bundle.FeatureNames, nil)
}

func (s *Scorer) scoreHeuristic(req *request) []models.RecommendationResult {
	weights := JobHeuristicWeights
	if req.modelType == models.StudentRecommendation {
		weights = StudentHeuristicWeights
	}

	scores := make([]float64, len(req.candidates))
	for i, c := range req.candidates {
		scores[i] = HeuristicScore(c.row, weights)
	}
	order := rank(req.candidates, scores)
	if len(order) > req.limit {
		order = order[:req.limit]
	}

	out := make([]models.RecommendationResult, 0, len(order))
	for _, i := range order {
		out = append(out, s.result(req, req.candidates[i], scores[i]))
	}
	return out
}

// HeuristicScore is the weighted sum of the row's features, added in
// RowFeatureNames order so equal rows always score bit-identically.
func HeuristicScore(row features.Row, weights models.FeatureWeights) float64 {
	var score float64
	for _, name := range features.RowFeatureNames {
		if w, ok := weights[name]; ok {
			score += w * row.Get(name)
		}
	}
	return score
}

func (s *Scorer) result(req *request, c candidate, score float64) models.RecommendationResult {
	r := models.RecommendationResult{Score: score, Mode: req.mode}
	if req.modelType == models.StudentRecommendation {
		r.Student = c.student
		if c.app != nil {
			r.ApplicationID = c.app.ID
		}
	} else {
		r.Job = c.job
	}
	return r
}

// rank returns candidate indices by descending score. Ties keep a stable
// order by the recommended entity's ID.
func rank(cs []candidate, scores []float64) []int {
	order := make([]int, len(cs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		i, j := order[a], order[b]
		if scores[i] != scores[j] {
			return scores[i] > scores[j]
		}
		return entityID(cs[i]) < entityID(cs[j])
	})
	return order
}

func entityID(c candidate) string {
	if c.app != nil {
		return c.student.ID
	}
	return c.job.ID
}
