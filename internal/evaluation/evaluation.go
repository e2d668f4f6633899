// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

// Package evaluation computes model quality metrics on a held-out split.
//
// Classifiers get accuracy, ROC-AUC, PR-AUC (average precision), precision,
// recall, F1 and NDCG@10. Regressors get MAE, MSE, RMSE and R². Empty input is
// not an error: every metric is zero and a warning is logged.
package evaluation

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tomtom215/jobmatch/internal/apperr"
	"github.com/tomtom215/jobmatch/internal/models"
)

// DefaultThreshold is the probability at which a classifier predicts positive.
const DefaultThreshold = 0.5

// RankingCutoff is the K in NDCG@K.
const RankingCutoff = 10

// Evaluator computes metrics and logs degenerate evaluation slices.
type Evaluator struct {
	logger    zerolog.Logger
	threshold float64
}

// New creates an Evaluator using DefaultThreshold.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(logger zerolog.Logger) *Evaluator {
	return &Evaluator{
		logger:    logger.With().Str("component", "evaluator").Logger(),
		threshold: DefaultThreshold,
	}
}

// WithThreshold returns a copy of e that classifies at t.
func (e *Evaluator) WithThreshold(t float64) *Evaluator {
	c := *e
	c.threshold = t
	return &c
}

// Classification scores predicted probabilities against 0/1 labels.
func (e *Evaluator) Classification(labels, scores []float64) (models.ModelMetrics, error) {
	var m models.ModelMetrics
	if len(labels) != len(scores) {
		return m, apperr.E(apperr.KindInvalidInput, "evaluation.Classification",
			"%d labels but %d scores", len(labels), len(scores))
	}
	if len(labels) == 0 {
		e.logger.Warn().Msg("classification evaluation on empty test split, NDCG@10 is 0")
		return m, nil
	}

	var tp, fp, tn, fn float64
	for i, s := range scores {
		predicted := s >= e.threshold
		actual := isPositive(labels[i])
		switch {
		case predicted && actual:
			tp++
		case predicted && !actual:
			fp++
		case !predicted && actual:
			fn++
		default:
			tn++
		}
	}

	m.Accuracy = (tp + tn) / float64(len(labels))
	m.Precision = ratio(tp, tp+fp)
	m.Recall = ratio(tp, tp+fn)
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	m.AUC = AUC(labels, scores)
	m.PRAUC = AveragePrecision(labels, scores)
	m.NDCG10 = NDCGAtK(labels, scores, RankingCutoff)

	if tp+fn == 0 {
		e.logger.Warn().Int("rows", len(labels)).Msg("test split has no positive labels, ranking metrics are 0")
	}
	return m, nil
}

// Regression scores predicted values against true targets.
func (e *Evaluator) Regression(actual, predicted []float64) (models.ModelMetrics, error) {
	var m models.ModelMetrics
	if len(actual) != len(predicted) {
		return m, apperr.E(apperr.KindInvalidInput, "evaluation.Regression",
			"%d targets but %d predictions", len(actual), len(predicted))
	}
	if len(actual) == 0 {
		e.logger.Warn().Msg("regression evaluation on empty test split")
		return m, nil
	}

	n := float64(len(actual))
	var mean float64
	for _, v := range actual {
		mean += v
	}
	mean /= n

	var absSum, sqSum, totSum float64
	for i, v := range actual {
		d := v - predicted[i]
		absSum += math.Abs(d)
		sqSum += d * d
		totSum += (v - mean) * (v - mean)
	}

	m.MAE = absSum / n
	m.MSE = sqSum / n
	m.RMSE = math.Sqrt(m.MSE)
	switch {
	case totSum > 0:
		m.R2 = 1 - sqSum/totSum
	case sqSum == 0:
		m.R2 = 1
	}
	return m, nil
}

// AUC is the area under the ROC curve computed from the Mann-Whitney U
// statistic. Tied scores receive their average rank. It is 0 when either
// class is absent.
func AUC(labels, scores []float64) float64 {
	n := len(scores)
	if n == 0 || len(labels) != n {
		return 0
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] < scores[idx[b]] })

	var rankSumPos, pos float64
	for i := 0; i < n; {
		j := i
		for j+1 < n && scores[idx[j+1]] == scores[idx[i]] {
			j++
		}
		avgRank := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			if isPositive(labels[idx[k]]) {
				rankSumPos += avgRank
				pos++
			}
		}
		i = j + 1
	}

	neg := float64(n) - pos
	if pos == 0 || neg == 0 {
		return 0
	}
	return (rankSumPos - pos*(pos+1)/2) / (pos * neg)
}

// AveragePrecision summarizes the precision-recall curve as the mean of the
// precision measured at each positive, walking scores from highest to lowest.
func AveragePrecision(labels, scores []float64) float64 {
	if len(labels) == 0 || len(labels) != len(scores) {
		return 0
	}
	order := byScoreDesc(scores)

	var hits, sum float64
	for rank, i := range order {
		if isPositive(labels[i]) {
			hits++
			sum += hits / float64(rank+1)
		}
	}
	if hits == 0 {
		return 0
	}
	return sum / hits
}

// NDCGAtK takes the k highest-scored items, computes DCG with binary
// relevance and a log2(rank+2) discount, and divides by the DCG of the same
// items re-sorted by label then score. It is 0 when those items hold no
// positive label.
func NDCGAtK(labels, scores []float64, k int) float64 {
	if len(labels) == 0 || len(labels) != len(scores) || k <= 0 {
		return 0
	}
	top := byScoreDesc(scores)
	if len(top) > k {
		top = top[:k]
	}

	ideal := append([]int(nil), top...)
	sort.SliceStable(ideal, func(a, b int) bool {
		la, lb := relevance(labels[ideal[a]]), relevance(labels[ideal[b]])
		if la != lb {
			return la > lb
		}
		return scores[ideal[a]] > scores[ideal[b]]
	})

	idcg := dcg(labels, ideal)
	if idcg == 0 {
		return 0
	}
	return dcg(labels, top) / idcg
}

func dcg(labels []float64, order []int) float64 {
	var s float64
	for rank, i := range order {
		s += relevance(labels[i]) / math.Log2(float64(rank)+2)
	}
	return s
}

func byScoreDesc(scores []float64) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })
	return idx
}

func relevance(label float64) float64 {
	if isPositive(label) {
		return 1
	}
	return 0
}

func isPositive(label float64) bool { return label > 0.5 }

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
