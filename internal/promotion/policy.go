// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

// Package promotion decides whether a freshly trained model replaces the one
// serving traffic. The Reason on every Decision is persisted with the
// training run and is the audit trail for why a model did or did not ship.
package promotion

import (
	"fmt"
	"math"

	"github.com/tomtom215/jobmatch/internal/models"
)

// Defaults for Policy.
const (
	DefaultImprovementThreshold = 0.05
	DefaultTieTolerance         = 0.01
)

// Decision is the outcome of a comparison.
type Decision struct {
	IsBetter bool   `json:"is_better"`
	Reason   string `json:"reason"`
}

// Policy compares candidate and production metrics.
type Policy struct {
	// ImprovementThreshold is the minimum relative improvement to promote.
	ImprovementThreshold float64

	// TieTolerance is the absolute distance within which two primary metrics
	// count as tied and the secondary metric decides.
	TieTolerance float64
}

// NewPolicy returns a Policy with default thresholds.
func NewPolicy() Policy {
	return Policy{
		ImprovementThreshold: DefaultImprovementThreshold,
		TieTolerance:         DefaultTieTolerance,
	}
}

// Compare decides whether candidate should replace current. A nil current
// means nothing is deployed yet.
func (p Policy) Compare(task models.Task, candidate models.ModelMetrics, current *models.ModelMetrics) Decision {
	if current == nil {
		return Decision{IsBetter: true, Reason: "cold start: no production model deployed"}
	}
	if task == models.TaskRegression {
		return p.compareRegression(candidate, *current)
	}
	return p.compareClassification(candidate, *current)
}

func (p Policy) compareClassification(candidate, current models.ModelMetrics) Decision {
	name, newPrimary := candidate.PrimaryClassification()
	curName, curPrimary := current.PrimaryClassification()
	if name != curName {
		// Compare like with like when one side lacks PR-AUC.
		name, newPrimary, curPrimary = "auc", candidate.AUC, current.AUC
	}

	rel := RelativeImprovement(newPrimary, curPrimary)
	if rel >= p.ImprovementThreshold {
		return Decision{
			IsBetter: true,
			Reason: fmt.Sprintf("%s improved %.4f -> %.4f (%+.2f%%, threshold %.2f%%)",
				name, curPrimary, newPrimary, rel*100, p.ImprovementThreshold*100),
		}
	}

	if math.Abs(newPrimary-curPrimary) <= p.TieTolerance {
		f1Rel := RelativeImprovement(candidate.F1, current.F1)
		if f1Rel >= p.ImprovementThreshold {
			return Decision{
				IsBetter: true,
				Reason: fmt.Sprintf("%s tied %.4f vs %.4f (within %.2f); f1 improved %.4f -> %.4f (%+.2f%%)",
					name, newPrimary, curPrimary, p.TieTolerance, current.F1, candidate.F1, f1Rel*100),
			}
		}
		return Decision{
			Reason: fmt.Sprintf("%s tied %.4f vs %.4f (within %.2f); f1 change %.4f -> %.4f (%+.2f%%) below threshold %.2f%%",
				name, newPrimary, curPrimary, p.TieTolerance, current.F1, candidate.F1, f1Rel*100, p.ImprovementThreshold*100),
		}
	}

	return Decision{
		Reason: fmt.Sprintf("%s %.4f -> %.4f (%+.2f%%) below threshold %.2f%%",
			name, curPrimary, newPrimary, rel*100, p.ImprovementThreshold*100),
	}
}

// Lower error is better, so improvement is measured as current minus new.
func (p Policy) compareRegression(candidate, current models.ModelMetrics) Decision {
	rel := ErrorReduction(candidate.MAE, current.MAE)
	if rel >= p.ImprovementThreshold {
		return Decision{
			IsBetter: true,
			Reason: fmt.Sprintf("mae improved %.4f -> %.4f (%+.2f%%, threshold %.2f%%)",
				current.MAE, candidate.MAE, rel*100, p.ImprovementThreshold*100),
		}
	}

	if math.Abs(candidate.MAE-current.MAE) <= p.TieTolerance {
		rmseRel := ErrorReduction(candidate.RMSE, current.RMSE)
		if rmseRel >= p.ImprovementThreshold {
			return Decision{
				IsBetter: true,
				Reason: fmt.Sprintf("mae tied %.4f vs %.4f (within %.2f); rmse improved %.4f -> %.4f (%+.2f%%)",
					candidate.MAE, current.MAE, p.TieTolerance, current.RMSE, candidate.RMSE, rmseRel*100),
			}
		}
		return Decision{
			Reason: fmt.Sprintf("mae tied %.4f vs %.4f (within %.2f); rmse change %.4f -> %.4f (%+.2f%%) below threshold %.2f%%",
				candidate.MAE, current.MAE, p.TieTolerance, current.RMSE, candidate.RMSE, rmseRel*100, p.ImprovementThreshold*100),
		}
	}

	return Decision{
		Reason: fmt.Sprintf("mae %.4f -> %.4f (%+.2f%%) below threshold %.2f%%",
			current.MAE, candidate.MAE, rel*100, p.ImprovementThreshold*100),
	}
}

// RelativeImprovement returns (candidate-current)/current. When current is
// zero it returns 1 if candidate is positive and 0 otherwise.
func RelativeImprovement(candidate, current float64) float64 {
	if current == 0 {
		if candidate > 0 {
			return 1
		}
		return 0
	}
	return (candidate - current) / current
}

// ErrorReduction returns (current-candidate)/current for an error metric.
// A current error of zero cannot be improved on.
func ErrorReduction(candidate, current float64) float64 {
	if current == 0 {
		return 0
	}
	return (current - candidate) / current
}
