// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package lifecycle

import (
	"github.com/tomtom215/jobmatch/internal/apperr"
	"github.com/tomtom215/jobmatch/internal/features"
	"github.com/tomtom215/jobmatch/internal/models"
	"github.com/tomtom215/jobmatch/internal/promotion"
)

// Definition is everything the lifecycle needs to know about one model type.
type Definition struct {
	Type            models.ModelType `json:"type"`
	Experiment      string           `json:"experiment"`
	RegisteredModel string           `json:"registered_model"`
	Task            models.Task      `json:"-"`
	TaskName        string           `json:"task"`
	Features        []string         `json:"features"`

	// groupKey picks the categorical key that keeps related samples on one
	// side of the train/test split.
	groupKey func(features.TrainingSample) uint32
}

// Compare applies the comparison strategy of the definition's task.
func (d Definition) Compare(p promotion.Policy, candidate models.ModelMetrics, current *models.ModelMetrics) promotion.Decision {
	return p.Compare(d.Task, candidate, current)
}

var definitions = []Definition{
	{
		Type:            models.JobRecommendation,
		Experiment:      "jobmatch/job-recommendation",
		RegisteredModel: "jobmatch-job-recommendation",
		Task:            models.TaskClassification,
		Features:        JobFeatures,
		// Jobs are recommended to students, so held-out students measure
		// how the model generalizes to someone it has not seen.
		groupKey: func(s features.TrainingSample) uint32 { return s.Keys.Student },
	},
	{
		Type:            models.StudentRecommendation,
		Experiment:      "jobmatch/student-recommendation",
		RegisteredModel: "jobmatch-student-recommendation",
		Task:            models.TaskClassification,
		Features:        StudentFeatures,
		groupKey:        func(s features.TrainingSample) uint32 { return s.Keys.Job },
	},
	{
		Type:            models.JobPayPrediction,
		Experiment:      "jobmatch/job-pay-prediction",
		RegisteredModel: "jobmatch-job-pay-prediction",
		Task:            models.TaskRegression,
		Features:        features.PayFeatureNames,
		groupKey:        func(s features.TrainingSample) uint32 { return s.Keys.Job },
	},
}

var definitionsByType = func() map[models.ModelType]Definition {
	m := make(map[models.ModelType]Definition, len(definitions))
	for _, d := range definitions {
		d.TaskName = d.Task.String()
		m[d.Type] = d
	}
	return m
}()

// Lookup returns the definition of mt.
func Lookup(mt models.ModelType) (Definition, error) {
	d, ok := definitionsByType[mt]
	if !ok {
		return Definition{}, apperr.E(apperr.KindInvalidInput, "lifecycle.Lookup", "unknown model type %q", mt)
	}
	return d, nil
}

// Definitions returns every model type definition in declaration order.
func Definitions() []Definition {
	out := make([]Definition, 0, len(definitions))
	for _, d := range definitions {
		out = append(out, definitionsByType[d.Type])
	}
	return out
}
