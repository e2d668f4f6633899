// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package models

import "time"

// MessageTrainingInProgress is returned when a training request is rejected
// because another training is running in this process.
const MessageTrainingInProgress = "Training already in progress"

// TrainingResult is the outcome of training one model type.
type TrainingResult struct {
	ModelType            ModelType     `json:"model_type"`
	Success              bool          `json:"success"`
	Message              string        `json:"message"`
	RunID                string        `json:"run_id,omitempty"`
	Version              string        `json:"version,omitempty"`
	Metrics              ModelMetrics  `json:"metrics"`
	PromotedToProduction bool          `json:"promoted_to_production"`
	ComparisonReason     string        `json:"comparison_reason,omitempty"`
	Duration             time.Duration `json:"duration"`
}

// TrainAllResult aggregates per-type results of a train-all cycle.
type TrainAllResult struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Results []TrainingResult `json:"results,omitempty"`
}

// TrainingStatus is recomputed on every read.
type TrainingStatus struct {
	IsTraining    bool      `json:"is_training"`
	IsEnabled     bool      `json:"is_enabled"`
	ScheduledTime string    `json:"scheduled_time"`
	NextRun       time.Time `json:"next_run"`
	LastRunAt     time.Time `json:"last_run_at,omitempty"`
}
