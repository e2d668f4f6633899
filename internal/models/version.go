// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package models

import (
	"fmt"
	"strings"
	"time"
)

// Stage is the lifecycle stage of a registered model version.
type Stage string

const (
	StageNone       Stage = "None"
	StageStaging    Stage = "Staging"
	StageProduction Stage = "Production"
	StageArchived   Stage = "Archived"
)

// ParseStage is case-insensitive.
func ParseStage(s string) (Stage, error) {
	for _, st := range []Stage{StageNone, StageStaging, StageProduction, StageArchived} {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown stage %q", s)
}

// ModelVersion identifies one trained artifact in the registry.
type ModelVersion struct {
	Name      string       `json:"name"`
	Version   string       `json:"version"`
	RunID     string       `json:"run_id"`
	Stage     Stage        `json:"stage"`
	Source    string       `json:"source,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Metrics   ModelMetrics `json:"metrics"`

	// Tags are free-form version annotations kept by the registry.
	Tags map[string]string `json:"tags,omitempty"`

	// ComparisonReason is the promotion policy rationale recorded with the run.
	ComparisonReason string `json:"comparison_reason,omitempty"`

	// ReplacedVersion is the production version this one displaced, if any.
	ReplacedVersion string `json:"replaced_version,omitempty"`
}

// RunStatus is the terminal status of a training run.
type RunStatus string

const (
	RunRunning  RunStatus = "RUNNING"
	RunFinished RunStatus = "FINISHED"
	RunFailed   RunStatus = "FAILED"
)

// TrainingRun is one execution of the train/evaluate cycle.
type TrainingRun struct {
	ExperimentID   string             `json:"experiment_id"`
	ExperimentName string             `json:"experiment_name,omitempty"`
	RunID          string             `json:"run_id"`
	Status         RunStatus          `json:"status"`
	StartedAt      time.Time          `json:"started_at"`
	EndedAt        time.Time          `json:"ended_at,omitempty"`
	ArtifactURI    string             `json:"artifact_uri,omitempty"`
	Params         map[string]string  `json:"params,omitempty"`
	Metrics        map[string]float64 `json:"metrics,omitempty"`
	Tags           map[string]string  `json:"tags,omitempty"`
}
