// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package models

// ScoringMode selects how candidates are scored.
type ScoringMode string

const (
	ModeHeuristic ScoringMode = "heuristic"
	ModeLearned   ScoringMode = "learned"
)

// Explanation is one feature's contribution to a recommendation score.
type Explanation struct {
	Feature      string  `json:"feature"`
	Description  string  `json:"description"`
	Value        float64 `json:"value"`
	Contribution float64 `json:"contribution"`
}

// RecommendationResult is one ranked candidate. Exactly one of Job or Student is set.
type RecommendationResult struct {
	Job           *Job          `json:"job,omitempty"`
	Student       *Student      `json:"student,omitempty"`
	ApplicationID string        `json:"application_id,omitempty"`
	Score         float64       `json:"score"`
	Mode          ScoringMode   `json:"mode"`
	ModelVersion  string        `json:"model_version,omitempty"`
	Explanations  []Explanation `json:"explanations,omitempty"`
}

// FeatureWeights maps feature name to a non-negative weight; weights sum to 1.
type FeatureWeights map[string]float64

// PayInput describes a hypothetical job for pay prediction.
type PayInput struct {
	JobType        string   `json:"job_type" validate:"required"`
	CompanyID      string   `json:"company_id"`
	DurationHours  float64  `json:"duration_hours" validate:"gte=0"`
	RequiredTraits []string `json:"required_traits"`
}

// PayPrediction is the predicted hourly pay.
type PayPrediction struct {
	Algorithm    string      `json:"algorithm"`
	HourlyPay    float64     `json:"hourly_pay"`
	Mode         ScoringMode `json:"mode"`
	ModelVersion string      `json:"model_version,omitempty"`
}
