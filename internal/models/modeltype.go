// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package models

import (
	"fmt"
	"strings"
)

// ModelType identifies one of the fixed model families the system trains.
type ModelType string

const (
	JobRecommendation     ModelType = "job_recommendation"
	StudentRecommendation ModelType = "student_recommendation"
	JobPayPrediction      ModelType = "job_pay_prediction"
)

// AllModelTypes returns every model type in training order.
func AllModelTypes() []ModelType {
	return []ModelType{JobRecommendation, StudentRecommendation, JobPayPrediction}
}

// Task is the learning task a model type solves.
type Task int

const (
	TaskClassification Task = iota
	TaskRegression
)

// String returns the task name.
func (t Task) String() string {
	if t == TaskRegression {
		return "regression"
	}
	return "classification"
}

// Task returns the learning task of the model type.
func (m ModelType) Task() Task {
	if m == JobPayPrediction {
		return TaskRegression
	}
	return TaskClassification
}

// Valid reports whether m is a known model type.
func (m ModelType) Valid() bool {
	switch m {
	case JobRecommendation, StudentRecommendation, JobPayPrediction:
		return true
	}
	return false
}

// ParseModelType accepts the canonical snake_case name as well as the
// PascalCase spelling used by older clients ("JobRecommendation").
func ParseModelType(s string) (ModelType, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	switch norm {
	case "job_recommendation", "jobrecommendation":
		return JobRecommendation, nil
	case "student_recommendation", "studentrecommendation":
		return StudentRecommendation, nil
	case "job_pay_prediction", "jobpayprediction":
		return JobPayPrediction, nil
	}
	return "", fmt.Errorf("unknown model type %q", s)
}
