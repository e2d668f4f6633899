// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

/*
Package models defines the data structures shared across Jobmatch.

Key Components:

  - Entities: Student, Company, Job, Application and the Snapshot that
    bundles them for a training or scoring pass
  - Model types: ModelType and Task, with job_recommendation and
    student_recommendation as classification and job_pay_prediction as
    regression
  - Registry records: ModelVersion, Stage and TrainingRun
  - Metrics: ModelMetrics, the union of classification and regression scores
  - Results: TrainingResult, TrainAllResult, RecommendationResult and
    PayPrediction

Usage Example:

	import "github.com/tomtom215/jobmatch/internal/models"

	mt, err := models.ParseModelType("job_pay_prediction")
	if err != nil {
	    return err
	}
	if mt.Task() == models.TaskRegression {
	    // ...
	}

	idx := snap.Index()
	student := idx.Students["s1"]

Application outcomes:

Hired, rated and finished applications are positive. Expired applications
are negative. Every other status is unlabeled and excluded from training.

Thread Safety:

Models are plain data. A Snapshot and its SnapshotIndex are safe for
concurrent reads once built.
*/
package models
