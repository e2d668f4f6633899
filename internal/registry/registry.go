// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

// Package registry talks to the model registry: experiments, runs, registered
// models, versions and their stages, and run artifacts.
//
// Two backends implement Client. BadgerClient is an embedded registry for a
// single instance; MLflowClient speaks the MLflow REST 2.0 API. Breaker wraps
// either one in a circuit breaker so a struggling registry fails fast with a
// KindUnavailable error.
//
// The typed models.ModelMetrics record crosses the wire as string-keyed
// floats; EncodeMetrics and DecodeMetrics are the only place that mapping
// lives.
package registry

import (
	"context"
	"sort"
	"strconv"

	"github.com/tomtom215/jobmatch/internal/models"
)

// Client is the model registry API used by the lifecycle orchestrator.
// Every call may fail remotely.
type Client interface {
	// GetOrCreateExperiment returns the experiment ID for name.
	GetOrCreateExperiment(ctx context.Context, name string) (string, error)

	CreateRun(ctx context.Context, experimentID string, tags map[string]string) (*models.TrainingRun, error)
	LogParams(ctx context.Context, runID string, params map[string]string) error
	LogMetrics(ctx context.Context, runID string, task models.Task, metrics models.ModelMetrics) error
	SetTerminated(ctx context.Context, runID string, status models.RunStatus) error
	GetRun(ctx context.Context, runID string) (*models.TrainingRun, error)

	// CreateRegisteredModel is idempotent.
	CreateRegisteredModel(ctx context.Context, name string) error
	CreateModelVersion(ctx context.Context, name, source, runID string) (*models.ModelVersion, error)
	SetVersionTag(ctx context.Context, name, version, key, value string) error

	// TransitionStage moves a version to stage. With archiveExisting, every
	// other version currently in that stage moves to Archived.
	TransitionStage(ctx context.Context, name, version string, stage models.Stage, archiveExisting bool) (*models.ModelVersion, error)

	// GetLatestVersions returns the newest version in each requested stage,
	// or in every stage when none are given.
	GetLatestVersions(ctx context.Context, name string, stages ...models.Stage) ([]models.ModelVersion, error)

	// SearchVersions returns all versions of name, newest first.
	SearchVersions(ctx context.Context, name string) ([]models.ModelVersion, error)

	UploadArtifact(ctx context.Context, runID, path string, data []byte) (string, error)
	DownloadArtifact(ctx context.Context, runID, path string) ([]byte, error)
}

// Run tag, param and version tag keys shared by the orchestrator and clients.
const (
	TagSeed               = "seed"
	TagFramework          = "framework"
	TagModelType          = "model_type"
	TagPreviousRunID      = "previous_production_run_id"
	TagPreviousVersion    = "previous_production_version"
	ParamComparisonResult = "comparison_result"
	ParamIsBetter         = "is_better"
	ParamLocalPath        = "model_local_path"
	ParamArtifactURI      = "model_artifact_uri"
	ParamError            = "error"

	VersionTagComparison = "comparison_reason"
	VersionTagReplaced   = "replaced_version"
)

// Metric keys on the wire.
const (
	MetricAccuracy  = "accuracy"
	MetricAUC       = "auc"
	MetricPRAUC     = "pr_auc"
	MetricPrecision = "precision"
	MetricRecall    = "recall"
	MetricF1        = "f1"
	MetricMAE       = "mae"
	MetricMSE       = "mse"
	MetricRMSE      = "rmse"
	MetricR2        = "r2"
	MetricNDCG10    = "ndcg_at_10"
)

// EncodeMetrics flattens the metrics relevant to task into wire key/values.
func EncodeMetrics(task models.Task, m models.ModelMetrics) map[string]float64 {
	if task == models.TaskRegression {
		return map[string]float64{
			MetricMAE:  m.MAE,
			MetricMSE:  m.MSE,
			MetricRMSE: m.RMSE,
			MetricR2:   m.R2,
		}
	}
	return map[string]float64{
		MetricAccuracy:  m.Accuracy,
		MetricAUC:       m.AUC,
		MetricPRAUC:     m.PRAUC,
		MetricPrecision: m.Precision,
		MetricRecall:    m.Recall,
		MetricF1:        m.F1,
		MetricNDCG10:    m.NDCG10,
	}
}

// DecodeMetrics is the inverse of EncodeMetrics. Unknown keys are ignored and
// missing keys stay zero.
func DecodeMetrics(kv map[string]float64) models.ModelMetrics {
	return models.ModelMetrics{
		Accuracy:  kv[MetricAccuracy],
		AUC:       kv[MetricAUC],
		PRAUC:     kv[MetricPRAUC],
		Precision: kv[MetricPrecision],
		Recall:    kv[MetricRecall],
		F1:        kv[MetricF1],
		MAE:       kv[MetricMAE],
		MSE:       kv[MetricMSE],
		RMSE:      kv[MetricRMSE],
		R2:        kv[MetricR2],
		NDCG10:    kv[MetricNDCG10],
	}
}

// applyVersionTags copies known version tags onto their typed fields.
func applyVersionTags(v *models.ModelVersion) {
	if v.Tags == nil {
		return
	}
	v.ComparisonReason = v.Tags[VersionTagComparison]
	v.ReplacedVersion = v.Tags[VersionTagReplaced]
}

// sortNewestFirst orders versions by numeric version descending.
func sortNewestFirst(vs []models.ModelVersion) {
	sort.SliceStable(vs, func(i, j int) bool {
		return versionNumber(vs[i].Version) > versionNumber(vs[j].Version)
	})
}

func versionNumber(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}
