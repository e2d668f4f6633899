// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package registry

import (
	"testing"

	"github.com/tomtom215/jobmatch/internal/models"
)

func TestEncodeMetrics_PerTask(t *testing.T) {
	m := models.ModelMetrics{AUC: 0.9, F1: 0.5, MAE: 3, RMSE: 4}

	cls := EncodeMetrics(models.TaskClassification, m)
	if _, ok := cls[MetricMAE]; ok {
		t.Error("classification metrics include mae")
	}
	if cls[MetricAUC] != 0.9 || cls[MetricNDCG10] != 0 {
		t.Errorf("classification = %v", cls)
	}

	reg := EncodeMetrics(models.TaskRegression, m)
	if _, ok := reg[MetricAUC]; ok {
		t.Error("regression metrics include auc")
	}
	if reg[MetricMAE] != 3 || reg[MetricRMSE] != 4 {
		t.Errorf("regression = %v", reg)
	}
}

func TestDecodeMetrics_IgnoresUnknown(t *testing.T) {
	got := DecodeMetrics(map[string]float64{MetricPRAUC: 0.4, "loss": 12})
	if got != (models.ModelMetrics{PRAUC: 0.4}) {
		t.Errorf("DecodeMetrics = %+v", got)
	}
}

func TestSortNewestFirst_Numeric(t *testing.T) {
	vs := []models.ModelVersion{{Version: "2"}, {Version: "10"}, {Version: "1"}}
	sortNewestFirst(vs)
	if vs[0].Version != "10" || vs[2].Version != "1" {
		t.Errorf("order = %v %v %v", vs[0].Version, vs[1].Version, vs[2].Version)
	}
}

func TestApplyVersionTags(t *testing.T) {
	v := models.ModelVersion{Tags: map[string]string{VersionTagComparison: "why", VersionTagReplaced: "4"}}
	applyVersionTags(&v)
	if v.ComparisonReason != "why" || v.ReplacedVersion != "4" {
		t.Errorf("applyVersionTags = %+v", v)
	}
}
