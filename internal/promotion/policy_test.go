// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package promotion

import (
	"strings"
	"testing"

	"github.com/tomtom215/jobmatch/internal/models"
)

func TestCompare_ColdStart(t *testing.T) {
	t.Parallel()

	p := NewPolicy()
	for _, mt := range models.AllModelTypes() {
		d := p.Compare(mt.Task(), models.ModelMetrics{}, nil)
		if !d.IsBetter {
			t.Errorf("%s: cold start should promote", mt)
		}
		if !strings.Contains(d.Reason, "cold start") {
			t.Errorf("%s: reason = %q", mt, d.Reason)
		}
	}
}

func TestCompare_Classification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		candidate models.ModelMetrics
		current   models.ModelMetrics
		want      bool
		reasonHas string
	}{
		{
			name:      "pr-auc improves past threshold",
			candidate: models.ModelMetrics{PRAUC: 0.64, AUC: 0.7},
			current:   models.ModelMetrics{PRAUC: 0.60, AUC: 0.7},
			want:      true,
			reasonHas: "pr_auc improved 0.6000 -> 0.6400",
		},
		{
			name:      "pr-auc gain below threshold and outside tie",
			candidate: models.ModelMetrics{PRAUC: 0.62, F1: 0.9},
			current:   models.ModelMetrics{PRAUC: 0.60, F1: 0.5},
			want:      false,
			reasonHas: "below threshold",
		},
		{
			name:      "tie broken by f1",
			candidate: models.ModelMetrics{PRAUC: 0.605, F1: 0.60},
			current:   models.ModelMetrics{PRAUC: 0.600, F1: 0.50},
			want:      true,
			reasonHas: "f1 improved",
		},
		{
			name:      "tie without f1 gain",
			candidate: models.ModelMetrics{PRAUC: 0.605, F1: 0.51},
			current:   models.ModelMetrics{PRAUC: 0.600, F1: 0.50},
			want:      false,
			reasonHas: "tied",
		},
		{
			name:      "falls back to auc without pr-auc",
			candidate: models.ModelMetrics{AUC: 0.80},
			current:   models.ModelMetrics{AUC: 0.70},
			want:      true,
			reasonHas: "auc improved",
		},
		{
			name:      "current zero and candidate positive",
			candidate: models.ModelMetrics{AUC: 0.1},
			current:   models.ModelMetrics{},
			want:      true,
		},
		{
			name:      "worse candidate",
			candidate: models.ModelMetrics{PRAUC: 0.5},
			current:   models.ModelMetrics{PRAUC: 0.6},
			want:      false,
		},
	}

	p := NewPolicy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cur := tt.current
			d := p.Compare(models.TaskClassification, tt.candidate, &cur)
			if d.IsBetter != tt.want {
				t.Errorf("IsBetter = %v, want %v (%s)", d.IsBetter, tt.want, d.Reason)
			}
			if tt.reasonHas != "" && !strings.Contains(d.Reason, tt.reasonHas) {
				t.Errorf("Reason = %q, want substring %q", d.Reason, tt.reasonHas)
			}
		})
	}
}

func TestCompare_Regression(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		candidate models.ModelMetrics
		current   models.ModelMetrics
		want      bool
	}{
		{"mae drops 10%", models.ModelMetrics{MAE: 1.8, RMSE: 2}, models.ModelMetrics{MAE: 2, RMSE: 2}, true},
		{"mae drops 2%", models.ModelMetrics{MAE: 1.96, RMSE: 2}, models.ModelMetrics{MAE: 2, RMSE: 2}, false},
		{"identical metrics", models.ModelMetrics{MAE: 2, RMSE: 3}, models.ModelMetrics{MAE: 2, RMSE: 3}, false},
		{"mae tied and rmse improves", models.ModelMetrics{MAE: 2.005, RMSE: 2.5}, models.ModelMetrics{MAE: 2, RMSE: 3}, true},
		{"mae worse", models.ModelMetrics{MAE: 3, RMSE: 1}, models.ModelMetrics{MAE: 2, RMSE: 3}, false},
		{"current perfect", models.ModelMetrics{MAE: 0, RMSE: 0}, models.ModelMetrics{MAE: 0, RMSE: 0}, false},
	}

	p := NewPolicy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cur := tt.current
			d := p.Compare(models.TaskRegression, tt.candidate, &cur)
			if d.IsBetter != tt.want {
				t.Errorf("IsBetter = %v, want %v (%s)", d.IsBetter, tt.want, d.Reason)
			}
			if !strings.Contains(d.Reason, "mae") {
				t.Errorf("Reason %q should name mae", d.Reason)
			}
		})
	}
}

func TestRelativeImprovement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		candidate, current, want float64
	}{
		{0.55, 0.5, 0.1},
		{0.5, 0.5, 0},
		{0.3, 0, 1},
		{0, 0, 0},
	}
	for _, tt := range tests {
		got := RelativeImprovement(tt.candidate, tt.current)
		if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("RelativeImprovement(%v, %v) = %v, want %v", tt.candidate, tt.current, got, tt.want)
		}
	}
}
