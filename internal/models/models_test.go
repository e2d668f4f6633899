// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package models

import "testing"

func TestParseModelType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    ModelType
		wantErr bool
	}{
		{"job_recommendation", JobRecommendation, false},
		{"JobRecommendation", JobRecommendation, false},
		{"StudentRecommendation", StudentRecommendation, false},
		{" job_pay_prediction ", JobPayPrediction, false},
		{"salary", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseModelType(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestModelType_Task(t *testing.T) {
	t.Parallel()

	if JobPayPrediction.Task() != TaskRegression {
		t.Error("pay prediction should be regression")
	}
	for _, mt := range []ModelType{JobRecommendation, StudentRecommendation} {
		if mt.Task() != TaskClassification {
			t.Errorf("%s should be classification", mt)
		}
	}
}

func TestApplicationStatus_Outcome(t *testing.T) {
	t.Parallel()

	tests := map[ApplicationStatus]Outcome{
		StatusHired:           OutcomePositive,
		StatusRatedByStudent:  OutcomePositive,
		StatusRatedByEmployer: OutcomePositive,
		StatusFinished:        OutcomePositive,
		StatusExpired:         OutcomeNegative,
		StatusPending:         OutcomeUnlabeled,
		StatusRejected:        OutcomeUnlabeled,
	}
	for status, want := range tests {
		if got := status.Outcome(); got != want {
			t.Errorf("%s.Outcome() = %v, want %v", status, got, want)
		}
	}
}

func TestModelMetrics_PrimaryClassification(t *testing.T) {
	t.Parallel()

	m := ModelMetrics{AUC: 0.7, PRAUC: 0.4}
	if name, v := m.PrimaryClassification(); name != "pr_auc" || v != 0.4 {
		t.Errorf("got %s=%v, want pr_auc=0.4", name, v)
	}

	m.PRAUC = 0
	if name, v := m.PrimaryClassification(); name != "auc" || v != 0.7 {
		t.Errorf("got %s=%v, want auc=0.7", name, v)
	}
}

func TestSnapshotIndex(t *testing.T) {
	t.Parallel()

	snap := &Snapshot{
		Students:     []Student{{ID: "s1"}},
		Jobs:         []Job{{ID: "j1"}, {ID: "j2"}},
		Applications: []Application{{ID: "a1", StudentID: "s1", JobID: "j1"}, {ID: "a2", StudentID: "s1", JobID: "j2"}},
	}
	idx := snap.Index()

	if len(idx.ByStudent["s1"]) != 2 {
		t.Errorf("ByStudent[s1] = %d, want 2", len(idx.ByStudent["s1"]))
	}
	if idx.Jobs["j2"] == nil || idx.Jobs["j2"].ID != "j2" {
		t.Error("job index broken")
	}
}
