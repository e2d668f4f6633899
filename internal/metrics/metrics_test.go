// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordTraining(t *testing.T) {
	before := testutil.ToFloat64(TrainingRuns.WithLabelValues("job_pay_prediction", "failed"))

	RecordTraining("job_pay_prediction", false, 2*time.Second)

	after := testutil.ToFloat64(TrainingRuns.WithLabelValues("job_pay_prediction", "failed"))
	if after-before != 1 {
		t.Errorf("failed runs delta = %v, want 1", after-before)
	}
}

func TestSetTrainingInProgress(t *testing.T) {
	SetTrainingInProgress(true)
	if got := testutil.ToFloat64(TrainingInProgress); got != 1 {
		t.Errorf("gauge = %v, want 1", got)
	}
	SetTrainingInProgress(false)
	if got := testutil.ToFloat64(TrainingInProgress); got != 0 {
		t.Errorf("gauge = %v, want 0", got)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	c := ModelCacheRequests.WithLabelValues("job_recommendation", "hit")
	before := testutil.ToFloat64(c)

	RecordCacheLookup("job_recommendation", "hit")
	RecordCacheLookup("job_recommendation", "hit")

	if got := testutil.ToFloat64(c) - before; got != 2 {
		t.Errorf("hits delta = %v, want 2", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	c := APIRequestsTotal.WithLabelValues("GET", "/api/v1/training/status", "200")
	before := testutil.ToFloat64(c)

	RecordAPIRequest("GET", "/api/v1/training/status", 200, 3*time.Millisecond)

	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("delta = %v, want 1", got)
	}
}
