// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package validation

import (
	"strings"
	"testing"

	"github.com/tomtom215/jobmatch/internal/apperr"
	"github.com/tomtom215/jobmatch/internal/lifecycle"
	"github.com/tomtom215/jobmatch/internal/models"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

type typedRequest struct {
	ModelType string `validate:"required,model_type"`
	Algorithm string `validate:"omitempty,pay_algorithm"`
	Limit     int    `validate:"min=1,max=100"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     typedRequest
		wantField string
		wantMsg   string
	}{
		{
			name:  "valid",
			input: typedRequest{ModelType: "job_recommendation", Algorithm: "knn", Limit: 10},
		},
		{
			name:  "legacy model type spelling",
			input: typedRequest{ModelType: "JobPayPrediction", Limit: 1},
		},
		{
			name:      "missing model type",
			input:     typedRequest{Limit: 10},
			wantField: "ModelType",
			wantMsg:   "ModelType is required",
		},
		{
			name:      "unknown model type",
			input:     typedRequest{ModelType: "churn", Limit: 10},
			wantField: "ModelType",
			wantMsg:   "must be a known model type",
		},
		{
			name:      "unknown algorithm",
			input:     typedRequest{ModelType: "job_recommendation", Algorithm: "forest", Limit: 10},
			wantField: "Algorithm",
			wantMsg:   "must be one of: production",
		},
		{
			name:      "limit above max",
			input:     typedRequest{ModelType: "job_recommendation", Limit: 500},
			wantField: "Limit",
			wantMsg:   "Limit must be at most 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&tt.input)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("unexpected error: %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("expected validation error")
			}
			msg, ok := verr.Fields()[tt.wantField]
			if !ok {
				t.Fatalf("fields = %v, want %s", verr.Fields(), tt.wantField)
			}
			if !strings.Contains(msg, tt.wantMsg) {
				t.Errorf("message = %q, want it to contain %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestValidateStruct_PayInput(t *testing.T) {
	verr := ValidateStruct(&models.PayInput{DurationHours: -1})
	if verr == nil {
		t.Fatal("expected errors")
	}
	if len(verr.Errors()) != 2 {
		t.Errorf("errors = %v, want job type and duration", verr.Errors())
	}
	if !strings.Contains(verr.Error(), "; ") {
		t.Errorf("combined message = %q", verr.Error())
	}
}

func TestCheck_InvalidInputKind(t *testing.T) {
	if err := Check("test", &models.PayInput{JobType: "barista"}); err != nil {
		t.Fatalf("valid input: %v", err)
	}
	err := Check("test", &models.PayInput{})
	if !apperr.IsInvalidInput(err) {
		t.Errorf("err = %v, want invalid input", err)
	}
}

func TestPayAlgorithms_MatchTrainer(t *testing.T) {
	want := lifecycle.PayAlgorithms()
	if strings.Join(PayAlgorithms, ",") != strings.Join(want, ",") {
		t.Errorf("PayAlgorithms = %v, trainer accepts %v", PayAlgorithms, want)
	}
}
