// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package features

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/tomtom215/jobmatch/internal/models"
)

var t0 = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

func TestExtract_PositiveAndNegativeCounts(t *testing.T) {
	t.Parallel()

	snap := &models.Snapshot{
		Students:  []models.Student{{ID: "s1"}, {ID: "s2"}, {ID: "s3"}},
		Companies: []models.Company{{ID: "c1", ThumbsUp: 3, ThumbsTotal: 4}},
	}
	for i := 0; i < 15; i++ {
		jobID := fmt.Sprintf("j%d", i)
		snap.Jobs = append(snap.Jobs, models.Job{ID: jobID, CompanyID: "c1", Type: "barista", HourlyPay: 15})
		status := models.StatusFinished
		if i >= 10 {
			status = models.StatusExpired
		}
		snap.Applications = append(snap.Applications, models.Application{
			ID:        fmt.Sprintf("a%d", i),
			StudentID: fmt.Sprintf("s%d", i%3+1),
			JobID:     jobID,
			Status:    status,
			CreatedAt: t0.Add(time.Duration(i) * time.Hour),
		})
	}

	ds := New(0).Extract(snap)

	if len(ds.Positives) != 10 {
		t.Errorf("positives = %d, want 10", len(ds.Positives))
	}
	if len(ds.Negatives) != 5 {
		t.Errorf("negatives = %d, want 5", len(ds.Negatives))
	}
	if ds.Len() != 15 {
		t.Errorf("Len() = %d, want 15", ds.Len())
	}
	if ds.Students.Len() != 3 {
		t.Errorf("student keys = %d, want 3", ds.Students.Len())
	}
}

func TestExtract_SkipsMissingEntitiesAndUnlabeled(t *testing.T) {
	t.Parallel()

	snap := &models.Snapshot{
		Students: []models.Student{{ID: "s1"}},
		Jobs:     []models.Job{{ID: "j1", Type: "tutor"}},
		Applications: []models.Application{
			{ID: "a1", StudentID: "s1", JobID: "j1", Status: models.StatusHired},
			{ID: "a2", StudentID: "ghost", JobID: "j1", Status: models.StatusHired},
			{ID: "a3", StudentID: "s1", JobID: "deleted", Status: models.StatusExpired},
			{ID: "a4", StudentID: "s1", JobID: "j1", Status: models.StatusPending},
		},
	}

	ds := New(0).Extract(snap)
	if ds.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", ds.Len())
	}
	if ds.Positives[0].ApplicationID != "a1" {
		t.Errorf("kept %s, want a1", ds.Positives[0].ApplicationID)
	}
}

func TestExperience_CountsPriorSameTypeAndCaps(t *testing.T) {
	t.Parallel()

	snap := &models.Snapshot{
		Students: []models.Student{{ID: "s1"}},
		Jobs: []models.Job{
			{ID: "target", Type: "waiter"},
			{ID: "other", Type: "cleaner"},
		},
	}
	for i := 0; i < 7; i++ {
		id := fmt.Sprintf("w%d", i)
		snap.Jobs = append(snap.Jobs, models.Job{ID: id, Type: "waiter"})
		snap.Applications = append(snap.Applications, models.Application{ID: "p" + id, StudentID: "s1", JobID: id, CreatedAt: t0})
	}
	snap.Applications = append(snap.Applications, models.Application{ID: "pother", StudentID: "s1", JobID: "other", CreatedAt: t0})

	idx := snap.Index()
	row := New(0).Row(idx, idx.Students["s1"], idx.Jobs["target"], nil)
	if row.Experience != 1 {
		t.Errorf("experience = %v, want 1 (capped at %d)", row.Experience, MaxExperience)
	}
	if got := ExperienceCount(row.Experience); got != MaxExperience {
		t.Errorf("ExperienceCount = %d, want %d", got, MaxExperience)
	}

	// Only history strictly before the application counts.
	app := &models.Application{ID: "zz", StudentID: "s1", JobID: "target", CreatedAt: t0.Add(-time.Hour)}
	row = New(0).Row(idx, idx.Students["s1"], idx.Jobs["target"], app)
	if row.Experience != 0 {
		t.Errorf("experience before any history = %v, want 0", row.Experience)
	}
}

func TestTraitMatchScore(t *testing.T) {
	t.Parallel()

	student := &models.Student{Traits: map[string]models.TraitFeedback{
		"punctual": {Positive: 4, Total: 4},
		"friendly": {Positive: 1, Total: 2},
		"unrated":  {Positive: 0, Total: 0},
	}}

	tests := []struct {
		name   string
		traits []string
		want   float64
	}{
		{"no required traits", nil, 0},
		{"full match", []string{"punctual"}, 1},
		{"average", []string{"punctual", "friendly"}, 0.75},
		{"missing trait counts zero", []string{"punctual", "strong"}, 0.5},
		{"unrated trait counts zero", []string{"unrated"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TraitMatchScore(student, &models.Job{RequiredTraits: tt.traits})
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompanyRatingScore_NeutralPrior(t *testing.T) {
	t.Parallel()

	if got := CompanyRatingScore(nil); got != NeutralRating {
		t.Errorf("nil company = %v, want %v", got, NeutralRating)
	}
	if got := CompanyRatingScore(&models.Company{}); got != NeutralRating {
		t.Errorf("unrated company = %v, want %v", got, NeutralRating)
	}
	if got := CompanyRatingScore(&models.Company{ThumbsUp: 0, ThumbsTotal: 5}); got != 0 {
		t.Errorf("all thumbs down = %v, want 0", got)
	}
}

func TestPayScore_Clamped(t *testing.T) {
	t.Parallel()

	e := New(40)
	if got := e.PayScore(20); got != 0.5 {
		t.Errorf("PayScore(20) = %v, want 0.5", got)
	}
	if got := e.PayScore(400); got != 1 {
		t.Errorf("PayScore(400) = %v, want 1", got)
	}
	if got := e.PayScore(-3); got != 0 {
		t.Errorf("PayScore(-3) = %v, want 0", got)
	}
}

func TestKeyEncoder(t *testing.T) {
	t.Parallel()

	k := NewKeyEncoder()
	a, b := k.Key("alice"), k.Key("bob")
	if a != 1 || b != 2 || k.Key("alice") != 1 {
		t.Errorf("keys = %d,%d; want 1,2 and stable", a, b)
	}
	if k.ID(2) != "bob" || k.ID(0) != "" || k.ID(9) != "" {
		t.Error("reverse lookup broken")
	}
	if _, ok := k.Lookup("carol"); ok {
		t.Error("Lookup must not assign")
	}
}

func TestExtractPay_LeaveOneOutEncoding(t *testing.T) {
	t.Parallel()

	snap := &models.Snapshot{Jobs: []models.Job{
		{ID: "j1", Type: "tutor", HourlyPay: 20},
		{ID: "j2", Type: "tutor", HourlyPay: 30},
		{ID: "j3", Type: "cleaner", HourlyPay: 10},
		{ID: "j4", Type: "cleaner", HourlyPay: 0},
	}}

	samples, enc := New(50).ExtractPay(snap)
	if len(samples) != 3 {
		t.Fatalf("samples = %d, want 3 (zero pay excluded)", len(samples))
	}
	// j1's type feature is j2's pay only.
	if got := samples[0].Row[0]; math.Abs(got-0.6) > 1e-9 {
		t.Errorf("j1 job_type_pay = %v, want 0.6", got)
	}
	if got := enc.Lookup("tutor"); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("tutor encoding = %v, want 0.5", got)
	}
	if got := enc.Lookup("astronaut"); math.Abs(got-enc.Fallback) > 1e-9 {
		t.Errorf("unknown type = %v, want fallback %v", got, enc.Fallback)
	}
}
