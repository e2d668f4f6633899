// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package store

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/tomtom215/jobmatch/internal/models"
)

// FixtureConfig sizes a generated snapshot.
type FixtureConfig struct {
	Seed                   int64
	Now                    time.Time
	Students               int
	Companies              int
	PastJobs               int
	OpenJobs               int
	ApplicationsPerStudent int
}

// DefaultFixtureConfig is large enough for every model type to train.
func DefaultFixtureConfig(now time.Time) FixtureConfig {
	return FixtureConfig{
		Seed:                   7,
		Now:                    now,
		Students:               20,
		Companies:              5,
		PastJobs:               30,
		OpenJobs:               10,
		ApplicationsPerStudent: 6,
	}
}

var (
	fixtureTraits   = []string{"teamwork", "punctuality", "communication", "stamina", "accuracy"}
	fixtureJobTypes = []string{"catering", "logistics", "retail", "events"}
	fixtureBasePay  = map[string]float64{"catering": 14, "logistics": 18, "retail": 13, "events": 16}
	positiveStates  = []models.ApplicationStatus{
		models.StatusHired, models.StatusFinished, models.StatusRatedByStudent, models.StatusRatedByEmployer,
	}
)

// Fixture generates a deterministic snapshot for tests and local
// development. Outcomes correlate with trait match and employer rating so
// trained models have signal to find.
func Fixture(cfg FixtureConfig) *models.Snapshot {
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // reproducible test data
	snap := &models.Snapshot{}

	for i := 0; i < cfg.Companies; i++ {
		total := 5 + rng.Intn(20)
		snap.Companies = append(snap.Companies, models.Company{
			ID:          fmt.Sprintf("c%02d", i),
			Name:        fmt.Sprintf("Company %d", i),
			ThumbsUp:    rng.Intn(total + 1),
			ThumbsTotal: total,
		})
	}

	for i := 0; i < cfg.Students; i++ {
		skill := 0.1 + 0.9*rng.Float64()
		traits := make(map[string]models.TraitFeedback, len(fixtureTraits))
		for _, t := range fixtureTraits {
			total := 2 + rng.Intn(7)
			p := skill + 0.2*(rng.Float64()-0.5)
			pos := int(p*float64(total) + 0.5)
			if pos < 0 {
				pos = 0
			}
			if pos > total {
				pos = total
			}
			traits[t] = models.TraitFeedback{Positive: pos, Total: total}
		}
		snap.Students = append(snap.Students, models.Student{
			ID:     fmt.Sprintf("s%02d", i),
			Name:   fmt.Sprintf("Student %d", i),
			Traits: traits,
		})
	}

	newJob := func(id string, startsAt time.Time) models.Job {
		jobType := fixtureJobTypes[rng.Intn(len(fixtureJobTypes))]
		company := snap.Companies[rng.Intn(len(snap.Companies))]
		perm := rng.Perm(len(fixtureTraits))
		n := 1 + rng.Intn(3)
		required := make([]string, n)
		for k := 0; k < n; k++ {
			required[k] = fixtureTraits[perm[k]]
		}
		return models.Job{
			ID:             id,
			CompanyID:      company.ID,
			Title:          fmt.Sprintf("%s shift %s", jobType, id),
			Type:           jobType,
			HourlyPay:      fixtureBasePay[jobType] + 4*rng.Float64() + float64(n),
			RequiredTraits: required,
			StartsAt:       startsAt,
			DurationHours:  float64(4 + rng.Intn(60)),
		}
	}

	for i := 0; i < cfg.PastJobs; i++ {
		days := 10 + rng.Intn(190)
		snap.Jobs = append(snap.Jobs, newJob(fmt.Sprintf("j%03d", i), cfg.Now.Add(-time.Duration(days)*24*time.Hour)))
	}
	for i := 0; i < cfg.OpenJobs; i++ {
		days := 1 + rng.Intn(30)
		snap.Jobs = append(snap.Jobs, newJob(fmt.Sprintf("o%03d", i), cfg.Now.Add(time.Duration(days)*24*time.Hour)))
	}

	companies := make(map[string]models.Company, len(snap.Companies))
	for _, c := range snap.Companies {
		companies[c.ID] = c
	}

	seq := 0
	perStudent := cfg.ApplicationsPerStudent
	if perStudent > cfg.PastJobs {
		perStudent = cfg.PastJobs
	}
	for _, s := range snap.Students {
		for _, ji := range rng.Perm(cfg.PastJobs)[:perStudent] {
			job := snap.Jobs[ji]
			status := models.StatusExpired
			switch p := 0.1 + 0.7*fixtureMatch(s, job) + 0.2*fixtureRating(companies[job.CompanyID]); {
			case rng.Float64() < 0.1:
				status = models.StatusPending
			case rng.Float64() < p:
				status = positiveStates[rng.Intn(len(positiveStates))]
			}
			snap.Applications = append(snap.Applications, models.Application{
				ID:        fmt.Sprintf("a%04d", seq),
				StudentID: s.ID,
				JobID:     job.ID,
				Status:    status,
				CreatedAt: job.StartsAt.Add(-time.Duration(1+rng.Intn(14)) * 24 * time.Hour),
			})
			seq++
		}
	}
	return snap
}

func fixtureMatch(s models.Student, j models.Job) float64 {
	var sum float64
	for _, t := range j.RequiredTraits {
		if fb := s.Traits[t]; fb.Total > 0 {
			sum += float64(fb.Positive) / float64(fb.Total)
		}
	}
	return sum / float64(len(j.RequiredTraits))
}

func fixtureRating(c models.Company) float64 {
	if c.ThumbsTotal == 0 {
		return 0.5
	}
	return float64(c.ThumbsUp) / float64(c.ThumbsTotal)
}
