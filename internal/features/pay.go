// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package features

import (
	"sort"

	"github.com/tomtom215/jobmatch/internal/models"
)

// Pay pipeline feature names.
const (
	JobTypePay = "job_type_pay"
	Duration   = "duration"
	TraitCount = "trait_count"
)

// PayFeatureNames is the column order of pay prediction rows.
var PayFeatureNames = []string{JobTypePay, CompanyRating, Duration, TraitCount}

const (
	maxDurationHours = 160.0
	maxTraitCount    = 5.0
)

// JobTypeEncoding maps a job type to its mean normalized hourly pay.
// Fallback is used for types not seen in training.
type JobTypeEncoding struct {
	Means    map[string]float64
	Fallback float64
}

// Lookup returns the encoded value for a job type.
func (j JobTypeEncoding) Lookup(jobType string) float64 {
	if v, ok := j.Means[jobType]; ok {
		return v
	}
	return j.Fallback
}

// PaySample is one job with a known hourly pay.
type PaySample struct {
	JobID   string
	JobType string
	Row     []float64
	Target  float64
}

// ExtractPay builds pay regression samples from every job with a positive
// hourly pay. During training the job type encoding excludes the sample's
// own pay so the target does not leak into its features.
func (e *Extractor) ExtractPay(snap *models.Snapshot) ([]PaySample, JobTypeEncoding) {
	idx := snap.Index()

	jobs := make([]*models.Job, 0, len(snap.Jobs))
	for i := range snap.Jobs {
		if snap.Jobs[i].HourlyPay > 0 {
			jobs = append(jobs, &snap.Jobs[i])
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })

	sums := make(map[string]float64)
	counts := make(map[string]int)
	var total float64
	for _, j := range jobs {
		p := e.PayScore(j.HourlyPay)
		sums[j.Type] += p
		counts[j.Type]++
		total += p
	}

	enc := JobTypeEncoding{Means: make(map[string]float64, len(sums)), Fallback: NeutralRating}
	if len(jobs) > 0 {
		enc.Fallback = total / float64(len(jobs))
	}
	for t, s := range sums {
		enc.Means[t] = s / float64(counts[t])
	}

	samples := make([]PaySample, 0, len(jobs))
	for _, j := range jobs {
		own := e.PayScore(j.HourlyPay)
		typePay := enc.Fallback
		if n := counts[j.Type]; n > 1 {
			typePay = (sums[j.Type] - own) / float64(n-1)
		}
		samples = append(samples, PaySample{
			JobID:   j.ID,
			JobType: j.Type,
			Row:     payRow(typePay, CompanyRatingScore(idx.Companies[j.CompanyID]), j.DurationHours, len(j.RequiredTraits)),
			Target:  j.HourlyPay,
		})
	}
	return samples, enc
}

// PayRow builds the request-time feature row for a pay prediction input.
func PayRow(enc JobTypeEncoding, in *models.PayInput, company *models.Company) []float64 {
	return payRow(enc.Lookup(in.JobType), CompanyRatingScore(company), in.DurationHours, len(in.RequiredTraits))
}

// PayMatrix splits samples into a feature matrix and targets.
func PayMatrix(samples []PaySample) (x [][]float64, y []float64) {
	x = make([][]float64, len(samples))
	y = make([]float64, len(samples))
	for i, s := range samples {
		x[i] = s.Row
		y[i] = s.Target
	}
	return x, y
}

func payRow(typePay, companyRating, durationHours float64, traits int) []float64 {
	return []float64{
		clamp01(typePay),
		companyRating,
		clamp01(durationHours / maxDurationHours),
		clamp01(float64(traits) / maxTraitCount),
	}
}
