// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

// Package features turns entity snapshots into numeric feature rows and
// labeled training samples.
//
// Every continuous feature lives in [0,1]. Entity identifiers are re-encoded
// as dense keys through a KeyEncoder that is valid for one training run or one
// request only; keys are never persisted and never compared across encoders.
package features

import (
	"sort"
	"time"

	"github.com/tomtom215/jobmatch/internal/models"
)

// Feature names. These are also the keys of models.FeatureWeights and the
// Feature field of explanations.
const (
	Experience    = "experience"
	TraitMatch    = "trait_match"
	CompanyRating = "company_rating"
	Pay           = "pay"
	TrackRecord   = "track_record"
)

// RowFeatureNames lists the Row columns in a fixed order.
var RowFeatureNames = []string{Experience, TraitMatch, CompanyRating, Pay, TrackRecord}

const (
	// MaxExperience caps the prior-application count.
	MaxExperience = 5

	// DefaultPayCeiling is the hourly pay that maps to 1.0.
	DefaultPayCeiling = 50.0

	// NeutralRating is used when an entity has no feedback yet.
	NeutralRating = 0.5
)

// Row holds every feature the pipelines draw from. Pipelines select the
// columns they need by name.
type Row struct {
	Experience    float64
	TraitMatch    float64
	CompanyRating float64
	Pay           float64
	TrackRecord   float64
}

// Get returns the named feature, or 0 for an unknown name.
func (r Row) Get(name string) float64 {
	switch name {
	case Experience:
		return r.Experience
	case TraitMatch:
		return r.TraitMatch
	case CompanyRating:
		return r.CompanyRating
	case Pay:
		return r.Pay
	case TrackRecord:
		return r.TrackRecord
	}
	return 0
}

// Select returns the named columns in order.
func (r Row) Select(names []string) []float64 {
	out := make([]float64, len(names))
	for i, n := range names {
		out[i] = r.Get(n)
	}
	return out
}

// Keys are the dense categorical keys of a sample.
type Keys struct {
	Student uint32
	Job     uint32
}

// TrainingSample is one labeled student/job pair.
type TrainingSample struct {
	Keys          Keys
	Row           Row
	Label         bool
	ApplicationID string
	JobType       string
}

// Dataset is the output of one extraction.
type Dataset struct {
	Positives []TrainingSample
	Negatives []TrainingSample

	// Students and Jobs are the key encoders used for this dataset.
	Students *KeyEncoder
	Jobs     *KeyEncoder
}

// Len returns the number of labeled samples.
func (d *Dataset) Len() int {
	return len(d.Positives) + len(d.Negatives)
}

// All returns positives followed by negatives.
func (d *Dataset) All() []TrainingSample {
	out := make([]TrainingSample, 0, d.Len())
	out = append(out, d.Positives...)
	return append(out, d.Negatives...)
}

// Matrix returns the selected columns of samples and their 0/1 labels.
func Matrix(samples []TrainingSample, names []string) (x [][]float64, y []float64) {
	x = make([][]float64, len(samples))
	y = make([]float64, len(samples))
	for i, s := range samples {
		x[i] = s.Row.Select(names)
		if s.Label {
			y[i] = 1
		}
	}
	return x, y
}

// Extractor computes features. The zero value is not usable; call New.
type Extractor struct {
	payCeiling float64
}

// New returns an extractor. A payCeiling <= 0 selects DefaultPayCeiling.
func New(payCeiling float64) *Extractor {
	if payCeiling <= 0 {
		payCeiling = DefaultPayCeiling
	}
	return &Extractor{payCeiling: payCeiling}
}

// Extract labels every historical application with a known outcome.
// Applications whose student or job no longer exists are skipped.
func (e *Extractor) Extract(snap *models.Snapshot) *Dataset {
	idx := snap.Index()
	ds := &Dataset{Students: NewKeyEncoder(), Jobs: NewKeyEncoder()}

	apps := make([]*models.Application, 0, len(snap.Applications))
	for i := range snap.Applications {
		apps = append(apps, &snap.Applications[i])
	}
	// Stable order so key assignment is reproducible for a given snapshot.
	sort.SliceStable(apps, func(i, j int) bool {
		if !apps[i].CreatedAt.Equal(apps[j].CreatedAt) {
			return apps[i].CreatedAt.Before(apps[j].CreatedAt)
		}
		return apps[i].ID < apps[j].ID
	})

	for _, app := range apps {
		outcome := app.Status.Outcome()
		if outcome == models.OutcomeUnlabeled {
			continue
		}
		student, ok := idx.Students[app.StudentID]
		if !ok {
			continue
		}
		job, ok := idx.Jobs[app.JobID]
		if !ok {
			continue
		}

		sample := TrainingSample{
			Keys: Keys{
				Student: ds.Students.Key(student.ID),
				Job:     ds.Jobs.Key(job.ID),
			},
			Row:           e.Row(idx, student, job, app),
			Label:         outcome == models.OutcomePositive,
			ApplicationID: app.ID,
			JobType:       job.Type,
		}
		if sample.Label {
			ds.Positives = append(ds.Positives, sample)
		} else {
			ds.Negatives = append(ds.Negatives, sample)
		}
	}

	return ds
}

// Row computes the feature row for a student/job pair. When app is non-nil
// only history strictly before app counts; otherwise the student's whole
// history counts, which is the request-time view of a new candidate.
func (e *Extractor) Row(idx *models.SnapshotIndex, student *models.Student, job *models.Job, app *models.Application) Row {
	return Row{
		Experience:    e.experience(idx, student.ID, job.Type, app),
		TraitMatch:    TraitMatchScore(student, job),
		CompanyRating: CompanyRatingScore(idx.Companies[job.CompanyID]),
		Pay:           e.PayScore(job.HourlyPay),
		TrackRecord:   trackRecord(idx, student.ID, app),
	}
}

func (e *Extractor) experience(idx *models.SnapshotIndex, studentID, jobType string, app *models.Application) float64 {
	count := 0
	for _, prior := range idx.ByStudent[studentID] {
		if !isBefore(prior, app) {
			continue
		}
		if j, ok := idx.Jobs[prior.JobID]; ok && j.Type == jobType {
			count++
		}
	}
	if count > MaxExperience {
		count = MaxExperience
	}
	return float64(count) / MaxExperience
}

// ExperienceCount converts a normalized experience feature back to an application count.
func ExperienceCount(v float64) int {
	return int(v*MaxExperience + 0.5)
}

// isBefore reports whether prior happened before ref. A nil ref means "now",
// and an application never counts as its own history.
func isBefore(prior, ref *models.Application) bool {
	if ref == nil {
		return true
	}
	if prior.ID == ref.ID {
		return false
	}
	if prior.CreatedAt.Equal(ref.CreatedAt) {
		return prior.ID < ref.ID
	}
	return prior.CreatedAt.Before(ref.CreatedAt)
}

// TraitMatchScore averages the student's positive-feedback ratio over the
// job's required traits. Traits without feedback contribute 0.
func TraitMatchScore(student *models.Student, job *models.Job) float64 {
	if len(job.RequiredTraits) == 0 {
		return 0
	}
	var sum float64
	for _, trait := range job.RequiredTraits {
		fb, ok := student.Traits[trait]
		if !ok || fb.Total <= 0 {
			continue
		}
		sum += clamp01(float64(fb.Positive) / float64(fb.Total))
	}
	return sum / float64(len(job.RequiredTraits))
}

// CompanyRatingScore is thumbs-up over total thumbs, or NeutralRating when
// the company is unknown or unrated.
func CompanyRatingScore(c *models.Company) float64 {
	if c == nil || c.ThumbsTotal <= 0 {
		return NeutralRating
	}
	return clamp01(float64(c.ThumbsUp) / float64(c.ThumbsTotal))
}

// PayScore normalizes hourly pay by the ceiling, clamped to [0,1].
func (e *Extractor) PayScore(hourly float64) float64 {
	return clamp01(hourly / e.payCeiling)
}

// trackRecord is the share of the student's earlier labeled applications
// that ended positively, NeutralRating without history.
func trackRecord(idx *models.SnapshotIndex, studentID string, app *models.Application) float64 {
	var pos, labeled int
	for _, prior := range idx.ByStudent[studentID] {
		if !isBefore(prior, app) {
			continue
		}
		switch prior.Status.Outcome() {
		case models.OutcomePositive:
			pos++
			labeled++
		case models.OutcomeNegative:
			labeled++
		}
	}
	if labeled == 0 {
		return NeutralRating
	}
	return float64(pos) / float64(labeled)
}

// IsOpen reports whether a job starts after now.
func IsOpen(job *models.Job, now time.Time) bool {
	return job.StartsAt.After(now)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
