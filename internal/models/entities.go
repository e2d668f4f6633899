// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package models

import "time"

// ApplicationStatus is the lifecycle state of a student's application to a job.
type ApplicationStatus string

const (
	StatusPending         ApplicationStatus = "pending"
	StatusAccepted        ApplicationStatus = "accepted"
	StatusRejected        ApplicationStatus = "rejected"
	StatusHired           ApplicationStatus = "hired"
	StatusRatedByStudent  ApplicationStatus = "rated_by_student"
	StatusRatedByEmployer ApplicationStatus = "rated_by_employer"
	StatusFinished        ApplicationStatus = "finished"
	StatusExpired         ApplicationStatus = "expired"
)

// Outcome classifies an application status into a training label.
type Outcome int

const (
	// OutcomeUnlabeled statuses carry no signal and are excluded from training.
	OutcomeUnlabeled Outcome = iota
	OutcomePositive
	OutcomeNegative
)

// Outcome returns the training label class for the status.
func (s ApplicationStatus) Outcome() Outcome {
	switch s {
	case StatusHired, StatusRatedByStudent, StatusRatedByEmployer, StatusFinished:
		return OutcomePositive
	case StatusExpired:
		return OutcomeNegative
	default:
		return OutcomeUnlabeled
	}
}

// TraitFeedback counts how often a student was rated positively for a trait.
type TraitFeedback struct {
	Positive int `json:"positive"`
	Total    int `json:"total"`
}

// Student is a snapshot of a student record from the document store.
type Student struct {
	ID     string                   `json:"id"`
	Name   string                   `json:"name"`
	Traits map[string]TraitFeedback `json:"traits,omitempty"`
}

// Company is an employer. Thumbs are employer ratings left by students.
type Company struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ThumbsUp    int    `json:"thumbs_up"`
	ThumbsTotal int    `json:"thumbs_total"`
}

// Job is a posted job offer.
type Job struct {
	ID             string    `json:"id"`
	CompanyID      string    `json:"company_id"`
	Title          string    `json:"title"`
	Type           string    `json:"type"`
	HourlyPay      float64   `json:"hourly_pay"`
	RequiredTraits []string  `json:"required_traits,omitempty"`
	StartsAt       time.Time `json:"starts_at"`
	DurationHours  float64   `json:"duration_hours"`
}

// Application links a student to a job.
type Application struct {
	ID        string            `json:"id"`
	StudentID string            `json:"student_id"`
	JobID     string            `json:"job_id"`
	Status    ApplicationStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// Snapshot is a consistent read of every entity the core needs.
type Snapshot struct {
	Students     []Student
	Jobs         []Job
	Companies    []Company
	Applications []Application
}

// Index builds lookup maps over the snapshot.
func (s *Snapshot) Index() *SnapshotIndex {
	idx := &SnapshotIndex{
		Students:  make(map[string]*Student, len(s.Students)),
		Jobs:      make(map[string]*Job, len(s.Jobs)),
		Companies: make(map[string]*Company, len(s.Companies)),
		ByStudent: make(map[string][]*Application),
		ByJob:     make(map[string][]*Application),
	}
	for i := range s.Students {
		idx.Students[s.Students[i].ID] = &s.Students[i]
	}
	for i := range s.Jobs {
		idx.Jobs[s.Jobs[i].ID] = &s.Jobs[i]
	}
	for i := range s.Companies {
		idx.Companies[s.Companies[i].ID] = &s.Companies[i]
	}
	for i := range s.Applications {
		a := &s.Applications[i]
		idx.ByStudent[a.StudentID] = append(idx.ByStudent[a.StudentID], a)
		idx.ByJob[a.JobID] = append(idx.ByJob[a.JobID], a)
	}
	return idx
}

// SnapshotIndex holds pointer maps into a Snapshot. It must not outlive it.
type SnapshotIndex struct {
	Students  map[string]*Student
	Jobs      map[string]*Job
	Companies map[string]*Company
	ByStudent map[string][]*Application
	ByJob     map[string][]*Application
}
