// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

// Package store is the document store the core reads its entity snapshots
// from: students, jobs, companies and applications.
//
// DuckDB holds the records. The core only ever reads a full Snapshot; the
// write paths exist for seeding and for the application status updates that
// produce training labels.
package store

import (
	"context"

	"github.com/tomtom215/jobmatch/internal/models"
)

// Reader returns a consistent snapshot of every entity.
type Reader interface {
	Snapshot(ctx context.Context) (*models.Snapshot, error)
}

// Static serves a fixed snapshot. Each call returns a fresh copy so callers
// may index and mutate it freely.
type Static struct {
	Snap models.Snapshot
}

// Snapshot implements Reader.
func (s *Static) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &models.Snapshot{
		Students:     append([]models.Student(nil), s.Snap.Students...),
		Jobs:         append([]models.Job(nil), s.Snap.Jobs...),
		Companies:    append([]models.Company(nil), s.Snap.Companies...),
		Applications: append([]models.Application(nil), s.Snap.Applications...),
	}, nil
}
