// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package store

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/tomtom215/jobmatch/internal/models"
)

// seedDocument is the on-disk seed file layout.
type seedDocument struct {
	Students     []models.Student     `json:"students"`
	Companies    []models.Company     `json:"companies"`
	Jobs         []models.Job         `json:"jobs"`
	Applications []models.Application `json:"applications"`
}

// ReadSeedFile parses a JSON seed file into a snapshot.
func ReadSeedFile(path string) (*models.Snapshot, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var doc seedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return &models.Snapshot{
		Students:     doc.Students,
		Companies:    doc.Companies,
		Jobs:         doc.Jobs,
		Applications: doc.Applications,
	}, nil
}

// WriteSeedFile writes snap in the seed file layout.
func WriteSeedFile(path string, snap *models.Snapshot) error {
	data, err := json.MarshalIndent(seedDocument{
		Students:     snap.Students,
		Companies:    snap.Companies,
		Jobs:         snap.Jobs,
		Applications: snap.Applications,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal seed: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write seed file: %w", err)
	}
	return nil
}

// Seed loads the seed file at path into db.
func (db *DB) Seed(ctx context.Context, path string) error {
	snap, err := ReadSeedFile(path)
	if err != nil {
		return err
	}
	return db.Load(ctx, snap)
}
