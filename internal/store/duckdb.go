// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/goccy/go-json"

	"github.com/tomtom215/jobmatch/internal/apperr"
	"github.com/tomtom215/jobmatch/internal/logging"
	"github.com/tomtom215/jobmatch/internal/models"
)

// DB is a DuckDB-backed document store.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the store at path and ensures the schema exists.
// An empty path or ":memory:" opens an in-memory database.
func Open(ctx context.Context, path string) (*DB, error) {
	if path == "" {
		path = ":memory:"
	}
	if path != ":memory:" {
		// 0750 per gosec G301
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	// Disable auto-install/auto-load; the store uses no extensions.
	connStr := path + "?autoinstall_known_extensions=false&autoload_known_extensions=false"
	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.createTables(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logging.Debug().Str("path", path).Msg("document store opened")
	return db, nil
}

// Close closes the database.
func (db *DB) Close() error {
	return db.conn.Close()
}

func closeQuietly(conn *sql.DB) {
	if err := conn.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close database connection")
	}
}

var tableCreationQueries = []string{
	`CREATE TABLE IF NOT EXISTS students (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		traits TEXT NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS companies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		thumbs_up INTEGER NOT NULL DEFAULT 0,
		thumbs_total INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		company_id TEXT NOT NULL,
		title TEXT NOT NULL,
		type TEXT NOT NULL,
		hourly_pay DOUBLE NOT NULL DEFAULT 0,
		required_traits TEXT NOT NULL DEFAULT '[]',
		starts_at TIMESTAMP NOT NULL,
		duration_hours DOUBLE NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS applications (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL,
		job_id TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
}

func (db *DB) createTables(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	for _, query := range tableCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func putStudent(ctx context.Context, ex execer, s *models.Student) error {
	traits := s.Traits
	if traits == nil {
		traits = map[string]models.TraitFeedback{}
	}
	data, err := json.Marshal(traits)
	if err != nil {
		return fmt.Errorf("marshal traits of student %s: %w", s.ID, err)
	}
	_, err = ex.ExecContext(ctx,
		`INSERT OR REPLACE INTO students (id, name, traits) VALUES (?, ?, ?)`,
		s.ID, s.Name, string(data))
	if err != nil {
		return fmt.Errorf("insert student %s: %w", s.ID, err)
	}
	return nil
}

func putCompany(ctx context.Context, ex execer, c *models.Company) error {
	_, err := ex.ExecContext(ctx,
		`INSERT OR REPLACE INTO companies (id, name, thumbs_up, thumbs_total) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.ThumbsUp, c.ThumbsTotal)
	if err != nil {
		return fmt.Errorf("insert company %s: %w", c.ID, err)
	}
	return nil
}

func putJob(ctx context.Context, ex execer, j *models.Job) error {
	traits := j.RequiredTraits
	if traits == nil {
		traits = []string{}
	}
	data, err := json.Marshal(traits)
	if err != nil {
		return fmt.Errorf("marshal traits of job %s: %w", j.ID, err)
	}
	_, err = ex.ExecContext(ctx,
		`INSERT OR REPLACE INTO jobs (id, company_id, title, type, hourly_pay, required_traits, starts_at, duration_hours)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.CompanyID, j.Title, j.Type, j.HourlyPay, string(data), j.StartsAt.UTC(), j.DurationHours)
	if err != nil {
		return fmt.Errorf("insert job %s: %w", j.ID, err)
	}
	return nil
}

func putApplication(ctx context.Context, ex execer, a *models.Application) error {
	_, err := ex.ExecContext(ctx,
		`INSERT OR REPLACE INTO applications (id, student_id, job_id, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.StudentID, a.JobID, string(a.Status), a.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert application %s: %w", a.ID, err)
	}
	return nil
}

// PutStudent inserts or replaces a student.
func (db *DB) PutStudent(ctx context.Context, s *models.Student) error {
	return putStudent(ctx, db.conn, s)
}

// PutCompany inserts or replaces a company.
func (db *DB) PutCompany(ctx context.Context, c *models.Company) error {
	return putCompany(ctx, db.conn, c)
}

// PutJob inserts or replaces a job.
func (db *DB) PutJob(ctx context.Context, j *models.Job) error {
	return putJob(ctx, db.conn, j)
}

// PutApplication inserts or replaces an application.
func (db *DB) PutApplication(ctx context.Context, a *models.Application) error {
	return putApplication(ctx, db.conn, a)
}

// UpdateApplicationStatus moves an application to status.
func (db *DB) UpdateApplicationStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	res, err := db.conn.ExecContext(ctx, `UPDATE applications SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update application %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update application %s: %w", id, err)
	}
	if n == 0 {
		return apperr.E(apperr.KindNotFound, "store.UpdateApplicationStatus", "application %s not found", id)
	}
	return nil
}

// Load writes every record of snap in a single transaction.
func (db *DB) Load(ctx context.Context, snap *models.Snapshot) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

	for i := range snap.Companies {
		if err := putCompany(ctx, tx, &snap.Companies[i]); err != nil {
			return err
		}
	}
	for i := range snap.Students {
		if err := putStudent(ctx, tx, &snap.Students[i]); err != nil {
			return err
		}
	}
	for i := range snap.Jobs {
		if err := putJob(ctx, tx, &snap.Jobs[i]); err != nil {
			return err
		}
	}
	for i := range snap.Applications {
		if err := putApplication(ctx, tx, &snap.Applications[i]); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}
	return nil
}

// Snapshot implements Reader. All four tables are read in one transaction.
func (db *DB) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // read-only transaction

	snap := &models.Snapshot{}
	if snap.Students, err = queryStudents(ctx, tx); err != nil {
		return nil, err
	}
	if snap.Companies, err = queryCompanies(ctx, tx); err != nil {
		return nil, err
	}
	if snap.Jobs, err = queryJobs(ctx, tx); err != nil {
		return nil, err
	}
	if snap.Applications, err = queryApplications(ctx, tx); err != nil {
		return nil, err
	}
	return snap, nil
}

func queryStudents(ctx context.Context, tx *sql.Tx) ([]models.Student, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, name, traits FROM students ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	var out []models.Student
	for rows.Next() {
		var s models.Student
		var traits string
		if err := rows.Scan(&s.ID, &s.Name, &traits); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		if err := json.Unmarshal([]byte(traits), &s.Traits); err != nil {
			return nil, fmt.Errorf("decode traits of student %s: %w", s.ID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func queryCompanies(ctx context.Context, tx *sql.Tx) ([]models.Company, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, name, thumbs_up, thumbs_total FROM companies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	defer rows.Close()

	var out []models.Company
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.ThumbsUp, &c.ThumbsTotal); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func queryJobs(ctx context.Context, tx *sql.Tx) ([]models.Job, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, company_id, title, type, hourly_pay, required_traits, starts_at, duration_hours FROM jobs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var out []models.Job
	for rows.Next() {
		var j models.Job
		var traits string
		if err := rows.Scan(&j.ID, &j.CompanyID, &j.Title, &j.Type, &j.HourlyPay, &traits, &j.StartsAt, &j.DurationHours); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		if err := json.Unmarshal([]byte(traits), &j.RequiredTraits); err != nil {
			return nil, fmt.Errorf("decode traits of job %s: %w", j.ID, err)
		}
		j.StartsAt = j.StartsAt.UTC()
		out = append(out, j)
	}
	return out, rows.Err()
}

func queryApplications(ctx context.Context, tx *sql.Tx) ([]models.Application, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, student_id, job_id, status, created_at FROM applications ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	var out []models.Application
	for rows.Next() {
		var a models.Application
		var status string
		if err := rows.Scan(&a.ID, &a.StudentID, &a.JobID, &status, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		a.Status = models.ApplicationStatus(status)
		a.CreatedAt = a.CreatedAt.UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}
