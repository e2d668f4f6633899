// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package registry

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/jobmatch/internal/apperr"
	"github.com/tomtom215/jobmatch/internal/artifacts"
	"github.com/tomtom215/jobmatch/internal/models"
)

// Key prefixes for BadgerDB storage
const (
	experimentNamePrefix = "exp_name:"
	runPrefix            = "run:"
	registeredPrefix     = "rm:"
	versionPrefix        = "mv:"
)

type registeredModel struct {
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"created_at"`
	LatestVersion int       `json:"latest_version"`
}

// BadgerClient is an embedded registry backed by BadgerDB. Run artifacts go
// to an artifacts.Store under "<run_id>/<path>".
type BadgerClient struct {
	db        *badger.DB
	artifacts artifacts.Store
	now       func() time.Time

	// mu serializes version allocation and stage transitions.
	mu sync.Mutex
}

// NewBadgerClient wraps an open BadgerDB.
func NewBadgerClient(db *badger.DB, store artifacts.Store) *BadgerClient {
	return &BadgerClient{db: db, artifacts: store, now: time.Now}
}

// OpenBadger opens (or creates) a BadgerDB at path. An empty path opens an
// in-memory database.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger registry: %w", err)
	}
	return db, nil
}

func newRunID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func versionKey(name, version string) []byte {
	n, _ := strconv.Atoi(version) //nolint:errcheck // non-numeric versions sort as 0
	return []byte(fmt.Sprintf("%s%s:%010d", versionPrefix, name, n))
}

func getJSON(txn *badger.Txn, key []byte, v interface{}) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return txn.Set(key, data)
}

// GetOrCreateExperiment implements Client.
func (c *BadgerClient) GetOrCreateExperiment(_ context.Context, name string) (string, error) {
	var id string
	err := c.db.Update(func(txn *badger.Txn) error {
		key := []byte(experimentNamePrefix + name)
		item, err := txn.Get(key)
		if err == nil {
			return item.Value(func(val []byte) error {
				id = string(val)
				return nil
			})
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		id = uuid.NewString()
		return txn.Set(key, []byte(id))
	})
	if err != nil {
		return "", fmt.Errorf("get or create experiment %s: %w", name, err)
	}
	return id, nil
}

// CreateRun implements Client.
func (c *BadgerClient) CreateRun(_ context.Context, experimentID string, tags map[string]string) (*models.TrainingRun, error) {
	run := &models.TrainingRun{
		ExperimentID: experimentID,
		RunID:        newRunID(),
		Status:       models.RunRunning,
		StartedAt:    c.now().UTC(),
		Params:       map[string]string{},
		Metrics:      map[string]float64{},
		Tags:         map[string]string{},
	}
	for k, v := range tags {
		run.Tags[k] = v
	}
	run.ArtifactURI = "runs:/" + run.RunID

	err := c.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, []byte(runPrefix+run.RunID), run)
	})
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	return run, nil
}

func (c *BadgerClient) updateRun(runID string, fn func(*models.TrainingRun)) error {
	return c.db.Update(func(txn *badger.Txn) error {
		key := []byte(runPrefix + runID)
		var run models.TrainingRun
		if err := getJSON(txn, key, &run); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return apperr.E(apperr.KindNotFound, "registry.updateRun", "run %s not found", runID)
			}
			return err
		}
		fn(&run)
		return setJSON(txn, key, &run)
	})
}

// LogParams implements Client. Params are append-only: an existing key keeps
// its first value.
func (c *BadgerClient) LogParams(_ context.Context, runID string, params map[string]string) error {
	return c.updateRun(runID, func(run *models.TrainingRun) {
		if run.Params == nil {
			run.Params = map[string]string{}
		}
		for k, v := range params {
			if _, exists := run.Params[k]; !exists {
				run.Params[k] = v
			}
		}
	})
}

// LogMetrics implements Client.
func (c *BadgerClient) LogMetrics(_ context.Context, runID string, task models.Task, m models.ModelMetrics) error {
	return c.updateRun(runID, func(run *models.TrainingRun) {
		if run.Metrics == nil {
			run.Metrics = map[string]float64{}
		}
		for k, v := range EncodeMetrics(task, m) {
			run.Metrics[k] = v
		}
	})
}

// SetTerminated implements Client.
func (c *BadgerClient) SetTerminated(_ context.Context, runID string, status models.RunStatus) error {
	end := c.now().UTC()
	return c.updateRun(runID, func(run *models.TrainingRun) {
		run.Status = status
		run.EndedAt = end
	})
}

// GetRun implements Client.
func (c *BadgerClient) GetRun(_ context.Context, runID string) (*models.TrainingRun, error) {
	var run models.TrainingRun
	err := c.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, []byte(runPrefix+runID), &run)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, apperr.E(apperr.KindNotFound, "registry.GetRun", "run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	return &run, nil
}

// CreateRegisteredModel implements Client.
func (c *BadgerClient) CreateRegisteredModel(_ context.Context, name string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		key := []byte(registeredPrefix + name)
		_, err := txn.Get(key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return setJSON(txn, key, registeredModel{Name: name, CreatedAt: c.now().UTC()})
	})
}

// CreateModelVersion implements Client. Versions are numbered from 1.
func (c *BadgerClient) CreateModelVersion(_ context.Context, name, source, runID string) (*models.ModelVersion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var mv models.ModelVersion
	err := c.db.Update(func(txn *badger.Txn) error {
		rmKey := []byte(registeredPrefix + name)
		var rm registeredModel
		if err := getJSON(txn, rmKey, &rm); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return apperr.E(apperr.KindNotFound, "registry.CreateModelVersion", "registered model %s not found", name)
			}
			return err
		}
		rm.LatestVersion++
		now := c.now().UTC()
		mv = models.ModelVersion{
			Name:      name,
			Version:   strconv.Itoa(rm.LatestVersion),
			RunID:     runID,
			Stage:     models.StageNone,
			Source:    source,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := setJSON(txn, rmKey, rm); err != nil {
			return err
		}
		return setJSON(txn, versionKey(name, mv.Version), mv)
	})
	if err != nil {
		return nil, fmt.Errorf("create model version: %w", err)
	}
	return &mv, nil
}

// SetVersionTag implements Client.
func (c *BadgerClient) SetVersionTag(_ context.Context, name, version, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.db.Update(func(txn *badger.Txn) error {
		k := versionKey(name, version)
		var mv models.ModelVersion
		if err := getJSON(txn, k, &mv); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return apperr.E(apperr.KindNotFound, "registry.SetVersionTag", "version %s of %s not found", version, name)
			}
			return err
		}
		if mv.Tags == nil {
			mv.Tags = map[string]string{}
		}
		mv.Tags[key] = value
		return setJSON(txn, k, mv)
	})
}

// TransitionStage implements Client. Archiving the existing holders of the
// stage happens in the same transaction as the transition.
func (c *BadgerClient) TransitionStage(_ context.Context, name, version string, stage models.Stage, archiveExisting bool) (*models.ModelVersion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var target models.ModelVersion
	err := c.db.Update(func(txn *badger.Txn) error {
		key := versionKey(name, version)
		if err := getJSON(txn, key, &target); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return apperr.E(apperr.KindNotFound, "registry.TransitionStage", "version %s of %s not found", version, name)
			}
			return err
		}
		now := c.now().UTC()

		if archiveExisting && stage != models.StageNone && stage != models.StageArchived {
			all, err := scanVersions(txn, name)
			if err != nil {
				return err
			}
			for i := range all {
				v := all[i]
				if v.Version == target.Version || v.Stage != stage {
					continue
				}
				v.Stage = models.StageArchived
				v.UpdatedAt = now
				if err := setJSON(txn, versionKey(name, v.Version), v); err != nil {
					return err
				}
			}
		}

		target.Stage = stage
		target.UpdatedAt = now
		return setJSON(txn, key, target)
	})
	if err != nil {
		return nil, fmt.Errorf("transition %s v%s to %s: %w", name, version, stage, err)
	}
	applyVersionTags(&target)
	return &target, nil
}

func scanVersions(txn *badger.Txn, name string) ([]models.ModelVersion, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = true
	it := txn.NewIterator(opts)
	defer it.Close()

	var out []models.ModelVersion
	prefix := []byte(versionPrefix + name + ":")
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var mv models.ModelVersion
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &mv)
		})
		if err != nil {
			return nil, err
		}
		applyVersionTags(&mv)
		out = append(out, mv)
	}
	return out, nil
}

// SearchVersions implements Client.
func (c *BadgerClient) SearchVersions(_ context.Context, name string) ([]models.ModelVersion, error) {
	var out []models.ModelVersion
	err := c.db.View(func(txn *badger.Txn) error {
		var err error
		out, err = scanVersions(txn, name)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("search versions of %s: %w", name, err)
	}
	sortNewestFirst(out)
	return out, nil
}

// GetLatestVersions implements Client.
func (c *BadgerClient) GetLatestVersions(ctx context.Context, name string, stages ...models.Stage) ([]models.ModelVersion, error) {
	all, err := c.SearchVersions(ctx, name)
	if err != nil {
		return nil, err
	}
	return latestPerStage(all, stages), nil
}

// latestPerStage picks the newest version in each stage; all must be sorted
// newest first.
func latestPerStage(all []models.ModelVersion, stages []models.Stage) []models.ModelVersion {
	want := make(map[models.Stage]bool, len(stages))
	for _, s := range stages {
		want[s] = true
	}
	seen := make(map[models.Stage]bool)
	var out []models.ModelVersion
	for _, v := range all {
		if len(want) > 0 && !want[v.Stage] {
			continue
		}
		if seen[v.Stage] {
			continue
		}
		seen[v.Stage] = true
		out = append(out, v)
	}
	return out
}

// UploadArtifact implements Client.
func (c *BadgerClient) UploadArtifact(ctx context.Context, runID, path string, data []byte) (string, error) {
	if c.artifacts == nil {
		return "", apperr.E(apperr.KindUnavailable, "registry.UploadArtifact", "no artifact store configured")
	}
	return c.artifacts.Put(ctx, runID+"/"+path, data)
}

// DownloadArtifact implements Client.
func (c *BadgerClient) DownloadArtifact(ctx context.Context, runID, path string) ([]byte, error) {
	if c.artifacts == nil {
		return nil, apperr.E(apperr.KindUnavailable, "registry.DownloadArtifact", "no artifact store configured")
	}
	return c.artifacts.Get(ctx, runID+"/"+path)
}
