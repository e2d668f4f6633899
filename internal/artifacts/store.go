// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

// Package artifacts stores serialized model bundles.
//
// Keys are slash-separated relative paths such as "<run_id>/model.gob".
// FileStore keeps a gzip-compressed, SHA-256 checked envelope on local disk;
// MinioStore writes to an S3-compatible bucket.
package artifacts

import (
	"context"
	"path"
	"strings"

	"github.com/tomtom215/jobmatch/internal/apperr"
)

// Store persists opaque artifact bytes.
type Store interface {
	// Put writes data under key and returns a URI describing its location.
	Put(ctx context.Context, key string, data []byte) (string, error)

	// Get returns the bytes stored under key, or a KindNotFound error.
	Get(ctx context.Context, key string) ([]byte, error)

	Exists(ctx context.Context, key string) (bool, error)
}

// ModelKey returns the artifact key of a run's model bundle.
func ModelKey(runID string) string {
	return runID + "/model.gob"
}

// cleanKey rejects absolute paths and parent traversal.
func cleanKey(op, key string) (string, error) {
	if key == "" {
		return "", apperr.E(apperr.KindInvalidInput, op, "empty artifact key")
	}
	k := path.Clean(strings.ReplaceAll(key, "\\", "/"))
	if strings.HasPrefix(k, "/") || k == ".." || strings.HasPrefix(k, "../") {
		return "", apperr.E(apperr.KindInvalidInput, op, "artifact key %q escapes the store", key)
	}
	return k, nil
}
