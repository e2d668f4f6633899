// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package artifacts

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/tomtom215/jobmatch/internal/apperr"
)

func TestFileStore_PutGet(t *testing.T) {
	t.Parallel()

	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	ctx := context.Background()
	data := bytes.Repeat([]byte("model-bytes"), 100)

	uri, err := s.Put(ctx, ModelKey("run-1"), data)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if !strings.HasPrefix(uri, "file://") || !strings.HasSuffix(uri, "run-1/model.gob") {
		t.Errorf("uri = %q", uri)
	}

	got, err := s.Get(ctx, ModelKey("run-1"))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("round trip changed the data")
	}

	p, _ := s.Path(ModelKey("run-1"))
	viaPath, err := s.ReadPath(p)
	if err != nil || !bytes.Equal(viaPath, data) {
		t.Errorf("ReadPath() = %d bytes, err %v", len(viaPath), err)
	}

	ok, err := s.Exists(ctx, ModelKey("run-1"))
	if err != nil || !ok {
		t.Errorf("Exists() = %v, %v", ok, err)
	}
}

func TestFileStore_Missing(t *testing.T) {
	t.Parallel()

	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Get(context.Background(), "nope/model.gob"); !apperr.IsNotFound(err) {
		t.Errorf("Get() err = %v, want not found", err)
	}
	ok, err := s.Exists(context.Background(), "nope/model.gob")
	if err != nil || ok {
		t.Errorf("Exists() = %v, %v", ok, err)
	}
}

func TestFileStore_RejectsTraversal(t *testing.T) {
	t.Parallel()

	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"", "../escape", "/etc/passwd", "a/../../b"} {
		if _, err := s.Put(context.Background(), key, []byte("x")); !apperr.IsInvalidInput(err) {
			t.Errorf("Put(%q) err = %v, want invalid input", key, err)
		}
	}
}

func TestFileStore_DetectsCorruption(t *testing.T) {
	t.Parallel()

	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	p, _ := s.Path("run/model.gob")
	if _, err := s.Put(context.Background(), "run/model.gob", []byte("data")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Get(context.Background(), "run/model.gob"); err == nil {
		t.Error("expected error reading a corrupted artifact")
	}
}
