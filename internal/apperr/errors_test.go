// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf_ThroughWrapping(t *testing.T) {
	t.Parallel()

	base := E(KindInsufficientData, "train", "need %d samples, have %d", 10, 3)
	wrapped := fmt.Errorf("job_recommendation: %w", base)

	if !IsInsufficientData(wrapped) {
		t.Errorf("IsInsufficientData(%v) = false", wrapped)
	}
	if IsInvalidInput(wrapped) {
		t.Error("should not be invalid input")
	}
	if got := wrapped.Error(); got != "job_recommendation: train: need 10 samples, have 3" {
		t.Errorf("Error() = %q", got)
	}
}

func TestWrap_NilAndUnwrap(t *testing.T) {
	t.Parallel()

	if Wrap(KindUnavailable, "op", nil) != nil {
		t.Error("Wrap(nil) should be nil")
	}

	sentinel := errors.New("boom")
	err := Wrap(KindUnavailable, "registry.get", sentinel)
	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should see the wrapped sentinel")
	}
	if KindOf(sentinel) != KindInternal {
		t.Error("unclassified error should be internal")
	}
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	for kind, want := range map[Kind]string{
		KindInvalidInput:     "invalid_input",
		KindNotFound:         "not_found",
		KindInsufficientData: "insufficient_data",
		KindUnavailable:      "unavailable",
		KindConflict:         "conflict",
		KindInternal:         "internal",
	} {
		if kind.String() != want {
			t.Errorf("%d.String() = %s, want %s", kind, kind.String(), want)
		}
	}
}
