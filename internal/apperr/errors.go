// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

// Package apperr defines the error taxonomy shared by the lifecycle, scoring
// and HTTP layers. Callers branch on Kind rather than on message text.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that need to react to it.
type Kind int

const (
	KindInternal Kind = iota
	// KindInvalidInput is a caller mistake; never retried.
	KindInvalidInput
	// KindNotFound means a referenced entity or model version does not exist.
	KindNotFound
	// KindInsufficientData means there were too few labeled samples to learn from.
	KindInsufficientData
	// KindUnavailable is a transient collaborator failure.
	KindUnavailable
	// KindConflict is a concurrency conflict such as a training already running.
	KindConflict
)

// String returns a stable name for logs and JSON bodies.
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindInsufficientData:
		return "insufficient_data"
	case KindUnavailable:
		return "unavailable"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a classified error with the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a classified error. msg is formatted with args.
func E(kind Kind, op, msg string, args ...interface{}) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(msg, args...)}
}

// Wrap classifies err. A nil err yields nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of the outermost classified error in err's chain,
// or KindInternal when none is classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsInsufficientData reports whether err signals too few labeled samples.
func IsInsufficientData(err error) bool { return Is(err, KindInsufficientData) }

// IsInvalidInput reports whether err is a caller mistake.
func IsInvalidInput(err error) bool { return Is(err, KindInvalidInput) }

// IsNotFound reports whether err refers to a missing entity.
func IsNotFound(err error) bool { return Is(err, KindNotFound) }

// IsUnavailable reports whether err is a transient collaborator failure.
func IsUnavailable(err error) bool { return Is(err, KindUnavailable) }
