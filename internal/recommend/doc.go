// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

// Package recommend ranks open jobs for a student and applicants for a job,
// and predicts hourly pay.
//
// # Scoring Modes
//
//   - Heuristic: a fixed weighted sum of the normalized features. It needs
//     no model and returns no explanations.
//   - Learned: the deployed production model scores every candidate in one
//     batch. Without a deployed model an ephemeral model is fitted from the
//     current snapshot for this request only; it is never registered. With
//     fewer labeled samples than the trainer's minimum the request is scored
//     heuristically instead.
//
// Learned results carry explanations: each feature's value is described by
// a banded template ("strong match", "different skill profile") and weighted
// by normalized coefficients of an auxiliary linear fit, sorted by
// contribution.
//
// # Degradation
//
// A missing student or job, or one with no eligible candidates, yields an
// empty list. Registry and training failures are logged and degrade to the
// next mode down; they are never returned to the caller.
//
// # Usage
//
//	scorer := recommend.NewScorer(recommend.Options{
//	    Snapshots: db,
//	    Models:    orchestrator,
//	    Trainer:   trainer,
//	    Logger:    logger,
//	})
//	recs, err := scorer.RecommendJobs(ctx, "s01", models.ModeLearned, 10)
//
// The Scorer is safe for concurrent use; it holds no mutable state.
package recommend
