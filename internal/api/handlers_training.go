// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package api

import (
	"net/http"

	"github.com/tomtom215/jobmatch/internal/logging"
	"github.com/tomtom215/jobmatch/internal/models"
)

// TrainAll handles POST /api/v1/training/train-all.
// A cycle already running answers 409 with the in-progress message.
func (h *Handler) TrainAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.detach(r)
	defer cancel()

	logging.Ctx(ctx).Info().Msg("manual train-all requested")
	res := h.trainer.TrainAll(ctx)

	rw := NewResponseWriter(w, r)
	if res.Message == models.MessageTrainingInProgress {
		rw.Status(http.StatusConflict, false, res)
		return
	}
	rw.Status(http.StatusOK, res.Success, res)
}

// TrainOne handles POST /api/v1/training/train/{type}.
func (h *Handler) TrainOne(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	mt, err := modelType(r)
	if err != nil {
		rw.Fail(err)
		return
	}

	ctx, cancel := h.detach(r)
	defer cancel()

	logging.Ctx(ctx).Info().Str("model_type", string(mt)).Msg("manual training requested")
	res := h.trainer.TrainOne(ctx, mt)
	if res.Message == models.MessageTrainingInProgress {
		rw.Status(http.StatusConflict, false, res)
		return
	}
	rw.Status(http.StatusOK, res.Success, res)
}

// TrainingStatus handles GET /api/v1/training/status.
func (h *Handler) TrainingStatus(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.trainer.Status())
}
